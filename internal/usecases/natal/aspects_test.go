package natal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/astro-api/internal/domain"
)

func testAspects() []domain.ReferenceAspect {
	ten := 10.0
	return []domain.ReferenceAspect{
		{Code: "conjunction", Angle: 0, DefaultOrbDeg: 8, OrbLuminaries: &ten,
			OrbPairOverrides: map[string]float64{"moon|sun": 12}},
		{Code: "sextile", Angle: 60, DefaultOrbDeg: 4},
		{Code: "opposition", Angle: 180, DefaultOrbDeg: 8},
	}
}

// TestComputeAspectsExact точный аспект имеет нулевой орбис.
func TestComputeAspectsExact(t *testing.T) {
	longitudes := map[string]float64{"mars": 10, "venus": 190}

	results := ComputeAspects(longitudes, testAspects())
	require.Len(t, results, 1)
	assert.Equal(t, "opposition", results[0].AspectCode)
	assert.Equal(t, "mars", results[0].PlanetA)
	assert.Equal(t, "venus", results[0].PlanetB)
	assert.InDelta(t, 0.0, results[0].Orb, 1e-12)
}

// TestComputeAspectsOrbPrecedence парное переопределение сильнее орбиса
// светил, орбис светил сильнее дефолтного.
func TestComputeAspectsOrbPrecedence(t *testing.T) {
	aspects := testAspects()

	// Сепарация 11°: внутри парного орбиса sun-moon (12), вне орбиса светил (10)
	results := ComputeAspects(map[string]float64{"sun": 0, "moon": 11}, aspects)
	require.Len(t, results, 1)
	assert.Equal(t, "conjunction", results[0].AspectCode)

	// Та же сепарация для sun-mars: орбис светил 10 < 11, аспекта нет
	results = ComputeAspects(map[string]float64{"sun": 0, "mars": 11}, aspects)
	assert.Empty(t, results)

	// Сепарация 9° для sun-mars: внутри орбиса светил
	results = ComputeAspects(map[string]float64{"sun": 0, "mars": 9}, aspects)
	require.Len(t, results, 1)

	// Сепарация 9° для mars-venus: вне дефолтного орбиса 8
	results = ComputeAspects(map[string]float64{"mars": 0, "venus": 9}, aspects)
	assert.Empty(t, results)
}

// TestComputeAspectsWrapAround сепарация считается по короткой дуге через 0°.
func TestComputeAspectsWrapAround(t *testing.T) {
	results := ComputeAspects(map[string]float64{"sun": 355, "moon": 5}, testAspects())
	require.Len(t, results, 1)
	assert.Equal(t, "conjunction", results[0].AspectCode)
	assert.Equal(t, "moon", results[0].PlanetA)
	assert.Equal(t, "sun", results[0].PlanetB)
	assert.InDelta(t, 10.0, results[0].Orb, 1e-12)
}

// TestComputeAspectsDeterministicOrder результат отсортирован по углу,
// затем по паре планет, независимо от порядка входа.
func TestComputeAspectsDeterministicOrder(t *testing.T) {
	longitudes := map[string]float64{
		"sun":   0,
		"moon":  5,
		"mars":  180,
		"venus": 182,
	}

	first := ComputeAspects(longitudes, testAspects())
	second := ComputeAspects(longitudes, testAspects())
	require.Equal(t, first, second)

	for i := 1; i < len(first); i++ {
		prev, cur := first[i-1], first[i]
		require.True(t,
			prev.Angle < cur.Angle ||
				(prev.Angle == cur.Angle && prev.PlanetA < cur.PlanetA) ||
				(prev.Angle == cur.Angle && prev.PlanetA == cur.PlanetA && prev.PlanetB < cur.PlanetB),
			"results out of order at %d: %+v then %+v", i, prev, cur)
	}

	for _, res := range first {
		assert.Less(t, res.PlanetA, res.PlanetB)
	}
}
