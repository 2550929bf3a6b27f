package simplified

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
)

// TestCalculatePlanetsDeterministic одинаковый юлианский день даёт
// идентичные позиции при повторных вызовах.
func TestCalculatePlanetsDeterministic(t *testing.T) {
	engine := NewEngine(slog.Default())
	req := ephemeris.PlanetsRequest{JdUT: 2451545.0}

	first, err := engine.CalculatePlanets(context.Background(), req)
	require.NoError(t, err)
	second, err := engine.CalculatePlanets(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.Planets, 10)
}

// TestCalculatePlanetsCanonical долготы нормализованы, порядок тел
// канонический, ретроградности у средних движений нет.
func TestCalculatePlanetsCanonical(t *testing.T) {
	engine := NewEngine(slog.Default())

	result, err := engine.CalculatePlanets(context.Background(), ephemeris.PlanetsRequest{JdUT: 2460000.5})
	require.NoError(t, err)

	for i, planet := range result.Planets {
		assert.Equal(t, domain.PlanetOrder[i], planet.PlanetID)
		assert.GreaterOrEqual(t, planet.Longitude, 0.0)
		assert.Less(t, planet.Longitude, 360.0)
		assert.Greater(t, planet.SpeedLongitude, 0.0)
		assert.False(t, planet.IsRetrograde)
	}
}

// TestCalculatePlanetsSunAtEpoch на эпоху J2000 Солнце у средней долготы 280.46°.
func TestCalculatePlanetsSunAtEpoch(t *testing.T) {
	engine := NewEngine(slog.Default())

	result, err := engine.CalculatePlanets(context.Background(), ephemeris.PlanetsRequest{JdUT: 2451545.0})
	require.NoError(t, err)
	assert.Equal(t, "sun", result.Planets[0].PlanetID)
	assert.InDelta(t, 280.460, result.Planets[0].Longitude, 1e-9)
}

// TestCalculateHousesEqualGrid куспиды равнодомные с шагом 30° от асцендента.
func TestCalculateHousesEqualGrid(t *testing.T) {
	engine := NewEngine(slog.Default())

	result, err := engine.CalculateHouses(context.Background(), ephemeris.HousesRequest{
		JdUT:   2451545.0,
		Lat:    48.85,
		Lon:    2.35,
		System: domain.HouseSystemPlacidus,
	})
	require.NoError(t, err)

	require.Len(t, result.Cusps, 12)
	assert.Equal(t, domain.HouseSystemEqual, result.SystemUsed)
	assert.InDelta(t, result.AscendantLongitude, result.Cusps[0].CuspLongitude, 1e-9)

	for i := 1; i < 12; i++ {
		step := domain.NormalizeDegrees(result.Cusps[i].CuspLongitude - result.Cusps[i-1].CuspLongitude)
		assert.InDelta(t, 30.0, step, 1e-9, "cusp %d", i)
	}
}

// TestCalculateHousesLongitudeShift сдвиг долготы места сдвигает асцендент
// на ту же величину.
func TestCalculateHousesLongitudeShift(t *testing.T) {
	engine := NewEngine(slog.Default())

	at0, err := engine.CalculateHouses(context.Background(), ephemeris.HousesRequest{JdUT: 2451545.0, Lon: 0})
	require.NoError(t, err)
	at90, err := engine.CalculateHouses(context.Background(), ephemeris.HousesRequest{JdUT: 2451545.0, Lon: 90})
	require.NoError(t, err)

	shift := domain.NormalizeDegrees(at90.AscendantLongitude - at0.AscendantLongitude)
	assert.InDelta(t, 90.0, shift, 1e-9)
}
