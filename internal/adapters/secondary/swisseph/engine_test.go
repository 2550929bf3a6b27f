package swisseph

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	metricsAdapter "github.com/admin/tg-bots/astro-api/internal/adapters/secondary/metrics"
	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
	portsMetrics "github.com/admin/tg-bots/astro-api/internal/ports/metrics"
)

// TestPlanetIndexCoversCanonicalOrder каждому телу канонического порядка
// соответствует нативный индекс того же ранга. Сравнение типизированное:
// индексы обязаны быть plain int под сигнатуры биндинга.
func TestPlanetIndexCoversCanonicalOrder(t *testing.T) {
	require.Len(t, planetIndex, len(domain.PlanetOrder))
	for i, code := range domain.PlanetOrder {
		idx, ok := planetIndex[code]
		require.True(t, ok, code)
		assert.Equal(t, i, idx)
	}
}

// TestAyanamsaIndexCatalog каталог аянамс и нативные идентификаторы
func TestAyanamsaIndexCatalog(t *testing.T) {
	assert.Equal(t, 0, ayanamsaIndex["fagan_bradley"])
	assert.Equal(t, 1, ayanamsaIndex[defaultAyanamsa])
	assert.Equal(t, 3, ayanamsaIndex["raman"])
	assert.Equal(t, 5, ayanamsaIndex["krishnamurti"])
}

// TestCalculatePlanetsUnknownAyanamsa неизвестный идентификатор аянамсы
// отдаётся как ошибка запроса и не засчитывается в ошибки движка.
func TestCalculatePlanetsUnknownAyanamsa(t *testing.T) {
	ResetBootstrapForTest()
	t.Cleanup(ResetBootstrapForTest)

	cfg := &Config{PathVersion: "de441", DataPath: t.TempDir()}
	recorder := metricsAdapter.NewInMemoryRecorder()

	result, err := Bootstrap(context.Background(), cfg, nil, recorder, slog.Default())
	require.NoError(t, err)
	require.True(t, result.Success)

	p := NewProvider(cfg, recorder, slog.Default())
	require.True(t, p.Available())

	_, err = p.CalculatePlanets(context.Background(), ephemeris.PlanetsRequest{
		Zodiac:   domain.ZodiacSidereal,
		Ayanamsa: "vernal",
	})
	require.Error(t, err)
	assert.True(t, domain.IsCode(err, domain.CodeUnknownAyanamsa))
	assert.Equal(t, 0.0, recorder.CounterValue(portsMetrics.SwissephErrorsTotal,
		map[string]string{"code": domain.CodeEphemerisCalcFailed}))
}

// TestHouseSystemCodes односимвольные коды систем домов
func TestHouseSystemCodes(t *testing.T) {
	assert.Equal(t, int('P'), houseSystemCodes[domain.HouseSystemPlacidus])
	assert.Equal(t, int('K'), houseSystemCodes[domain.HouseSystemKoch])
	assert.Equal(t, int('E'), houseSystemCodes[domain.HouseSystemEqual])
	assert.Equal(t, int('W'), houseSystemCodes[domain.HouseSystemWholeSign])
	assert.Equal(t, int('O'), houseSystemCodes[domain.HouseSystemPorphyry])
}
