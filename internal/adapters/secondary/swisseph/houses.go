package swisseph

import (
	"context"
	"time"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
	"github.com/admin/tg-bots/astro-api/internal/ports/metrics"
	"github.com/mshafiee/swephgo"
)

// Односимвольные коды систем домов нативной библиотеки
var houseSystemCodes = map[domain.HouseSystem]int{
	domain.HouseSystemPlacidus:  'P',
	domain.HouseSystemKoch:      'K',
	domain.HouseSystemEqual:     'E',
	domain.HouseSystemWholeSign: 'W',
	domain.HouseSystemPorphyry:  'O',
}

// CalculateHouses считает куспиды 12 домов и углы ASC/MC.
// Неизвестная система - конфигурационная ошибка, не попадает в swisseph_errors_total.
func (p *Provider) CalculateHouses(ctx context.Context, req ephemeris.HousesRequest) (*ephemeris.HousesResult, error) {
	if !p.Available() {
		return nil, domain.NewError(domain.CodeNatalEngineUnavailable, "native ephemeris engine is not available").WithRetryable()
	}

	system := req.System
	if system == "" {
		system = domain.HouseSystemPlacidus
	}

	hsys, ok := houseSystemCodes[system]
	if !ok {
		return nil, domain.NewError(domain.CodeUnsupportedHouseSystem, "unsupported house system").
			WithDetail("house_system", string(system))
	}

	start := time.Now()

	engineMu.Lock()
	defer engineMu.Unlock()

	// cusps[1..12] заполняются библиотекой, индекс 0 не используется
	cusps := make([]float64, 13)
	ascmc := make([]float64, 10)

	rc := swephgo.HousesEx(req.JdUT, seflgSwieph, req.Lat, req.Lon, hsys, cusps, ascmc)
	if rc < 0 {
		p.recorder.IncrementCounter(metrics.SwissephErrorsTotal, 1,
			map[string]string{"code": domain.CodeHousesCalcFailed})
		p.log.Error("native house computation failed",
			"error_code", domain.CodeHousesCalcFailed,
			"house_system", string(system))
		return nil, domain.NewError(domain.CodeHousesCalcFailed, "house cusp computation failed").WithRetryable()
	}

	result := &ephemeris.HousesResult{
		Cusps:              make([]domain.HouseCuspData, 0, 12),
		AscendantLongitude: domain.NormalizeDegrees(ascmc[0]),
		MidheavenLongitude: domain.NormalizeDegrees(ascmc[1]),
		SystemUsed:         system,
	}
	for i := 1; i <= 12; i++ {
		result.Cusps = append(result.Cusps, domain.HouseCuspData{
			Number:        i,
			CuspLongitude: domain.NormalizeDegrees(cusps[i]),
		})
	}

	p.recorder.ObserveDuration(metrics.SwissephHousesLatency, time.Since(start).Seconds(), nil)

	return result, nil
}
