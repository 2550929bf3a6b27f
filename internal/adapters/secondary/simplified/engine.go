package simplified

import (
	"context"

	"log/slog"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/pkg/astrotime"
	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
)

// meanElements средние элементы орбит на эпоху J2000: долгота и суточное движение.
// Точность не астрономическая, результат полностью детерминирован от входа.
var meanElements = []struct {
	code      string
	epochLong float64
	dailyRate float64
}{
	{"sun", 280.460, 0.98564736},
	{"moon", 218.316, 13.17639648},
	{"mercury", 252.251, 4.09233445},
	{"venus", 181.980, 1.60213034},
	{"mars", 355.433, 0.52403840},
	{"jupiter", 34.351, 0.08308529},
	{"saturn", 50.077, 0.03344414},
	{"uranus", 314.055, 0.01172834},
	{"neptune", 304.348, 0.00598103},
	{"pluto", 238.958, 0.00396000},
}

// Engine упрощённый движок без нативных зависимостей.
// Всегда тропический зодиак и геоцентрическая система отсчёта.
type Engine struct {
	log *slog.Logger
}

// NewEngine создаёт упрощённый движок
func NewEngine(log *slog.Logger) ephemeris.IProvider {
	return &Engine{log: log}
}

func (e *Engine) Engine() domain.Engine {
	return domain.EngineSimplified
}

// Provenance всегда nil, нативных данных у движка нет
func (e *Engine) Provenance() *ephemeris.Provenance {
	return nil
}

func (e *Engine) Available() bool {
	return true
}

// CalculatePlanets считает позиции по средним движениям от J2000.
// Средние скорости всегда положительны, ретроградность не моделируется.
func (e *Engine) CalculatePlanets(ctx context.Context, req ephemeris.PlanetsRequest) (*ephemeris.PlanetsResult, error) {
	days := req.JdUT - astrotime.J2000

	planets := make([]domain.PlanetData, 0, len(meanElements))
	for _, el := range meanElements {
		planets = append(planets, domain.PlanetData{
			PlanetID:       el.code,
			Longitude:      domain.NormalizeDegrees(el.epochLong + el.dailyRate*days),
			Latitude:       0,
			SpeedLongitude: el.dailyRate,
			IsRetrograde:   false,
		})
	}

	return &ephemeris.PlanetsResult{Planets: planets}, nil
}

// CalculateHouses строит равнодомную сетку от приближённого асцендента.
// Асцендент выводится из гринвичского звёздного времени и долготы места.
func (e *Engine) CalculateHouses(ctx context.Context, req ephemeris.HousesRequest) (*ephemeris.HousesResult, error) {
	// Приближённое GMST в градусах
	gmst := 280.46061837 + 360.98564736629*(req.JdUT-astrotime.J2000)
	lst := domain.NormalizeDegrees(gmst + req.Lon)

	ascendant := domain.NormalizeDegrees(lst + 90)
	midheaven := lst

	cusps := make([]domain.HouseCuspData, 0, 12)
	for i := 0; i < 12; i++ {
		cusps = append(cusps, domain.HouseCuspData{
			Number:        i + 1,
			CuspLongitude: domain.NormalizeDegrees(ascendant + float64(i)*30),
		})
	}

	return &ephemeris.HousesResult{
		Cusps:              cusps,
		AscendantLongitude: ascendant,
		MidheavenLongitude: midheaven,
		SystemUsed:         domain.HouseSystemEqual,
	}, nil
}
