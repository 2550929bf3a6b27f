package swisseph

import (
	"context"
	"time"

	"log/slog"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
	"github.com/admin/tg-bots/astro-api/internal/ports/metrics"
	"github.com/mshafiee/swephgo"
)

// Флаги нативной библиотеки
const (
	seflgSwieph   = 2
	seflgSpeed    = 256
	seflgTopoctr  = 1 << 15
	seflgSidereal = 1 << 16

	serrLen = 256
)

// Индексы десяти тел в каноническом порядке
var planetIndex = map[string]int{
	"sun": 0, "moon": 1, "mercury": 2, "venus": 3, "mars": 4,
	"jupiter": 5, "saturn": 6, "uranus": 7, "neptune": 8, "pluto": 9,
}

// Идентификаторы аянамс. По умолчанию Lahiri.
var ayanamsaIndex = map[string]int{
	"fagan_bradley": 0,
	"lahiri":        1,
	"raman":         3,
	"krishnamurti":  5,
}

const defaultAyanamsa = "lahiri"

// Сидерический режим библиотеки по умолчанию, восстанавливается после каждого
// сидерического расчёта, в том числе при ошибке
const librarySidModeDefault = 0 // fagan_bradley

// Provider нативный провайдер эфемерид, реализует ephemeris.IProvider.
// Весь расчёт выполняется под engineMu: библиотека держит глобальное
// мутабельное состояние (сидерический режим, станция наблюдателя).
type Provider struct {
	cfg      *Config
	recorder metrics.IRecorder
	log      *slog.Logger
}

// NewProvider создаёт новый нативный провайдер
func NewProvider(cfg *Config, recorder metrics.IRecorder, log *slog.Logger) ephemeris.IProvider {
	return &Provider{
		cfg:      cfg,
		recorder: recorder,
		log:      log,
	}
}

func (p *Provider) Engine() domain.Engine {
	return domain.EngineSwisseph
}

// Available true после успешного бутстрапа
func (p *Provider) Available() bool {
	result := GetBootstrapResult()
	return result != nil && result.Success
}

// Provenance версия и хэш набора данных из бутстрапа
func (p *Provider) Provenance() *ephemeris.Provenance {
	result := GetBootstrapResult()
	if result == nil || !result.Success {
		return nil
	}

	return &ephemeris.Provenance{
		PathVersion: result.PathVersion,
		PathHash:    result.PathHash,
	}
}

func (p *Provider) calcError(message string) error {
	p.recorder.IncrementCounter(metrics.SwissephErrorsTotal, 1,
		map[string]string{"code": domain.CodeEphemerisCalcFailed})
	return domain.NewError(domain.CodeEphemerisCalcFailed, message).WithRetryable()
}

// CalculatePlanets считает позиции десяти тел с флагом скорости.
// Долготы нормализованы в [0, 360), ретроградность по знаку скорости.
func (p *Provider) CalculatePlanets(ctx context.Context, req ephemeris.PlanetsRequest) (*ephemeris.PlanetsResult, error) {
	if !p.Available() {
		return nil, domain.NewError(domain.CodeNatalEngineUnavailable, "native ephemeris engine is not available").WithRetryable()
	}

	if req.Frame == domain.FrameTopocentric && (req.Lat == nil || req.Lon == nil) {
		return nil, p.calcError("topocentric frame requires coordinates")
	}

	sidereal := req.Zodiac == domain.ZodiacSidereal
	var sidMode int
	if sidereal {
		name := req.Ayanamsa
		if name == "" {
			name = defaultAyanamsa
		}
		mode, ok := ayanamsaIndex[name]
		if !ok {
			// Ошибка запроса, не движка: в swisseph_errors_total не попадает
			return nil, domain.NewError(domain.CodeUnknownAyanamsa, "unknown ayanamsa identifier").
				WithDetail("ayanamsa", name)
		}
		sidMode = mode
	}

	iflag := seflgSwieph | seflgSpeed

	start := time.Now()

	engineMu.Lock()
	defer engineMu.Unlock()

	if req.Frame == domain.FrameTopocentric {
		swephgo.SetTopo(*req.Lon, *req.Lat, req.AltitudeM)
		iflag |= seflgTopoctr
	}

	var effectiveAyanamsa *float64
	if sidereal {
		swephgo.SetSidMode(sidMode, 0, 0)
		// Сброс режима гарантированно выполняется до освобождения engineMu
		defer swephgo.SetSidMode(librarySidModeDefault, 0, 0)
		iflag |= seflgSidereal

		value := swephgo.GetAyanamsaUt(req.JdUT)
		effectiveAyanamsa = &value
	}

	planets := make([]domain.PlanetData, 0, len(domain.PlanetOrder))
	for _, code := range domain.PlanetOrder {
		xx := make([]float64, 6)
		serr := make([]byte, serrLen)

		rc := swephgo.CalcUt(req.JdUT, planetIndex[code], iflag, xx, serr)
		if rc < 0 {
			p.log.Error("native planet computation failed",
				"planet", code,
				"error_code", domain.CodeEphemerisCalcFailed)
			return nil, p.calcError("planet position computation failed")
		}

		speed := xx[3]
		planets = append(planets, domain.PlanetData{
			PlanetID:       code,
			Longitude:      domain.NormalizeDegrees(xx[0]),
			Latitude:       xx[1],
			SpeedLongitude: speed,
			IsRetrograde:   speed < 0,
		})
	}

	// Латентность записывается только при успехе
	p.recorder.ObserveDuration(metrics.SwissephCalcLatencyMs, time.Since(start).Seconds(), nil)

	return &ephemeris.PlanetsResult{
		Planets:           planets,
		EffectiveAyanamsa: effectiveAyanamsa,
	}, nil
}
