package natal

import (
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/cache"
	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
	"github.com/admin/tg-bots/astro-api/internal/ports/events"
	"github.com/admin/tg-bots/astro-api/internal/ports/metrics"
	ports "github.com/admin/tg-bots/astro-api/internal/ports/repository"
	"github.com/admin/tg-bots/astro-api/internal/ports/tz"
	"github.com/admin/tg-bots/astro-api/internal/usecases/reference"
)

// Settings параметры поведения расчётного конвейера
type Settings struct {
	// RulesetVersion версия алгоритмов расчёта, попадает в fingerprint
	RulesetVersion string
	// TTEnabled включает переход на шкалу TT перед вызовом движка
	TTEnabled bool
	// DeriveTimezone включает вывод таймзоны по координатам
	DeriveTimezone bool
	// CacheTTL TTL записи последней карты в Redis, по умолчанию сутки
	CacheTTL time.Duration
}

func (s *Settings) cacheTTL() time.Duration {
	if s.CacheTTL <= 0 {
		return 24 * time.Hour
	}
	return s.CacheTTL
}

// Service бизнес-логика расчёта натальных карт: подготовка времени,
// выбор движка, аспекты, дома, персист трассировки и проверка консистентности
type Service struct {
	RefService *reference.Service
	ChartRepo  ports.IChartRepo
	Native     ephemeris.IProvider
	Fallback   ephemeris.IProvider
	TzFinder   tz.IFinder
	Cache      cache.Cache
	Events     events.IPublisher
	Metrics    metrics.IRecorder
	Log        *slog.Logger

	settings Settings
	validate *validator.Validate
}

// New создаёт новый сервис расчёта натальных карт.
// Cache и Events опциональны (nil, когда Redis или Kafka выключены).
func New(
	refService *reference.Service,
	chartRepo ports.IChartRepo,
	native ephemeris.IProvider,
	fallback ephemeris.IProvider,
	tzFinder tz.IFinder,
	resultCache cache.Cache,
	publisher events.IPublisher,
	recorder metrics.IRecorder,
	settings Settings,
	log *slog.Logger,
) *Service {
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Service{
		RefService: refService,
		ChartRepo:  chartRepo,
		Native:     native,
		Fallback:   fallback,
		TzFinder:   tzFinder,
		Cache:      resultCache,
		Events:     publisher,
		Metrics:    recorder,
		Log:        log,
		settings:   settings,
		validate:   validator.New(),
	}
}

// TimeoutChecker проверка дедлайна между фазами расчёта.
// Ненулевая ошибка переводится в natal_generation_timeout.
type TimeoutChecker func() error

// CalculateParams параметры одного расчёта
type CalculateParams struct {
	ReferenceVersion string
	// Accurate требует нативный движок, ошибка вместо деградации
	Accurate     bool
	Zodiac       domain.Zodiac
	Ayanamsa     string
	Frame        domain.Frame
	HouseSystem  domain.HouseSystem
	AltitudeM    *float64
	TimeoutCheck TimeoutChecker
}

func (p *CalculateParams) fillDefaults() {
	if p.Zodiac == "" {
		p.Zodiac = domain.ZodiacTropical
	}
	if p.Frame == "" {
		p.Frame = domain.FrameGeocentric
	}
	if p.HouseSystem == "" {
		p.HouseSystem = domain.HouseSystemPlacidus
	}
	if p.Zodiac == domain.ZodiacSidereal && p.Ayanamsa == "" {
		p.Ayanamsa = "lahiri"
	}
}
