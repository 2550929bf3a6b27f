package natal

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/metrics"
	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/simplified"
	"github.com/admin/tg-bots/astro-api/internal/adapters/secondary/storage/inmemory"
	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/cache"
	"github.com/admin/tg-bots/astro-api/internal/ports/ephemeris"
	"github.com/admin/tg-bots/astro-api/internal/ports/persistence"
	ports "github.com/admin/tg-bots/astro-api/internal/ports/repository"
	"github.com/admin/tg-bots/astro-api/internal/usecases/reference"
)

// fakeRefRepo справочник в памяти для тестов конвейера
type fakeRefRepo struct {
	versions map[string]*domain.ReferenceVersion
	rows     map[uuid.UUID]*ports.ReferenceRows
	active   string
}

func newFakeRefRepo() *fakeRefRepo {
	repo := &fakeRefRepo{
		versions: make(map[string]*domain.ReferenceVersion),
		rows:     make(map[uuid.UUID]*ports.ReferenceRows),
	}
	repo.addVersion("1.0.0", true, defaultRows())
	return repo
}

func (r *fakeRefRepo) addVersion(version string, active bool, rows *ports.ReferenceRows) {
	row := &domain.ReferenceVersion{ID: uuid.New(), Version: version, IsActive: active}
	r.versions[version] = row
	r.rows[row.ID] = rows
	if active {
		r.active = version
	}
}

func (r *fakeRefRepo) GetVersion(_ context.Context, version string) (*domain.ReferenceVersion, error) {
	row, ok := r.versions[version]
	if !ok {
		return nil, domain.NewError(domain.CodeReferenceVersionNotFound, "reference version not found").
			WithDetail("version", version)
	}
	return row, nil
}

func (r *fakeRefRepo) GetActiveVersion(_ context.Context) (*domain.ReferenceVersion, error) {
	return r.GetVersion(context.Background(), r.active)
}

func (r *fakeRefRepo) CreateVersion(_ context.Context, version string, _ *string) (*domain.ReferenceVersion, error) {
	r.addVersion(version, false, defaultRows())
	return r.versions[version], nil
}

func (r *fakeRefRepo) ActivateVersion(_ context.Context, versionID uuid.UUID) error {
	for version, row := range r.versions {
		row.IsActive = row.ID == versionID
		if row.IsActive {
			r.active = version
		}
	}
	return nil
}

func (r *fakeRefRepo) HasVersionData(_ context.Context, versionID uuid.UUID) (bool, error) {
	rows, ok := r.rows[versionID]
	return ok && rows != nil && len(rows.Planets) > 0, nil
}

func (r *fakeRefRepo) ClearVersionData(context.Context, persistence.Transaction, uuid.UUID) error {
	return nil
}

func (r *fakeRefRepo) SeedVersionDefaults(context.Context, persistence.Transaction, uuid.UUID) error {
	return nil
}

func (r *fakeRefRepo) CloneVersionData(context.Context, persistence.Transaction, uuid.UUID, uuid.UUID) error {
	return nil
}

func (r *fakeRefRepo) GetReferenceData(_ context.Context, versionID uuid.UUID) (*ports.ReferenceRows, error) {
	return r.rows[versionID], nil
}

func (r *fakeRefRepo) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	return fn(ctx, nil)
}

// defaultRows полный валидный справочник для тестов
func defaultRows() *ports.ReferenceRows {
	rows := &ports.ReferenceRows{}
	for _, code := range domain.PlanetOrder {
		rows.Planets = append(rows.Planets, domain.ReferencePlanet{ID: uuid.New(), Code: code, Name: code})
	}
	for _, code := range domain.SignCodes {
		rows.Signs = append(rows.Signs, domain.ReferenceSign{ID: uuid.New(), Code: code, Name: code})
	}
	for i := 1; i <= 12; i++ {
		rows.Houses = append(rows.Houses, domain.ReferenceHouse{ID: uuid.New(), Number: i})
	}
	rows.Aspects = []domain.ReferenceAspect{
		{ID: uuid.New(), Code: "conjunction", Angle: 0, DefaultOrbDeg: 8},
		{ID: uuid.New(), Code: "sextile", Angle: 60, DefaultOrbDeg: 4},
		{ID: uuid.New(), Code: "square", Angle: 90, DefaultOrbDeg: 6},
		{ID: uuid.New(), Code: "trine", Angle: 120, DefaultOrbDeg: 6},
		{ID: uuid.New(), Code: "opposition", Angle: 180, DefaultOrbDeg: 8},
	}
	return rows
}

// fakeChartRepo хранилище трассировок в памяти
type fakeChartRepo struct {
	traces []domain.ChartTrace
}

func (r *fakeChartRepo) Persist(_ context.Context, trace *domain.ChartTrace) error {
	r.traces = append(r.traces, *trace)
	return nil
}

func (r *fakeChartRepo) GetByChartID(_ context.Context, chartID uuid.UUID) (*domain.ChartTrace, error) {
	for i := range r.traces {
		if r.traces[i].ChartID == chartID {
			return &r.traces[i], nil
		}
	}
	return nil, domain.NewError(domain.CodeNatalChartNotFound, "chart not found")
}

func (r *fakeChartRepo) byUser(userID uuid.UUID) []domain.ChartTrace {
	var out []domain.ChartTrace
	for _, tr := range r.traces {
		if tr.UserID != nil && *tr.UserID == userID {
			out = append(out, tr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeChartRepo) GetLatestByUserID(_ context.Context, userID uuid.UUID) (*domain.ChartTrace, error) {
	own := r.byUser(userID)
	if len(own) == 0 {
		return nil, domain.NewError(domain.CodeNatalChartNotFound, "no charts for user")
	}
	return &own[0], nil
}

func (r *fakeChartRepo) GetPreviousComparable(_ context.Context, userID uuid.UUID, chartID uuid.UUID, inputHash, referenceVersion, rulesetVersion string) (*domain.ChartTrace, error) {
	for _, tr := range r.byUser(userID) {
		if tr.ChartID != chartID && tr.InputHash == inputHash &&
			tr.ReferenceVersion == referenceVersion && tr.RulesetVersion == rulesetVersion {
			trace := tr
			return &trace, nil
		}
	}
	return nil, domain.NewError(domain.CodeNatalChartNotFound, "no comparable previous chart")
}

func (r *fakeChartRepo) GetPreviousByUserID(_ context.Context, userID uuid.UUID, chartID uuid.UUID) (*domain.ChartTrace, error) {
	for _, tr := range r.byUser(userID) {
		if tr.ChartID != chartID {
			trace := tr
			return &trace, nil
		}
	}
	return nil, domain.NewError(domain.CodeNatalChartNotFound, "no previous chart for user")
}

func (r *fakeChartRepo) GetLegacyCandidates(_ context.Context, inputHash string, limit int) ([]domain.ChartTrace, error) {
	var out []domain.ChartTrace
	for _, tr := range r.traces {
		if tr.UserID == nil && tr.InputHash == inputHash {
			out = append(out, tr)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeChartRepo) ClaimLegacy(_ context.Context, chartID uuid.UUID, userID uuid.UUID) (bool, error) {
	for i := range r.traces {
		if r.traces[i].ChartID == chartID && r.traces[i].UserID == nil {
			r.traces[i].UserID = &userID
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeChartRepo) CountOwnersByHash(_ context.Context, inputHash string) (int, error) {
	owners := make(map[uuid.UUID]bool)
	for _, tr := range r.traces {
		if tr.InputHash == inputHash && tr.UserID != nil {
			owners[*tr.UserID] = true
		}
	}
	return len(owners), nil
}

// fakeProvider управляемый движок для сценарных тестов,
// запоминает последние запросы
type fakeProvider struct {
	engine         domain.Engine
	available      bool
	planets        []domain.PlanetData
	houses         []domain.HouseCuspData
	ascendant      float64
	calcErr        error
	housesErr      error
	lastPlanetsReq ephemeris.PlanetsRequest
	lastHousesReq  ephemeris.HousesRequest
}

func (p *fakeProvider) Engine() domain.Engine { return p.engine }

func (p *fakeProvider) Available() bool { return p.available }

func (p *fakeProvider) Provenance() *ephemeris.Provenance { return nil }

func (p *fakeProvider) CalculatePlanets(_ context.Context, req ephemeris.PlanetsRequest) (*ephemeris.PlanetsResult, error) {
	p.lastPlanetsReq = req
	if p.calcErr != nil {
		return nil, p.calcErr
	}
	return &ephemeris.PlanetsResult{Planets: p.planets}, nil
}

func (p *fakeProvider) CalculateHouses(_ context.Context, req ephemeris.HousesRequest) (*ephemeris.HousesResult, error) {
	p.lastHousesReq = req
	if p.housesErr != nil {
		return nil, p.housesErr
	}
	return &ephemeris.HousesResult{
		Cusps:              p.houses,
		AscendantLongitude: p.ascendant,
		MidheavenLongitude: domain.NormalizeDegrees(p.ascendant + 270),
		SystemUsed:         domain.HouseSystemPlacidus,
	}, nil
}

// fakeCache key-value кэш в памяти, считает обращения
type fakeCache struct {
	data map[string]string
	gets int
	sets int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.gets++
	val, ok := c.data[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return val, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value string, _ time.Duration) error {
	c.sets++
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

func (c *fakeCache) Close() error { return nil }

// fakeTzFinder фиксированная зона для любых координат
type fakeTzFinder struct {
	zone string
}

func (f *fakeTzFinder) TimezoneAt(float64, float64) string { return f.zone }

func testLogger() *slog.Logger {
	return slog.Default()
}

// newTestService сервис на фейках: упрощённый fallback, без Redis и Kafka
func newTestService(refRepo *fakeRefRepo, chartRepo *fakeChartRepo, native ephemeris.IProvider) *Service {
	log := testLogger()
	refService := reference.New(refRepo, inmemory.NewReferenceCache(), log)
	return New(
		refService,
		chartRepo,
		native,
		simplified.NewEngine(log),
		&fakeTzFinder{zone: "Europe/Paris"},
		nil,
		nil,
		metrics.NewInMemoryRecorder(),
		Settings{
			RulesetVersion: "2.3.0",
			TTEnabled:      false,
			DeriveTimezone: true,
		},
		log,
	)
}

// equalHouses равнодомная сетка от заданного асцендента
func equalHouses(ascendant float64) []domain.HouseCuspData {
	cusps := make([]domain.HouseCuspData, 0, 12)
	for i := 0; i < 12; i++ {
		cusps = append(cusps, domain.HouseCuspData{
			Number:        i + 1,
			CuspLongitude: domain.NormalizeDegrees(ascendant + float64(i)*30),
		})
	}
	return cusps
}

// tenPlanets позиции десяти тел с шагом 36°
func tenPlanets() []domain.PlanetData {
	planets := make([]domain.PlanetData, 0, len(domain.PlanetOrder))
	for i, code := range domain.PlanetOrder {
		planets = append(planets, domain.PlanetData{
			PlanetID:       code,
			Longitude:      float64(i) * 36,
			SpeedLongitude: 1,
		})
	}
	return planets
}
