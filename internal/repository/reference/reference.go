package referenceRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"log/slog"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/persistence"
	ports "github.com/admin/tg-bots/astro-api/internal/ports/repository"
	"github.com/google/uuid"
)

type referenceColumns struct {
	VersionTable        string
	PlanetTable         string
	SignTable           string
	HouseTable          string
	AspectTable         string
	CharacteristicTable string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns referenceColumns
}

// New создаёт новый репозиторий справочных данных
func New(db persistence.Persistence, log *slog.Logger) ports.IReferenceRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: referenceColumns{
			VersionTable:        "reference_version",
			PlanetTable:         "planet",
			SignTable:           "sign",
			HouseTable:          "house",
			AspectTable:         "aspect",
			CharacteristicTable: "astro_characteristic",
		},
	}
}

// GetVersion получает версию справочника по строковому идентификатору
func (r *Repository) GetVersion(ctx context.Context, version string) (*domain.ReferenceVersion, error) {
	var row domain.ReferenceVersion
	query := fmt.Sprintf(`SELECT id, version, description, is_active FROM %s WHERE version = $1`,
		r.columns.VersionTable)
	err := r.db.Get(ctx, &row, query, version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("reference version not found", "version", version)
			return nil, domain.NewError(domain.CodeReferenceVersionNotFound, "reference version not found").
				WithDetail("version", version)
		}
		r.Log.Error("failed to get reference version",
			"error", err,
			"version", version)
		return nil, fmt.Errorf("failed to get reference version: %w", err)
	}
	return &row, nil
}

// GetActiveVersion получает активную версию справочника
func (r *Repository) GetActiveVersion(ctx context.Context) (*domain.ReferenceVersion, error) {
	var row domain.ReferenceVersion
	query := fmt.Sprintf(`SELECT id, version, description, is_active FROM %s WHERE is_active = TRUE ORDER BY created_at DESC LIMIT 1`,
		r.columns.VersionTable)
	err := r.db.Get(ctx, &row, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("no active reference version")
			return nil, domain.NewError(domain.CodeReferenceVersionNotFound, "no active reference version")
		}
		r.Log.Error("failed to get active reference version", "error", err)
		return nil, fmt.Errorf("failed to get active reference version: %w", err)
	}
	return &row, nil
}

// CreateVersion создаёт новую версию справочника
func (r *Repository) CreateVersion(ctx context.Context, version string, description *string) (*domain.ReferenceVersion, error) {
	row := domain.ReferenceVersion{
		ID:          uuid.New(),
		Version:     version,
		Description: description,
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, version, description, is_active) VALUES ($1, $2, $3, FALSE)`,
		r.columns.VersionTable)
	if err := r.db.Exec(ctx, query, row.ID, row.Version, row.Description); err != nil {
		r.Log.Error("failed to create reference version",
			"error", err,
			"version", version)
		return nil, fmt.Errorf("failed to create reference version: %w", err)
	}
	r.Log.Info("reference version created", "version", version, "id", row.ID)
	return &row, nil
}

// ActivateVersion делает версию единственной активной. Один UPDATE:
// флаг снимается со всех остальных строк атомарно.
func (r *Repository) ActivateVersion(ctx context.Context, versionID uuid.UUID) error {
	query := fmt.Sprintf(`UPDATE %s SET is_active = (id = $1)`, r.columns.VersionTable)
	if err := r.db.Exec(ctx, query, versionID); err != nil {
		r.Log.Error("failed to activate reference version",
			"error", err,
			"version_id", versionID)
		return fmt.Errorf("failed to activate reference version: %w", err)
	}
	r.Log.Info("reference version activated", "version_id", versionID)
	return nil
}

// HasVersionData проверяет, есть ли у версии хоть какие-то строки справочника
func (r *Repository) HasVersionData(ctx context.Context, versionID uuid.UUID) (bool, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE reference_version_id = $1`,
		r.columns.PlanetTable)
	if err := r.db.Get(ctx, &count, query, versionID); err != nil {
		r.Log.Error("failed to check version data",
			"error", err,
			"version_id", versionID)
		return false, fmt.Errorf("failed to check version data: %w", err)
	}
	return count > 0, nil
}

// ClearVersionData удаляет все строки справочника версии в транзакции
func (r *Repository) ClearVersionData(ctx context.Context, tx persistence.Transaction, versionID uuid.UUID) error {
	tables := []string{
		r.columns.CharacteristicTable,
		r.columns.AspectTable,
		r.columns.HouseTable,
		r.columns.SignTable,
		r.columns.PlanetTable,
	}
	for _, table := range tables {
		query := fmt.Sprintf(`DELETE FROM %s WHERE reference_version_id = $1`, table)
		if err := tx.Exec(ctx, query, versionID); err != nil {
			r.Log.Error("failed to clear version data",
				"error", err,
				"table", table,
				"version_id", versionID)
			return fmt.Errorf("failed to clear version data in %s: %w", table, err)
		}
	}
	r.Log.Debug("version data cleared", "version_id", versionID)
	return nil
}

// seedPlanets десять тел в каноническом порядке
var seedPlanets = [][2]string{
	{"sun", "Sun"}, {"moon", "Moon"}, {"mercury", "Mercury"}, {"venus", "Venus"},
	{"mars", "Mars"}, {"jupiter", "Jupiter"}, {"saturn", "Saturn"},
	{"uranus", "Uranus"}, {"neptune", "Neptune"}, {"pluto", "Pluto"},
}

// seedSigns двенадцать знаков, порядок фиксирован начиная с Овна
var seedSigns = [][2]string{
	{"aries", "Aries"}, {"taurus", "Taurus"}, {"gemini", "Gemini"}, {"cancer", "Cancer"},
	{"leo", "Leo"}, {"virgo", "Virgo"}, {"libra", "Libra"}, {"scorpio", "Scorpio"},
	{"sagittarius", "Sagittarius"}, {"capricorn", "Capricorn"},
	{"aquarius", "Aquarius"}, {"pisces", "Pisces"},
}

// seedAspects пять мажорных аспектов с орбисами по умолчанию
var seedAspects = []struct {
	Code  string
	Name  string
	Angle float64
	Orb   float64
}{
	{"conjunction", "Conjunction", 0, 8},
	{"sextile", "Sextile", 60, 4},
	{"square", "Square", 90, 6},
	{"trine", "Trine", 120, 6},
	{"opposition", "Opposition", 180, 8},
}

// seedCharacteristics по одной характеристике на тип сущности плюс орбисы светил
var seedCharacteristics = []struct {
	EntityType string
	EntityCode string
	Trait      string
	Value      string
}{
	{"planet", "sun", "category", "luminary"},
	{"sign", "aries", "element", "fire"},
	{"house", "1", "angularity", "angular"},
	{"aspect", "conjunction", "orb_luminaries", "10"},
	{"aspect", "opposition", "orb_luminaries", "10"},
	{"aspect", "conjunction", "orb_pair_overrides", `{"moon|sun": 12}`},
}

// SeedVersionDefaults наполняет версию данными по умолчанию:
// 10 планет, 12 знаков, 12 домов, 5 аспектов и базовые характеристики
func (r *Repository) SeedVersionDefaults(ctx context.Context, tx persistence.Transaction, versionID uuid.UUID) error {
	for _, p := range seedPlanets {
		query := fmt.Sprintf(`INSERT INTO %s (id, reference_version_id, code, name) VALUES ($1, $2, $3, $4)`,
			r.columns.PlanetTable)
		if err := tx.Exec(ctx, query, uuid.New(), versionID, p[0], p[1]); err != nil {
			return fmt.Errorf("failed to seed planet %s: %w", p[0], err)
		}
	}

	for i, s := range seedSigns {
		query := fmt.Sprintf(`INSERT INTO %s (id, reference_version_id, code, name, position) VALUES ($1, $2, $3, $4, $5)`,
			r.columns.SignTable)
		if err := tx.Exec(ctx, query, uuid.New(), versionID, s[0], s[1], i+1); err != nil {
			return fmt.Errorf("failed to seed sign %s: %w", s[0], err)
		}
	}

	for i := 1; i <= 12; i++ {
		query := fmt.Sprintf(`INSERT INTO %s (id, reference_version_id, number, name) VALUES ($1, $2, $3, $4)`,
			r.columns.HouseTable)
		if err := tx.Exec(ctx, query, uuid.New(), versionID, i, fmt.Sprintf("House %d", i)); err != nil {
			return fmt.Errorf("failed to seed house %d: %w", i, err)
		}
	}

	for _, a := range seedAspects {
		query := fmt.Sprintf(`INSERT INTO %s (id, reference_version_id, code, name, angle, default_orb_deg) VALUES ($1, $2, $3, $4, $5, $6)`,
			r.columns.AspectTable)
		if err := tx.Exec(ctx, query, uuid.New(), versionID, a.Code, a.Name, a.Angle, a.Orb); err != nil {
			return fmt.Errorf("failed to seed aspect %s: %w", a.Code, err)
		}
	}

	for _, c := range seedCharacteristics {
		query := fmt.Sprintf(`INSERT INTO %s (id, reference_version_id, entity_type, entity_code, trait, value) VALUES ($1, $2, $3, $4, $5, $6)`,
			r.columns.CharacteristicTable)
		if err := tx.Exec(ctx, query, uuid.New(), versionID, c.EntityType, c.EntityCode, c.Trait, c.Value); err != nil {
			return fmt.Errorf("failed to seed characteristic %s/%s: %w", c.EntityType, c.EntityCode, err)
		}
	}

	r.Log.Info("version defaults seeded", "version_id", versionID)
	return nil
}

// CloneVersionData копирует все строки справочника из одной версии в другую
func (r *Repository) CloneVersionData(ctx context.Context, tx persistence.Transaction, srcID, dstID uuid.UUID) error {
	copies := []struct {
		Table   string
		Columns string
	}{
		{r.columns.PlanetTable, "code, name"},
		{r.columns.SignTable, "code, name, position"},
		{r.columns.HouseTable, "number, name"},
		{r.columns.AspectTable, "code, name, angle, default_orb_deg"},
		{r.columns.CharacteristicTable, "entity_type, entity_code, trait, value"},
	}
	for _, c := range copies {
		query := fmt.Sprintf(`INSERT INTO %s (id, reference_version_id, %s)
			SELECT gen_random_uuid(), $1, %s FROM %s WHERE reference_version_id = $2`,
			c.Table, c.Columns, c.Columns, c.Table)
		if err := tx.Exec(ctx, query, dstID, srcID); err != nil {
			r.Log.Error("failed to clone version data",
				"error", err,
				"table", c.Table,
				"src_id", srcID,
				"dst_id", dstID)
			return fmt.Errorf("failed to clone %s rows: %w", c.Table, err)
		}
	}
	r.Log.Info("version data cloned", "src_id", srcID, "dst_id", dstID)
	return nil
}

// GetReferenceData загружает сырые строки справочника версии
func (r *Repository) GetReferenceData(ctx context.Context, versionID uuid.UUID) (*ports.ReferenceRows, error) {
	rows := &ports.ReferenceRows{}

	query := fmt.Sprintf(`SELECT id, code, name FROM %s WHERE reference_version_id = $1 ORDER BY code`,
		r.columns.PlanetTable)
	if err := r.db.Select(ctx, &rows.Planets, query, versionID); err != nil {
		r.Log.Error("failed to load planets", "error", err, "version_id", versionID)
		return nil, fmt.Errorf("failed to load planets: %w", err)
	}

	query = fmt.Sprintf(`SELECT id, code, name FROM %s WHERE reference_version_id = $1 ORDER BY position`,
		r.columns.SignTable)
	if err := r.db.Select(ctx, &rows.Signs, query, versionID); err != nil {
		r.Log.Error("failed to load signs", "error", err, "version_id", versionID)
		return nil, fmt.Errorf("failed to load signs: %w", err)
	}

	query = fmt.Sprintf(`SELECT id, number, name FROM %s WHERE reference_version_id = $1 ORDER BY number`,
		r.columns.HouseTable)
	if err := r.db.Select(ctx, &rows.Houses, query, versionID); err != nil {
		r.Log.Error("failed to load houses", "error", err, "version_id", versionID)
		return nil, fmt.Errorf("failed to load houses: %w", err)
	}

	query = fmt.Sprintf(`SELECT id, code, name, angle, default_orb_deg FROM %s WHERE reference_version_id = $1 ORDER BY angle`,
		r.columns.AspectTable)
	if err := r.db.Select(ctx, &rows.Aspects, query, versionID); err != nil {
		r.Log.Error("failed to load aspects", "error", err, "version_id", versionID)
		return nil, fmt.Errorf("failed to load aspects: %w", err)
	}

	query = fmt.Sprintf(`SELECT id, entity_type, entity_code, trait, value FROM %s WHERE reference_version_id = $1 ORDER BY entity_type, entity_code, trait`,
		r.columns.CharacteristicTable)
	if err := r.db.Select(ctx, &rows.Characteristics, query, versionID); err != nil {
		r.Log.Error("failed to load characteristics", "error", err, "version_id", versionID)
		return nil, fmt.Errorf("failed to load characteristics: %w", err)
	}

	r.Log.Debug("reference data loaded",
		"version_id", versionID,
		"planets", len(rows.Planets),
		"signs", len(rows.Signs),
		"houses", len(rows.Houses),
		"aspects", len(rows.Aspects))
	return rows, nil
}

// WithTransaction выполняет функцию в транзакции с автоматическим commit/rollback
func (r *Repository) WithTransaction(ctx context.Context, fn func(context.Context, persistence.Transaction) error) error {
	return r.db.WithTransaction(ctx, fn)
}
