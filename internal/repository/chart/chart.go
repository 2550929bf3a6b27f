package chartRepo

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

type chartColumns struct {
	TableName        string
	ID               string
	ChartID          string
	UserID           string
	ReferenceVersion string
	RulesetVersion   string
	InputHash        string
	ResultPayload    string
	CreatedAt        string
}

type Repository struct {
	db      persistence.Persistence
	Log     *slog.Logger
	columns chartColumns
}

// New создаёт новый репозиторий трассировок расчётов
func New(db persistence.Persistence, log *slog.Logger) ports.IChartRepo {
	return &Repository{
		db:  db,
		Log: log,
		columns: chartColumns{
			TableName:        "chart_result",
			ID:               "id",
			ChartID:          "chart_id",
			UserID:           "user_id",
			ReferenceVersion: "reference_version",
			RulesetVersion:   "ruleset_version",
			InputHash:        "input_hash",
			ResultPayload:    "result_payload",
			CreatedAt:        "created_at",
		},
	}
}

// allColumns возвращает строку со всеми колонками (8 колонок)
func (r *Repository) allColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		r.columns.ID,
		r.columns.ChartID,
		r.columns.UserID,
		r.columns.ReferenceVersion,
		r.columns.RulesetVersion,
		r.columns.InputHash,
		r.columns.ResultPayload,
		r.columns.CreatedAt)
}

// Persist сохраняет трассировку расчёта
func (r *Repository) Persist(ctx context.Context, trace *domain.ChartTrace) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.columns.TableName,
		r.allColumns())
	err := r.db.Exec(ctx, query,
		trace.ID,
		trace.ChartID,
		trace.UserID,
		trace.ReferenceVersion,
		trace.RulesetVersion,
		trace.InputHash,
		trace.ResultPayload,
		trace.CreatedAt)
	if err != nil {
		r.Log.Error("failed to persist chart trace",
			"error", err,
			"chart_id", trace.ChartID)
		return fmt.Errorf("failed to persist chart trace: %w", err)
	}
	r.Log.Debug("chart trace persisted",
		"chart_id", trace.ChartID,
		"input_hash", trace.InputHash)
	return nil
}

// GetByChartID получает трассировку по chart_id
func (r *Repository) GetByChartID(ctx context.Context, chartID uuid.UUID) (*domain.ChartTrace, error) {
	var trace domain.ChartTrace
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.ChartID)
	err := r.db.Get(ctx, &trace, query, chartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Warn("chart not found", "chart_id", chartID)
			return nil, domain.NewError(domain.CodeNatalChartNotFound, "natal chart not found").
				WithDetail("chart_id", chartID.String())
		}
		r.Log.Error("failed to get chart by chart_id",
			"error", err,
			"chart_id", chartID)
		return nil, fmt.Errorf("failed to get chart by chart_id: %w", err)
	}
	return &trace, nil
}

// GetLatestByUserID получает свежайшую трассировку пользователя
func (r *Repository) GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.ChartTrace, error) {
	var trace domain.ChartTrace
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s DESC LIMIT 1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.CreatedAt)
	err := r.db.Get(ctx, &trace, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.Log.Debug("no chart for user", "user_id", userID)
			return nil, domain.NewError(domain.CodeNatalChartNotFound, "no natal chart for user").
				WithDetail("user_id", userID.String())
		}
		r.Log.Error("failed to get latest chart",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to get latest chart: %w", err)
	}
	return &trace, nil
}

// GetPreviousComparable получает предыдущий сопоставимый результат:
// тот же пользователь, те же input_hash и версии, исключая указанный chart_id
func (r *Repository) GetPreviousComparable(ctx context.Context, userID uuid.UUID, chartID uuid.UUID, inputHash, referenceVersion, rulesetVersion string) (*domain.ChartTrace, error) {
	var trace domain.ChartTrace
	query := fmt.Sprintf(`SELECT %s FROM %s
		WHERE %s = $1 AND %s != $2 AND %s = $3 AND %s = $4 AND %s = $5
		ORDER BY %s DESC LIMIT 1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.ChartID,
		r.columns.InputHash,
		r.columns.ReferenceVersion,
		r.columns.RulesetVersion,
		r.columns.CreatedAt)
	err := r.db.Get(ctx, &trace, query, userID, chartID, inputHash, referenceVersion, rulesetVersion)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.CodeNatalChartNotFound, "no comparable previous chart").
				WithDetail("user_id", userID.String())
		}
		r.Log.Error("failed to get previous comparable chart",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to get previous comparable chart: %w", err)
	}
	return &trace, nil
}

// GetPreviousByUserID получает предыдущий результат пользователя
// без требований к хэшу и версиям, исключая указанный chart_id
func (r *Repository) GetPreviousByUserID(ctx context.Context, userID uuid.UUID, chartID uuid.UUID) (*domain.ChartTrace, error) {
	var trace domain.ChartTrace
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s != $2 ORDER BY %s DESC LIMIT 1`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.ChartID,
		r.columns.CreatedAt)
	err := r.db.Get(ctx, &trace, query, userID, chartID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(domain.CodeNatalChartNotFound, "no previous chart for user").
				WithDetail("user_id", userID.String())
		}
		r.Log.Error("failed to get previous chart",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to get previous chart: %w", err)
	}
	return &trace, nil
}

// GetLegacyCandidates получает строки без владельца с данным input_hash
func (r *Repository) GetLegacyCandidates(ctx context.Context, inputHash string, limit int) ([]domain.ChartTrace, error) {
	var traces []domain.ChartTrace
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s IS NULL AND %s = $1 ORDER BY %s DESC LIMIT $2`,
		r.allColumns(),
		r.columns.TableName,
		r.columns.UserID,
		r.columns.InputHash,
		r.columns.CreatedAt)
	if err := r.db.Select(ctx, &traces, query, inputHash, limit); err != nil {
		r.Log.Error("failed to get legacy candidates",
			"error", err,
			"input_hash", inputHash)
		return nil, fmt.Errorf("failed to get legacy candidates: %w", err)
	}
	return traces, nil
}

// ClaimLegacy атомарно присваивает владельца legacy-строке.
// Конкурирующий клеймер проигрывает по условию user_id IS NULL.
func (r *Repository) ClaimLegacy(ctx context.Context, chartID uuid.UUID, userID uuid.UUID) (bool, error) {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2 AND %s IS NULL`,
		r.columns.TableName,
		r.columns.UserID,
		r.columns.ChartID,
		r.columns.UserID)
	rowsAffected, err := r.db.ExecWithResult(ctx, query, userID, chartID)
	if err != nil {
		r.Log.Error("failed to claim legacy chart",
			"error", err,
			"chart_id", chartID,
			"user_id", userID)
		return false, fmt.Errorf("failed to claim legacy chart: %w", err)
	}
	if rowsAffected == 0 {
		r.Log.Debug("legacy chart already claimed", "chart_id", chartID)
		return false, nil
	}
	r.Log.Info("legacy chart claimed", "chart_id", chartID, "user_id", userID)
	return true, nil
}

// CountOwnersByHash число различных владельцев строк с данным input_hash
func (r *Repository) CountOwnersByHash(ctx context.Context, inputHash string) (int, error) {
	var count int
	query := fmt.Sprintf(`SELECT COUNT(DISTINCT %s) FROM %s WHERE %s = $1 AND %s IS NOT NULL`,
		r.columns.UserID,
		r.columns.TableName,
		r.columns.InputHash,
		r.columns.UserID)
	if err := r.db.Get(ctx, &count, query, inputHash); err != nil {
		r.Log.Error("failed to count owners by hash",
			"error", err,
			"input_hash", inputHash)
		return 0, fmt.Errorf("failed to count owners by hash: %w", err)
	}
	return count, nil
}
