package repository

import (
	"context"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/google/uuid"
)

// IChartRepo интерфейс для хранилища трассировок расчётов (chart_result)
type IChartRepo interface {
	Persist(ctx context.Context, trace *domain.ChartTrace) error
	GetByChartID(ctx context.Context, chartID uuid.UUID) (*domain.ChartTrace, error)
	GetLatestByUserID(ctx context.Context, userID uuid.UUID) (*domain.ChartTrace, error)
	// GetPreviousComparable возвращает предыдущий результат того же пользователя
	// с совпадающими (input_hash, reference_version, ruleset_version), исключая chartID
	GetPreviousComparable(ctx context.Context, userID uuid.UUID, chartID uuid.UUID, inputHash, referenceVersion, rulesetVersion string) (*domain.ChartTrace, error)
	// GetPreviousByUserID возвращает предыдущий результат пользователя без
	// требований к совпадению хэша и версий, исключая chartID
	GetPreviousByUserID(ctx context.Context, userID uuid.UUID, chartID uuid.UUID) (*domain.ChartTrace, error)
	// GetLegacyCandidates возвращает строки без владельца (user_id IS NULL)
	GetLegacyCandidates(ctx context.Context, inputHash string, limit int) ([]domain.ChartTrace, error)
	// ClaimLegacy атомарно присваивает владельца legacy-строке;
	// false - строку уже забрал конкурирующий клеймер
	ClaimLegacy(ctx context.Context, chartID uuid.UUID, userID uuid.UUID) (bool, error)
	// CountOwnersByHash число различных владельцев строк с данным input_hash
	CountOwnersByHash(ctx context.Context, inputHash string) (int, error)
}
