package cache

import (
	"context"
	"errors"
	"time"

	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// ErrMiss возвращается из Get, когда ключа нет. Промах - не сбой бэкенда.
var ErrMiss = errors.New("cache miss")

// Cache интерфейс для работы с кэшем результатов (Redis)
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Close() error
}

// IReferenceCache in-memory кэш снапшотов справочных данных по версии.
// Писатели инвалидируют атомарно (замена записи), читатели без блокировок не страдают.
type IReferenceCache interface {
	GetSnapshot(version string) (*domain.ReferenceSnapshot, bool)
	SetSnapshot(version string, snapshot *domain.ReferenceSnapshot)
	Invalidate(version string)
	Purge()
}
