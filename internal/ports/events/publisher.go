package events

import (
	"context"

	"github.com/admin/tg-bots/astro-api/internal/domain"
)

// IPublisher интерфейс для публикации событий ядра в downstream-конвейер
type IPublisher interface {
	PublishChartComputed(ctx context.Context, event domain.ChartComputedEvent) error
	Close() error
}
