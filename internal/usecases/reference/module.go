package reference

import (
	"log/slog"

	"github.com/admin/tg-bots/astro-api/internal/ports/cache"
	ports "github.com/admin/tg-bots/astro-api/internal/ports/repository"
)

// DefaultVersion версия, создаваемая при первом сиде
const DefaultVersion = "1.0.0"

// Service бизнес-логика справочных данных: seed, clone, снапшоты с кэшем
type Service struct {
	RefRepo ports.IReferenceRepo
	Cache   cache.IReferenceCache
	Log     *slog.Logger
}

// New создаёт новый сервис справочных данных
func New(refRepo ports.IReferenceRepo, refCache cache.IReferenceCache, log *slog.Logger) *Service {
	return &Service{
		RefRepo: refRepo,
		Cache:   refCache,
		Log:     log,
	}
}
