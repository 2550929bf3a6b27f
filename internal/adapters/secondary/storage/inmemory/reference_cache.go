package inmemory

import (
	"sync"

	"github.com/admin/tg-bots/astro-api/internal/domain"
	"github.com/admin/tg-bots/astro-api/internal/ports/cache"
)

// ReferenceCache in-memory кэш снапшотов справочных данных по версии.
// Чтение преобладает; запись только при seed/clone и инвалидирует атомарно.
type ReferenceCache struct {
	mu        sync.RWMutex
	snapshots map[string]*domain.ReferenceSnapshot
}

// NewReferenceCache создаёт новый in-memory кэш снапшотов
func NewReferenceCache() cache.IReferenceCache {
	return &ReferenceCache{
		snapshots: make(map[string]*domain.ReferenceSnapshot),
	}
}

// GetSnapshot возвращает снапшот версии, если он закэширован
func (c *ReferenceCache) GetSnapshot(version string) (*domain.ReferenceSnapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snapshot, ok := c.snapshots[version]
	return snapshot, ok
}

// SetSnapshot сохраняет снапшот версии
func (c *ReferenceCache) SetSnapshot(version string, snapshot *domain.ReferenceSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[version] = snapshot
}

// Invalidate удаляет снапшот версии из кэша
func (c *ReferenceCache) Invalidate(version string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, version)
}

// Purge очищает кэш полностью (для тестов)
func (c *ReferenceCache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots = make(map[string]*domain.ReferenceSnapshot)
}
