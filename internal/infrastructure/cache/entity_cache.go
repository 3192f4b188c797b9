package cache

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/signage/backend/internal/domain/catalog"
)

// InMemoryEntityCache holds entities loaded by ID during parent inheritance.
// Entries are shared with callers and must not be mutated.
type InMemoryEntityCache struct {
	mu       sync.RWMutex
	entities map[uuid.UUID]*catalog.Entity
}

// NewInMemoryEntityCache creates an empty entity cache
func NewInMemoryEntityCache() *InMemoryEntityCache {
	return &InMemoryEntityCache{entities: make(map[uuid.UUID]*catalog.Entity)}
}

// Get returns the cached entity
func (c *InMemoryEntityCache) Get(_ context.Context, id uuid.UUID) (*catalog.Entity, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entity, ok := c.entities[id]
	return entity, ok
}

// Set caches entity under its ID
func (c *InMemoryEntityCache) Set(_ context.Context, entity *catalog.Entity) {
	if entity == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities[entity.ID] = entity
}

// Clear drops every cached entity
func (c *InMemoryEntityCache) Clear(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities = make(map[uuid.UUID]*catalog.Entity)
}

// Len returns the number of cached entities
func (c *InMemoryEntityCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entities)
}
