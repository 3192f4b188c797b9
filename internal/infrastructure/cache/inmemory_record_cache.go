package cache

import (
	"context"
	"sync"

	"github.com/signage/backend/internal/domain/integration"
)

// InMemoryRecordCache implements integration.RecordCache with a process-local map.
// Entries live until Clear is called.
type InMemoryRecordCache struct {
	mu      sync.RWMutex
	records map[integration.RecordKey]*integration.ExternalRecord
}

// NewInMemoryRecordCache creates an empty record cache
func NewInMemoryRecordCache() *InMemoryRecordCache {
	return &InMemoryRecordCache{
		records: make(map[integration.RecordKey]*integration.ExternalRecord),
	}
}

// Get returns the cached record for key
func (c *InMemoryRecordCache) Get(_ context.Context, key integration.RecordKey) (*integration.ExternalRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	record, ok := c.records[key]
	return record, ok
}

// Set caches record under its own key
func (c *InMemoryRecordCache) Set(_ context.Context, record *integration.ExternalRecord) error {
	if record == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[record.Key()] = record
	return nil
}

// Clear drops every cached record
func (c *InMemoryRecordCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = make(map[integration.RecordKey]*integration.ExternalRecord)
	return nil
}

// Len returns the number of cached records
func (c *InMemoryRecordCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

var _ integration.RecordCache = (*InMemoryRecordCache)(nil)
