package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockEntityRepository is a mock implementation of catalog.EntityRepository
type MockEntityRepository struct {
	mock.Mock
}

func (m *MockEntityRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Entity), args.Error(1)
}

func (m *MockEntityRepository) Save(ctx context.Context, entity *catalog.Entity) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

var _ catalog.EntityRepository = (*MockEntityRepository)(nil)

// MockTemplateRepository is a mock implementation of catalog.TemplateRepository
type MockTemplateRepository struct {
	mock.Mock
}

func (m *MockTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.AttributeTemplate, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.AttributeTemplate), args.Error(1)
}

func (m *MockTemplateRepository) FindDefault(ctx context.Context, templateID uuid.UUID, field string) (catalog.Value, bool, error) {
	args := m.Called(ctx, templateID, field)
	return args.Get(0).(catalog.Value), args.Bool(1), args.Error(2)
}

func (m *MockTemplateRepository) FindMappedFields(ctx context.Context, templateID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, templateID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

var _ catalog.TemplateRepository = (*MockTemplateRepository)(nil)

// MockExternalCatalog is a mock implementation of integration.ExternalCatalog
type MockExternalCatalog struct {
	mock.Mock
}

func (m *MockExternalCatalog) FindRecord(ctx context.Context, key integration.RecordKey) (*integration.ExternalRecord, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.ExternalRecord), args.Error(1)
}

var _ integration.ExternalCatalog = (*MockExternalCatalog)(nil)

// MockInvalidator records cache clears
type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) ClearCache(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memoryRecordCache is a minimal integration.RecordCache for tests
type memoryRecordCache struct {
	mu      sync.Mutex
	records map[integration.RecordKey]*integration.ExternalRecord
}

func newMemoryRecordCache() *memoryRecordCache {
	return &memoryRecordCache{records: map[integration.RecordKey]*integration.ExternalRecord{}}
}

func (c *memoryRecordCache) Get(_ context.Context, key integration.RecordKey) (*integration.ExternalRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.records[key]
	return r, ok
}

func (c *memoryRecordCache) Set(_ context.Context, record *integration.ExternalRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records[record.Key()] = record
	return nil
}

func (c *memoryRecordCache) Clear(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = map[integration.RecordKey]*integration.ExternalRecord{}
	return nil
}

func (c *memoryRecordCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

// memoryEntityCache is a minimal EntityCache for tests
type memoryEntityCache struct {
	mu       sync.Mutex
	entities map[uuid.UUID]*catalog.Entity
}

func newMemoryEntityCache() *memoryEntityCache {
	return &memoryEntityCache{entities: map[uuid.UUID]*catalog.Entity{}}
}

func (c *memoryEntityCache) Get(_ context.Context, id uuid.UUID) (*catalog.Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entities[id]
	return e, ok
}

func (c *memoryEntityCache) Set(_ context.Context, entity *catalog.Entity) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities[entity.ID] = entity
}

func (c *memoryEntityCache) Clear(context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entities = map[uuid.UUID]*catalog.Entity{}
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const testSourceID = "square-main"

func newEntity(t *testing.T, name string) *catalog.Entity {
	t.Helper()
	entity, err := catalog.NewEntity(uuid.New(), catalog.EntityKindProduct, name)
	require.NoError(t, err)
	return entity
}

func linkEntity(t *testing.T, entity *catalog.Entity, mappingID string) {
	t.Helper()
	require.NoError(t, entity.Link(mappingID, testSourceID, integration.EntityTypeProduct, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)))
}

func productRecord(mappingID, name, price string, data map[string]any) *integration.ExternalRecord {
	record := &integration.ExternalRecord{
		MappingID:  mappingID,
		SourceID:   testSourceID,
		EntityType: integration.EntityTypeProduct,
		Name:       name,
		Data:       data,
	}
	if price != "" {
		record.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	return record
}

func recordKey(entityType integration.EntityType, mappingID string) integration.RecordKey {
	return integration.RecordKey{SourceID: testSourceID, EntityType: entityType, MappingID: mappingID}
}

func number(s string) catalog.Value {
	return catalog.Number(decimal.RequireFromString(s))
}

// expectRecords registers the given records and reports every other key as absent
func expectRecords(m *MockExternalCatalog, records ...*integration.ExternalRecord) {
	for _, r := range records {
		m.On("FindRecord", mock.Anything, r.Key()).Return(r, nil)
	}
	m.On("FindRecord", mock.Anything, mock.Anything).Return(nil, integration.ErrRecordNotFound)
}
