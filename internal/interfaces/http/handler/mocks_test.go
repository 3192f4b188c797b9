package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	integrationapp "github.com/signage/backend/internal/application/integration"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/mock"
)

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) LoadEntity(ctx context.Context, id uuid.UUID) (*catalog.Entity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Entity), args.Error(1)
}

func (m *mockResolver) ResolveAllFields(ctx context.Context, entity *catalog.Entity) map[string]integrationapp.ResolvedValue {
	args := m.Called(ctx, entity)
	return args.Get(0).(map[string]integrationapp.ResolvedValue)
}

func (m *mockResolver) ResolveField(ctx context.Context, entity *catalog.Entity, field string) integrationapp.ResolvedValue {
	args := m.Called(ctx, entity, field)
	return args.Get(0).(integrationapp.ResolvedValue)
}

func (m *mockResolver) SyncStatus(ctx context.Context, entity *catalog.Entity, field string) integration.FieldSyncStatus {
	args := m.Called(ctx, entity, field)
	return args.Get(0).(integration.FieldSyncStatus)
}

func (m *mockResolver) ResolveOptionByID(ctx context.Context, productID, optionID uuid.UUID, field string) (integrationapp.ResolvedValue, error) {
	args := m.Called(ctx, productID, optionID, field)
	return args.Get(0).(integrationapp.ResolvedValue), args.Error(1)
}

func (m *mockResolver) ClearCache(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type mockLinks struct {
	mock.Mock
}

func (m *mockLinks) entity(args mock.Arguments) (*catalog.Entity, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Entity), args.Error(1)
}

func (m *mockLinks) LinkEntity(ctx context.Context, entityID uuid.UUID, mappingID, sourceID string, entityType integration.EntityType) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, mappingID, sourceID, entityType))
}

func (m *mockLinks) UnlinkEntity(ctx context.Context, entityID uuid.UUID) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID))
}

func (m *mockLinks) LinkOption(ctx context.Context, productID, optionID uuid.UUID, mappingID string, entityType integration.EntityType) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, productID, optionID, mappingID, entityType))
}

func (m *mockLinks) UnlinkOption(ctx context.Context, productID, optionID uuid.UUID) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, productID, optionID))
}

func (m *mockLinks) SetCalculation(ctx context.Context, entityID uuid.UUID, field string, calc integration.Calculation) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, field, calc))
}

func (m *mockLinks) ClearCalculation(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, field))
}

func (m *mockLinks) SetOptionCalculation(ctx context.Context, productID, optionID uuid.UUID, calc integration.Calculation) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, productID, optionID, calc))
}

func (m *mockLinks) SetCalculationOverride(ctx context.Context, productID, optionID uuid.UUID, fixedPrice decimal.Decimal) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, productID, optionID, fixedPrice))
}

func (m *mockLinks) ClearCalculationOverride(ctx context.Context, productID, optionID uuid.UUID) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, productID, optionID))
}

func (m *mockLinks) EnableLocalOverride(ctx context.Context, entityID uuid.UUID, field string, value catalog.Value) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, field, value))
}

func (m *mockLinks) ClearLocalOverride(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, field))
}

func (m *mockLinks) EnableSync(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, field))
}

func (m *mockLinks) DisableSync(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, field))
}

func (m *mockLinks) AddFieldMapping(ctx context.Context, entityID uuid.UUID, field string, mapping integration.FieldMapping) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, field, mapping))
}

func (m *mockLinks) RemoveFieldMapping(ctx context.Context, entityID uuid.UUID, field string, mapping integration.FieldMapping) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, field, mapping))
}

func (m *mockLinks) SwitchActiveSource(ctx context.Context, entityID uuid.UUID, sourceID string) (*catalog.Entity, error) {
	return m.entity(m.Called(ctx, entityID, sourceID))
}

type mockDatabase struct {
	mock.Mock
}

func (m *mockDatabase) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockDatabase) Stats() (persistence.ConnectionStats, error) {
	args := m.Called()
	return args.Get(0).(persistence.ConnectionStats), args.Error(1)
}
