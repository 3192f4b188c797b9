package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/logger"
	"github.com/signage/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// setupSQLiteDB opens an in-memory database with every engine table
func setupSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// Every pooled connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.EntityModel{}, &models.AttributeTemplateModel{}))
	for _, entityType := range integration.AllEntityTypes() {
		table, err := models.ExternalRecordTable(entityType)
		require.NoError(t, err)
		require.NoError(t, db.Table(table).AutoMigrate(&models.ExternalRecordModel{}))
	}
	return db
}

func newTestProduct(t *testing.T, tenantID uuid.UUID, name string) *catalog.Entity {
	t.Helper()
	entity, err := catalog.NewEntity(tenantID, catalog.EntityKindProduct, name)
	require.NoError(t, err)
	return entity
}

func newTestRecord(entityType integration.EntityType, mappingID string, price string) *integration.ExternalRecord {
	record := &integration.ExternalRecord{
		MappingID:  mappingID,
		SourceID:   "square-1",
		EntityType: entityType,
		Name:       "Record " + mappingID,
		Data: map[string]any{
			"price":    price,
			"category": map[string]any{"name": "Drinks"},
		},
		SyncedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if price != "" {
		record.Price = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	return record
}

// seedRecord writes a mirrored external record the way the catalog sync does,
// replacing the columns of an existing row
func seedRecord(t *testing.T, db *gorm.DB, record *integration.ExternalRecord) {
	t.Helper()

	table, err := models.ExternalRecordTable(record.EntityType)
	require.NoError(t, err)

	var model models.ExternalRecordModel
	require.NoError(t, model.FromDomain(record))
	require.NoError(t, db.Table(table).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "integration_source_id"}, {Name: "mapping_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "price", "image_url", "data", "synced_at"}),
		}).
		Create(&model).Error)
}

func tenantContext(tenantID uuid.UUID) context.Context {
	ctx := context.Background()
	ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID.String())
	return ctx
}
