package persistence

import (
	"context"
	"errors"

	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormExternalCatalog implements integration.ExternalCatalog over the mirrored
// external_products, external_modifiers and external_discounts tables
type GormExternalCatalog struct {
	db *gorm.DB
}

// NewGormExternalCatalog creates a new GormExternalCatalog
func NewGormExternalCatalog(db *gorm.DB) *GormExternalCatalog {
	return &GormExternalCatalog{db: db}
}

// FindRecord finds a record by source and mapping ID in the table of its type
func (c *GormExternalCatalog) FindRecord(ctx context.Context, key integration.RecordKey) (*integration.ExternalRecord, error) {
	table, err := models.ExternalRecordTable(key.EntityType)
	if err != nil {
		return nil, err
	}

	var model models.ExternalRecordModel
	err = c.db.WithContext(ctx).
		Table(table).
		Where("integration_source_id = ? AND mapping_id = ?", key.SourceID, key.MappingID).
		Take(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, integration.ErrRecordNotFound
		}
		return nil, err
	}
	return model.ToDomain(key.EntityType)
}

// Ensure GormExternalCatalog implements integration.ExternalCatalog
var _ integration.ExternalCatalog = (*GormExternalCatalog)(nil)
