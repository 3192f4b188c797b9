package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/integration"
)

// External catalog tables, one per entity type
const (
	TableExternalProducts  = "external_products"
	TableExternalModifiers = "external_modifiers"
	TableExternalDiscounts = "external_discounts"
)

// ExternalRecordTable returns the table holding records of the given type
func ExternalRecordTable(t integration.EntityType) (string, error) {
	switch t {
	case integration.EntityTypeProduct:
		return TableExternalProducts, nil
	case integration.EntityTypeModifier:
		return TableExternalModifiers, nil
	case integration.EntityTypeDiscount:
		return TableExternalDiscounts, nil
	}
	return "", integration.ErrInvalidEntityType
}

// ExternalRecordModel is the persistence model for a row mirrored from an
// external catalog. The three catalogs share this shape.
type ExternalRecordModel struct {
	IntegrationSourceID string              `gorm:"type:varchar(100);primaryKey"`
	MappingID           string              `gorm:"type:varchar(100);primaryKey"`
	Name                string              `gorm:"type:varchar(255)"`
	Description         string              `gorm:"type:text"`
	Price               decimal.NullDecimal `gorm:"type:decimal(18,4)"`
	ImageURL            string              `gorm:"type:varchar(1024)"`
	DataJSON            string              `gorm:"type:jsonb;column:data"`
	SyncedAt            time.Time           `gorm:"not null"`
}

// TableName returns the default table name for GORM. Repositories select the
// table per entity type.
func (ExternalRecordModel) TableName() string {
	return TableExternalProducts
}

// ToDomain converts the persistence model to a domain ExternalRecord
func (m *ExternalRecordModel) ToDomain(entityType integration.EntityType) (*integration.ExternalRecord, error) {
	record := &integration.ExternalRecord{
		MappingID:   m.MappingID,
		SourceID:    m.IntegrationSourceID,
		EntityType:  entityType,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		ImageURL:    m.ImageURL,
		SyncedAt:    m.SyncedAt,
	}
	if err := decodeJSON(m.DataJSON, &record.Data); err != nil {
		return nil, fmt.Errorf("decode data of %s record %s: %w", entityType, m.MappingID, err)
	}
	return record, nil
}

// FromDomain populates the persistence model from a domain ExternalRecord
func (m *ExternalRecordModel) FromDomain(r *integration.ExternalRecord) error {
	m.IntegrationSourceID = r.SourceID
	m.MappingID = r.MappingID
	m.Name = r.Name
	m.Description = r.Description
	m.Price = r.Price
	m.ImageURL = r.ImageURL
	m.SyncedAt = r.SyncedAt

	raw, err := encodeJSON(r.Data)
	if err != nil {
		return fmt.Errorf("encode data of %s record %s: %w", r.EntityType, r.MappingID, err)
	}
	m.DataJSON = raw
	return nil
}
