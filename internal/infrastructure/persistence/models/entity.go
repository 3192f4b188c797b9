package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
)

// EntityModel is the persistence model for products and categories
type EntityModel struct {
	TenantModel
	Kind                   catalog.EntityKind     `gorm:"type:varchar(20);not null;index"`
	Name                   string                 `gorm:"type:varchar(255);not null"`
	AttributesJSON         string                 `gorm:"type:jsonb;column:attributes"`
	LocalFieldsJSON        string                 `gorm:"type:jsonb;column:local_fields"`
	AttributeOverridesJSON string                 `gorm:"type:jsonb;column:attribute_overrides"`
	DisabledSyncFieldsJSON string                 `gorm:"type:jsonb;column:disabled_sync_fields"`
	MappingID              string                 `gorm:"type:varchar(100);index:idx_entity_mapping,priority:2"`
	IntegrationSourceID    string                 `gorm:"type:varchar(100);index:idx_entity_mapping,priority:1"`
	IntegrationType        integration.EntityType `gorm:"type:varchar(20)"`
	LastSyncedAt           *time.Time
	ActiveSourceID         string     `gorm:"type:varchar(100)"`
	AttributeMappingsJSON  string     `gorm:"type:jsonb;column:attribute_mappings"`
	PriceCalculationsJSON  string     `gorm:"type:jsonb;column:price_calculations"`
	OptionsJSON            string     `gorm:"type:jsonb;column:options"`
	ParentProductID        *uuid.UUID `gorm:"type:uuid;index"`
	AttributeTemplateID    *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (EntityModel) TableName() string {
	return "catalog_entities"
}

// ToDomain converts the persistence model to a domain Entity
func (m *EntityModel) ToDomain() (*catalog.Entity, error) {
	entity := &catalog.Entity{
		TenantEntity:        m.TenantModel.ToDomain(),
		Kind:                m.Kind,
		Name:                m.Name,
		Attributes:          catalog.Attributes{},
		MappingID:           m.MappingID,
		IntegrationSourceID: m.IntegrationSourceID,
		IntegrationType:     m.IntegrationType,
		LastSyncedAt:        m.LastSyncedAt,
		ActiveSourceID:      m.ActiveSourceID,
		AttributeMappings:   map[string][]integration.FieldMapping{},
		PriceCalculations:   map[string]integration.Calculation{},
		ParentProductID:     m.ParentProductID,
		AttributeTemplateID: m.AttributeTemplateID,
	}

	columns := []struct {
		name string
		raw  string
		dst  any
	}{
		{"attributes", m.AttributesJSON, &entity.Attributes},
		{"local_fields", m.LocalFieldsJSON, &entity.LocalFields},
		{"attribute_overrides", m.AttributeOverridesJSON, &entity.AttributeOverrides},
		{"disabled_sync_fields", m.DisabledSyncFieldsJSON, &entity.DisabledSyncFields},
		{"attribute_mappings", m.AttributeMappingsJSON, &entity.AttributeMappings},
		{"price_calculations", m.PriceCalculationsJSON, &entity.PriceCalculations},
		{"options", m.OptionsJSON, &entity.Options},
	}
	for _, c := range columns {
		if err := decodeJSON(c.raw, c.dst); err != nil {
			return nil, fmt.Errorf("decode %s of entity %s: %w", c.name, m.ID, err)
		}
	}
	if entity.Attributes == nil {
		entity.Attributes = catalog.Attributes{}
	}
	if entity.AttributeMappings == nil {
		entity.AttributeMappings = map[string][]integration.FieldMapping{}
	}
	if entity.PriceCalculations == nil {
		entity.PriceCalculations = map[string]integration.Calculation{}
	}

	return entity, nil
}

// FromDomain populates the persistence model from a domain Entity
func (m *EntityModel) FromDomain(e *catalog.Entity) error {
	m.TenantModel.FromDomain(e.TenantEntity)
	m.Kind = e.Kind
	m.Name = e.Name
	m.MappingID = e.MappingID
	m.IntegrationSourceID = e.IntegrationSourceID
	m.IntegrationType = e.IntegrationType
	m.LastSyncedAt = e.LastSyncedAt
	m.ActiveSourceID = e.ActiveSourceID
	m.ParentProductID = e.ParentProductID
	m.AttributeTemplateID = e.AttributeTemplateID

	columns := []struct {
		name string
		src  any
		dst  *string
	}{
		{"attributes", e.Attributes, &m.AttributesJSON},
		{"local_fields", e.LocalFields, &m.LocalFieldsJSON},
		{"attribute_overrides", e.AttributeOverrides, &m.AttributeOverridesJSON},
		{"disabled_sync_fields", e.DisabledSyncFields, &m.DisabledSyncFieldsJSON},
		{"attribute_mappings", e.AttributeMappings, &m.AttributeMappingsJSON},
		{"price_calculations", e.PriceCalculations, &m.PriceCalculationsJSON},
		{"options", e.Options, &m.OptionsJSON},
	}
	for _, c := range columns {
		raw, err := encodeJSON(c.src)
		if err != nil {
			return fmt.Errorf("encode %s of entity %s: %w", c.name, e.ID, err)
		}
		*c.dst = raw
	}
	return nil
}

// EntityModelFromDomain creates a new persistence model from a domain Entity
func EntityModelFromDomain(e *catalog.Entity) (*EntityModel, error) {
	m := &EntityModel{}
	if err := m.FromDomain(e); err != nil {
		return nil, err
	}
	return m, nil
}
