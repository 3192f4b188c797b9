package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/signage/backend/internal/domain/catalog"
)

// AttributeTemplateModel is the persistence model for attribute templates
type AttributeTemplateModel struct {
	ID         uuid.UUID `gorm:"type:uuid;primary_key"`
	TenantID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Name       string    `gorm:"type:varchar(255);not null"`
	FieldsJSON string    `gorm:"type:jsonb;column:fields"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AttributeTemplateModel) TableName() string {
	return "attribute_templates"
}

// ToDomain converts the persistence model to a domain AttributeTemplate
func (m *AttributeTemplateModel) ToDomain() (*catalog.AttributeTemplate, error) {
	tpl := &catalog.AttributeTemplate{
		ID:       m.ID,
		TenantID: m.TenantID,
		Name:     m.Name,
	}
	if err := decodeJSON(m.FieldsJSON, &tpl.Fields); err != nil {
		return nil, fmt.Errorf("decode fields of template %s: %w", m.ID, err)
	}
	return tpl, nil
}

// FromDomain populates the persistence model from a domain AttributeTemplate
func (m *AttributeTemplateModel) FromDomain(t *catalog.AttributeTemplate) error {
	m.ID = t.ID
	m.TenantID = t.TenantID
	m.Name = t.Name

	fields := t.Fields
	if fields == nil {
		fields = []catalog.TemplateField{}
	}
	raw, err := encodeJSON(fields)
	if err != nil {
		return fmt.Errorf("encode fields of template %s: %w", t.ID, err)
	}
	m.FieldsJSON = raw
	return nil
}
