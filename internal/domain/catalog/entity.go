package catalog

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/domain/shared"
)

// EntityKind distinguishes the entities whose fields can be resolved
type EntityKind string

const (
	EntityKindProduct  EntityKind = "product"
	EntityKindCategory EntityKind = "category"
)

// IsValid returns true if the kind is known
func (k EntityKind) IsValid() bool {
	return k == EntityKindProduct || k == EntityKindCategory
}

// FieldOptions is the composite field holding a product's options
const FieldOptions = "options"

// Entity is a product or category with its attribute bag and linkage metadata
type Entity struct {
	shared.TenantEntity
	Kind       EntityKind
	Name       string
	Attributes Attributes

	// Fields pinned to manually entered values
	LocalFields        integration.FieldSet
	AttributeOverrides integration.FieldSet
	DisabledSyncFields integration.FieldSet

	// External catalog link, at most one per entity
	MappingID           string
	IntegrationSourceID string
	IntegrationType     integration.EntityType
	LastSyncedAt        *time.Time
	ActiveSourceID      string

	AttributeMappings map[string][]integration.FieldMapping
	PriceCalculations map[string]integration.Calculation
	Options           []Option

	ParentProductID     *uuid.UUID
	AttributeTemplateID *uuid.UUID
}

// NewEntity creates an unlinked entity
func NewEntity(tenantID uuid.UUID, kind EntityKind, name string) (*Entity, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidEntityKind
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEntityNameRequired
	}
	return &Entity{
		TenantEntity:      shared.NewTenantEntity(tenantID),
		Kind:              kind,
		Name:              name,
		Attributes:        Attributes{},
		AttributeMappings: map[string][]integration.FieldMapping{},
		PriceCalculations: map[string]integration.Calculation{},
	}, nil
}

// IsLinked returns true when the entity has an active external link
func (e *Entity) IsLinked() bool {
	return e.MappingID != "" && e.IntegrationSourceID != ""
}

// LinkKey returns the external record key of the entity link
func (e *Entity) LinkKey() integration.RecordKey {
	entityType := e.IntegrationType
	if entityType == "" {
		entityType = integration.EntityTypeProduct
	}
	return integration.RecordKey{
		SourceID:   e.IntegrationSourceID,
		EntityType: entityType,
		MappingID:  e.MappingID,
	}
}

// IsOverridden returns true when the field is pinned locally
func (e *Entity) IsOverridden(field string) bool {
	return e.LocalFields.Contains(field) || e.AttributeOverrides.Contains(field)
}

// LocalValue returns the raw local value of a field
func (e *Entity) LocalValue(field string) Value {
	switch field {
	case FieldOptions:
		if e.Attributes.Has(FieldOptions) || len(e.Options) == 0 {
			return e.Attributes.Get(FieldOptions)
		}
		raw, err := json.Marshal(e.Options)
		if err != nil {
			return Undefined()
		}
		return JSON(raw)
	case integration.FieldName:
		if !e.Attributes.Has(field) && e.Name != "" {
			return Text(e.Name)
		}
	}
	return e.Attributes.Get(field)
}

// FieldNames returns the union of attribute keys, pinned fields and
// calculation keys, sorted
func (e *Entity) FieldNames() []string {
	seen := map[string]struct{}{}
	for field := range e.Attributes {
		seen[field] = struct{}{}
	}
	for _, field := range e.LocalFields {
		seen[field] = struct{}{}
	}
	for _, field := range e.AttributeOverrides {
		seen[field] = struct{}{}
	}
	for field := range e.PriceCalculations {
		seen[field] = struct{}{}
	}
	names := make([]string, 0, len(seen))
	for field := range seen {
		names = append(names, field)
	}
	slices.Sort(names)
	return names
}

// ---------------------------------------------------------------------------
// Linkage
// ---------------------------------------------------------------------------

// Linkage returns the entity's sync metadata
func (e *Entity) Linkage() integration.LinkageState {
	return integration.LinkageState{
		MappingID:           e.MappingID,
		IntegrationSourceID: e.IntegrationSourceID,
		ActiveSourceID:      e.ActiveSourceID,
		FieldMappings:       e.AttributeMappings,
		LocalFields:         e.LocalFields,
		AttributeOverrides:  e.AttributeOverrides,
		DisabledSyncFields:  e.DisabledSyncFields,
	}
}

// ApplyLinkage writes the result of a sync transition back onto the entity
func (e *Entity) ApplyLinkage(state integration.LinkageState) {
	e.ActiveSourceID = state.ActiveSourceID
	e.AttributeMappings = state.FieldMappings
	e.LocalFields = state.LocalFields
	e.AttributeOverrides = state.AttributeOverrides
	e.DisabledSyncFields = state.DisabledSyncFields
}

// Link attaches the entity to an external record
func (e *Entity) Link(mappingID, sourceID string, entityType integration.EntityType, syncedAt time.Time) error {
	if strings.TrimSpace(mappingID) == "" {
		return integration.ErrInvalidMappingID
	}
	if strings.TrimSpace(sourceID) == "" {
		return integration.ErrInvalidSourceID
	}
	if !entityType.IsValid() {
		return integration.ErrInvalidEntityType
	}
	e.MappingID = mappingID
	e.IntegrationSourceID = sourceID
	e.IntegrationType = entityType
	e.LastSyncedAt = &syncedAt
	return nil
}

// Unlink clears the external link. Pinned fields are kept.
func (e *Entity) Unlink() {
	e.MappingID = ""
	e.IntegrationSourceID = ""
	e.IntegrationType = ""
	e.LastSyncedAt = nil
}

// SetParent sets the ancestor the entity inherits unresolved fields from
func (e *Entity) SetParent(parentID *uuid.UUID) error {
	if parentID != nil && *parentID == e.ID {
		return ErrSelfParent
	}
	e.ParentProductID = parentID
	return nil
}

// ---------------------------------------------------------------------------
// Calculations and overrides
// ---------------------------------------------------------------------------

// Calculation returns the formula registered for field
func (e *Entity) Calculation(field string) (integration.Calculation, bool) {
	calc, ok := e.PriceCalculations[field]
	return calc, ok && len(calc) > 0
}

// SetCalculation registers a formula for field, replacing any existing one
func (e *Entity) SetCalculation(field string, calc integration.Calculation) error {
	field = strings.TrimSpace(field)
	if field == "" {
		return ErrInvalidFieldName
	}
	calc = calc.Normalize()
	if err := calc.Validate(); err != nil {
		return err
	}
	if e.PriceCalculations == nil {
		e.PriceCalculations = map[string]integration.Calculation{}
	}
	e.PriceCalculations[field] = calc
	return nil
}

// ClearCalculation removes the formula for field
func (e *Entity) ClearCalculation(field string) {
	delete(e.PriceCalculations, field)
}

// EnableLocalOverride pins field to value
func (e *Entity) EnableLocalOverride(field string, value Value) error {
	field = strings.TrimSpace(field)
	if field == "" {
		return ErrInvalidFieldName
	}
	if e.Attributes == nil {
		e.Attributes = Attributes{}
	}
	e.Attributes[field] = value
	e.LocalFields = e.LocalFields.With(field)
	return nil
}

// ClearLocalOverride unpins field and deletes its raw value
func (e *Entity) ClearLocalOverride(field string) error {
	field = strings.TrimSpace(field)
	if field == "" {
		return ErrInvalidFieldName
	}
	delete(e.Attributes, field)
	e.LocalFields = e.LocalFields.Without(field)
	e.AttributeOverrides = e.AttributeOverrides.Without(field)
	return nil
}

// Option returns the nested option with the given ID
func (e *Entity) Option(id uuid.UUID) (*Option, error) {
	for i := range e.Options {
		if e.Options[i].ID == id {
			return &e.Options[i], nil
		}
	}
	return nil, ErrOptionNotFound
}
