package integration

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Requests
// ---------------------------------------------------------------------------

// LinkEntityRequest represents a request to link an entity to an external record
type LinkEntityRequest struct {
	MappingID           string `json:"mapping_id" binding:"required,max=255"`
	IntegrationSourceID string `json:"integration_source_id" binding:"required,max=255"`
	EntityType          string `json:"entity_type" binding:"omitempty,oneof=product modifier discount"`
}

// LinkOptionRequest represents a request to link an option to an external record
type LinkOptionRequest struct {
	MappingID  string `json:"mapping_id" binding:"required,max=255"`
	EntityType string `json:"entity_type" binding:"omitempty,oneof=product modifier discount"`
}

// CalculationPartRequest represents one calculation term
type CalculationPartRequest struct {
	MappingID  string `json:"mapping_id" binding:"required,max=255"`
	EntityType string `json:"entity_type" binding:"omitempty,oneof=product modifier discount"`
	FieldPath  string `json:"field_path" binding:"required,max=255"`
	Operation  string `json:"operation" binding:"required,oneof=add subtract multiply divide"`
}

// SetCalculationRequest represents a request to register a calculation
type SetCalculationRequest struct {
	Parts []CalculationPartRequest `json:"parts" binding:"required,min=1,dive"`
}

// ToCalculation converts the request into a domain calculation
func (r SetCalculationRequest) ToCalculation() integration.Calculation {
	calc := make(integration.Calculation, len(r.Parts))
	for i, p := range r.Parts {
		calc[i] = integration.CalculationPart{
			Reference: integration.ExternalReference{
				MappingID:  p.MappingID,
				EntityType: integration.EntityType(p.EntityType),
			},
			FieldPath: p.FieldPath,
			Operation: integration.Operation(p.Operation),
		}
	}
	return calc
}

// CalculationOverrideRequest represents a request to freeze an option price
type CalculationOverrideRequest struct {
	Price *decimal.Decimal `json:"price" binding:"required"`
}

// LocalOverrideRequest represents a request to pin a field to a value
type LocalOverrideRequest struct {
	Value json.RawMessage `json:"value" binding:"required"`
}

// ToValue decodes the requested value
func (r LocalOverrideRequest) ToValue() (catalog.Value, error) {
	var v catalog.Value
	if err := json.Unmarshal(r.Value, &v); err != nil {
		return catalog.Undefined(), err
	}
	return v, nil
}

// FieldMappingRequest represents a field-level mapping
type FieldMappingRequest struct {
	SourceID  string `json:"source_id" binding:"max=255"`
	FieldPath string `json:"field_path" binding:"required,max=255"`
}

// RemoveFieldMappingRequest selects the mapping to remove; empty removes all
type RemoveFieldMappingRequest struct {
	SourceID  string `json:"source_id" binding:"max=255"`
	FieldPath string `json:"field_path" binding:"max=255"`
}

// SwitchActiveSourceRequest represents a request to change the active source
type SwitchActiveSourceRequest struct {
	IntegrationSourceID string `json:"integration_source_id" binding:"max=255"`
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

// ResolvedFieldResponse represents one resolved field in API responses
type ResolvedFieldResponse struct {
	EntityID   uuid.UUID                    `json:"entity_id"`
	OptionID   *uuid.UUID                   `json:"option_id,omitempty"`
	Field      string                       `json:"field"`
	Value      catalog.Value                `json:"value"`
	Source     Source                       `json:"source"`
	Details    *ResolutionDetails           `json:"details,omitempty"`
	SyncStatus *integration.FieldSyncStatus `json:"sync_status,omitempty"`

	// Set only for inherited values
	OriginSource Source      `json:"origin_source,omitempty"`
	AncestorIDs  []uuid.UUID `json:"ancestor_ids,omitempty"`
}

// NewResolvedFieldResponse builds the response for one resolved field. An
// inherited value also reports the tier it came from and the parents it
// passed through.
func NewResolvedFieldResponse(entityID uuid.UUID, optionID *uuid.UUID, field string, resolved ResolvedValue) ResolvedFieldResponse {
	resp := ResolvedFieldResponse{
		EntityID: entityID,
		OptionID: optionID,
		Field:    field,
		Value:    resolved.Value,
		Source:   resolved.Source,
		Details:  resolved.Details,
	}
	if resolved.Source == SourceParent {
		resp.OriginSource = resolved.Origin().Source
		resp.AncestorIDs = resolved.AncestorIDs()
	}
	return resp
}

// EntityFieldsResponse represents every resolved field of an entity
type EntityFieldsResponse struct {
	EntityID uuid.UUID                `json:"entity_id"`
	Fields   map[string]ResolvedValue `json:"fields"`
}

// OptionResponse represents an option in API responses
type OptionResponse struct {
	ID          uuid.UUID           `json:"id"`
	Name        string              `json:"name"`
	Price       decimal.Decimal     `json:"price"`
	LocalFields []string            `json:"local_fields"`
	Link        *catalog.OptionLink `json:"link,omitempty"`
}

// EntityLinkageResponse represents the linkage columns of an entity
type EntityLinkageResponse struct {
	ID                  uuid.UUID                             `json:"id"`
	TenantID            uuid.UUID                             `json:"tenant_id"`
	Kind                catalog.EntityKind                    `json:"kind"`
	Name                string                                `json:"name"`
	MappingID           string                                `json:"mapping_id,omitempty"`
	IntegrationSourceID string                                `json:"integration_source_id,omitempty"`
	IntegrationType     integration.EntityType                `json:"integration_type,omitempty"`
	LastSyncedAt        *time.Time                            `json:"last_synced_at,omitempty"`
	ActiveSourceID      string                                `json:"active_source_id,omitempty"`
	LocalFields         []string                              `json:"local_fields"`
	AttributeOverrides  []string                              `json:"attribute_overrides"`
	DisabledSyncFields  []string                              `json:"disabled_sync_fields"`
	AttributeMappings   map[string][]integration.FieldMapping `json:"attribute_mappings"`
	PriceCalculations   map[string]integration.Calculation    `json:"price_calculations"`
	Options             []OptionResponse                      `json:"options"`
	Version             int                                   `json:"version"`
	UpdatedAt           time.Time                             `json:"updated_at"`
}

// ToEntityLinkageResponse converts an entity to its linkage response
func ToEntityLinkageResponse(e *catalog.Entity) EntityLinkageResponse {
	options := make([]OptionResponse, len(e.Options))
	for i, o := range e.Options {
		options[i] = OptionResponse{
			ID:          o.ID,
			Name:        o.Name,
			Price:       o.Price,
			LocalFields: nonNil(o.LocalFields),
			Link:        o.Link,
		}
	}
	mappings := e.AttributeMappings
	if mappings == nil {
		mappings = map[string][]integration.FieldMapping{}
	}
	calculations := e.PriceCalculations
	if calculations == nil {
		calculations = map[string]integration.Calculation{}
	}
	return EntityLinkageResponse{
		ID:                  e.ID,
		TenantID:            e.TenantID,
		Kind:                e.Kind,
		Name:                e.Name,
		MappingID:           e.MappingID,
		IntegrationSourceID: e.IntegrationSourceID,
		IntegrationType:     e.IntegrationType,
		LastSyncedAt:        e.LastSyncedAt,
		ActiveSourceID:      e.ActiveSourceID,
		LocalFields:         nonNil(e.LocalFields),
		AttributeOverrides:  nonNil(e.AttributeOverrides),
		DisabledSyncFields:  nonNil(e.DisabledSyncFields),
		AttributeMappings:   mappings,
		PriceCalculations:   calculations,
		Options:             options,
		Version:             e.Version,
		UpdatedAt:           e.UpdatedAt,
	}
}

func nonNil(fields integration.FieldSet) []string {
	if fields == nil {
		return []string{}
	}
	return fields
}
