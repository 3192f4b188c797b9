package integration

import (
	"time"

	"github.com/google/uuid"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
)

// Source names the precedence tier that supplied a resolved value
type Source string

const (
	SourceLocal      Source = "local"
	SourceAPI        Source = "api"
	SourceCalculated Source = "calculated"
	SourceParent     Source = "parent"
	SourceTemplate   Source = "template"
	SourceDefault    Source = "default"
)

// String returns the string representation
func (s Source) String() string {
	return string(s)
}

// ResolvedValue is the final value of a field with its provenance
type ResolvedValue struct {
	Value   catalog.Value      `json:"value"`
	Source  Source             `json:"source"`
	Details *ResolutionDetails `json:"details,omitempty"`
}

// ResolutionDetails explains where a resolved value came from
type ResolutionDetails struct {
	MappingID           string                  `json:"mapping_id,omitempty"`
	IntegrationSourceID string                  `json:"integration_source_id,omitempty"`
	EntityType          integration.EntityType  `json:"entity_type,omitempty"`
	FieldPath           string                  `json:"field_path,omitempty"`
	LastSyncedAt        *time.Time              `json:"last_synced_at,omitempty"`
	ParentProductID     *uuid.UUID              `json:"parent_product_id,omitempty"`
	Inherited           *ResolvedValue          `json:"inherited,omitempty"`
	TemplateID          *uuid.UUID              `json:"template_id,omitempty"`
	Formula             string                  `json:"formula,omitempty"`
	Calculation         integration.Calculation `json:"calculation,omitempty"`
	Override            bool                    `json:"override,omitempty"`
}

// AncestorIDs walks the inherited chain and returns every parent ID, nearest first
func (r ResolvedValue) AncestorIDs() []uuid.UUID {
	var ids []uuid.UUID
	current := &r
	for current != nil && current.Details != nil && current.Details.ParentProductID != nil {
		ids = append(ids, *current.Details.ParentProductID)
		current = current.Details.Inherited
	}
	return ids
}

// Origin returns the innermost resolved value of an inherited chain
func (r ResolvedValue) Origin() ResolvedValue {
	current := r
	for current.Source == SourceParent && current.Details != nil && current.Details.Inherited != nil {
		current = *current.Details.Inherited
	}
	return current
}

func localValue(v catalog.Value) ResolvedValue {
	return ResolvedValue{Value: v, Source: SourceLocal}
}
