package catalog

import (
	"context"

	"github.com/google/uuid"
)

// EntityRepository defines the interface for entity persistence
type EntityRepository interface {
	// FindByID finds an entity by its ID; returns ErrEntityNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*Entity, error)

	// Save writes the entity's attributes and linkage columns
	Save(ctx context.Context, entity *Entity) error
}

// TemplateRepository defines the read interface over attribute templates
type TemplateRepository interface {
	// FindByID finds a template; returns ErrTemplateNotFound when absent
	FindByID(ctx context.Context, id uuid.UUID) (*AttributeTemplate, error)

	// FindDefault returns the template's default for a field, false when none
	FindDefault(ctx context.Context, templateID uuid.UUID, field string) (Value, bool, error)

	// FindMappedFields returns the fields the template maps to external paths
	FindMappedFields(ctx context.Context, templateID uuid.UUID) ([]string, error)
}
