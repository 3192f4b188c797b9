package catalog

import "github.com/signage/backend/internal/domain/shared"

// Catalog domain errors
var (
	ErrEntityNotFound      = shared.NewDomainError("ENTITY_NOT_FOUND", "catalog: entity not found")
	ErrOptionNotFound      = shared.NewDomainError("OPTION_NOT_FOUND", "catalog: option not found")
	ErrTemplateNotFound    = shared.NewDomainError("TEMPLATE_NOT_FOUND", "catalog: attribute template not found")
	ErrOptionNotCalculated = shared.NewDomainError("OPTION_NOT_CALCULATED", "catalog: option has no calculated link")
	ErrInvalidEntityKind   = shared.NewDomainError("INVALID_ENTITY_KIND", "catalog: invalid entity kind")
	ErrInvalidFieldName    = shared.NewDomainError("INVALID_FIELD_NAME", "catalog: field name cannot be empty")
	ErrEntityNameRequired  = shared.NewDomainError("INVALID_INPUT", "catalog: entity name cannot be empty")
	ErrSelfParent          = shared.NewDomainError("INVALID_PARENT", "catalog: entity cannot be its own parent")
	ErrNegativePrice       = shared.NewDomainError("INVALID_PRICE", "catalog: price cannot be negative")
)
