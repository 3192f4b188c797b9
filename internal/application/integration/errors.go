package integration

import (
	"errors"

	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/domain/shared"
)

// validationErrors are the named failures callers are expected to act on
var validationErrors = []error{
	catalog.ErrEntityNotFound,
	catalog.ErrOptionNotFound,
	catalog.ErrOptionNotCalculated,
	catalog.ErrInvalidFieldName,
	catalog.ErrNegativePrice,
	integration.ErrMappingNotFound,
	integration.ErrParentNotLinked,
	integration.ErrEntityNotLinked,
	integration.ErrInvalidCalculation,
	integration.ErrInvalidEntityType,
	integration.ErrInvalidMappingID,
	integration.ErrInvalidSourceID,
	integration.ErrInvalidFieldMapping,
}

// IsValidationError reports whether err is a named validation failure rather
// than a storage or infrastructure error
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	var domainErr *shared.DomainError
	return errors.As(err, &domainErr)
}

// FailureReason returns a low-cardinality label for err
func FailureReason(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, catalog.ErrEntityNotFound):
		return "entity_not_found"
	case errors.Is(err, catalog.ErrOptionNotFound):
		return "option_not_found"
	case errors.Is(err, catalog.ErrOptionNotCalculated):
		return "option_not_calculated"
	case errors.Is(err, integration.ErrMappingNotFound):
		return "mapping_not_found"
	case errors.Is(err, integration.ErrParentNotLinked):
		return "parent_not_linked"
	case errors.Is(err, integration.ErrEntityNotLinked):
		return "entity_not_linked"
	case errors.Is(err, integration.ErrInvalidCalculation):
		return "invalid_calculation"
	case IsValidationError(err):
		return "invalid_input"
	}
	return "internal"
}
