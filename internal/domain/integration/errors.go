package integration

import "errors"

var (
	// Record errors
	ErrRecordNotFound    = errors.New("integration: external record not found")
	ErrInvalidEntityType = errors.New("integration: invalid external entity type")

	// Link errors
	ErrMappingNotFound  = errors.New("integration: mapping not found in external catalog")
	ErrParentNotLinked  = errors.New("integration: parent product is not linked to an integration source")
	ErrEntityNotLinked  = errors.New("integration: entity is not linked to an integration source")
	ErrInvalidMappingID = errors.New("integration: mapping ID cannot be empty")
	ErrInvalidSourceID  = errors.New("integration: integration source ID cannot be empty")

	// Calculation errors
	ErrInvalidCalculation = errors.New("integration: invalid calculation")
	ErrInvalidOperation   = errors.New("integration: invalid calculation operation")

	// Field mapping errors
	ErrInvalidFieldMapping = errors.New("integration: field mapping requires a field path")
)
