package logger

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Field keys shared by the resolver, link service and HTTP handlers
const (
	KeyEntityID   = "entity_id"
	KeyOptionID   = "option_id"
	KeyField      = "field"
	KeySource     = "source"
	KeyMappingID  = "mapping_id"
	KeySourceID   = "integration_source_id"
	KeyRecordKey  = "record_key"
	KeyOperation  = "operation"
	KeyTemplateID = "template_id"
	KeyParentID   = "parent_product_id"
	KeyRequestID  = "request_id"
	KeyTenantID   = "tenant_id"
)

// EntityID tags a log entry with an entity identifier
func EntityID(id uuid.UUID) zap.Field {
	return zap.Stringer(KeyEntityID, id)
}

// OptionID tags a log entry with an option identifier
func OptionID(id uuid.UUID) zap.Field {
	return zap.Stringer(KeyOptionID, id)
}

// TemplateID tags a log entry with an attribute template identifier
func TemplateID(id uuid.UUID) zap.Field {
	return zap.Stringer(KeyTemplateID, id)
}

// ParentID tags a log entry with the parent entity being inherited from
func ParentID(id uuid.UUID) zap.Field {
	return zap.Stringer(KeyParentID, id)
}

// FieldName tags a log entry with the attribute field being resolved
func FieldName(name string) zap.Field {
	return zap.String(KeyField, name)
}

// Source tags a log entry with a resolution source
func Source(source string) zap.Field {
	return zap.String(KeySource, source)
}

// MappingID tags a log entry with an external record identifier
func MappingID(id string) zap.Field {
	return zap.String(KeyMappingID, id)
}

// SourceID tags a log entry with an integration source identifier
func SourceID(id string) zap.Field {
	return zap.String(KeySourceID, id)
}

// RecordKey tags a log entry with a composite external record key
func RecordKey(key fmt.Stringer) zap.Field {
	return zap.Stringer(KeyRecordKey, key)
}

// Operation tags a log entry with the name of a write operation
func Operation(op string) zap.Field {
	return zap.String(KeyOperation, op)
}
