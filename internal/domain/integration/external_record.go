package integration

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// EntityType selects one of the external catalogs
// ---------------------------------------------------------------------------

// EntityType identifies which external catalog a mapping ID belongs to
type EntityType string

const (
	EntityTypeProduct  EntityType = "product"
	EntityTypeModifier EntityType = "modifier"
	EntityTypeDiscount EntityType = "discount"
)

// IsValid returns true if the entity type names a known catalog
func (t EntityType) IsValid() bool {
	switch t {
	case EntityTypeProduct, EntityTypeModifier, EntityTypeDiscount:
		return true
	}
	return false
}

// String returns the string representation
func (t EntityType) String() string {
	return string(t)
}

// AllEntityTypes returns all external catalog types
func AllEntityTypes() []EntityType {
	return []EntityType{EntityTypeProduct, EntityTypeModifier, EntityTypeDiscount}
}

// ParseEntityType parses a string, defaulting an empty value to product
func ParseEntityType(s string) (EntityType, error) {
	if s == "" {
		return EntityTypeProduct, nil
	}
	t := EntityType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidEntityType
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// ExternalRecord
// ---------------------------------------------------------------------------

// Shorthand field names read from record columns instead of the data payload.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldPrice       = "price"
	FieldImageURL    = "image_url"
)

// DataPrefix is the optional prefix for paths into the nested data payload.
const DataPrefix = "data."

// RecordKey identifies one external record. Records are unique per
// (SourceID, EntityType, MappingID).
type RecordKey struct {
	SourceID   string
	EntityType EntityType
	MappingID  string
}

// String renders the key in a stable form used by caches
func (k RecordKey) String() string {
	return k.SourceID + ":" + string(k.EntityType) + ":" + k.MappingID
}

// ExternalRecord is a row mirrored from an external catalog
type ExternalRecord struct {
	MappingID   string
	SourceID    string
	EntityType  EntityType
	Name        string
	Description string
	Price       decimal.NullDecimal
	ImageURL    string
	Data        map[string]any
	SyncedAt    time.Time
}

// Key returns the record's cache key
func (r *ExternalRecord) Key() RecordKey {
	return RecordKey{SourceID: r.SourceID, EntityType: r.EntityType, MappingID: r.MappingID}
}

// IsShorthandField reports whether path names a record column
func IsShorthandField(path string) bool {
	switch path {
	case FieldName, FieldDescription, FieldPrice, FieldImageURL:
		return true
	}
	return false
}

// ShorthandValue reads a record column. Empty columns are reported as absent.
func (r *ExternalRecord) ShorthandValue(field string) (any, bool) {
	switch field {
	case FieldName:
		return r.Name, r.Name != ""
	case FieldDescription:
		return r.Description, r.Description != ""
	case FieldImageURL:
		return r.ImageURL, r.ImageURL != ""
	case FieldPrice:
		if !r.Price.Valid {
			return nil, false
		}
		return r.Price.Decimal, true
	}
	return nil, false
}

// DataPath normalizes a field path into a path relative to the data payload.
// The second result is false when the path addresses the whole payload.
func DataPath(path string) (string, bool) {
	path = strings.TrimSpace(path)
	if path == "data" {
		return "", false
	}
	return strings.TrimPrefix(path, DataPrefix), true
}

// ---------------------------------------------------------------------------
// Ports
// ---------------------------------------------------------------------------

// ExternalCatalog is the read port over the three external catalogs
type ExternalCatalog interface {
	// FindRecord returns ErrRecordNotFound when no row matches the key
	FindRecord(ctx context.Context, key RecordKey) (*ExternalRecord, error)
}

// RecordCache stores fetched external records for the life of the process
type RecordCache interface {
	Get(ctx context.Context, key RecordKey) (*ExternalRecord, bool)
	Set(ctx context.Context, record *ExternalRecord) error
	Clear(ctx context.Context) error
}
