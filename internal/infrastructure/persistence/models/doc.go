// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer pure and free
// from ORM concerns.
//
// Structure:
//   - base.go: shared identity and bookkeeping columns
//   - entity.go: products and categories with their linkage metadata
//   - external_record.go: rows mirrored from the external catalogs
//   - template.go: attribute templates
package models
