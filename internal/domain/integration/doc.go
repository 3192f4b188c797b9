// Package integration contains the Integration bounded context.
// It describes how catalog entities are tied to records in external catalogs
// and how individual fields move between synced and locally controlled modes.
//
// Key concepts:
//   - ExternalRecord: a product, modifier or discount mirrored from an integration source
//   - Calculation: an ordered formula over fields of several external records
//   - LinkageState: the per-entity sync metadata (mappings, overrides, disabled fields)
//   - SyncState: the derived status of one field (linked-active, linked-inactive, locally-applied, none)
//
// Design Pattern: Ports & Adapters
//   - Ports (ExternalCatalog, RecordCache) are defined here in the domain layer
//   - Adapters (GORM, Redis, in-memory) are in the infrastructure layer
package integration
