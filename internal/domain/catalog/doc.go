// Package catalog contains the catalog entities whose fields the engine resolves:
// products, categories and the options nested inside products. Each entity
// carries an open attribute bag of typed values plus the linkage-control
// columns (local fields, overrides, disabled sync fields, calculations,
// field mappings and the external link) written back after user actions.
package catalog
