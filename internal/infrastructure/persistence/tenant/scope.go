// Package tenant provides multi-tenant database scoping for GORM.
//
// The tenant ID travels in the request context (see logger.WithTenantID). When
// present, repositories restrict every query to rows of that tenant:
//
//	db.WithContext(ctx).Scopes(tenant.FromContext(ctx)).First(&entity, "id = ?", id)
package tenant

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/signage/backend/internal/infrastructure/logger"
	"gorm.io/gorm"
)

// ErrInvalidTenantID is returned when the context carries a malformed tenant ID
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

// Column is the tenant column filtered on
const Column = "tenant_id"

// TenantScope applies tenant filtering to GORM queries
func TenantScope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(Column+" = ?", tenantID)
	}
}

// FromContext returns a scope filtering on the tenant carried by ctx. Without a
// tenant in ctx the query is left unscoped; a malformed tenant ID fails the query.
func FromContext(ctx context.Context) func(db *gorm.DB) *gorm.DB {
	raw := logger.GetTenantID(ctx)
	return func(db *gorm.DB) *gorm.DB {
		if raw == "" {
			return db
		}
		tenantID, err := uuid.Parse(raw)
		if err != nil {
			_ = db.AddError(ErrInvalidTenantID)
			return db
		}
		return db.Where(Column+" = ?", tenantID)
	}
}
