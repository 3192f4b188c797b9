package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is the base interface for all domain entities
type Entity interface {
	GetID() uuid.UUID
	GetTenantID() uuid.UUID
}

// TenantEntity provides the identity and bookkeeping columns shared by every
// tenant-scoped record the engine reads and writes back.
type TenantEntity struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

// GetID returns the entity ID
func (e *TenantEntity) GetID() uuid.UUID {
	return e.ID
}

// GetTenantID returns the owning tenant ID
func (e *TenantEntity) GetTenantID() uuid.UUID {
	return e.TenantID
}

// Touch bumps the version and update timestamp before a write.
func (e *TenantEntity) Touch(now time.Time) {
	e.UpdatedAt = now
	e.Version++
}

// NewTenantEntity creates a tenant entity with a generated ID
func NewTenantEntity(tenantID uuid.UUID) TenantEntity {
	now := time.Now()
	return TenantEntity{
		ID:        uuid.New(),
		TenantID:  tenantID,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}
