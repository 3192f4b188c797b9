package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/shared"
	"github.com/signage/backend/internal/infrastructure/persistence/models"
	"github.com/signage/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
)

// GormEntityRepository implements catalog.EntityRepository using GORM
type GormEntityRepository struct {
	db *gorm.DB
}

// NewGormEntityRepository creates a new GormEntityRepository
func NewGormEntityRepository(db *gorm.DB) *GormEntityRepository {
	return &GormEntityRepository{db: db}
}

// FindByID finds an entity by ID within the tenant carried by ctx
func (r *GormEntityRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Entity, error) {
	var model models.EntityModel
	err := r.db.WithContext(ctx).
		Scopes(tenant.FromContext(ctx)).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrEntityNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// Save inserts an entity at version 1 and otherwise updates it under an
// optimistic lock on the previous version. Every column is written so cleared
// link fields are persisted.
func (r *GormEntityRepository) Save(ctx context.Context, entity *catalog.Entity) error {
	model, err := models.EntityModelFromDomain(entity)
	if err != nil {
		return err
	}

	if entity.Version <= 1 {
		return r.db.WithContext(ctx).Create(model).Error
	}

	result := r.db.WithContext(ctx).
		Model(&models.EntityModel{}).
		Scopes(tenant.FromContext(ctx)).
		Where("id = ? AND version = ?", entity.ID, entity.Version-1).
		Select("*").
		Omit("id", "tenant_id", "created_at").
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Ensure GormEntityRepository implements catalog.EntityRepository
var _ catalog.EntityRepository = (*GormEntityRepository)(nil)
