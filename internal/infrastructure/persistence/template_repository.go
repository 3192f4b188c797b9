package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/infrastructure/persistence/models"
	"github.com/signage/backend/internal/infrastructure/persistence/tenant"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTemplateRepository implements catalog.TemplateRepository using GORM
type GormTemplateRepository struct {
	db *gorm.DB
}

// NewGormTemplateRepository creates a new GormTemplateRepository
func NewGormTemplateRepository(db *gorm.DB) *GormTemplateRepository {
	return &GormTemplateRepository{db: db}
}

// FindByID finds a template by ID within the tenant carried by ctx
func (r *GormTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.AttributeTemplate, error) {
	var model models.AttributeTemplateModel
	err := r.db.WithContext(ctx).
		Scopes(tenant.FromContext(ctx)).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrTemplateNotFound
		}
		return nil, err
	}
	return model.ToDomain()
}

// FindDefault returns the template's default for field
func (r *GormTemplateRepository) FindDefault(ctx context.Context, templateID uuid.UUID, field string) (catalog.Value, bool, error) {
	tpl, err := r.FindByID(ctx, templateID)
	if err != nil {
		return catalog.Undefined(), false, err
	}
	value, ok := tpl.Default(field)
	return value, ok, nil
}

// FindMappedFields returns the fields the template maps to external paths
func (r *GormTemplateRepository) FindMappedFields(ctx context.Context, templateID uuid.UUID) ([]string, error) {
	tpl, err := r.FindByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	return tpl.MappedFields(), nil
}

// Save creates or replaces a template
func (r *GormTemplateRepository) Save(ctx context.Context, tpl *catalog.AttributeTemplate) error {
	var model models.AttributeTemplateModel
	if err := model.FromDomain(tpl); err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "fields", "updated_at"}),
		}).
		Create(&model).Error
}

// Ensure GormTemplateRepository implements catalog.TemplateRepository
var _ catalog.TemplateRepository = (*GormTemplateRepository)(nil)
