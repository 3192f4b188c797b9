package integration

import (
	"context"
	"errors"
	"slices"

	"github.com/google/uuid"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/logger"
	"github.com/signage/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// DefaultMaxParentDepth bounds parent inheritance chains
const DefaultMaxParentDepth = 8

// EntityCache holds entities loaded by ID for the life of the process
type EntityCache interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Entity, bool)
	Set(ctx context.Context, entity *catalog.Entity)
	Clear(ctx context.Context)
}

// ResolverConfig contains configuration for value resolution
type ResolverConfig struct {
	// MaxParentDepth is the longest parent chain followed before giving up
	MaxParentDepth int

	// SelfResolvingFields are composite fields returned as their raw local value
	SelfResolvingFields []string
}

// DefaultResolverConfig returns default configuration
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		MaxParentDepth:      DefaultMaxParentDepth,
		SelfResolvingFields: []string{catalog.FieldOptions},
	}
}

// Resolver decides the current value of entity fields. Resolution never fails
// for missing data; each unavailable tier falls through to the next one.
type Resolver struct {
	entities    catalog.EntityRepository
	templates   catalog.TemplateRepository
	fetcher     *Fetcher
	evaluator   *Evaluator
	entityCache EntityCache
	config      ResolverConfig
	recorder    Recorder
	logger      *zap.Logger
}

// ResolverOption configures a Resolver
type ResolverOption func(*Resolver)

// WithResolverConfig overrides the resolver configuration
func WithResolverConfig(cfg ResolverConfig) ResolverOption {
	return func(r *Resolver) {
		if cfg.MaxParentDepth <= 0 {
			cfg.MaxParentDepth = DefaultMaxParentDepth
		}
		if cfg.SelfResolvingFields == nil {
			cfg.SelfResolvingFields = []string{catalog.FieldOptions}
		}
		r.config = cfg
	}
}

// WithResolverLogger sets the logger
func WithResolverLogger(logger *zap.Logger) ResolverOption {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithResolverRecorder sets the metrics recorder
func WithResolverRecorder(recorder Recorder) ResolverOption {
	return func(r *Resolver) {
		r.recorder = recorder
	}
}

// NewResolver creates a value resolver
func NewResolver(
	entities catalog.EntityRepository,
	templates catalog.TemplateRepository,
	fetcher *Fetcher,
	entityCache EntityCache,
	opts ...ResolverOption,
) *Resolver {
	r := &Resolver{
		entities:    entities,
		templates:   templates,
		fetcher:     fetcher,
		entityCache: entityCache,
		config:      DefaultResolverConfig(),
		recorder:    noopRecorder{},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.evaluator = NewEvaluator(fetcher, r.logger)
	return r
}

// Evaluator returns the calculation evaluator used by the resolver
func (r *Resolver) Evaluator() *Evaluator {
	return r.evaluator
}

// ---------------------------------------------------------------------------
// Entity fields
// ---------------------------------------------------------------------------

// ResolveField returns the value of field on entity. The first matching tier wins:
// self-resolving field, local override, calculation, external link, parent,
// template default, raw attribute.
func (r *Resolver) ResolveField(ctx context.Context, entity *catalog.Entity, field string) ResolvedValue {
	ctx, span := telemetry.StartServiceSpan(ctx, "resolver", "resolve_field",
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, entity.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrField, field),
	)
	defer span.End()

	result := r.resolve(ctx, entity, field, []uuid.UUID{entity.ID})

	telemetry.SetAttributes(span, telemetry.SpanAttrValueSource, result.Source.String())
	r.recorder.RecordResolution(ctx, result.Source)
	return result
}

// ResolveAllFields resolves every attribute, pinned and calculated field of the
// entity one at a time. Self-resolving fields are skipped. The entity is not modified.
func (r *Resolver) ResolveAllFields(ctx context.Context, entity *catalog.Entity) map[string]ResolvedValue {
	fields := entity.FieldNames()
	ctx, span := telemetry.StartServiceSpan(ctx, "resolver", "resolve_all_fields",
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, entity.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrFieldsCount, len(fields)),
	)
	defer span.End()

	results := make(map[string]ResolvedValue, len(fields))
	for _, field := range fields {
		if r.isSelfResolving(field) {
			continue
		}
		results[field] = r.ResolveField(ctx, entity, field)
	}
	return results
}

// ResolveByID loads the entity through the entity cache and resolves field.
// Only entity load failures are returned.
func (r *Resolver) ResolveByID(ctx context.Context, entityID uuid.UUID, field string) (ResolvedValue, error) {
	entity, err := r.LoadEntity(ctx, entityID)
	if err != nil {
		return ResolvedValue{}, err
	}
	return r.ResolveField(ctx, entity, field), nil
}

// ResolveAllByID loads the entity through the entity cache and resolves all fields
func (r *Resolver) ResolveAllByID(ctx context.Context, entityID uuid.UUID) (map[string]ResolvedValue, error) {
	entity, err := r.LoadEntity(ctx, entityID)
	if err != nil {
		return nil, err
	}
	return r.ResolveAllFields(ctx, entity), nil
}

func (r *Resolver) resolve(ctx context.Context, entity *catalog.Entity, field string, chain []uuid.UUID) ResolvedValue {
	if r.isSelfResolving(field) {
		return localValue(entity.LocalValue(field))
	}

	if entity.IsOverridden(field) {
		return localValue(entity.LocalValue(field))
	}

	if calc, ok := entity.Calculation(field); ok {
		value := r.evaluator.Evaluate(ctx, calc, entity.IntegrationSourceID)
		return ResolvedValue{
			Value:  catalog.Number(value),
			Source: SourceCalculated,
			Details: &ResolutionDetails{
				IntegrationSourceID: entity.IntegrationSourceID,
				Formula:             calc.Formula(),
				Calculation:         calc,
			},
		}
	}

	if entity.IsLinked() {
		if result, ok := r.resolveFromLink(ctx, entity, field); ok {
			return result
		}
	}

	if entity.ParentProductID != nil {
		if result, ok := r.resolveFromParent(ctx, entity, field, chain); ok {
			return result
		}
	}

	if entity.AttributeTemplateID != nil {
		if result, ok := r.resolveFromTemplate(ctx, *entity.AttributeTemplateID, field); ok {
			return result
		}
	}

	return ResolvedValue{Value: entity.LocalValue(field), Source: SourceDefault}
}

func (r *Resolver) resolveFromLink(ctx context.Context, entity *catalog.Entity, field string) (ResolvedValue, bool) {
	path := field
	if mapping, ok := entity.Linkage().MappingFor(field); ok {
		path = mapping.FieldPath
	}

	key := entity.LinkKey()
	value, ok := r.fetcher.FetchField(ctx, key, path)
	if !ok {
		r.logger.Debug("Linked value unavailable, falling through",
			logger.EntityID(entity.ID),
			logger.FieldName(field),
			logger.RecordKey(key),
		)
		return ResolvedValue{}, false
	}

	return ResolvedValue{
		Value:  value,
		Source: SourceAPI,
		Details: &ResolutionDetails{
			MappingID:           entity.MappingID,
			IntegrationSourceID: entity.IntegrationSourceID,
			EntityType:          key.EntityType,
			FieldPath:           path,
			LastSyncedAt:        entity.LastSyncedAt,
		},
	}, true
}

func (r *Resolver) resolveFromParent(ctx context.Context, entity *catalog.Entity, field string, chain []uuid.UUID) (ResolvedValue, bool) {
	parentID := *entity.ParentProductID
	logFields := []zap.Field{
		logger.EntityID(entity.ID),
		logger.ParentID(parentID),
		logger.FieldName(field),
	}

	if len(chain) > r.config.MaxParentDepth {
		r.logger.Debug("Parent chain too deep, falling through", append(logFields, zap.Int("depth", len(chain)))...)
		return ResolvedValue{}, false
	}
	if slices.Contains(chain, parentID) {
		r.logger.Warn("Parent cycle detected, falling through", logFields...)
		return ResolvedValue{}, false
	}

	parent, err := r.LoadEntity(ctx, parentID)
	if err != nil {
		if !errors.Is(err, catalog.ErrEntityNotFound) {
			r.logger.Warn("Failed to load parent entity", append(logFields, zap.Error(err))...)
		}
		return ResolvedValue{}, false
	}

	// An undefined inherited value degrades to the template and local tiers
	// instead of masking the entity's own value.
	inherited := r.resolve(ctx, parent, field, append(slices.Clone(chain), parentID))
	if !inherited.Value.IsDefined() {
		return ResolvedValue{}, false
	}

	return ResolvedValue{
		Value:  inherited.Value,
		Source: SourceParent,
		Details: &ResolutionDetails{
			ParentProductID: &parentID,
			Inherited:       &inherited,
		},
	}, true
}

func (r *Resolver) resolveFromTemplate(ctx context.Context, templateID uuid.UUID, field string) (ResolvedValue, bool) {
	value, ok, err := r.templates.FindDefault(ctx, templateID, field)
	if err != nil {
		if !errors.Is(err, catalog.ErrTemplateNotFound) {
			r.logger.Warn("Failed to read template default",
				logger.TemplateID(templateID),
				logger.FieldName(field),
				zap.Error(err),
			)
		}
		return ResolvedValue{}, false
	}
	if !ok || !value.IsDefined() {
		return ResolvedValue{}, false
	}

	id := templateID
	return ResolvedValue{
		Value:   value,
		Source:  SourceTemplate,
		Details: &ResolutionDetails{TemplateID: &id},
	}, true
}

// ---------------------------------------------------------------------------
// Option fields
// ---------------------------------------------------------------------------

// ResolveOptionField returns the value of an option field. Options resolve
// locally unless they carry their own link; the product's link is only used
// to name the integration source.
func (r *Resolver) ResolveOptionField(ctx context.Context, product *catalog.Entity, option *catalog.Option, field string) ResolvedValue {
	ctx, span := telemetry.StartServiceSpan(ctx, "resolver", "resolve_option_field",
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, product.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrOptionID, option.ID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrField, field),
	)
	defer span.End()

	result := r.resolveOption(ctx, product, option, field)

	telemetry.SetAttributes(span, telemetry.SpanAttrValueSource, result.Source.String())
	r.recorder.RecordResolution(ctx, result.Source)
	return result
}

// ResolveOptionByID loads the product and resolves a field of one of its options
func (r *Resolver) ResolveOptionByID(ctx context.Context, productID, optionID uuid.UUID, field string) (ResolvedValue, error) {
	product, err := r.LoadEntity(ctx, productID)
	if err != nil {
		return ResolvedValue{}, err
	}
	option, err := product.Option(optionID)
	if err != nil {
		return ResolvedValue{}, err
	}
	return r.ResolveOptionField(ctx, product, option, field), nil
}

func (r *Resolver) resolveOption(ctx context.Context, product *catalog.Entity, option *catalog.Option, field string) ResolvedValue {
	if option.IsLocalField(field) || !option.IsLinked() {
		return localValue(option.LocalValue(field))
	}

	link := option.Link
	switch link.Type {
	case catalog.OptionLinkCalculated:
		if field != integration.FieldPrice {
			return localValue(option.LocalValue(field))
		}
		if link.Override {
			price := option.Price
			if link.OverridePrice != nil {
				price = *link.OverridePrice
			}
			return ResolvedValue{
				Value:   catalog.Number(price),
				Source:  SourceLocal,
				Details: &ResolutionDetails{Override: true, Formula: link.Calculation.Formula()},
			}
		}
		value := r.evaluator.Evaluate(ctx, link.Calculation, product.IntegrationSourceID)
		return ResolvedValue{
			Value:  catalog.Number(value),
			Source: SourceCalculated,
			Details: &ResolutionDetails{
				IntegrationSourceID: product.IntegrationSourceID,
				Formula:             link.Calculation.Formula(),
				Calculation:         link.Calculation,
			},
		}

	case catalog.OptionLinkDirect:
		key := integration.RecordKey{
			SourceID:   product.IntegrationSourceID,
			EntityType: link.EntityType,
			MappingID:  link.MappingID,
		}
		if value, ok := r.fetcher.FetchField(ctx, key, field); ok {
			return ResolvedValue{
				Value:  value,
				Source: SourceAPI,
				Details: &ResolutionDetails{
					MappingID:           link.MappingID,
					IntegrationSourceID: product.IntegrationSourceID,
					EntityType:          link.EntityType,
					FieldPath:           field,
				},
			}
		}
	}

	return localValue(option.LocalValue(field))
}

// ---------------------------------------------------------------------------
// Sync status and caches
// ---------------------------------------------------------------------------

// Linkage returns the entity's sync metadata including template-level mappings
func (r *Resolver) Linkage(ctx context.Context, entity *catalog.Entity) integration.LinkageState {
	state := entity.Linkage()
	if entity.AttributeTemplateID == nil {
		return state
	}
	fields, err := r.templates.FindMappedFields(ctx, *entity.AttributeTemplateID)
	if err != nil {
		if !errors.Is(err, catalog.ErrTemplateNotFound) {
			r.logger.Warn("Failed to read template mappings",
				logger.TemplateID(*entity.AttributeTemplateID),
				zap.Error(err),
			)
		}
		return state
	}
	return state.WithTemplateMappings(fields)
}

// SyncStatus describes the sync predicates of one field
func (r *Resolver) SyncStatus(ctx context.Context, entity *catalog.Entity, field string) integration.FieldSyncStatus {
	return r.Linkage(ctx, entity).Describe(field)
}

// LoadEntity returns the entity from the entity cache, loading it on a miss.
// Cached entities of another tenant are reloaded so the repository scope applies.
func (r *Resolver) LoadEntity(ctx context.Context, id uuid.UUID) (*catalog.Entity, error) {
	if entity, ok := r.entityCache.Get(ctx, id); ok && visibleTo(ctx, entity) {
		return entity, nil
	}
	entity, err := r.entities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.entityCache.Set(ctx, entity)
	return entity, nil
}

// ClearCache drops the external record cache and the entity cache
func (r *Resolver) ClearCache(ctx context.Context) error {
	r.entityCache.Clear(ctx)
	return r.fetcher.Clear(ctx)
}

func visibleTo(ctx context.Context, entity *catalog.Entity) bool {
	tenantID := logger.GetTenantID(ctx)
	return tenantID == "" || tenantID == entity.TenantID.String()
}

func (r *Resolver) isSelfResolving(field string) bool {
	return slices.Contains(r.config.SelfResolvingFields, field)
}
