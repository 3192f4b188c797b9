package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/logger"
	"github.com/signage/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// CacheInvalidator clears resolver caches after a write
type CacheInvalidator interface {
	ClearCache(ctx context.Context) error
}

// LinkService changes the persisted linkage of entities and options. Every
// operation is a single load, validate, mutate, save sequence; a failed
// validation performs no write.
type LinkService struct {
	entities    catalog.EntityRepository
	fetcher     *Fetcher
	invalidator CacheInvalidator
	recorder    Recorder
	logger      *zap.Logger
	now         func() time.Time
}

// LinkServiceOption configures a LinkService
type LinkServiceOption func(*LinkService)

// WithLinkServiceLogger sets the logger
func WithLinkServiceLogger(logger *zap.Logger) LinkServiceOption {
	return func(s *LinkService) {
		s.logger = logger
	}
}

// WithLinkServiceRecorder sets the metrics recorder
func WithLinkServiceRecorder(recorder Recorder) LinkServiceOption {
	return func(s *LinkService) {
		s.recorder = recorder
	}
}

// WithClock overrides the time source used for sync timestamps
func WithClock(now func() time.Time) LinkServiceOption {
	return func(s *LinkService) {
		s.now = now
	}
}

// NewLinkService creates a link service
func NewLinkService(
	entities catalog.EntityRepository,
	fetcher *Fetcher,
	invalidator CacheInvalidator,
	opts ...LinkServiceOption,
) *LinkService {
	s := &LinkService{
		entities:    entities,
		fetcher:     fetcher,
		invalidator: invalidator,
		recorder:    noopRecorder{},
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ---------------------------------------------------------------------------
// Entity links
// ---------------------------------------------------------------------------

// LinkEntity links an entity to an external record after checking the record exists
func (s *LinkService) LinkEntity(
	ctx context.Context,
	entityID uuid.UUID,
	mappingID string,
	sourceID string,
	entityType integration.EntityType,
) (*catalog.Entity, error) {
	return s.mutate(ctx, "link_entity", entityID, func(ctx context.Context, entity *catalog.Entity) error {
		if !entityType.IsValid() {
			return integration.ErrInvalidEntityType
		}
		key := integration.RecordKey{SourceID: sourceID, EntityType: entityType, MappingID: mappingID}
		if err := s.requireRecord(ctx, key); err != nil {
			return err
		}
		return entity.Link(mappingID, sourceID, entityType, s.now())
	})
}

// UnlinkEntity clears the entity link. Local overrides are kept.
func (s *LinkService) UnlinkEntity(ctx context.Context, entityID uuid.UUID) (*catalog.Entity, error) {
	return s.mutate(ctx, "unlink_entity", entityID, func(_ context.Context, entity *catalog.Entity) error {
		entity.Unlink()
		return nil
	})
}

// ---------------------------------------------------------------------------
// Option links
// ---------------------------------------------------------------------------

// LinkOption links an option to a record in its product's integration source
// and copies the record's name and price into the option
func (s *LinkService) LinkOption(
	ctx context.Context,
	productID uuid.UUID,
	optionID uuid.UUID,
	mappingID string,
	entityType integration.EntityType,
) (*catalog.Entity, error) {
	return s.mutate(ctx, "link_option", productID, func(ctx context.Context, product *catalog.Entity) error {
		option, err := product.Option(optionID)
		if err != nil {
			return err
		}
		if !product.IsLinked() {
			return integration.ErrParentNotLinked
		}
		if !entityType.IsValid() {
			return integration.ErrInvalidEntityType
		}
		key := integration.RecordKey{
			SourceID:   product.IntegrationSourceID,
			EntityType: entityType,
			MappingID:  mappingID,
		}
		record, err := s.lookupRecord(ctx, key)
		if err != nil {
			return err
		}
		return option.LinkDirect(mappingID, entityType, record.Name, record.Price)
	})
}

// UnlinkOption drops the option link; its last synced values remain as local data
func (s *LinkService) UnlinkOption(ctx context.Context, productID, optionID uuid.UUID) (*catalog.Entity, error) {
	return s.mutateOption(ctx, "unlink_option", productID, optionID, func(option *catalog.Option) error {
		option.Unlink()
		return nil
	})
}

// ---------------------------------------------------------------------------
// Calculations
// ---------------------------------------------------------------------------

// SetCalculation registers a formula for an entity field. It does not recompute values.
func (s *LinkService) SetCalculation(ctx context.Context, entityID uuid.UUID, field string, calc integration.Calculation) (*catalog.Entity, error) {
	return s.mutate(ctx, "set_calculation", entityID, func(_ context.Context, entity *catalog.Entity) error {
		if err := s.validateCalculationPaths(calc); err != nil {
			return err
		}
		return entity.SetCalculation(field, calc)
	})
}

// ClearCalculation removes the formula of an entity field
func (s *LinkService) ClearCalculation(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error) {
	return s.mutate(ctx, "clear_calculation", entityID, func(_ context.Context, entity *catalog.Entity) error {
		field, err := requireField(field)
		if err != nil {
			return err
		}
		entity.ClearCalculation(field)
		return nil
	})
}

// SetOptionCalculation attaches a calculated link to an option
func (s *LinkService) SetOptionCalculation(ctx context.Context, productID, optionID uuid.UUID, calc integration.Calculation) (*catalog.Entity, error) {
	return s.mutateOption(ctx, "set_option_calculation", productID, optionID, func(option *catalog.Option) error {
		if err := s.validateCalculationPaths(calc); err != nil {
			return err
		}
		return option.SetCalculation(calc)
	})
}

// SetCalculationOverride freezes a calculated option at a fixed price
func (s *LinkService) SetCalculationOverride(ctx context.Context, productID, optionID uuid.UUID, fixedPrice decimal.Decimal) (*catalog.Entity, error) {
	return s.mutateOption(ctx, "set_calculation_override", productID, optionID, func(option *catalog.Option) error {
		return option.SetCalculationOverride(fixedPrice)
	})
}

// ClearCalculationOverride returns a calculated option to live calculation
func (s *LinkService) ClearCalculationOverride(ctx context.Context, productID, optionID uuid.UUID) (*catalog.Entity, error) {
	return s.mutateOption(ctx, "clear_calculation_override", productID, optionID, func(option *catalog.Option) error {
		return option.ClearCalculationOverride()
	})
}

// ---------------------------------------------------------------------------
// Local overrides and sync toggles
// ---------------------------------------------------------------------------

// EnableLocalOverride pins a field to a manually entered value
func (s *LinkService) EnableLocalOverride(ctx context.Context, entityID uuid.UUID, field string, value catalog.Value) (*catalog.Entity, error) {
	return s.mutate(ctx, "enable_local_override", entityID, func(_ context.Context, entity *catalog.Entity) error {
		return entity.EnableLocalOverride(field, value)
	})
}

// ClearLocalOverride unpins a field and deletes its manual value
func (s *LinkService) ClearLocalOverride(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error) {
	return s.mutate(ctx, "clear_local_override", entityID, func(_ context.Context, entity *catalog.Entity) error {
		return entity.ClearLocalOverride(field)
	})
}

// EnableSync resumes sync for a field
func (s *LinkService) EnableSync(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error) {
	return s.transition(ctx, "enable_sync", entityID, field, func(state integration.LinkageState, field string) (integration.LinkageState, error) {
		return state.EnableSync(field), nil
	})
}

// DisableSync pauses sync for a field and marks it overridden
func (s *LinkService) DisableSync(ctx context.Context, entityID uuid.UUID, field string) (*catalog.Entity, error) {
	return s.transition(ctx, "disable_sync", entityID, field, func(state integration.LinkageState, field string) (integration.LinkageState, error) {
		return state.DisableSync(field), nil
	})
}

// AddFieldMapping maps a field to a path in the linked record
func (s *LinkService) AddFieldMapping(ctx context.Context, entityID uuid.UUID, field string, mapping integration.FieldMapping) (*catalog.Entity, error) {
	return s.transition(ctx, "add_field_mapping", entityID, field, func(state integration.LinkageState, field string) (integration.LinkageState, error) {
		mapping.FieldPath = strings.TrimSpace(mapping.FieldPath)
		if err := mapping.Validate(); err != nil {
			return state, err
		}
		if err := s.fetcher.ValidateFieldPath(mapping.FieldPath); err != nil {
			return state, fmt.Errorf("%w: path %q: %v", integration.ErrInvalidFieldMapping, mapping.FieldPath, err)
		}
		return state.AddMapping(field, mapping), nil
	})
}

// RemoveFieldMapping removes a field mapping; a zero mapping removes all of the field's mappings
func (s *LinkService) RemoveFieldMapping(ctx context.Context, entityID uuid.UUID, field string, mapping integration.FieldMapping) (*catalog.Entity, error) {
	return s.transition(ctx, "remove_field_mapping", entityID, field, func(state integration.LinkageState, field string) (integration.LinkageState, error) {
		return state.RemoveMapping(field, mapping), nil
	})
}

// SwitchActiveSource repoints the entity's active integration source. The
// entity must be linked.
func (s *LinkService) SwitchActiveSource(ctx context.Context, entityID uuid.UUID, sourceID string) (*catalog.Entity, error) {
	return s.mutate(ctx, "switch_active_source", entityID, func(_ context.Context, entity *catalog.Entity) error {
		if !entity.IsLinked() {
			return integration.ErrEntityNotLinked
		}
		entity.ApplyLinkage(entity.Linkage().SwitchActiveSource(strings.TrimSpace(sourceID)))
		return nil
	})
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

type linkageTransition func(state integration.LinkageState, field string) (integration.LinkageState, error)

func (s *LinkService) transition(ctx context.Context, op string, entityID uuid.UUID, field string, fn linkageTransition) (*catalog.Entity, error) {
	return s.mutate(ctx, op, entityID, func(_ context.Context, entity *catalog.Entity) error {
		field, err := requireField(field)
		if err != nil {
			return err
		}
		next, err := fn(entity.Linkage(), field)
		if err != nil {
			return err
		}
		entity.ApplyLinkage(next)
		return nil
	})
}

func (s *LinkService) mutateOption(ctx context.Context, op string, productID, optionID uuid.UUID, fn func(*catalog.Option) error) (*catalog.Entity, error) {
	return s.mutate(ctx, op, productID, func(_ context.Context, product *catalog.Entity) error {
		option, err := product.Option(optionID)
		if err != nil {
			return err
		}
		return fn(option)
	})
}

// mutate loads the entity, applies fn and saves once. Caches are cleared
// after a successful save.
func (s *LinkService) mutate(ctx context.Context, op string, entityID uuid.UUID, fn func(context.Context, *catalog.Entity) error) (*catalog.Entity, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "link_service", op,
		telemetry.WithAttribute(telemetry.SpanAttrEntityID, entityID.String()),
	)
	defer span.End()

	entity, err := s.entities.FindByID(ctx, entityID)
	if err != nil {
		return nil, s.fail(ctx, span, op, entityID, err)
	}

	if err := fn(ctx, entity); err != nil {
		return nil, s.fail(ctx, span, op, entityID, err)
	}

	entity.Touch(s.now())
	if err := s.entities.Save(ctx, entity); err != nil {
		return nil, s.fail(ctx, span, op, entityID, fmt.Errorf("save entity: %w", err))
	}

	if s.invalidator != nil {
		if err := s.invalidator.ClearCache(ctx); err != nil {
			s.logger.Warn("Failed to clear resolver caches after write",
				logger.Operation(op),
				logger.EntityID(entityID),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Entity linkage updated",
		logger.Operation(op),
		logger.EntityID(entityID),
		logger.MappingID(entity.MappingID),
		logger.SourceID(entity.IntegrationSourceID),
	)
	telemetry.SetOK(span)
	return entity, nil
}

func (s *LinkService) fail(ctx context.Context, span trace.Span, op string, entityID uuid.UUID, err error) error {
	telemetry.RecordError(span, err)
	s.recorder.RecordLinkFailure(ctx, op, err)

	fields := []zap.Field{
		logger.Operation(op),
		logger.EntityID(entityID),
		zap.Error(err),
	}
	if IsValidationError(err) {
		s.logger.Warn("Linkage change rejected", fields...)
	} else {
		s.logger.Error("Linkage change failed", fields...)
	}
	return err
}

func (s *LinkService) requireRecord(ctx context.Context, key integration.RecordKey) error {
	_, err := s.lookupRecord(ctx, key)
	return err
}

func (s *LinkService) lookupRecord(ctx context.Context, key integration.RecordKey) (*integration.ExternalRecord, error) {
	record, err := s.fetcher.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, integration.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %s", integration.ErrMappingNotFound, key)
		}
		return nil, fmt.Errorf("lookup external record: %w", err)
	}
	return record, nil
}

// validateCalculationPaths rejects terms whose field path cannot address a record.
// Empty paths are left to Calculation.Validate.
func (s *LinkService) validateCalculationPaths(calc integration.Calculation) error {
	for i, part := range calc {
		if strings.TrimSpace(part.FieldPath) == "" {
			continue
		}
		if err := s.fetcher.ValidateFieldPath(part.FieldPath); err != nil {
			return fmt.Errorf("%w: term %d: path %q: %v", integration.ErrInvalidCalculation, i, part.FieldPath, err)
		}
	}
	return nil
}

func requireField(field string) (string, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return "", catalog.ErrInvalidFieldName
	}
	return field, nil
}
