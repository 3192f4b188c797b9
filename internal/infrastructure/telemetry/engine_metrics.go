package telemetry

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// Engine metric names
const (
	MetricAttributeResolutions    = "attribute.resolutions"
	MetricIntegrationFetches      = "integration.fetches"
	MetricIntegrationLinkFailures = "integration.link_failures"
)

// EngineMetrics counts resolutions, external record fetches and rejected
// link operations.
type EngineMetrics struct {
	logger *zap.Logger

	resolutions  *Counter
	fetches      *Counter
	linkFailures *Counter
}

// NewEngineMetrics creates the engine counters on meter
func NewEngineMetrics(meter metric.Meter, logger *zap.Logger) (*EngineMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	resolutions, err := NewCounter(meter, MetricAttributeResolutions,
		"Resolved attribute values by winning source", "{resolution}")
	if err != nil {
		return nil, err
	}
	fetches, err := NewCounter(meter, MetricIntegrationFetches,
		"External record lookups by outcome", "{fetch}")
	if err != nil {
		return nil, err
	}
	linkFailures, err := NewCounter(meter, MetricIntegrationLinkFailures,
		"Link service operations rejected before writing", "{failure}")
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		logger:       logger,
		resolutions:  resolutions,
		fetches:      fetches,
		linkFailures: linkFailures,
	}, nil
}

// AddResolution counts one resolved value
func (m *EngineMetrics) AddResolution(ctx context.Context, source string) {
	m.resolutions.Inc(ctx, AttrValueSource.String(source))
}

// AddFetch counts one external record lookup
func (m *EngineMetrics) AddFetch(ctx context.Context, entityType, result string) {
	m.fetches.Inc(ctx, AttrEntityType.String(entityType), AttrFetchResult.String(result))
}

// AddLinkFailure counts one rejected link operation
func (m *EngineMetrics) AddLinkFailure(ctx context.Context, operation, reason string) {
	m.linkFailures.Inc(ctx, AttrOperation.String(operation), AttrFailureReason.String(reason))
	m.logger.Debug("Link operation rejected",
		zap.String("operation", operation),
		zap.String("reason", reason),
	)
}
