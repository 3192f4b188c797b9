package integration

import (
	"context"

	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/telemetry"
)

// FetchResult classifies one external record lookup
type FetchResult string

const (
	FetchResultHit      FetchResult = "cache_hit"
	FetchResultMiss     FetchResult = "cache_miss"
	FetchResultNotFound FetchResult = "not_found"
	FetchResultError    FetchResult = "error"
)

// Recorder receives engine measurements
type Recorder interface {
	RecordResolution(ctx context.Context, source Source)
	RecordFetch(ctx context.Context, entityType integration.EntityType, result FetchResult)
	RecordLinkFailure(ctx context.Context, operation string, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordResolution(context.Context, Source) {}

func (noopRecorder) RecordFetch(context.Context, integration.EntityType, FetchResult) {}

func (noopRecorder) RecordLinkFailure(context.Context, string, error) {}

// NewMetricsRecorder reports engine measurements through OpenTelemetry.
// A nil metrics set yields a no-op recorder.
func NewMetricsRecorder(metrics *telemetry.EngineMetrics) Recorder {
	if metrics == nil {
		return noopRecorder{}
	}
	return &metricsRecorder{metrics: metrics}
}

type metricsRecorder struct {
	metrics *telemetry.EngineMetrics
}

func (r *metricsRecorder) RecordResolution(ctx context.Context, source Source) {
	r.metrics.AddResolution(ctx, source.String())
}

func (r *metricsRecorder) RecordFetch(ctx context.Context, entityType integration.EntityType, result FetchResult) {
	r.metrics.AddFetch(ctx, string(entityType), string(result))
}

func (r *metricsRecorder) RecordLinkFailure(ctx context.Context, operation string, err error) {
	r.metrics.AddLinkFailure(ctx, operation, FailureReason(err))
}
