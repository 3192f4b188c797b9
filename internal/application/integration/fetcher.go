package integration

import (
	"context"
	"errors"
	"strings"

	"github.com/signage/backend/internal/domain/catalog"
	"github.com/signage/backend/internal/domain/integration"
	"github.com/signage/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Fetcher reads external records through a process-wide cache. Concurrent
// lookups of the same record share one catalog query.
type Fetcher struct {
	catalog  integration.ExternalCatalog
	cache    integration.RecordCache
	paths    *PathEvaluator
	group    singleflight.Group
	recorder Recorder
	logger   *zap.Logger
}

// FetcherOption configures a Fetcher
type FetcherOption func(*Fetcher)

// WithFetcherLogger sets the logger
func WithFetcherLogger(logger *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.logger = logger
	}
}

// WithFetcherRecorder sets the metrics recorder
func WithFetcherRecorder(recorder Recorder) FetcherOption {
	return func(f *Fetcher) {
		f.recorder = recorder
	}
}

// NewFetcher creates a fetcher over an external catalog and record cache
func NewFetcher(externalCatalog integration.ExternalCatalog, cache integration.RecordCache, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		catalog:  externalCatalog,
		cache:    cache,
		paths:    NewPathEvaluator(),
		recorder: noopRecorder{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Lookup returns the record for key. Absent records yield
// integration.ErrRecordNotFound; storage failures are returned as is.
func (f *Fetcher) Lookup(ctx context.Context, key integration.RecordKey) (*integration.ExternalRecord, error) {
	if key.MappingID == "" || key.SourceID == "" {
		return nil, integration.ErrRecordNotFound
	}
	if !key.EntityType.IsValid() {
		return nil, integration.ErrInvalidEntityType
	}

	if record, ok := f.cache.Get(ctx, key); ok {
		f.recorder.RecordFetch(ctx, key.EntityType, FetchResultHit)
		return record, nil
	}

	// The shared query outlives any single caller; each caller still stops
	// waiting when its own context ends.
	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key.String(), func() (any, error) {
		record, err := f.catalog.FindRecord(shared, key)
		if err != nil {
			return nil, err
		}
		if err := f.cache.Set(shared, record); err != nil {
			f.logger.Warn("Failed to cache external record",
				logger.RecordKey(key),
				zap.Error(err),
			)
		}
		return record, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		f.recorder.RecordFetch(ctx, key.EntityType, FetchResultError)
		return nil, ctx.Err()
	}
	v, err := res.Val, res.Err
	if err != nil {
		if errors.Is(err, integration.ErrRecordNotFound) {
			f.recorder.RecordFetch(ctx, key.EntityType, FetchResultNotFound)
		} else {
			f.recorder.RecordFetch(ctx, key.EntityType, FetchResultError)
		}
		return nil, err
	}

	f.recorder.RecordFetch(ctx, key.EntityType, FetchResultMiss)
	return v.(*integration.ExternalRecord), nil
}

// Fetch returns the record for the triple, or false when it is unavailable
// for any reason. Lookup failures are logged and never returned.
func (f *Fetcher) Fetch(ctx context.Context, mappingID, sourceID string, entityType integration.EntityType) (*integration.ExternalRecord, bool) {
	key := integration.RecordKey{SourceID: sourceID, EntityType: entityType, MappingID: mappingID}
	record, err := f.Lookup(ctx, key)
	if err != nil {
		if !errors.Is(err, integration.ErrRecordNotFound) {
			f.logger.Warn("External record lookup failed",
				logger.RecordKey(key),
				zap.Error(err),
			)
		}
		return nil, false
	}
	return record, true
}

// ExtractField reads a field from a record. The shorthand names read record
// columns; any other path is evaluated inside the data payload with an
// optional leading "data.". Missing segments report false.
func (f *Fetcher) ExtractField(record *integration.ExternalRecord, fieldPath string) (catalog.Value, bool) {
	if record == nil {
		return catalog.Undefined(), false
	}
	if integration.IsShorthandField(fieldPath) {
		raw, ok := record.ShorthandValue(fieldPath)
		if !ok {
			return catalog.Undefined(), false
		}
		return f.toValue(fieldPath, raw)
	}

	path, ok := integration.DataPath(fieldPath)
	if !ok {
		if len(record.Data) == 0 {
			return catalog.Undefined(), false
		}
		return catalog.ValueOf(record.Data), true
	}
	raw, ok := f.paths.Lookup(path, record.Data)
	if !ok {
		return catalog.Undefined(), false
	}
	return f.toValue(fieldPath, raw)
}

// ValidateFieldPath reports whether fieldPath can address a record. Shorthand
// names and the whole payload are always valid; data paths must compile.
func (f *Fetcher) ValidateFieldPath(fieldPath string) error {
	if integration.IsShorthandField(strings.TrimSpace(fieldPath)) {
		return nil
	}
	path, ok := integration.DataPath(fieldPath)
	if !ok {
		return nil
	}
	return f.paths.Validate(path)
}

// FetchField fetches a record and extracts one field from it
func (f *Fetcher) FetchField(ctx context.Context, key integration.RecordKey, fieldPath string) (catalog.Value, bool) {
	record, ok := f.Fetch(ctx, key.MappingID, key.SourceID, key.EntityType)
	if !ok {
		return catalog.Undefined(), false
	}
	return f.ExtractField(record, fieldPath)
}

// Clear drops every cached record and compiled path
func (f *Fetcher) Clear(ctx context.Context) error {
	f.paths.ClearCache()
	return f.cache.Clear(ctx)
}

func (f *Fetcher) toValue(fieldPath string, raw any) (catalog.Value, bool) {
	v := catalog.ValueOf(raw)
	if fieldPath == integration.FieldImageURL {
		v = v.WithKind(catalog.KindImageRef)
	}
	return v, v.IsDefined()
}
