package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds configuration for database tracing.
type DBTracingConfig struct {
	Enabled         bool          // Enable otelgorm spans
	LogFullSQL      bool          // Keep query variables in span statements (dev only)
	SlowQueryThresh time.Duration // Queries slower than this are flagged on their span
	DBName          string        // Reported as db.name
}

// DefaultDBTracingConfig returns tracing disabled with a 200ms slow query threshold.
func DefaultDBTracingConfig() DBTracingConfig {
	return DBTracingConfig{
		SlowQueryThresh: 200 * time.Millisecond,
		DBName:          "signage",
	}
}

type queryStartKey struct{}

// RegisterDBTracing installs otelgorm on db along with callbacks that record
// rows affected, table name, errors and slow queries on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		logger.Debug("Database tracing disabled, skipping otelgorm registration")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(cfg.DBName)}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	tracker := &queryTracker{slowQueryThresh: cfg.SlowQueryThresh}
	if err := tracker.register(db); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", cfg.SlowQueryThresh),
	)
	return nil
}

type queryTracker struct {
	slowQueryThresh time.Duration
}

func (t *queryTracker) register(db *gorm.DB) error {
	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("otel_timing:before_create", t.before) },
		func() error { return cb.Query().Before("gorm:query").Register("otel_timing:before_query", t.before) },
		func() error { return cb.Update().Before("gorm:update").Register("otel_timing:before_update", t.before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("otel_timing:before_delete", t.before) },
		func() error { return cb.Row().Before("gorm:row").Register("otel_timing:before_row", t.before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("otel_timing:before_raw", t.before) },
		func() error { return cb.Create().After("gorm:create").Register("otel_timing:after_create", t.after) },
		func() error { return cb.Query().After("gorm:query").Register("otel_timing:after_query", t.after) },
		func() error { return cb.Update().After("gorm:update").Register("otel_timing:after_update", t.after) },
		func() error { return cb.Delete().After("gorm:delete").Register("otel_timing:after_delete", t.after) },
		func() error { return cb.Row().After("gorm:row").Register("otel_timing:after_row", t.after) },
		func() error { return cb.Raw().After("gorm:raw").Register("otel_timing:after_raw", t.after) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (t *queryTracker) before(db *gorm.DB) {
	if db.Statement.Context != nil {
		db.Statement.Context = context.WithValue(db.Statement.Context, queryStartKey{}, time.Now())
	}
}

func (t *queryTracker) after(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}

	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.SetStatus(codes.Error, db.Error.Error())
		span.RecordError(db.Error)
	}

	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > t.slowQueryThresh {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query_warning", trace.WithAttributes(
			attribute.Int64("duration_ms", elapsed.Milliseconds()),
			attribute.Int64("threshold_ms", t.slowQueryThresh.Milliseconds()),
		))
	}
}
