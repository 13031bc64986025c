package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultSlowQueryThreshold = 200 * time.Millisecond

type queryStartKey struct{}

// DBInstrumentation is a gorm plugin that times every statement. It records
// a duration histogram, flags slow queries on the active span and in the log,
// and publishes connection pool gauges.
type DBInstrumentation struct {
	logger        *zap.Logger
	slowThreshold time.Duration
	duration      *Histogram
	now           func() time.Time
}

// NewDBInstrumentation builds the plugin. A nil meter disables the histogram.
func NewDBInstrumentation(meter metric.Meter, slowThreshold time.Duration, logger *zap.Logger) (*DBInstrumentation, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if slowThreshold <= 0 {
		slowThreshold = defaultSlowQueryThreshold
	}
	d := &DBInstrumentation{logger: logger, slowThreshold: slowThreshold, now: time.Now}
	if meter != nil {
		h, err := NewHistogram(meter, "rental_db_query_duration_seconds", "Database statement duration", "s", DBDurationBuckets...)
		if err != nil {
			return nil, err
		}
		d.duration = h
	}
	return d, nil
}

// Name implements gorm.Plugin
func (d *DBInstrumentation) Name() string { return "rental:db_instrumentation" }

// Initialize implements gorm.Plugin
func (d *DBInstrumentation) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	regs := []struct {
		op     string
		before func(string, func(*gorm.DB)) error
		after  func(string, func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
	}
	for _, r := range regs {
		op := r.op
		if err := r.before("rental_timing:before_"+op, d.before); err != nil {
			return fmt.Errorf("register before %s: %w", op, err)
		}
		if err := r.after("rental_timing:after_"+op, func(tx *gorm.DB) { d.after(tx, op) }); err != nil {
			return fmt.Errorf("register after %s: %w", op, err)
		}
	}
	return nil
}

func (d *DBInstrumentation) before(tx *gorm.DB) {
	if tx.Statement.Context == nil {
		tx.Statement.Context = context.Background()
	}
	tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, d.now())
}

func (d *DBInstrumentation) after(tx *gorm.DB, op string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	elapsed := d.now().Sub(start)
	failed := tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound)

	if d.duration != nil {
		d.duration.RecordDuration(ctx, elapsed,
			AttrDBOperation.String(op),
			AttrDBTable.String(tx.Statement.Table),
		)
	}

	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attribute.Int64("db.rows_affected", tx.Statement.RowsAffected))
		if tx.Statement.Table != "" {
			span.SetAttributes(attribute.String("db.sql.table", tx.Statement.Table))
		}
		if failed {
			span.SetStatus(codes.Error, tx.Error.Error())
			span.RecordError(tx.Error)
		}
	}

	if elapsed < d.slowThreshold {
		return
	}
	if span.IsRecording() {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
	d.logger.Warn("slow query",
		zap.String("operation", op),
		zap.String("table", tx.Statement.Table),
		zap.Duration("elapsed", elapsed),
		zap.Duration("threshold", d.slowThreshold),
		zap.String("sql", strings.TrimSpace(tx.Statement.SQL.String())),
	)
}

// RegisterPoolMetrics publishes sql.DB pool stats as observable gauges
func RegisterPoolMetrics(db *gorm.DB, meter metric.Meter) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	conns, err := meter.Int64ObservableGauge("rental_db_pool_connections",
		metric.WithDescription("Connections in the pool by state"),
		metric.WithUnit("{connections}"),
	)
	if err != nil {
		return err
	}
	maxConns, err := meter.Int64ObservableGauge("rental_db_pool_connections_max",
		metric.WithDescription("Configured maximum open connections"),
		metric.WithUnit("{connections}"),
	)
	if err != nil {
		return err
	}
	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(AttrDBState.String("idle")))
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(AttrDBState.String("in_use")))
		o.ObserveInt64(conns, int64(stats.OpenConnections), metric.WithAttributes(AttrDBState.String("open")))
		o.ObserveInt64(maxConns, int64(stats.MaxOpenConnections))
		return nil
	}, conns, maxConns)
	return err
}

// InstrumentDB installs otelgorm tracing and the timing plugin on db, and
// pool gauges when meter is non-nil.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, meter metric.Meter, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Enabled && cfg.DBTraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
		if !cfg.DBLogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return fmt.Errorf("failed to register otelgorm: %w", err)
		}
	}

	timing, err := NewDBInstrumentation(meter, cfg.DBSlowQueryThresh, logger)
	if err != nil {
		return err
	}
	if err := db.Use(timing); err != nil {
		return fmt.Errorf("failed to register db instrumentation: %w", err)
	}

	if meter != nil {
		if err := RegisterPoolMetrics(db, meter); err != nil {
			return err
		}
	}
	logger.Info("Database instrumentation enabled",
		zap.Bool("tracing", cfg.Enabled && cfg.DBTraceEnabled),
		zap.Duration("slow_query_threshold", timing.slowThreshold),
	)
	return nil
}
