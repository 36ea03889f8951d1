package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMeterName is the instrumentation scope of the database instruments
const DBMeterName = "github.com/psim/backend/db"

// dbDurationBuckets are in seconds, from 1ms to 5s
var dbDurationBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 5}

type dbMetricsStartKey struct{}

// DBMetrics is a GORM plugin recording statement counts and latency by
// operation, slow statements by table, and connection pool gauges.
type DBMetrics struct {
	queries    metric.Int64Counter
	duration   metric.Float64Histogram
	slow       metric.Int64Counter
	slowThresh time.Duration
	pool       metric.Registration
}

// NewDBMetrics creates the instruments on meter. When sqlDB is non-nil its
// pool stats are observed on every collection.
func NewDBMetrics(meter metric.Meter, sqlDB *sql.DB, slowThresh time.Duration) (*DBMetrics, error) {
	if meter == nil {
		return nil, errors.New("telemetry: meter is nil")
	}
	m := &DBMetrics{slowThresh: slowThresh}
	var err error
	if m.queries, err = meter.Int64Counter("db.client.queries",
		metric.WithDescription("SQL statements executed"), metric.WithUnit("{query}")); err != nil {
		return nil, err
	}
	if m.duration, err = meter.Float64Histogram("db.client.query.duration",
		metric.WithDescription("SQL statement latency"), metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(dbDurationBuckets...)); err != nil {
		return nil, err
	}
	if m.slow, err = meter.Int64Counter("db.client.slow_queries",
		metric.WithDescription("SQL statements slower than the configured threshold"), metric.WithUnit("{query}")); err != nil {
		return nil, err
	}
	if sqlDB == nil {
		return m, nil
	}

	conns, err := meter.Int64ObservableGauge("db.client.connections",
		metric.WithDescription("Pool connections by state"), metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	maxConns, err := meter.Int64ObservableGauge("db.client.connections.max",
		metric.WithDescription("Maximum open connections"), metric.WithUnit("{connection}"))
	if err != nil {
		return nil, err
	}
	waits, err := meter.Int64ObservableCounter("db.client.connections.waits",
		metric.WithDescription("Times a caller waited for a free connection"), metric.WithUnit("{wait}"))
	if err != nil {
		return nil, err
	}
	m.pool, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(conns, int64(stats.Idle), metric.WithAttributes(attribute.String("state", "idle")))
		o.ObserveInt64(conns, int64(stats.InUse), metric.WithAttributes(attribute.String("state", "in_use")))
		o.ObserveInt64(maxConns, int64(stats.MaxOpenConnections))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, conns, maxConns, waits)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Name implements gorm.Plugin
func (m *DBMetrics) Name() string { return "psim:db_metrics" }

// Initialize implements gorm.Plugin
func (m *DBMetrics) Initialize(db *gorm.DB) error {
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, dbMetricsStartKey{}, time.Now())
		}
	}
	fixed := func(op string) func(*gorm.DB) {
		return func(tx *gorm.DB) { m.observe(tx, op) }
	}
	fromSQL := func(tx *gorm.DB) { m.observe(tx, operationOf(tx.Statement.SQL.String())) }

	cb := db.Callback()
	registrations := []func() error{
		func() error { return cb.Create().Before("gorm:create").Register("psim:metrics_start_create", before) },
		func() error { return cb.Query().Before("gorm:query").Register("psim:metrics_start_query", before) },
		func() error { return cb.Update().Before("gorm:update").Register("psim:metrics_start_update", before) },
		func() error { return cb.Delete().Before("gorm:delete").Register("psim:metrics_start_delete", before) },
		func() error { return cb.Row().Before("gorm:row").Register("psim:metrics_start_row", before) },
		func() error { return cb.Raw().Before("gorm:raw").Register("psim:metrics_start_raw", before) },
		func() error { return cb.Create().After("gorm:create").Register("psim:metrics_create", fixed("INSERT")) },
		func() error { return cb.Query().After("gorm:query").Register("psim:metrics_query", fixed("SELECT")) },
		func() error { return cb.Update().After("gorm:update").Register("psim:metrics_update", fixed("UPDATE")) },
		func() error { return cb.Delete().After("gorm:delete").Register("psim:metrics_delete", fixed("DELETE")) },
		func() error { return cb.Row().After("gorm:row").Register("psim:metrics_row", fromSQL) },
		func() error { return cb.Raw().After("gorm:raw").Register("psim:metrics_raw", fromSQL) },
	}
	for _, register := range registrations {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

func (m *DBMetrics) observe(tx *gorm.DB, op string) {
	ctx := tx.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	var elapsed time.Duration
	if start, ok := ctx.Value(dbMetricsStartKey{}).(time.Time); ok {
		elapsed = time.Since(start)
	}
	m.RecordQuery(ctx, op, tx.Statement.Table, elapsed, tx.Error)
}

// RecordQuery counts one statement. A missing row is not a failure.
func (m *DBMetrics) RecordQuery(ctx context.Context, op, table string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		outcome = "error"
	}
	opAttr := attribute.String("db.operation", op)
	m.queries.Add(ctx, 1, metric.WithAttributes(opAttr, attribute.String("outcome", outcome)))
	m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(opAttr))

	if m.slowThresh > 0 && elapsed > m.slowThresh {
		if table == "" {
			table = "unknown"
		}
		m.slow.Add(ctx, 1, metric.WithAttributes(opAttr, attribute.String("db.sql.table", table)))
	}
}

// Stop unregisters the pool callback
func (m *DBMetrics) Stop() error {
	if m == nil || m.pool == nil {
		return nil
	}
	return m.pool.Unregister()
}

func operationOf(stmt string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(stmt), " ")
	switch v := strings.ToUpper(verb); v {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return v
	case "WITH":
		return "SELECT"
	default:
		return "OTHER"
	}
}

// RegisterDBMetrics installs DBMetrics on db, observing its pool
func RegisterDBMetrics(db *gorm.DB, meter metric.Meter, slowThresh time.Duration, logger *zap.Logger) (*DBMetrics, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	m, err := NewDBMetrics(meter, sqlDB, slowThresh)
	if err != nil {
		return nil, err
	}
	if err := db.Use(m); err != nil {
		_ = m.Stop()
		return nil, err
	}
	logger.Info("Database metrics enabled", zap.Duration("slow_query_threshold", slowThresh))
	return m, nil
}
