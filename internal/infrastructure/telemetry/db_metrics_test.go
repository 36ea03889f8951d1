package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type districtRow struct {
	ID   uint
	Code string
}

func sumWhere(t *testing.T, agg metricdata.Aggregation, key, value string) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", agg)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestRegisterDBMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&districtRow{}))

	m, err := RegisterDBMetrics(db, provider.Meter(DBMeterName), time.Nanosecond, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Stop() })

	require.NoError(t, db.WithContext(ctx).Create(&districtRow{Code: "GAL"}).Error)
	var row districtRow
	require.NoError(t, db.WithContext(ctx).First(&row, "code = ?", "GAL").Error)
	err = db.WithContext(ctx).First(&row, "code = ?", "MAT").Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	data := collect(t, reader)
	assert.Equal(t, int64(1), sumWhere(t, data["db.client.queries"], "db.operation", "INSERT"))
	assert.Equal(t, int64(2), sumWhere(t, data["db.client.queries"], "db.operation", "SELECT"))
	assert.Zero(t, sumWhere(t, data["db.client.queries"], "outcome", "error"), "missing rows are not failures")
	assert.Positive(t, sumWhere(t, data["db.client.slow_queries"], "db.sql.table", "district_rows"))

	hist, ok := data["db.client.query.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)

	maxConns, ok := data["db.client.connections.max"].(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, maxConns.DataPoints, 1)
	assert.Equal(t, int64(1), maxConns.DataPoints[0].Value)
	_, ok = data["db.client.connections"].(metricdata.Gauge[int64])
	assert.True(t, ok)
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := NewDBMetrics(provider.Meter(DBMeterName), nil, 100*time.Millisecond)
	require.NoError(t, err)

	m.RecordQuery(ctx, "UPDATE", "hq_stocks", 10*time.Millisecond, nil)
	m.RecordQuery(ctx, "UPDATE", "hq_stocks", 300*time.Millisecond, errors.New("deadlock detected"))
	m.RecordQuery(ctx, "SELECT", "", 150*time.Millisecond, nil)

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumWhere(t, data["db.client.queries"], "db.operation", "UPDATE"))
	assert.Equal(t, int64(1), sumWhere(t, data["db.client.queries"], "outcome", "error"))
	assert.Equal(t, int64(1), sumWhere(t, data["db.client.slow_queries"], "db.sql.table", "hq_stocks"))
	assert.Equal(t, int64(1), sumWhere(t, data["db.client.slow_queries"], "db.sql.table", "unknown"))
	assert.NotContains(t, data, "db.client.connections", "no pool without a sql.DB")
	assert.NoError(t, m.Stop())
}

func TestOperationOf(t *testing.T) {
	tests := map[string]string{
		"SELECT * FROM items":                         "SELECT",
		"  insert into voucher_counters values (1)":   "INSERT",
		"UPDATE ledgers SET current_sequence_number=": "UPDATE",
		"delete from loan_items":                      "DELETE",
		"WITH low AS (SELECT 1) SELECT * FROM low":    "SELECT",
		"CREATE TABLE x (id int)":                     "OTHER",
		"":                                            "OTHER",
	}
	for stmt, want := range tests {
		assert.Equal(t, want, operationOf(stmt), stmt)
	}
}

func TestNewDBMetrics_NilMeter(t *testing.T) {
	_, err := NewDBMetrics(nil, nil, time.Second)
	assert.Error(t, err)
}
