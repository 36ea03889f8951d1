package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, agg metricdata.Aggregation, tier string) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok, "expected an int64 sum, got %T", agg)
	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key("tier")); ok && v.AsString() == tier {
			total += dp.Value
		}
	}
	return total
}

func TestLedgerMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := NewLedgerMetrics(provider.Meter(MeterName))
	require.NoError(t, err)

	m.RecordIssuance(ctx, "HQ", 2, 15)
	m.RecordIssuance(ctx, "HQ", 1, 5)
	m.RecordIssuance(ctx, "DISTRICT", 1, 3)
	m.RecordReturn(ctx, "HQ", 1, 4)
	m.RecordLowStock(ctx, "HQ")
	m.RecordOverdueLoans(ctx, 0)
	m.RecordOverdueLoans(ctx, 3)

	data := collect(t, reader)
	assert.Equal(t, int64(2), sumFor(t, data["ledger.issuance_vouchers"], "HQ"))
	assert.Equal(t, int64(20), sumFor(t, data["ledger.issued_units"], "HQ"))
	assert.Equal(t, int64(3), sumFor(t, data["ledger.issued_units"], "DISTRICT"))
	assert.Equal(t, int64(1), sumFor(t, data["ledger.lar_vouchers"], "HQ"))
	assert.Equal(t, int64(4), sumFor(t, data["ledger.returned_units"], "HQ"))
	assert.Equal(t, int64(1), sumFor(t, data["ledger.low_stock_alerts"], "HQ"))

	overdue, ok := data["ledger.overdue_loans"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, overdue.DataPoints, 1)
	assert.Equal(t, int64(3), overdue.DataPoints[0].Value)

	lines, ok := data["ledger.voucher_lines"].(metricdata.Histogram[int64])
	require.True(t, ok)
	var count uint64
	for _, dp := range lines.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(4), count)
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	_, err := NewLedgerMetrics(nil)
	assert.Error(t, err)
}
