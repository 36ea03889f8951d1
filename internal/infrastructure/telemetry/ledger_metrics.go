package telemetry

import (
	"context"
	"fmt"

	"github.com/psim/backend/internal/application/movement"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MeterName is the instrumentation scope of the ledger instruments
const MeterName = "github.com/psim/backend/ledger"

// LedgerMetrics records voucher and stock activity
type LedgerMetrics struct {
	issuances     metric.Int64Counter
	issuedUnits   metric.Int64Counter
	returns       metric.Int64Counter
	returnedUnits metric.Int64Counter
	voucherLines  metric.Int64Histogram
	lowStock      metric.Int64Counter
	overdueLoans  metric.Int64Counter
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, fmt.Errorf("telemetry: meter is nil")
	}
	m := &LedgerMetrics{}
	var err error
	if m.issuances, err = meter.Int64Counter("ledger.issuance_vouchers",
		metric.WithDescription("Issuance vouchers created"), metric.WithUnit("{voucher}")); err != nil {
		return nil, err
	}
	if m.issuedUnits, err = meter.Int64Counter("ledger.issued_units",
		metric.WithDescription("Units moved out by issuance vouchers"), metric.WithUnit("{unit}")); err != nil {
		return nil, err
	}
	if m.returns, err = meter.Int64Counter("ledger.lar_vouchers",
		metric.WithDescription("LAR vouchers created"), metric.WithUnit("{voucher}")); err != nil {
		return nil, err
	}
	if m.returnedUnits, err = meter.Int64Counter("ledger.returned_units",
		metric.WithDescription("Units brought back by LAR vouchers"), metric.WithUnit("{unit}")); err != nil {
		return nil, err
	}
	if m.voucherLines, err = meter.Int64Histogram("ledger.voucher_lines",
		metric.WithDescription("Item lines per voucher"), metric.WithUnit("{line}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 25, 50)); err != nil {
		return nil, err
	}
	if m.lowStock, err = meter.Int64Counter("ledger.low_stock_alerts",
		metric.WithDescription("Stock rows that fell below their threshold"), metric.WithUnit("{alert}")); err != nil {
		return nil, err
	}
	if m.overdueLoans, err = meter.Int64Counter("ledger.overdue_loans",
		metric.WithDescription("Overdue loans found by the scheduled scan"), metric.WithUnit("{loan}")); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordIssuance counts one issuance voucher
func (m *LedgerMetrics) RecordIssuance(ctx context.Context, tier string, lines int, units int64) {
	attrs := metric.WithAttributes(attribute.String("tier", tier), attribute.String("voucher", "IV"))
	m.issuances.Add(ctx, 1, attrs)
	m.issuedUnits.Add(ctx, units, attrs)
	m.voucherLines.Record(ctx, int64(lines), attrs)
}

// RecordReturn counts one LAR voucher
func (m *LedgerMetrics) RecordReturn(ctx context.Context, tier string, lines int, units int64) {
	attrs := metric.WithAttributes(attribute.String("tier", tier), attribute.String("voucher", "LAR"))
	m.returns.Add(ctx, 1, attrs)
	m.returnedUnits.Add(ctx, units, attrs)
	m.voucherLines.Record(ctx, int64(lines), attrs)
}

// RecordLowStock counts a low-stock alert
func (m *LedgerMetrics) RecordLowStock(ctx context.Context, tier string) {
	m.lowStock.Add(ctx, 1, metric.WithAttributes(attribute.String("tier", tier)))
}

// RecordOverdueLoans counts loans flagged by one overdue scan
func (m *LedgerMetrics) RecordOverdueLoans(ctx context.Context, n int) {
	if n > 0 {
		m.overdueLoans.Add(ctx, int64(n))
	}
}

var _ movement.MetricsRecorder = (*LedgerMetrics)(nil)
