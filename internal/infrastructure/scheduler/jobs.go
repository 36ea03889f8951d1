package scheduler

import (
	"context"

	"github.com/psim/backend/internal/application/movement"
	"go.uber.org/zap"
)

// Job names
const (
	JobLowStockScan    = "low_stock_scan"
	JobOverdueLoanScan = "overdue_loan_scan"
)

// LowStockQuery lists HQ rows under their own threshold
type LowStockQuery interface {
	LowHQStock(ctx context.Context, threshold *int64) ([]movement.HQStockResponse, error)
}

// OverdueScanner publishes LoanOverdue events and returns how many loans are overdue
type OverdueScanner interface {
	ScanOverdue(ctx context.Context) (int, error)
}

// OverdueRecorder counts overdue loans
type OverdueRecorder interface {
	RecordOverdueLoans(ctx context.Context, n int)
}

// NewLowStockScanJob logs a digest of HQ items below their threshold
func NewLowStockScanJob(spec string, query LowStockQuery, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Job{
		Name: JobLowStockScan,
		Spec: spec,
		Run: func(ctx context.Context) error {
			rows, err := query.LowHQStock(ctx, nil)
			if err != nil {
				return err
			}
			for _, r := range rows {
				var threshold int64
				if r.LowStockThreshold != nil {
					threshold = *r.LowStockThreshold
				}
				logger.Warn("HQ item below threshold",
					zap.String("item_id", r.ItemID.String()),
					zap.Int64("quantity", r.Quantity),
					zap.Int64("threshold", threshold),
				)
			}
			logger.Info("Low stock scan finished", zap.Int("low_items", len(rows)))
			return nil
		},
	}
}

// NewOverdueLoanScanJob raises LoanOverdue events for loans past their due date
func NewOverdueLoanScanJob(spec string, scanner OverdueScanner, recorder OverdueRecorder, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Job{
		Name: JobOverdueLoanScan,
		Spec: spec,
		Run: func(ctx context.Context) error {
			n, err := scanner.ScanOverdue(ctx)
			if err != nil {
				return err
			}
			if recorder != nil {
				recorder.RecordOverdueLoans(ctx, n)
			}
			logger.Info("Overdue loan scan finished", zap.Int("overdue", n))
			return nil
		},
	}
}
