package movement

import (
	"context"
	"fmt"

	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// LowStockAlertHandler handles StockBelowThreshold events by logging a warning
// and counting the alert.
type LowStockAlertHandler struct {
	logger  *zap.Logger
	metrics MetricsRecorder
}

// NewLowStockAlertHandler creates a new handler for stock below threshold events
func NewLowStockAlertHandler(logger *zap.Logger) *LowStockAlertHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LowStockAlertHandler{logger: logger}
}

// WithMetrics sets the metrics recorder
func (h *LowStockAlertHandler) WithMetrics(m MetricsRecorder) *LowStockAlertHandler {
	h.metrics = m
	return h
}

// EventTypes returns the event types this handler is interested in
func (h *LowStockAlertHandler) EventTypes() []string {
	return []string{stock.EventTypeStockBelowThreshold}
}

// Handle processes a StockBelowThresholdEvent
func (h *LowStockAlertHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*stock.StockBelowThresholdEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", stock.EventTypeStockBelowThreshold),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			stock.EventTypeStockBelowThreshold, event.EventType())
	}

	alertType := "low_stock"
	if e.Quantity == 0 {
		alertType = "out_of_stock"
	}
	h.logger.Warn("HQ stock below threshold",
		zap.String("alert_type", alertType),
		zap.String("hq_stock_id", e.HQStockID.String()),
		zap.String("item_id", e.ItemID.String()),
		zap.Int64("quantity", e.Quantity),
		zap.Int64("threshold", e.Threshold),
	)
	if h.metrics != nil {
		h.metrics.RecordLowStock(ctx, string(movement.TierHQ))
	}
	return nil
}

// Ensure LowStockAlertHandler implements shared.EventHandler
var _ shared.EventHandler = (*LowStockAlertHandler)(nil)
