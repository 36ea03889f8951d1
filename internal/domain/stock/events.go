package stock

import (
	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeStockBelowThreshold = "StockBelowThreshold"
)

// StockBelowThresholdEvent is raised when an HQ balance drops under its threshold
type StockBelowThresholdEvent struct {
	shared.BaseDomainEvent
	HQStockID uuid.UUID `json:"hq_stock_id"`
	ItemID    uuid.UUID `json:"item_id"`
	Quantity  int64     `json:"quantity"`
	Threshold int64     `json:"threshold"`
}

// NewStockBelowThresholdEvent creates a new StockBelowThresholdEvent
func NewStockBelowThresholdEvent(s *HQStock) *StockBelowThresholdEvent {
	var threshold int64
	if s.LowStockThreshold != nil {
		threshold = *s.LowStockThreshold
	}
	return &StockBelowThresholdEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeStockBelowThreshold, AggregateTypeHQStock, s.ID),
		HQStockID:       s.ID,
		ItemID:          s.ItemID,
		Quantity:        s.Quantity,
		Threshold:       threshold,
	}
}
