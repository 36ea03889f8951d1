package loan

import (
	"context"
	"fmt"

	"github.com/psim/backend/internal/domain/loan"
	"github.com/psim/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OverdueHandler logs LoanOverdue events so the store keeper can chase the borrower
type OverdueHandler struct {
	logger *zap.Logger
}

// NewOverdueHandler creates a new OverdueHandler
func NewOverdueHandler(logger *zap.Logger) *OverdueHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OverdueHandler{logger: logger}
}

// EventTypes returns the event types this handler is interested in
func (h *OverdueHandler) EventTypes() []string {
	return []string{loan.EventTypeLoanOverdue}
}

// Handle processes a LoanOverdueEvent
func (h *OverdueHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*loan.LoanOverdueEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s", loan.EventTypeLoanOverdue, event.EventType())
	}
	h.logger.Warn("loan overdue",
		zap.String("loan_id", e.LoanID.String()),
		zap.String("item_id", e.ItemID.String()),
		zap.String("borrower_gno", e.BorrowerGNo),
		zap.Time("due_date", e.DueDate),
	)
	return nil
}

var _ shared.EventHandler = (*OverdueHandler)(nil)
