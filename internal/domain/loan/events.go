package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// EventTypeLoanOverdue is published by the overdue scan
const EventTypeLoanOverdue = "LoanOverdue"

// LoanOverdueEvent reports an open loan past its due date
type LoanOverdueEvent struct {
	shared.BaseDomainEvent
	LoanID      uuid.UUID `json:"loan_id"`
	ItemID      uuid.UUID `json:"item_id"`
	BorrowerGNo string    `json:"borrower_gno"`
	DueDate     time.Time `json:"due_date"`
}

// NewLoanOverdueEvent creates a new LoanOverdueEvent
func NewLoanOverdueEvent(l *LoanItem) *LoanOverdueEvent {
	e := &LoanOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLoanOverdue, AggregateTypeLoanItem, l.ID),
		LoanID:          l.ID,
		ItemID:          l.ItemID,
		BorrowerGNo:     l.BorrowerGNo,
	}
	if l.DueDate != nil {
		e.DueDate = *l.DueDate
	}
	return e
}
