package loan

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// AggregateTypeLoanItem is the aggregate type of LoanItem
const AggregateTypeLoanItem = "LoanItem"

// Status is the lifecycle state of a loan
type Status string

const (
	StatusLoaned   Status = "Loaned"
	StatusReturned Status = "Returned"
)

// IsValid reports whether s is a known status
func (s Status) IsValid() bool {
	return s == StatusLoaned || s == StatusReturned
}

// LoanItem tracks goods lent out for an event. Loans sit outside the issuance
// ledger and never change stock balances.
type LoanItem struct {
	shared.BaseAggregateRoot
	ItemID           uuid.UUID
	Quantity         int64
	BorrowerGNo      string
	BorrowerName     string
	EventName        string
	LoanDate         time.Time
	DueDate          *time.Time
	Status           Status
	ReturnedAt       *time.Time
	ReturnedByUserID string
	Remarks          string
}

// Borrower identifies who took the goods and for what
type Borrower struct {
	GNo       string
	Name      string
	EventName string
}

// NewLoanItem creates a loan in the Loaned state
func NewLoanItem(itemID uuid.UUID, quantity int64, b Borrower, loanDate time.Time, dueDate *time.Time, remarks string) (*LoanItem, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("item is required")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity must be positive, got %d", quantity)
	}
	if strings.TrimSpace(b.GNo) == "" {
		return nil, shared.NewValidationError("borrower GNo is required")
	}
	if strings.TrimSpace(b.EventName) == "" {
		return nil, shared.NewValidationError("event name is required")
	}
	if dueDate != nil && dueDate.Before(loanDate) {
		return nil, shared.NewValidationError("due date cannot be before the loan date")
	}
	return &LoanItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            itemID,
		Quantity:          quantity,
		BorrowerGNo:       strings.TrimSpace(b.GNo),
		BorrowerName:      strings.TrimSpace(b.Name),
		EventName:         strings.TrimSpace(b.EventName),
		LoanDate:          loanDate,
		DueDate:           dueDate,
		Status:            StatusLoaned,
		Remarks:           remarks,
	}, nil
}

// MarkReturned closes the loan
func (l *LoanItem) MarkReturned(at time.Time, by string) error {
	if l.Status != StatusLoaned {
		return shared.NewDomainError(shared.CodeInvalidState, "loan has already been returned")
	}
	if strings.TrimSpace(by) == "" {
		return shared.NewValidationError("returning user is required")
	}
	l.Status = StatusReturned
	l.ReturnedAt = &at
	l.ReturnedByUserID = strings.TrimSpace(by)
	l.IncrementVersion()
	return nil
}

// IsOverdue reports whether an open loan is past its due date
func (l *LoanItem) IsOverdue(now time.Time) bool {
	return l.Status == StatusLoaned && l.DueDate != nil && now.After(*l.DueDate)
}
