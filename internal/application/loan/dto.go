package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/loan"
)

// LoanOutRequest represents a request to lend goods for an event
type LoanOutRequest struct {
	ItemID       uuid.UUID  `json:"item_id" binding:"required"`
	Quantity     int64      `json:"quantity" binding:"required,gt=0"`
	BorrowerGNo  string     `json:"borrower_gno" binding:"required,max=50"`
	BorrowerName string     `json:"borrower_name" binding:"max=200"`
	EventName    string     `json:"event_name" binding:"required,max=200"`
	LoanDate     *time.Time `json:"loan_date"`
	DueDate      *time.Time `json:"due_date"`
	Remarks      string     `json:"remarks" binding:"max=2000"`
}

// ReturnLoanRequest represents the body of a loan return
type ReturnLoanRequest struct {
	Remarks string `json:"remarks" binding:"max=2000"`
}

// LoanListFilter represents filter options for the loan list
type LoanListFilter struct {
	Status      string     `form:"status" binding:"omitempty,oneof=Loaned Returned"`
	BorrowerGNo string     `form:"borrower_gno"`
	ItemID      *uuid.UUID `form:"-"`
	Search      string     `form:"search"`
	Page        int        `form:"page"`
	PageSize    int        `form:"page_size" binding:"omitempty,max=100"`
	OrderBy     string     `form:"order_by"`
	OrderDir    string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LoanResponse represents a loan in API responses
type LoanResponse struct {
	ID               uuid.UUID  `json:"id"`
	ItemID           uuid.UUID  `json:"item_id"`
	Quantity         int64      `json:"quantity"`
	BorrowerGNo      string     `json:"borrower_gno"`
	BorrowerName     string     `json:"borrower_name"`
	EventName        string     `json:"event_name"`
	LoanDate         time.Time  `json:"loan_date"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	Status           string     `json:"status"`
	ReturnedAt       *time.Time `json:"returned_at,omitempty"`
	ReturnedByUserID string     `json:"returned_by_user_id,omitempty"`
	Remarks          string     `json:"remarks"`
	IsOverdue        bool       `json:"is_overdue"`
	Version          int        `json:"version"`
}

// ToLoanResponse converts a domain LoanItem to LoanResponse. now decides IsOverdue.
func ToLoanResponse(l *loan.LoanItem, now time.Time) LoanResponse {
	return LoanResponse{
		ID:               l.ID,
		ItemID:           l.ItemID,
		Quantity:         l.Quantity,
		BorrowerGNo:      l.BorrowerGNo,
		BorrowerName:     l.BorrowerName,
		EventName:        l.EventName,
		LoanDate:         l.LoanDate,
		DueDate:          l.DueDate,
		Status:           string(l.Status),
		ReturnedAt:       l.ReturnedAt,
		ReturnedByUserID: l.ReturnedByUserID,
		Remarks:          l.Remarks,
		IsOverdue:        l.IsOverdue(now),
		Version:          l.Version,
	}
}

func toLoanResponses(rows []loan.LoanItem, now time.Time) []LoanResponse {
	out := make([]LoanResponse, len(rows))
	for i := range rows {
		out[i] = ToLoanResponse(&rows[i], now)
	}
	return out
}
