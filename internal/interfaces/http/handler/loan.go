package handler

import (
	"github.com/gin-gonic/gin"
	loanapp "github.com/psim/backend/internal/application/loan"
	"github.com/psim/backend/internal/interfaces/http/middleware"
)

// LoanHandler serves short-term loans of HQ goods for events
type LoanHandler struct {
	BaseHandler
	loans *loanapp.LoanService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(loans *loanapp.LoanService) *LoanHandler {
	return &LoanHandler{loans: loans}
}

// LoanOut handles POST /loans
func (h *LoanHandler) LoanOut(c *gin.Context) {
	var req loanapp.LoanOutRequest
	if !h.bindJSON(c, &req) {
		return
	}
	l, err := h.loans.LoanOut(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, l)
}

// ListLoans handles GET /loans
func (h *LoanHandler) ListLoans(c *gin.Context) {
	var filter loanapp.LoanListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	itemID, ok := h.optionalUUIDQuery(c, "item_id")
	if !ok {
		return
	}
	filter.ItemID = itemID
	loans, total, err := h.loans.ListLoans(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, loans, total, page, size)
}

// ListOverdue handles GET /loans/overdue
func (h *LoanHandler) ListOverdue(c *gin.Context) {
	loans, err := h.loans.ListOverdue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loans)
}

// GetLoan handles GET /loans/:id
func (h *LoanHandler) GetLoan(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	l, err := h.loans.GetLoan(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, l)
}

// ReturnLoan handles POST /loans/:id/return. The body is optional.
func (h *LoanHandler) ReturnLoan(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req loanapp.ReturnLoanRequest
	if c.Request.ContentLength != 0 && !h.bindJSON(c, &req) {
		return
	}
	l, err := h.loans.ReturnLoan(c.Request.Context(), id, middleware.GetUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, l)
}
