package handler

import (
	"github.com/gin-gonic/gin"
	movementapp "github.com/psim/backend/internal/application/movement"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/interfaces/http/middleware"
)

// VoucherHandler serves the issuance (IV) and return (LAR) vouchers of one
// tier. The HQ tier issues to districts; the district tier issues to offices.
type VoucherHandler struct {
	BaseHandler
	tier     movement.Tier
	issuance *movementapp.IssuanceService
	returns  *movementapp.ReturnService
	query    *movementapp.QueryService
}

// NewVoucherHandler creates a VoucherHandler bound to tier
func NewVoucherHandler(
	tier movement.Tier,
	issuance *movementapp.IssuanceService,
	returns *movementapp.ReturnService,
	query *movementapp.QueryService,
) *VoucherHandler {
	return &VoucherHandler{tier: tier, issuance: issuance, returns: returns, query: query}
}

// Tier returns the tier the handler serves
func (h *VoucherHandler) Tier() movement.Tier {
	return h.tier
}

// CreateIssuance handles POST /hq/issuances and /district/issuances
func (h *VoucherHandler) CreateIssuance(c *gin.Context) {
	var (
		voucher *movementapp.IssuanceVoucherResponse
		err     error
	)
	switch h.tier {
	case movement.TierHQ:
		var req movementapp.IssueToDistrictRequest
		if !h.bindJSON(c, &req) {
			return
		}
		req.IssuedByUserID = middleware.GetUserID(c)
		voucher, err = h.issuance.IssueToDistrict(c.Request.Context(), req)
	default:
		var req movementapp.IssueToOfficeRequest
		if !h.bindJSON(c, &req) {
			return
		}
		req.IssuedByUserID = middleware.GetUserID(c)
		voucher, err = h.issuance.IssueToOffice(c.Request.Context(), req)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// ListIssuances handles GET /{tier}/issuances
func (h *VoucherHandler) ListIssuances(c *gin.Context) {
	filter, ok := h.listFilter(c, "issue_date")
	if !ok {
		return
	}
	vouchers, total, err := h.issuance.ListIssuanceVouchers(c.Request.Context(), h.tier, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, vouchers, total, filter.Page, filter.PageSize)
}

// GetIssuance handles GET /{tier}/issuances/:id
func (h *VoucherHandler) GetIssuance(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	voucher, err := h.issuance.GetIssuanceVoucher(c.Request.Context(), h.tier, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}

// Outstanding handles GET /{tier}/issuances/:id/outstanding: the returnable
// lines of the voucher that still have goods out.
func (h *VoucherHandler) Outstanding(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	lines, err := h.query.OutstandingReturnable(c.Request.Context(), h.tier, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, lines)
}

// CreateReturn handles POST /{tier}/returns
func (h *VoucherHandler) CreateReturn(c *gin.Context) {
	var req movementapp.ReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.ReturnedByUserID = middleware.GetUserID(c)

	var (
		voucher *movementapp.LARVoucherResponse
		err     error
	)
	if h.tier == movement.TierHQ {
		voucher, err = h.returns.ReturnFromDistrict(c.Request.Context(), req)
	} else {
		voucher, err = h.returns.ReturnFromOffice(c.Request.Context(), req)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, voucher)
}

// ListReturns handles GET /{tier}/returns. iv_id narrows to one issuance voucher.
func (h *VoucherHandler) ListReturns(c *gin.Context) {
	filter, ok := h.listFilter(c, "return_date")
	if !ok {
		return
	}
	ivID, ok := h.optionalUUIDQuery(c, "iv_id")
	if !ok {
		return
	}
	vouchers, total, err := h.returns.ListReturnVouchers(c.Request.Context(), h.tier, ivID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, vouchers, total, filter.Page, filter.PageSize)
}

// GetReturn handles GET /{tier}/returns/:id
func (h *VoucherHandler) GetReturn(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	voucher, err := h.returns.GetReturnVoucher(c.Request.Context(), h.tier, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, voucher)
}
