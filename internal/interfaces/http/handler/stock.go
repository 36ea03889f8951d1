package handler

import (
	"github.com/gin-gonic/gin"
	movementapp "github.com/psim/backend/internal/application/movement"
	"github.com/psim/backend/internal/domain/stock"
)

// StockHandler serves the HQ and district stock tiers
type StockHandler struct {
	BaseHandler
	stock *movementapp.StockService
	query *movementapp.QueryService
}

// NewStockHandler creates a new StockHandler
func NewStockHandler(stockService *movementapp.StockService, query *movementapp.QueryService) *StockHandler {
	return &StockHandler{stock: stockService, query: query}
}

// LowHQStockQuery selects HQ rows below a threshold. Without one each row
// is compared against its own threshold.
type LowHQStockQuery struct {
	Threshold *int64 `form:"threshold" binding:"omitempty,gte=0"`
}

// LowDistrictStockQuery selects district rows below a threshold. district_id
// is read separately and narrows the scan to one district.
type LowDistrictStockQuery struct {
	Threshold *int64 `form:"threshold" binding:"required,gte=0"`
}

// DistrictStockQuery narrows a district listing to one ledger category
type DistrictStockQuery struct {
	Category string `form:"category" binding:"omitempty,oneof=LEDGER_I LEDGER_II"`
}

// AddHQStock handles POST /stock/hq
func (h *StockHandler) AddHQStock(c *gin.Context) {
	var req movementapp.AddHQStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	row, err := h.stock.AddHQStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, row)
}

// ListHQStock handles GET /stock/hq
func (h *StockHandler) ListHQStock(c *gin.Context) {
	filter, ok := h.listFilter(c, "created_at")
	if !ok {
		return
	}
	rows, total, err := h.query.ListHQStock(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rows, total, filter.Page, filter.PageSize)
}

// GetHQStock handles GET /stock/hq/:item_id
func (h *StockHandler) GetHQStock(c *gin.Context) {
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	row, err := h.query.CurrentHQStock(c.Request.Context(), itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// LowHQStock handles GET /stock/hq/low
func (h *StockHandler) LowHQStock(c *gin.Context) {
	var q LowHQStockQuery
	if !h.bindQuery(c, &q) {
		return
	}
	rows, err := h.query.LowHQStock(c.Request.Context(), q.Threshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// SetHQThreshold handles PUT /stock/hq/:item_id/threshold. A null threshold clears it.
func (h *StockHandler) SetHQThreshold(c *gin.Context) {
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	var req movementapp.SetThresholdRequest
	if !h.bindJSON(c, &req) {
		return
	}
	row, err := h.stock.SetHQThreshold(c.Request.Context(), itemID, req.LowStockThreshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// HQValuation handles GET /stock/hq/valuation
func (h *StockHandler) HQValuation(c *gin.Context) {
	valuation, err := h.query.HQStockValuation(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, valuation)
}

// AddDistrictStock handles POST /stock/districts
func (h *StockHandler) AddDistrictStock(c *gin.Context) {
	var req movementapp.AddDistrictStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	row, err := h.stock.AddDistrictStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, row)
}

// ListDistrictStock handles GET /stock/districts/:district_id
func (h *StockHandler) ListDistrictStock(c *gin.Context) {
	districtID, ok := h.uuidParam(c, "district_id")
	if !ok {
		return
	}
	var q DistrictStockQuery
	if !h.bindQuery(c, &q) {
		return
	}
	var category *stock.Category
	if q.Category != "" {
		cat := stock.Category(q.Category)
		category = &cat
	}
	rows, err := h.query.ListDistrictStock(c.Request.Context(), districtID, category)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// GetDistrictStock handles GET /stock/districts/:district_id/items/:item_id
func (h *StockHandler) GetDistrictStock(c *gin.Context) {
	districtID, ok := h.uuidParam(c, "district_id")
	if !ok {
		return
	}
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	row, err := h.query.CurrentDistrictStock(c.Request.Context(), districtID, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, row)
}

// LowDistrictStock handles GET /stock/districts/low
func (h *StockHandler) LowDistrictStock(c *gin.Context) {
	var q LowDistrictStockQuery
	if !h.bindQuery(c, &q) {
		return
	}
	districtID, ok := h.optionalUUIDQuery(c, "district_id")
	if !ok {
		return
	}
	rows, err := h.query.LowDistrictStock(c.Request.Context(), districtID, *q.Threshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rows)
}

// ItemMovements handles GET /items/:item_id/movements
func (h *StockHandler) ItemMovements(c *gin.Context) {
	itemID, ok := h.uuidParam(c, "item_id")
	if !ok {
		return
	}
	filter, ok := h.listFilter(c, "created_at")
	if !ok {
		return
	}
	rows, total, err := h.query.ItemMovementHistory(c.Request.Context(), itemID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, rows, total, filter.Page, filter.PageSize)
}
