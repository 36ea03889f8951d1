package handler

import (
	"github.com/gin-gonic/gin"
	catalogapp "github.com/psim/backend/internal/application/catalog"
)

// CatalogHandler serves ledgers, items and the reference data
type CatalogHandler struct {
	BaseHandler
	ledgers *catalogapp.LedgerService
	items   *catalogapp.ItemService
	refs    *catalogapp.ReferenceService
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(ledgers *catalogapp.LedgerService, items *catalogapp.ItemService, refs *catalogapp.ReferenceService) *CatalogHandler {
	return &CatalogHandler{ledgers: ledgers, items: items, refs: refs}
}

// pageOf resolves the page and page size reported in list meta
func pageOf(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return page, pageSize
}

// CreateLedger handles POST /catalog/ledgers
func (h *CatalogHandler) CreateLedger(c *gin.Context) {
	var req catalogapp.CreateLedgerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ledger, err := h.ledgers.CreateLedger(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ledger)
}

// ListLedgers handles GET /catalog/ledgers
func (h *CatalogHandler) ListLedgers(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	ledgers, total, err := h.ledgers.ListLedgers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, ledgers, total, page, size)
}

// GetLedger handles GET /catalog/ledgers/:id
func (h *CatalogHandler) GetLedger(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	ledger, err := h.ledgers.GetLedger(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ledger)
}

// NextItemCode handles GET /catalog/ledgers/:id/next-item-code.
// The code is a preview; nothing is reserved.
func (h *CatalogHandler) NextItemCode(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	code, err := h.ledgers.PreviewItemCode(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"ledger_id": id, "next_item_code": code})
}

// CreateItem handles POST /catalog/items
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req catalogapp.CreateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.items.CreateItem(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// ListItems handles GET /catalog/items
func (h *CatalogHandler) ListItems(c *gin.Context) {
	var filter catalogapp.ItemListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	ledgerID, ok := h.optionalUUIDQuery(c, "ledger_id")
	if !ok {
		return
	}
	filter.LedgerID = ledgerID
	items, total, err := h.items.ListItems(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, items, total, page, size)
}

// GetItem handles GET /catalog/items/:id
func (h *CatalogHandler) GetItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	item, err := h.items.GetItem(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// UpdateItem handles PUT /catalog/items/:id
func (h *CatalogHandler) UpdateItem(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	var req catalogapp.UpdateItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.items.UpdateItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// CreateDistrict handles POST /catalog/districts
func (h *CatalogHandler) CreateDistrict(c *gin.Context) {
	var req catalogapp.CreateDistrictRequest
	if !h.bindJSON(c, &req) {
		return
	}
	district, err := h.refs.CreateDistrict(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, district)
}

// ListDistricts handles GET /catalog/districts
func (h *CatalogHandler) ListDistricts(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	districts, total, err := h.refs.ListDistricts(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, districts, total, page, size)
}

// GetDistrict handles GET /catalog/districts/:id
func (h *CatalogHandler) GetDistrict(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	district, err := h.refs.GetDistrict(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, district)
}

// CreateMetric handles POST /catalog/metrics
func (h *CatalogHandler) CreateMetric(c *gin.Context) {
	var req catalogapp.CreateMetricRequest
	if !h.bindJSON(c, &req) {
		return
	}
	metric, err := h.refs.CreateMetric(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, metric)
}

// ListMetrics handles GET /catalog/metrics
func (h *CatalogHandler) ListMetrics(c *gin.Context) {
	metrics, err := h.refs.ListMetrics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, metrics)
}

// RegisterStaff handles POST /catalog/staff
func (h *CatalogHandler) RegisterStaff(c *gin.Context) {
	var req catalogapp.RegisterStaffRequest
	if !h.bindJSON(c, &req) {
		return
	}
	staff, err := h.refs.RegisterStaff(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, staff)
}

// ListStaff handles GET /catalog/staff
func (h *CatalogHandler) ListStaff(c *gin.Context) {
	var filter catalogapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	staff, total, err := h.refs.ListStaff(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, size := pageOf(filter.Page, filter.PageSize)
	h.SuccessWithMeta(c, staff, total, page, size)
}

// GetStaff handles GET /catalog/staff/:gno
func (h *CatalogHandler) GetStaff(c *gin.Context) {
	staff, err := h.refs.GetStaffByGNo(c.Request.Context(), c.Param("gno"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, staff)
}
