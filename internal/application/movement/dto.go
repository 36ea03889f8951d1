package movement

import (
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// AddHQStockRequest represents a request to receive goods into the HQ store
type AddHQStockRequest struct {
	ItemID            uuid.UUID `json:"item_id" binding:"required"`
	MetricID          uuid.UUID `json:"metric_id" binding:"required"`
	Quantity          int64     `json:"quantity" binding:"required,gt=0"`
	LowStockThreshold *int64    `json:"low_stock_threshold" binding:"omitempty,gte=0"`
}

// AddDistrictStockRequest represents a request to receive goods into a district store
type AddDistrictStockRequest struct {
	DistrictID   uuid.UUID `json:"district_id" binding:"required"`
	ItemID       uuid.UUID `json:"item_id" binding:"required"`
	MetricID     uuid.UUID `json:"metric_id" binding:"required"`
	Quantity     int64     `json:"quantity" binding:"required,gt=0"`
	IsReturnable bool      `json:"is_returnable"`
}

// SetThresholdRequest sets or clears an HQ low stock threshold
type SetThresholdRequest struct {
	LowStockThreshold *int64 `json:"low_stock_threshold" binding:"omitempty,gte=0"`
}

// IssueLineRequest is one item line of an issuance
type IssueLineRequest struct {
	ItemID       uuid.UUID `json:"item_id" binding:"required"`
	Quantity     int64     `json:"quantity" binding:"required,gt=0"`
	IsReturnable bool      `json:"is_returnable"`
}

// IssueToDistrictRequest moves goods from HQ into a district store
type IssueToDistrictRequest struct {
	DistrictID        uuid.UUID          `json:"district_id" binding:"required"`
	ReceivingStaffGNo string             `json:"receiving_staff_gno" binding:"required"`
	IssueDate         *time.Time         `json:"issue_date"`
	ApprovedBy        string             `json:"approved_by"`
	ApprovalReference string             `json:"approval_reference"`
	Remarks           string             `json:"remarks"`
	Lines             []IssueLineRequest `json:"lines" binding:"required,min=1,dive"`
	IssuedByUserID    string             `json:"-"`
}

// IssueToOfficeRequest moves goods from a district store to an internal office.
// Each line's IsReturnable must match the district stock row.
type IssueToOfficeRequest struct {
	SourceDistrictID  uuid.UUID          `json:"source_district_id" binding:"required"`
	ReceivingOffice   string             `json:"receiving_office" binding:"required"`
	ReceivingStaffGNo string             `json:"receiving_staff_gno"`
	IssueDate         *time.Time         `json:"issue_date"`
	ApprovedBy        string             `json:"approved_by"`
	ApprovalReference string             `json:"approval_reference"`
	Remarks           string             `json:"remarks"`
	Lines             []IssueLineRequest `json:"lines" binding:"required,min=1,dive"`
	IssuedByUserID    string             `json:"-"`
}

// ReturnLineRequest returns quantity units against one issue movement
type ReturnLineRequest struct {
	OriginalMovementID uuid.UUID `json:"original_movement_id" binding:"required"`
	Quantity           int64     `json:"quantity" binding:"required,gt=0"`
}

// ReturnRequest records a LAR voucher against an issuance voucher
type ReturnRequest struct {
	VoucherID        uuid.UUID           `json:"voucher_id" binding:"required"`
	ReturnDate       *time.Time          `json:"return_date"`
	Remarks          string              `json:"remarks"`
	Lines            []ReturnLineRequest `json:"lines" binding:"required,min=1,dive"`
	ReturnedByUserID string              `json:"-"`
}

// HQStockResponse represents an HQ stock row in API responses
type HQStockResponse struct {
	ID                uuid.UUID `json:"id"`
	ItemID            uuid.UUID `json:"item_id"`
	MetricID          uuid.UUID `json:"metric_id"`
	Quantity          int64     `json:"quantity"`
	LowStockThreshold *int64    `json:"low_stock_threshold,omitempty"`
	IsLow             bool      `json:"is_low"`
	Version           int       `json:"version"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DistrictStockResponse represents a district stock row in API responses
type DistrictStockResponse struct {
	ID           uuid.UUID `json:"id"`
	DistrictID   uuid.UUID `json:"district_id"`
	ItemID       uuid.UUID `json:"item_id"`
	MetricID     uuid.UUID `json:"metric_id"`
	Quantity     int64     `json:"quantity"`
	IsReturnable bool      `json:"is_returnable"`
	Category     string    `json:"category"`
	Version      int       `json:"version"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MovementResponse represents one item movement
type MovementResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Tier               string     `json:"tier"`
	MovementType       string     `json:"movement_type"`
	IssuanceVoucherID  *uuid.UUID `json:"issuance_voucher_id,omitempty"`
	LARVoucherID       *uuid.UUID `json:"lar_voucher_id,omitempty"`
	OriginalMovementID *uuid.UUID `json:"original_movement_id,omitempty"`
	ItemID             uuid.UUID  `json:"item_id"`
	DistrictID         uuid.UUID  `json:"district_id"`
	MetricID           uuid.UUID  `json:"metric_id"`
	Quantity           int64      `json:"quantity"`
	IsReturnable       bool       `json:"is_returnable"`
	ReturnedQuantity   int64      `json:"returned_quantity"`
	CreatedAt          time.Time  `json:"created_at"`
}

// IssuanceVoucherResponse is an IV with its lines
type IssuanceVoucherResponse struct {
	ID                  uuid.UUID          `json:"id"`
	Tier                string             `json:"tier"`
	IVNumber            string             `json:"iv_number"`
	IssueDate           time.Time          `json:"issue_date"`
	IssuedByUserID      string             `json:"issued_by_user_id"`
	ReceivingStaffGNo   string             `json:"receiving_staff_gno,omitempty"`
	ReceivingDistrictID *uuid.UUID         `json:"receiving_district_id,omitempty"`
	SourceDistrictID    *uuid.UUID         `json:"source_district_id,omitempty"`
	ReceivingOffice     string             `json:"receiving_office,omitempty"`
	ApprovedBy          string             `json:"approved_by,omitempty"`
	ApprovalReference   string             `json:"approval_reference,omitempty"`
	Remarks             string             `json:"remarks,omitempty"`
	Movements           []MovementResponse `json:"movements,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
}

// LARVoucherResponse is a LAR with its lines
type LARVoucherResponse struct {
	ID               uuid.UUID          `json:"id"`
	Tier             string             `json:"tier"`
	LARNumber        string             `json:"lar_number"`
	ReturnDate       time.Time          `json:"return_date"`
	ReturnedByUserID string             `json:"returned_by_user_id"`
	IVIDRef          uuid.UUID          `json:"iv_id_ref"`
	DistrictID       uuid.UUID          `json:"district_id"`
	Remarks          string             `json:"remarks,omitempty"`
	Movements        []MovementResponse `json:"movements,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// OutstandingLineResponse is an issue line with goods still out
type OutstandingLineResponse struct {
	MovementID       uuid.UUID `json:"movement_id"`
	ItemID           uuid.UUID `json:"item_id"`
	ItemCode         string    `json:"item_code"`
	ItemName         string    `json:"item_name"`
	OriginalQuantity int64     `json:"original_quantity"`
	ReturnedQuantity int64     `json:"returned_quantity"`
	Remaining        int64     `json:"remaining"`
}

// ValuationLineResponse is one priced HQ row
type ValuationLineResponse struct {
	ItemID    uuid.UUID       `json:"item_id"`
	ItemCode  string          `json:"item_code"`
	Quantity  int64           `json:"quantity"`
	UnitValue decimal.Decimal `json:"unit_value"`
	Value     decimal.Decimal `json:"value"`
}

// ValuationResponse totals HQ stock at book value
type ValuationResponse struct {
	Lines []ValuationLineResponse `json:"lines"`
	Total decimal.Decimal         `json:"total"`
}

// ToHQStockResponse converts a domain HQStock to a response
func ToHQStockResponse(s *stock.HQStock) HQStockResponse {
	return HQStockResponse{
		ID:                s.ID,
		ItemID:            s.ItemID,
		MetricID:          s.MetricID,
		Quantity:          s.Quantity,
		LowStockThreshold: s.LowStockThreshold,
		IsLow:             s.IsLow(nil),
		Version:           s.Version,
		UpdatedAt:         s.UpdatedAt,
	}
}

// ToDistrictStockResponse converts a domain DistrictStock to a response
func ToDistrictStockResponse(s *stock.DistrictStock) DistrictStockResponse {
	return DistrictStockResponse{
		ID:           s.ID,
		DistrictID:   s.DistrictID,
		ItemID:       s.ItemID,
		MetricID:     s.MetricID,
		Quantity:     s.Quantity,
		IsReturnable: s.IsReturnable,
		Category:     string(s.Category()),
		Version:      s.Version,
		UpdatedAt:    s.UpdatedAt,
	}
}

// ToMovementResponse converts a domain ItemMovement to a response
func ToMovementResponse(m *movement.ItemMovement) MovementResponse {
	return MovementResponse{
		ID:                 m.ID,
		Tier:               string(m.Tier),
		MovementType:       string(m.MovementType),
		IssuanceVoucherID:  m.IssuanceVoucherID,
		LARVoucherID:       m.LARVoucherID,
		OriginalMovementID: m.OriginalMovementID,
		ItemID:             m.ItemID,
		DistrictID:         m.DistrictID,
		MetricID:           m.MetricID,
		Quantity:           m.Quantity,
		IsReturnable:       m.IsReturnable,
		ReturnedQuantity:   m.ReturnedQuantity,
		CreatedAt:          m.CreatedAt,
	}
}

// ToMovementResponses converts a slice of movements
func ToMovementResponses(ms []movement.ItemMovement) []MovementResponse {
	out := make([]MovementResponse, len(ms))
	for i := range ms {
		out[i] = ToMovementResponse(&ms[i])
	}
	return out
}

// ToIssuanceVoucherResponse converts an IV and its lines to a response
func ToIssuanceVoucherResponse(v *movement.IssuanceVoucher, lines []movement.ItemMovement) IssuanceVoucherResponse {
	return IssuanceVoucherResponse{
		ID:                  v.ID,
		Tier:                string(v.Tier),
		IVNumber:            v.IVNumber,
		IssueDate:           v.IssueDate,
		IssuedByUserID:      v.IssuedByUserID,
		ReceivingStaffGNo:   v.ReceivingStaffGNo,
		ReceivingDistrictID: v.ReceivingDistrictID,
		SourceDistrictID:    v.SourceDistrictID,
		ReceivingOffice:     v.ReceivingOffice,
		ApprovedBy:          v.ApprovedBy,
		ApprovalReference:   v.ApprovalReference,
		Remarks:             v.Remarks,
		Movements:           ToMovementResponses(lines),
		CreatedAt:           v.CreatedAt,
	}
}

// ToLARVoucherResponse converts a LAR and its lines to a response
func ToLARVoucherResponse(v *movement.LARVoucher, lines []movement.ItemMovement) LARVoucherResponse {
	return LARVoucherResponse{
		ID:               v.ID,
		Tier:             string(v.Tier),
		LARNumber:        v.LARNumber,
		ReturnDate:       v.ReturnDate,
		ReturnedByUserID: v.ReturnedByUserID,
		IVIDRef:          v.IVIDRef,
		DistrictID:       v.DistrictID,
		Remarks:          v.Remarks,
		Movements:        ToMovementResponses(lines),
		CreatedAt:        v.CreatedAt,
	}
}

func derefMovements(ms []*movement.ItemMovement) []movement.ItemMovement {
	out := make([]movement.ItemMovement, len(ms))
	for i, m := range ms {
		out[i] = *m
	}
	return out
}
