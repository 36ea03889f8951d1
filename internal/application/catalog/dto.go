package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreateLedgerRequest represents a request to create a ledger
type CreateLedgerRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// LedgerResponse represents a ledger in API responses
type LedgerResponse struct {
	ID                    uuid.UUID `json:"id"`
	Code                  string    `json:"code"`
	Name                  string    `json:"name"`
	CurrentSequenceNumber int       `json:"current_sequence_number"`
	NextItemCode          string    `json:"next_item_code"`
	CreatedAt             time.Time `json:"created_at"`
}

// CreateItemRequest represents a request to add an item to a ledger.
// The code is assigned by the server.
type CreateItemRequest struct {
	LedgerID    uuid.UUID        `json:"ledger_id" binding:"required"`
	Name        string           `json:"name" binding:"required,min=1,max=200"`
	Description string           `json:"description" binding:"max=2000"`
	UnitValue   *decimal.Decimal `json:"unit_value"`
}

// UpdateItemRequest represents a request to rename an item
type UpdateItemRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=200"`
	Description string `json:"description" binding:"max=2000"`
}

// ItemResponse represents an item in API responses
type ItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	LedgerID    uuid.UUID       `json:"ledger_id"`
	UnitValue   decimal.Decimal `json:"unit_value"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Version     int             `json:"version"`
}

// ItemListFilter represents filter options for the item list
type ItemListFilter struct {
	Search   string     `form:"search"`
	LedgerID *uuid.UUID `form:"-"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size" binding:"omitempty,max=100"`
	OrderBy  string     `form:"order_by"`
	OrderDir string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ListFilter represents the plain paging options of the reference lists
type ListFilter struct {
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size" binding:"omitempty,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToDomain fills in paging defaults and converts to a domain filter
func (f ListFilter) ToDomain(defaultOrder string) shared.Filter {
	out := shared.DefaultFilter()
	out.Search = f.Search
	out.OrderBy = defaultOrder
	out.OrderDir = "asc"
	if f.Page > 0 {
		out.Page = f.Page
	}
	if f.PageSize > 0 {
		out.PageSize = f.PageSize
	}
	if f.OrderBy != "" {
		out.OrderBy = f.OrderBy
	}
	if f.OrderDir != "" {
		out.OrderDir = f.OrderDir
	}
	return out
}

// CreateDistrictRequest represents a request to register a district store
type CreateDistrictRequest struct {
	Code string `json:"code" binding:"required,min=1,max=50"`
	Name string `json:"name" binding:"required,min=1,max=200"`
}

// DistrictResponse represents a district in API responses
type DistrictResponse struct {
	ID        uuid.UUID `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateMetricRequest represents a request to register a unit of measure
type CreateMetricRequest struct {
	Code string `json:"code" binding:"required,min=1,max=20"`
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// MetricResponse represents a metric in API responses
type MetricResponse struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
	Name string    `json:"name"`
}

// RegisterStaffRequest represents a request to register a staff member
type RegisterStaffRequest struct {
	GNo        string     `json:"gno" binding:"required,min=1,max=50"`
	Name       string     `json:"name" binding:"required,min=1,max=200"`
	Rank       string     `json:"rank" binding:"max=100"`
	DistrictID *uuid.UUID `json:"district_id"`
}

// StaffResponse represents a staff member in API responses
type StaffResponse struct {
	ID         uuid.UUID  `json:"id"`
	GNo        string     `json:"gno"`
	Name       string     `json:"name"`
	Rank       string     `json:"rank"`
	DistrictID *uuid.UUID `json:"district_id,omitempty"`
}

// ToLedgerResponse converts a domain Ledger to LedgerResponse
func ToLedgerResponse(l *catalog.Ledger) LedgerResponse {
	return LedgerResponse{
		ID:                    l.ID,
		Code:                  l.Code,
		Name:                  l.Name,
		CurrentSequenceNumber: l.CurrentSequenceNumber,
		NextItemCode:          l.NextItemCode(),
		CreatedAt:             l.CreatedAt,
	}
}

// ToItemResponse converts a domain Item to ItemResponse
func ToItemResponse(i *catalog.Item) ItemResponse {
	return ItemResponse{
		ID:          i.ID,
		Code:        i.Code,
		Name:        i.Name,
		Description: i.Description,
		LedgerID:    i.LedgerID,
		UnitValue:   i.UnitValue,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		Version:     i.Version,
	}
}

// ToItemResponses converts a slice of items
func ToItemResponses(items []catalog.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i := range items {
		out[i] = ToItemResponse(&items[i])
	}
	return out
}

func toDistrictResponse(d *catalog.District) DistrictResponse {
	return DistrictResponse{ID: d.ID, Code: d.Code, Name: d.Name, CreatedAt: d.CreatedAt}
}

func toMetricResponse(m *catalog.Metric) MetricResponse {
	return MetricResponse{ID: m.ID, Code: m.Code, Name: m.Name}
}

func toStaffResponse(s *catalog.Staff) StaffResponse {
	return StaffResponse{ID: s.ID, GNo: s.GNo, Name: s.Name, Rank: s.Rank, DistrictID: s.DistrictID}
}
