package movement

import (
	"context"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// QueryService answers read-only questions about balances and movements
type QueryService struct {
	hqRepo       stock.HQStockRepository
	districtRepo stock.DistrictStockRepository
	ivRepo       movement.IssuanceVoucherRepository
	movementRepo movement.ItemMovementRepository
	itemRepo     catalog.ItemRepository
}

// NewQueryService creates a new QueryService
func NewQueryService(
	hqRepo stock.HQStockRepository,
	districtRepo stock.DistrictStockRepository,
	ivRepo movement.IssuanceVoucherRepository,
	movementRepo movement.ItemMovementRepository,
	itemRepo catalog.ItemRepository,
) *QueryService {
	return &QueryService{
		hqRepo:       hqRepo,
		districtRepo: districtRepo,
		ivRepo:       ivRepo,
		movementRepo: movementRepo,
		itemRepo:     itemRepo,
	}
}

// OutstandingReturnable lists the returnable lines of a voucher with goods still out.
// Consumable lines never appear.
func (s *QueryService) OutstandingReturnable(ctx context.Context, tier movement.Tier, voucherID uuid.UUID) ([]OutstandingLineResponse, error) {
	iv, err := s.ivRepo.FindByID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if iv.Tier != tier {
		return nil, shared.NewNotFoundError("IssuanceVoucher", voucherID)
	}
	lines, err := s.movementRepo.FindOutstanding(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	items, err := s.itemsByID(ctx, lines)
	if err != nil {
		return nil, err
	}

	out := make([]OutstandingLineResponse, 0, len(lines))
	for i := range lines {
		m := &lines[i]
		if !m.IsOutstanding() {
			continue
		}
		row := OutstandingLineResponse{
			MovementID:       m.ID,
			ItemID:           m.ItemID,
			OriginalQuantity: m.Quantity,
			ReturnedQuantity: m.ReturnedQuantity,
			Remaining:        m.RemainingReturnable(),
		}
		if it, ok := items[m.ItemID]; ok {
			row.ItemCode = it.Code
			row.ItemName = it.Name
		}
		out = append(out, row)
	}
	return out, nil
}

// CurrentHQStock returns the HQ balance of an item
func (s *QueryService) CurrentHQStock(ctx context.Context, itemID uuid.UUID) (*HQStockResponse, error) {
	row, err := s.hqRepo.FindByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	resp := ToHQStockResponse(row)
	return &resp, nil
}

// CurrentDistrictStock returns a district balance of an item
func (s *QueryService) CurrentDistrictStock(ctx context.Context, districtID, itemID uuid.UUID) (*DistrictStockResponse, error) {
	row, err := s.districtRepo.FindByDistrictAndItem(ctx, districtID, itemID)
	if err != nil {
		return nil, err
	}
	resp := ToDistrictStockResponse(row)
	return &resp, nil
}

// LowHQStock lists HQ rows under threshold, or under their own threshold when nil
func (s *QueryService) LowHQStock(ctx context.Context, threshold *int64) ([]HQStockResponse, error) {
	if threshold != nil && *threshold < 0 {
		return nil, shared.NewValidationError("threshold cannot be negative")
	}
	rows, err := s.hqRepo.FindLow(ctx, threshold)
	if err != nil {
		return nil, err
	}
	out := make([]HQStockResponse, len(rows))
	for i := range rows {
		out[i] = ToHQStockResponse(&rows[i])
	}
	return out, nil
}

// LowDistrictStock lists district rows under threshold, optionally in one district
func (s *QueryService) LowDistrictStock(ctx context.Context, districtID *uuid.UUID, threshold int64) ([]DistrictStockResponse, error) {
	if threshold < 0 {
		return nil, shared.NewValidationError("threshold cannot be negative")
	}
	rows, err := s.districtRepo.FindLow(ctx, districtID, threshold)
	if err != nil {
		return nil, err
	}
	return toDistrictStockResponses(rows), nil
}

// ListHQStock lists HQ rows
func (s *QueryService) ListHQStock(ctx context.Context, filter shared.Filter) ([]HQStockResponse, int64, error) {
	rows, total, err := s.hqRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]HQStockResponse, len(rows))
	for i := range rows {
		out[i] = ToHQStockResponse(&rows[i])
	}
	return out, total, nil
}

// ListDistrictStock lists a district's rows, optionally one ledger category only
func (s *QueryService) ListDistrictStock(ctx context.Context, districtID uuid.UUID, category *stock.Category) ([]DistrictStockResponse, error) {
	if category != nil && !category.IsValid() {
		return nil, shared.NewValidationError("unknown stock category %q", *category)
	}
	rows, err := s.districtRepo.FindByDistrict(ctx, districtID, category)
	if err != nil {
		return nil, err
	}
	return toDistrictStockResponses(rows), nil
}

// ItemMovementHistory lists movements of an item across tiers, newest first
func (s *QueryService) ItemMovementHistory(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]MovementResponse, int64, error) {
	if _, err := s.itemRepo.FindByID(ctx, itemID); err != nil {
		return nil, 0, err
	}
	rows, total, err := s.movementRepo.FindByItem(ctx, itemID, filter)
	if err != nil {
		return nil, 0, err
	}
	return ToMovementResponses(rows), total, nil
}

// HQStockValuation prices every HQ row at its item's unit value
func (s *QueryService) HQStockValuation(ctx context.Context) (*ValuationResponse, error) {
	rows, _, err := s.hqRepo.FindAll(ctx, shared.Filter{})
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ItemID
	}
	items, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Item, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	resp := &ValuationResponse{Lines: make([]ValuationLineResponse, 0, len(rows)), Total: decimal.Zero}
	for _, r := range rows {
		it := byID[r.ItemID]
		value := it.UnitValue.Mul(decimal.NewFromInt(r.Quantity))
		resp.Lines = append(resp.Lines, ValuationLineResponse{
			ItemID:    r.ItemID,
			ItemCode:  it.Code,
			Quantity:  r.Quantity,
			UnitValue: it.UnitValue,
			Value:     value,
		})
		resp.Total = resp.Total.Add(value)
	}
	return resp, nil
}

func (s *QueryService) itemsByID(ctx context.Context, lines []movement.ItemMovement) (map[uuid.UUID]catalog.Item, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.ItemID)
	}
	items, err := s.itemRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]catalog.Item, len(items))
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func toDistrictStockResponses(rows []stock.DistrictStock) []DistrictStockResponse {
	out := make([]DistrictStockResponse, len(rows))
	for i := range rows {
		out[i] = ToDistrictStockResponse(&rows[i])
	}
	return out
}
