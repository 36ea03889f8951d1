package movement

import (
	"context"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/domain/stock"
)

// StockService receives goods into the HQ and district stores outside of
// voucher workflows.
type StockService struct {
	scope        TransactionScope
	itemRepo     catalog.ItemRepository
	metricRepo   catalog.MetricRepository
	districtRepo catalog.DistrictRepository
}

// NewStockService creates a new StockService
func NewStockService(
	scope TransactionScope,
	itemRepo catalog.ItemRepository,
	metricRepo catalog.MetricRepository,
	districtRepo catalog.DistrictRepository,
) *StockService {
	return &StockService{
		scope:        scope,
		itemRepo:     itemRepo,
		metricRepo:   metricRepo,
		districtRepo: districtRepo,
	}
}

// AddHQStock adds quantity to the HQ row of an item, creating it on first receipt.
// A present threshold replaces the stored one.
func (s *StockService) AddHQStock(ctx context.Context, req AddHQStockRequest) (*HQStockResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewValidationError("quantity must be positive, got %d", req.Quantity)
	}
	if req.LowStockThreshold != nil && *req.LowStockThreshold < 0 {
		return nil, shared.NewValidationError("low stock threshold cannot be negative")
	}
	if err := s.checkItemAndMetric(ctx, req.ItemID, req.MetricID); err != nil {
		return nil, err
	}

	var result *stock.HQStock
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.HQStockRepo().FindByItem(ctx, req.ItemID)
		if err != nil && !shared.IsNotFound(err) {
			return err
		}
		if existing == nil {
			row, err := stock.NewHQStock(req.ItemID, req.MetricID, req.Quantity, req.LowStockThreshold)
			if err != nil {
				return err
			}
			result = row
			return repos.HQStockRepo().Create(ctx, row)
		}

		if existing.MetricID != req.MetricID {
			return shared.NewValidationError("item %s is stocked at HQ in a different metric", req.ItemID)
		}
		if err := existing.Increase(req.Quantity); err != nil {
			return err
		}
		if req.LowStockThreshold != nil {
			// one version bump per save
			existing.LowStockThreshold = req.LowStockThreshold
		}
		result = existing
		return repos.HQStockRepo().SaveWithLock(ctx, existing)
	})
	if err != nil {
		return nil, err
	}
	resp := ToHQStockResponse(result)
	return &resp, nil
}

// AddDistrictStock adds quantity to a district row, creating it on first receipt.
// An existing row must agree on metric and returnable flag.
func (s *StockService) AddDistrictStock(ctx context.Context, req AddDistrictStockRequest) (*DistrictStockResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewValidationError("quantity must be positive, got %d", req.Quantity)
	}
	if _, err := s.districtRepo.FindByID(ctx, req.DistrictID); err != nil {
		return nil, err
	}
	if err := s.checkItemAndMetric(ctx, req.ItemID, req.MetricID); err != nil {
		return nil, err
	}

	var result *stock.DistrictStock
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		existing, err := repos.DistrictStockRepo().FindByDistrictAndItem(ctx, req.DistrictID, req.ItemID)
		if err != nil && !shared.IsNotFound(err) {
			return err
		}
		if existing == nil {
			row, err := stock.NewDistrictStock(req.DistrictID, req.ItemID, req.MetricID, req.Quantity, req.IsReturnable)
			if err != nil {
				return err
			}
			result = row
			return repos.DistrictStockRepo().Create(ctx, row)
		}

		if err := existing.Accepts(req.MetricID, req.IsReturnable); err != nil {
			return err
		}
		if err := existing.Increase(req.Quantity); err != nil {
			return err
		}
		result = existing
		return repos.DistrictStockRepo().SaveWithLock(ctx, existing)
	})
	if err != nil {
		return nil, err
	}
	resp := ToDistrictStockResponse(result)
	return &resp, nil
}

// SetHQThreshold replaces the HQ low stock threshold of an item. Nil clears it.
func (s *StockService) SetHQThreshold(ctx context.Context, itemID uuid.UUID, threshold *int64) (*HQStockResponse, error) {
	var result *stock.HQStock
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		row, err := repos.HQStockRepo().FindByItem(ctx, itemID)
		if err != nil {
			return err
		}
		if err := row.SetThreshold(threshold); err != nil {
			return err
		}
		result = row
		return repos.HQStockRepo().SaveWithLock(ctx, row)
	})
	if err != nil {
		return nil, err
	}
	resp := ToHQStockResponse(result)
	return &resp, nil
}

func (s *StockService) checkItemAndMetric(ctx context.Context, itemID, metricID uuid.UUID) error {
	if _, err := s.itemRepo.FindByID(ctx, itemID); err != nil {
		return err
	}
	if _, err := s.metricRepo.FindByID(ctx, metricID); err != nil {
		return err
	}
	return nil
}
