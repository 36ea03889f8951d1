package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// HQStockRepository defines the interface for HQ stock persistence
type HQStockRepository interface {
	// FindByItem returns the HQ row for an item
	FindByItem(ctx context.Context, itemID uuid.UUID) (*HQStock, error)

	// FindAll lists HQ rows
	FindAll(ctx context.Context, filter shared.Filter) ([]HQStock, int64, error)

	// FindLow returns rows whose quantity is below threshold. When threshold is nil
	// each row is compared against its own low_stock_threshold.
	FindLow(ctx context.Context, threshold *int64) ([]HQStock, error)

	// Create inserts a new row
	Create(ctx context.Context, s *HQStock) error

	// SaveWithLock persists s if its stored version is still s.Version-1.
	// Returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, s *HQStock) error
}

// DistrictStockRepository defines the interface for district stock persistence
type DistrictStockRepository interface {
	// FindByDistrictAndItem returns the district row for an item
	FindByDistrictAndItem(ctx context.Context, districtID, itemID uuid.UUID) (*DistrictStock, error)

	// FindByDistrict lists rows of a district, optionally restricted to one category
	FindByDistrict(ctx context.Context, districtID uuid.UUID, category *Category) ([]DistrictStock, error)

	// FindLow returns rows below threshold, optionally restricted to one district
	FindLow(ctx context.Context, districtID *uuid.UUID, threshold int64) ([]DistrictStock, error)

	Create(ctx context.Context, s *DistrictStock) error
	SaveWithLock(ctx context.Context, s *DistrictStock) error
}
