package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/domain/stock"
	"github.com/psim/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormHQStockRepository implements stock.HQStockRepository using GORM
type GormHQStockRepository struct {
	db *gorm.DB
}

// NewGormHQStockRepository creates a new GormHQStockRepository
func NewGormHQStockRepository(db *gorm.DB) *GormHQStockRepository {
	return &GormHQStockRepository{db: db}
}

// FindByItem finds the HQ row for an item
func (r *GormHQStockRepository) FindByItem(ctx context.Context, itemID uuid.UUID) (*stock.HQStock, error) {
	var m models.HQStockModel
	if err := r.db.WithContext(ctx).First(&m, "item_id = ?", itemID).Error; err != nil {
		return nil, notFoundOr(err, "HQ stock for item", itemID)
	}
	return m.ToDomain(), nil
}

// FindAll lists HQ rows
func (r *GormHQStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.HQStock, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.HQStockModel{})
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.HQStockModel
	if err := applyPaging(query, filter, StockSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return hqStocksToDomain(rows), total, nil
}

// FindLow returns rows below threshold, or below their own threshold when it is nil
func (r *GormHQStockRepository) FindLow(ctx context.Context, threshold *int64) ([]stock.HQStock, error) {
	query := r.db.WithContext(ctx).Model(&models.HQStockModel{})
	if threshold != nil {
		query = query.Where("quantity < ?", *threshold)
	} else {
		query = query.Where("low_stock_threshold IS NOT NULL AND quantity < low_stock_threshold")
	}
	var rows []models.HQStockModel
	if err := query.Order("quantity ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return hqStocksToDomain(rows), nil
}

// Create inserts a new HQ row
func (r *GormHQStockRepository) Create(ctx context.Context, s *stock.HQStock) error {
	if err := r.db.WithContext(ctx).Create(models.HQStockModelFromDomain(s)).Error; err != nil {
		return fmt.Errorf("failed to create HQ stock: %w", err)
	}
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormHQStockRepository) SaveWithLock(ctx context.Context, s *stock.HQStock) error {
	result := r.db.WithContext(ctx).
		Model(&models.HQStockModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"quantity":            s.Quantity,
			"low_stock_threshold": s.LowStockThreshold,
			"version":             s.Version,
			"updated_at":          s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lockConflict("HQ stock")
	}
	return nil
}

func hqStocksToDomain(rows []models.HQStockModel) []stock.HQStock {
	out := make([]stock.HQStock, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormDistrictStockRepository implements stock.DistrictStockRepository using GORM
type GormDistrictStockRepository struct {
	db *gorm.DB
}

// NewGormDistrictStockRepository creates a new GormDistrictStockRepository
func NewGormDistrictStockRepository(db *gorm.DB) *GormDistrictStockRepository {
	return &GormDistrictStockRepository{db: db}
}

// FindByDistrictAndItem finds the district row for an item
func (r *GormDistrictStockRepository) FindByDistrictAndItem(ctx context.Context, districtID, itemID uuid.UUID) (*stock.DistrictStock, error) {
	var m models.DistrictStockModel
	if err := r.db.WithContext(ctx).
		Where("district_id = ? AND item_id = ?", districtID, itemID).
		First(&m).Error; err != nil {
		return nil, notFoundOr(err, "District stock for item", itemID)
	}
	return m.ToDomain(), nil
}

// FindByDistrict lists rows of a district, optionally one category only
func (r *GormDistrictStockRepository) FindByDistrict(ctx context.Context, districtID uuid.UUID, category *stock.Category) ([]stock.DistrictStock, error) {
	query := r.db.WithContext(ctx).Where("district_id = ?", districtID)
	if category != nil {
		query = query.Where("is_returnable = ?", *category == stock.CategoryReturnable)
	}
	var rows []models.DistrictStockModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return districtStocksToDomain(rows), nil
}

// FindLow returns rows below threshold, optionally within one district
func (r *GormDistrictStockRepository) FindLow(ctx context.Context, districtID *uuid.UUID, threshold int64) ([]stock.DistrictStock, error) {
	query := r.db.WithContext(ctx).Where("quantity < ?", threshold)
	if districtID != nil {
		query = query.Where("district_id = ?", *districtID)
	}
	var rows []models.DistrictStockModel
	if err := query.Order("quantity ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return districtStocksToDomain(rows), nil
}

// Create inserts a new district row
func (r *GormDistrictStockRepository) Create(ctx context.Context, s *stock.DistrictStock) error {
	if err := r.db.WithContext(ctx).Create(models.DistrictStockModelFromDomain(s)).Error; err != nil {
		return fmt.Errorf("failed to create district stock: %w", err)
	}
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormDistrictStockRepository) SaveWithLock(ctx context.Context, s *stock.DistrictStock) error {
	result := r.db.WithContext(ctx).
		Model(&models.DistrictStockModel{}).
		Where("id = ? AND version = ?", s.ID, s.Version-1).
		Updates(map[string]interface{}{
			"quantity":   s.Quantity,
			"version":    s.Version,
			"updated_at": s.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lockConflict("District stock")
	}
	return nil
}

func districtStocksToDomain(rows []models.DistrictStockModel) []stock.DistrictStock {
	out := make([]stock.DistrictStock, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// Ensure interfaces are implemented
var (
	_ stock.HQStockRepository       = (*GormHQStockRepository)(nil)
	_ stock.DistrictStockRepository = (*GormDistrictStockRepository)(nil)
)
