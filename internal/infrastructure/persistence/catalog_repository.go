package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLedgerRepository implements catalog.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// FindByID finds a ledger by ID
func (r *GormLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Ledger, error) {
	var m models.LedgerModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Ledger", id)
	}
	return m.ToDomain(), nil
}

// FindByCode finds a ledger by code
func (r *GormLedgerRepository) FindByCode(ctx context.Context, code string) (*catalog.Ledger, error) {
	var m models.LedgerModel
	if err := r.db.WithContext(ctx).First(&m, "code = ?", code).Error; err != nil {
		return nil, notFoundOr(err, "Ledger", code)
	}
	return m.ToDomain(), nil
}

// FindAll lists ledgers
func (r *GormLedgerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Ledger, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LedgerModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.LedgerModel
	if err := applyPaging(query, filter, CatalogSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Ledger, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new ledger
func (r *GormLedgerRepository) Create(ctx context.Context, ledger *catalog.Ledger) error {
	return r.db.WithContext(ctx).Create(models.LedgerModelFromDomain(ledger)).Error
}

// GormSequenceRepository implements catalog.SequenceRepository.
// Call it with a transaction handle so the row lock taken by the increment is
// held until the item insert commits.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// NextItemSequence increments ledgers.current_sequence_number and returns the new value
func (r *GormSequenceRepository) NextItemSequence(ctx context.Context, ledgerID uuid.UUID) (int, error) {
	db := r.db.WithContext(ctx)
	result := db.Model(&models.LedgerModel{}).
		Where("id = ?", ledgerID).
		UpdateColumns(map[string]interface{}{
			"current_sequence_number": gorm.Expr("current_sequence_number + 1"),
			"version":                 gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to advance ledger sequence: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return 0, shared.NewNotFoundError("Ledger", ledgerID)
	}

	var seq int
	row := db.Model(&models.LedgerModel{}).
		Select("current_sequence_number").
		Where("id = ?", ledgerID).
		Row()
	if err := row.Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to read ledger sequence: %w", err)
	}
	return seq, nil
}

// GormItemRepository implements catalog.ItemRepository using GORM
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new GormItemRepository
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID finds an item by ID
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var m models.ItemModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Item", id)
	}
	return m.ToDomain(), nil
}

// FindByCode finds an item by its code
func (r *GormItemRepository) FindByCode(ctx context.Context, code string) (*catalog.Item, error) {
	var m models.ItemModel
	if err := r.db.WithContext(ctx).First(&m, "code = ?", code).Error; err != nil {
		return nil, notFoundOr(err, "Item", code)
	}
	return m.ToDomain(), nil
}

// FindByIDs finds items by IDs. Missing IDs are skipped.
func (r *GormItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Item, error) {
	if len(ids) == 0 {
		return []catalog.Item{}, nil
	}
	var rows []models.ItemModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Item, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindAll lists items, optionally restricted to filter.Filters["ledger_id"]
func (r *GormItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ItemModel{})
	if ledgerID, ok := filter.Filters["ledger_id"]; ok {
		query = query.Where("ledger_id = ?", ledgerID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ItemModel
	if err := applyPaging(query, filter, CatalogSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Item, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new item
func (r *GormItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).Create(models.ItemModelFromDomain(item)).Error
}

// Save updates the mutable item fields. The code is never written.
func (r *GormItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return r.db.WithContext(ctx).
		Model(&models.ItemModel{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"name":        item.Name,
			"description": item.Description,
			"unit_value":  item.UnitValue,
			"version":     item.Version,
			"updated_at":  item.UpdatedAt,
		}).Error
}

// GormDistrictRepository implements catalog.DistrictRepository using GORM
type GormDistrictRepository struct {
	db *gorm.DB
}

// NewGormDistrictRepository creates a new GormDistrictRepository
func NewGormDistrictRepository(db *gorm.DB) *GormDistrictRepository {
	return &GormDistrictRepository{db: db}
}

// FindByID finds a district by ID
func (r *GormDistrictRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.District, error) {
	var m models.DistrictModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "District", id)
	}
	return m.ToDomain(), nil
}

// FindAll lists districts
func (r *GormDistrictRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.District, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.DistrictModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.DistrictModel
	if err := applyPaging(query, filter, CatalogSortFields, "code").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]catalog.District, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new district
func (r *GormDistrictRepository) Create(ctx context.Context, district *catalog.District) error {
	return r.db.WithContext(ctx).Create(models.DistrictModelFromDomain(district)).Error
}

// GormMetricRepository implements catalog.MetricRepository using GORM
type GormMetricRepository struct {
	db *gorm.DB
}

// NewGormMetricRepository creates a new GormMetricRepository
func NewGormMetricRepository(db *gorm.DB) *GormMetricRepository {
	return &GormMetricRepository{db: db}
}

// FindByID finds a metric by ID
func (r *GormMetricRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Metric, error) {
	var m models.MetricModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "Metric", id)
	}
	return m.ToDomain(), nil
}

// FindAll lists every metric ordered by code
func (r *GormMetricRepository) FindAll(ctx context.Context) ([]catalog.Metric, error) {
	var rows []models.MetricModel
	if err := r.db.WithContext(ctx).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Metric, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Create inserts a new metric
func (r *GormMetricRepository) Create(ctx context.Context, metric *catalog.Metric) error {
	return r.db.WithContext(ctx).Create(models.MetricModelFromDomain(metric)).Error
}

// GormStaffRepository implements catalog.StaffRepository using GORM
type GormStaffRepository struct {
	db *gorm.DB
}

// NewGormStaffRepository creates a new GormStaffRepository
func NewGormStaffRepository(db *gorm.DB) *GormStaffRepository {
	return &GormStaffRepository{db: db}
}

// FindByGNo finds a staff member by GNo
func (r *GormStaffRepository) FindByGNo(ctx context.Context, gNo string) (*catalog.Staff, error) {
	var m models.StaffModel
	if err := r.db.WithContext(ctx).First(&m, "g_no = ?", gNo).Error; err != nil {
		return nil, notFoundOr(err, "Staff", gNo)
	}
	return m.ToDomain(), nil
}

// ExistsByGNo checks whether a staff member with gNo exists
func (r *GormStaffRepository) ExistsByGNo(ctx context.Context, gNo string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StaffModel{}).Where("g_no = ?", gNo).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll lists staff, optionally restricted to filter.Filters["district_id"]
func (r *GormStaffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Staff, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StaffModel{})
	if districtID, ok := filter.Filters["district_id"]; ok {
		query = query.Where("district_id = ?", districtID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("g_no LIKE ? OR name LIKE ?", like, like)
	}
	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StaffModel
	if err := applyPaging(query, filter, CatalogSortFields, "g_no").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Staff, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new staff member
func (r *GormStaffRepository) Create(ctx context.Context, staff *catalog.Staff) error {
	return r.db.WithContext(ctx).Create(models.StaffModelFromDomain(staff)).Error
}

// Ensure interfaces are implemented
var (
	_ catalog.LedgerRepository   = (*GormLedgerRepository)(nil)
	_ catalog.SequenceRepository = (*GormSequenceRepository)(nil)
	_ catalog.ItemRepository     = (*GormItemRepository)(nil)
	_ catalog.DistrictRepository = (*GormDistrictRepository)(nil)
	_ catalog.MetricRepository   = (*GormMetricRepository)(nil)
	_ catalog.StaffRepository    = (*GormStaffRepository)(nil)
)
