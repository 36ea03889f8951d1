package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormIssuanceVoucherRepository implements movement.IssuanceVoucherRepository using GORM
type GormIssuanceVoucherRepository struct {
	db *gorm.DB
}

// NewGormIssuanceVoucherRepository creates a new GormIssuanceVoucherRepository
func NewGormIssuanceVoucherRepository(db *gorm.DB) *GormIssuanceVoucherRepository {
	return &GormIssuanceVoucherRepository{db: db}
}

// FindByID finds a voucher by ID
func (r *GormIssuanceVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*movement.IssuanceVoucher, error) {
	var m models.IssuanceVoucherModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "IssuanceVoucher", id)
	}
	return m.ToDomain(), nil
}

// FindByNumber finds a voucher by its IV number
func (r *GormIssuanceVoucherRepository) FindByNumber(ctx context.Context, ivNumber string) (*movement.IssuanceVoucher, error) {
	var m models.IssuanceVoucherModel
	if err := r.db.WithContext(ctx).First(&m, "iv_number = ?", ivNumber).Error; err != nil {
		return nil, notFoundOr(err, "IssuanceVoucher", ivNumber)
	}
	return m.ToDomain(), nil
}

// FindAll lists vouchers of a tier
func (r *GormIssuanceVoucherRepository) FindAll(ctx context.Context, tier movement.Tier, filter shared.Filter) ([]movement.IssuanceVoucher, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.IssuanceVoucherModel{}).Where("tier = ?", string(tier))
	if v, ok := filter.Filters["district_id"]; ok {
		if tier == movement.TierHQ {
			query = query.Where("receiving_district_id = ?", v)
		} else {
			query = query.Where("source_district_id = ?", v)
		}
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("iv_number LIKE ? OR receiving_staff_g_no LIKE ? OR receiving_office LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.IssuanceVoucherModel
	if err := applyPaging(query, filter, VoucherSortFields, "issue_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]movement.IssuanceVoucher, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new voucher
func (r *GormIssuanceVoucherRepository) Create(ctx context.Context, v *movement.IssuanceVoucher) error {
	if err := r.db.WithContext(ctx).Create(models.IssuanceVoucherModelFromDomain(v)).Error; err != nil {
		return fmt.Errorf("failed to create issuance voucher: %w", err)
	}
	return nil
}

// GormLARVoucherRepository implements movement.LARVoucherRepository using GORM
type GormLARVoucherRepository struct {
	db *gorm.DB
}

// NewGormLARVoucherRepository creates a new GormLARVoucherRepository
func NewGormLARVoucherRepository(db *gorm.DB) *GormLARVoucherRepository {
	return &GormLARVoucherRepository{db: db}
}

// FindByID finds a return voucher by ID
func (r *GormLARVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*movement.LARVoucher, error) {
	var m models.LARVoucherModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "LARVoucher", id)
	}
	return m.ToDomain(), nil
}

// FindAll lists return vouchers of a tier
func (r *GormLARVoucherRepository) FindAll(ctx context.Context, tier movement.Tier, ivID *uuid.UUID, filter shared.Filter) ([]movement.LARVoucher, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LARVoucherModel{}).Where("tier = ?", string(tier))
	if ivID != nil {
		query = query.Where("iv_id_ref = ?", *ivID)
	}
	if v, ok := filter.Filters["district_id"]; ok {
		query = query.Where("district_id = ?", v)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.LARVoucherModel
	if err := applyPaging(query, filter, VoucherSortFields, "return_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]movement.LARVoucher, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new return voucher
func (r *GormLARVoucherRepository) Create(ctx context.Context, v *movement.LARVoucher) error {
	if err := r.db.WithContext(ctx).Create(models.LARVoucherModelFromDomain(v)).Error; err != nil {
		return fmt.Errorf("failed to create LAR voucher: %w", err)
	}
	return nil
}

// GormItemMovementRepository implements movement.ItemMovementRepository using GORM
type GormItemMovementRepository struct {
	db *gorm.DB
}

// NewGormItemMovementRepository creates a new GormItemMovementRepository
func NewGormItemMovementRepository(db *gorm.DB) *GormItemMovementRepository {
	return &GormItemMovementRepository{db: db}
}

// FindByID finds a movement by ID
func (r *GormItemMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*movement.ItemMovement, error) {
	var m models.ItemMovementModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "ItemMovement", id)
	}
	return m.ToDomain(), nil
}

// FindByIDs finds movements by IDs. Unknown IDs are skipped.
func (r *GormItemMovementRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]movement.ItemMovement, error) {
	if len(ids) == 0 {
		return []movement.ItemMovement{}, nil
	}
	var rows []models.ItemMovementModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return movementsToDomain(rows), nil
}

// FindByIssuanceVoucher returns the issue lines of an IV
func (r *GormItemMovementRepository) FindByIssuanceVoucher(ctx context.Context, ivID uuid.UUID) ([]movement.ItemMovement, error) {
	var rows []models.ItemMovementModel
	if err := r.db.WithContext(ctx).
		Where("issuance_voucher_id = ?", ivID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return movementsToDomain(rows), nil
}

// FindByLARVoucher returns the return lines of a LAR
func (r *GormItemMovementRepository) FindByLARVoucher(ctx context.Context, larID uuid.UUID) ([]movement.ItemMovement, error) {
	var rows []models.ItemMovementModel
	if err := r.db.WithContext(ctx).
		Where("lar_voucher_id = ?", larID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return movementsToDomain(rows), nil
}

// FindOutstanding returns returnable issue lines of an IV with goods still out
func (r *GormItemMovementRepository) FindOutstanding(ctx context.Context, ivID uuid.UUID) ([]movement.ItemMovement, error) {
	var rows []models.ItemMovementModel
	if err := r.db.WithContext(ctx).
		Where("issuance_voucher_id = ? AND is_returnable = ? AND returned_quantity < quantity", ivID, true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return movementsToDomain(rows), nil
}

// FindByItem returns movements of an item across tiers, newest first
func (r *GormItemMovementRepository) FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]movement.ItemMovement, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ItemMovementModel{}).Where("item_id = ?", itemID)
	if v, ok := filter.Filters["tier"]; ok {
		query = query.Where("tier = ?", v)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}
	var rows []models.ItemMovementModel
	if err := applyPaging(query, filter, CommonSortFields, "created_at").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return movementsToDomain(rows), total, nil
}

// CreateBatch inserts movements in one statement
func (r *GormItemMovementRepository) CreateBatch(ctx context.Context, movements []*movement.ItemMovement) error {
	if len(movements) == 0 {
		return nil
	}
	rows := make([]*models.ItemMovementModel, len(movements))
	for i, mv := range movements {
		rows[i] = models.ItemMovementModelFromDomain(mv)
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to create item movements: %w", err)
	}
	return nil
}

// SaveWithLock saves the returned accumulator with optimistic locking
func (r *GormItemMovementRepository) SaveWithLock(ctx context.Context, m *movement.ItemMovement) error {
	result := r.db.WithContext(ctx).
		Model(&models.ItemMovementModel{}).
		Where("id = ? AND version = ?", m.ID, m.Version-1).
		Updates(map[string]interface{}{
			"returned_quantity": m.ReturnedQuantity,
			"version":           m.Version,
			"updated_at":        m.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lockConflict("Item movement")
	}
	return nil
}

func movementsToDomain(rows []models.ItemMovementModel) []movement.ItemMovement {
	out := make([]movement.ItemMovement, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormVoucherSequencer implements movement.VoucherSequencer on the voucher_counters table.
// The increment is a single upsert so concurrent callers never share a suffix.
type GormVoucherSequencer struct {
	db *gorm.DB
}

// NewGormVoucherSequencer creates a new GormVoucherSequencer
func NewGormVoucherSequencer(db *gorm.DB) *GormVoucherSequencer {
	return &GormVoucherSequencer{db: db}
}

// NextDailySequence atomically increments and returns the counter for (prefix, day)
func (s *GormVoucherSequencer) NextDailySequence(ctx context.Context, prefix movement.VoucherPrefix, day time.Time) (int, error) {
	key := day.Format("2006-01-02")
	counter := models.VoucherCounterModel{Prefix: string(prefix), Day: key, Value: 1}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "prefix"}, {Name: "day"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value": gorm.Expr("voucher_counters.value + 1"),
			}),
		}).Create(&counter).Error; err != nil {
			return err
		}
		return tx.Model(&models.VoucherCounterModel{}).
			Select("value").
			Where("prefix = ? AND day = ?", string(prefix), key).
			Row().Scan(&counter.Value)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to allocate %s sequence: %w", prefix, err)
	}
	return counter.Value, nil
}

// Ensure interfaces are implemented
var (
	_ movement.IssuanceVoucherRepository = (*GormIssuanceVoucherRepository)(nil)
	_ movement.LARVoucherRepository      = (*GormLARVoucherRepository)(nil)
	_ movement.ItemMovementRepository    = (*GormItemMovementRepository)(nil)
	_ movement.VoucherSequencer          = (*GormVoucherSequencer)(nil)
)
