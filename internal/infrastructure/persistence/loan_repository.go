package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/loan"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormLoanRepository implements loan.Repository using GORM
type GormLoanRepository struct {
	db *gorm.DB
}

// NewGormLoanRepository creates a new GormLoanRepository
func NewGormLoanRepository(db *gorm.DB) *GormLoanRepository {
	return &GormLoanRepository{db: db}
}

// FindByID finds a loan by ID
func (r *GormLoanRepository) FindByID(ctx context.Context, id uuid.UUID) (*loan.LoanItem, error) {
	var m models.LoanItemModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "LoanItem", id)
	}
	return m.ToDomain(), nil
}

// FindAll lists loans, optionally filtered by status, borrower_g_no and item_id
func (r *GormLoanRepository) FindAll(ctx context.Context, status *loan.Status, filter shared.Filter) ([]loan.LoanItem, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.LoanItemModel{})
	if status != nil {
		query = query.Where("status = ?", string(*status))
	}
	if v, ok := filter.Filters["borrower_g_no"]; ok {
		query = query.Where("borrower_g_no = ?", v)
	}
	if v, ok := filter.Filters["item_id"]; ok {
		query = query.Where("item_id = ?", v)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("event_name LIKE ? OR borrower_name LIKE ?", like, like)
	}

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.LoanItemModel
	if err := applyPaging(query, filter, LoanSortFields, "loan_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return loansToDomain(rows), total, nil
}

// FindOverdue returns open loans whose due date is before now
func (r *GormLoanRepository) FindOverdue(ctx context.Context, now time.Time) ([]loan.LoanItem, error) {
	var rows []models.LoanItemModel
	if err := r.db.WithContext(ctx).
		Where("status = ? AND due_date IS NOT NULL AND due_date < ?", string(loan.StatusLoaned), now).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return loansToDomain(rows), nil
}

// Create inserts a new loan
func (r *GormLoanRepository) Create(ctx context.Context, l *loan.LoanItem) error {
	if err := r.db.WithContext(ctx).Create(models.LoanItemModelFromDomain(l)).Error; err != nil {
		return fmt.Errorf("failed to create loan: %w", err)
	}
	return nil
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormLoanRepository) SaveWithLock(ctx context.Context, l *loan.LoanItem) error {
	result := r.db.WithContext(ctx).
		Model(&models.LoanItemModel{}).
		Where("id = ? AND version = ?", l.ID, l.Version-1).
		Updates(map[string]interface{}{
			"status":              string(l.Status),
			"returned_at":         l.ReturnedAt,
			"returned_by_user_id": l.ReturnedByUserID,
			"remarks":             l.Remarks,
			"version":             l.Version,
			"updated_at":          l.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return lockConflict("Loan")
	}
	return nil
}

func loansToDomain(rows []models.LoanItemModel) []loan.LoanItem {
	out := make([]loan.LoanItem, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var _ loan.Repository = (*GormLoanRepository)(nil)
