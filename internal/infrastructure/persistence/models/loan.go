package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/loan"
)

// LoanItemModel is the persistence model for LoanItem
type LoanItemModel struct {
	AggregateModel
	ItemID           uuid.UUID  `gorm:"type:uuid;not null;index"`
	Quantity         int64      `gorm:"not null"`
	BorrowerGNo      string     `gorm:"column:borrower_g_no;type:varchar(30);not null;index"`
	BorrowerName     string     `gorm:"type:varchar(200)"`
	EventName        string     `gorm:"type:varchar(200);not null"`
	LoanDate         time.Time  `gorm:"not null"`
	DueDate          *time.Time `gorm:"index"`
	Status           string     `gorm:"type:varchar(20);not null;index"`
	ReturnedAt       *time.Time
	ReturnedByUserID string `gorm:"type:varchar(100)"`
	Remarks          string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (LoanItemModel) TableName() string {
	return "loan_items"
}

// ToDomain converts the persistence model to a domain LoanItem
func (m *LoanItemModel) ToDomain() *loan.LoanItem {
	return &loan.LoanItem{
		BaseAggregateRoot: m.Root(),
		ItemID:            m.ItemID,
		Quantity:          m.Quantity,
		BorrowerGNo:       m.BorrowerGNo,
		BorrowerName:      m.BorrowerName,
		EventName:         m.EventName,
		LoanDate:          m.LoanDate,
		DueDate:           m.DueDate,
		Status:            loan.Status(m.Status),
		ReturnedAt:        m.ReturnedAt,
		ReturnedByUserID:  m.ReturnedByUserID,
		Remarks:           m.Remarks,
	}
}

// LoanItemModelFromDomain creates a new persistence model from a domain LoanItem
func LoanItemModelFromDomain(l *loan.LoanItem) *LoanItemModel {
	m := &LoanItemModel{
		ItemID:           l.ItemID,
		Quantity:         l.Quantity,
		BorrowerGNo:      l.BorrowerGNo,
		BorrowerName:     l.BorrowerName,
		EventName:        l.EventName,
		LoanDate:         l.LoanDate,
		DueDate:          l.DueDate,
		Status:           string(l.Status),
		ReturnedAt:       l.ReturnedAt,
		ReturnedByUserID: l.ReturnedByUserID,
		Remarks:          l.Remarks,
	}
	m.SetRoot(l.BaseAggregateRoot)
	return m
}

// AllModels lists every model for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&LedgerModel{},
		&ItemModel{},
		&DistrictModel{},
		&MetricModel{},
		&StaffModel{},
		&HQStockModel{},
		&DistrictStockModel{},
		&IssuanceVoucherModel{},
		&LARVoucherModel{},
		&ItemMovementModel{},
		&VoucherCounterModel{},
		&LoanItemModel{},
	}
}
