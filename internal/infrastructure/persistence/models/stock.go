package models

import (
	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/stock"
)

// HQStockModel is the persistence model for the HQStock aggregate root.
type HQStockModel struct {
	AggregateModel
	ItemID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	MetricID          uuid.UUID `gorm:"type:uuid;not null"`
	Quantity          int64     `gorm:"not null;default:0"`
	LowStockThreshold *int64
}

// TableName returns the table name for GORM
func (HQStockModel) TableName() string {
	return "hq_stocks"
}

// ToDomain converts the persistence model to a domain HQStock
func (m *HQStockModel) ToDomain() *stock.HQStock {
	return &stock.HQStock{
		BaseAggregateRoot: m.Root(),
		ItemID:            m.ItemID,
		MetricID:          m.MetricID,
		Quantity:          m.Quantity,
		LowStockThreshold: m.LowStockThreshold,
	}
}

// FromDomain populates the persistence model from a domain HQStock
func (m *HQStockModel) FromDomain(s *stock.HQStock) {
	m.SetRoot(s.BaseAggregateRoot)
	m.ItemID = s.ItemID
	m.MetricID = s.MetricID
	m.Quantity = s.Quantity
	m.LowStockThreshold = s.LowStockThreshold
}

// HQStockModelFromDomain creates a new persistence model from a domain HQStock
func HQStockModelFromDomain(s *stock.HQStock) *HQStockModel {
	m := &HQStockModel{}
	m.FromDomain(s)
	return m
}

// DistrictStockModel is the persistence model for the DistrictStock aggregate root.
type DistrictStockModel struct {
	AggregateModel
	DistrictID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_district_stock_district_item,priority:1"`
	ItemID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_district_stock_district_item,priority:2"`
	MetricID     uuid.UUID `gorm:"type:uuid;not null"`
	Quantity     int64     `gorm:"not null;default:0"`
	IsReturnable bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (DistrictStockModel) TableName() string {
	return "district_stocks"
}

// ToDomain converts the persistence model to a domain DistrictStock
func (m *DistrictStockModel) ToDomain() *stock.DistrictStock {
	return &stock.DistrictStock{
		BaseAggregateRoot: m.Root(),
		DistrictID:        m.DistrictID,
		ItemID:            m.ItemID,
		MetricID:          m.MetricID,
		Quantity:          m.Quantity,
		IsReturnable:      m.IsReturnable,
	}
}

// FromDomain populates the persistence model from a domain DistrictStock
func (m *DistrictStockModel) FromDomain(s *stock.DistrictStock) {
	m.SetRoot(s.BaseAggregateRoot)
	m.DistrictID = s.DistrictID
	m.ItemID = s.ItemID
	m.MetricID = s.MetricID
	m.Quantity = s.Quantity
	m.IsReturnable = s.IsReturnable
}

// DistrictStockModelFromDomain creates a new persistence model from a domain DistrictStock
func DistrictStockModelFromDomain(s *stock.DistrictStock) *DistrictStockModel {
	m := &DistrictStockModel{}
	m.FromDomain(s)
	return m
}
