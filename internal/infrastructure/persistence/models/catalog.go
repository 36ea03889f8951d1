package models

import (
	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// LedgerModel is the persistence model for the Ledger aggregate root.
type LedgerModel struct {
	AggregateModel
	Code                  string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name                  string `gorm:"type:varchar(200);not null"`
	CurrentSequenceNumber int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (LedgerModel) TableName() string {
	return "ledgers"
}

// ToDomain converts the persistence model to a domain Ledger
func (m *LedgerModel) ToDomain() *catalog.Ledger {
	return &catalog.Ledger{
		BaseAggregateRoot:     m.Root(),
		Code:                  m.Code,
		Name:                  m.Name,
		CurrentSequenceNumber: m.CurrentSequenceNumber,
	}
}

// FromDomain populates the persistence model from a domain Ledger
func (m *LedgerModel) FromDomain(l *catalog.Ledger) {
	m.SetRoot(l.BaseAggregateRoot)
	m.Code = l.Code
	m.Name = l.Name
	m.CurrentSequenceNumber = l.CurrentSequenceNumber
}

// LedgerModelFromDomain creates a new persistence model from a domain Ledger
func LedgerModelFromDomain(l *catalog.Ledger) *LedgerModel {
	m := &LedgerModel{}
	m.FromDomain(l)
	return m
}

// ItemModel is the persistence model for the Item aggregate root.
type ItemModel struct {
	AggregateModel
	Code        string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string          `gorm:"type:varchar(200);not null"`
	Description string          `gorm:"type:text"`
	LedgerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	UnitValue   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (ItemModel) TableName() string {
	return "items"
}

// ToDomain converts the persistence model to a domain Item
func (m *ItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		Name:              m.Name,
		Description:       m.Description,
		LedgerID:          m.LedgerID,
		UnitValue:         m.UnitValue,
	}
}

// FromDomain populates the persistence model from a domain Item
func (m *ItemModel) FromDomain(i *catalog.Item) {
	m.SetRoot(i.BaseAggregateRoot)
	m.Code = i.Code
	m.Name = i.Name
	m.Description = i.Description
	m.LedgerID = i.LedgerID
	m.UnitValue = i.UnitValue
}

// ItemModelFromDomain creates a new persistence model from a domain Item
func ItemModelFromDomain(i *catalog.Item) *ItemModel {
	m := &ItemModel{}
	m.FromDomain(i)
	return m
}

// DistrictModel is the persistence model for District
type DistrictModel struct {
	BaseModel
	Code string `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (DistrictModel) TableName() string {
	return "districts"
}

// ToDomain converts the persistence model to a domain District
func (m *DistrictModel) ToDomain() *catalog.District {
	return &catalog.District{BaseEntity: m.Entity(), Code: m.Code, Name: m.Name}
}

// DistrictModelFromDomain creates a new persistence model from a domain District
func DistrictModelFromDomain(d *catalog.District) *DistrictModel {
	m := &DistrictModel{Code: d.Code, Name: d.Name}
	m.SetEntity(d.BaseEntity)
	return m
}

// MetricModel is the persistence model for Metric
type MetricModel struct {
	BaseModel
	Code string `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name string `gorm:"type:varchar(100);not null"`
}

// TableName returns the table name for GORM
func (MetricModel) TableName() string {
	return "metrics"
}

// ToDomain converts the persistence model to a domain Metric
func (m *MetricModel) ToDomain() *catalog.Metric {
	return &catalog.Metric{BaseEntity: m.Entity(), Code: m.Code, Name: m.Name}
}

// MetricModelFromDomain creates a new persistence model from a domain Metric
func MetricModelFromDomain(d *catalog.Metric) *MetricModel {
	m := &MetricModel{Code: d.Code, Name: d.Name}
	m.SetEntity(d.BaseEntity)
	return m
}

// StaffModel is the persistence model for Staff
type StaffModel struct {
	BaseModel
	GNo        string     `gorm:"column:g_no;type:varchar(30);not null;uniqueIndex"`
	Name       string     `gorm:"type:varchar(200);not null"`
	Rank       string     `gorm:"type:varchar(50)"`
	DistrictID *uuid.UUID `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StaffModel) TableName() string {
	return "staff"
}

// ToDomain converts the persistence model to a domain Staff
func (m *StaffModel) ToDomain() *catalog.Staff {
	return &catalog.Staff{
		BaseEntity: m.Entity(),
		GNo:        m.GNo,
		Name:       m.Name,
		Rank:       m.Rank,
		DistrictID: m.DistrictID,
	}
}

// StaffModelFromDomain creates a new persistence model from a domain Staff
func StaffModelFromDomain(s *catalog.Staff) *StaffModel {
	m := &StaffModel{GNo: s.GNo, Name: s.Name, Rank: s.Rank, DistrictID: s.DistrictID}
	m.SetEntity(s.BaseEntity)
	return m
}
