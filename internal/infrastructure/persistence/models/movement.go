package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/movement"
)

// IssuanceVoucherModel is the persistence model for IssuanceVoucher. Both tiers
// share the table, told apart by tier.
type IssuanceVoucherModel struct {
	AggregateModel
	Tier                string     `gorm:"type:varchar(20);not null;index"`
	IVNumber            string     `gorm:"column:iv_number;type:varchar(30);not null;uniqueIndex"`
	IssueDate           time.Time  `gorm:"not null"`
	IssuedByUserID      string     `gorm:"type:varchar(100);not null"`
	ReceivingStaffGNo   string     `gorm:"column:receiving_staff_g_no;type:varchar(30)"`
	ReceivingDistrictID *uuid.UUID `gorm:"type:uuid;index"`
	SourceDistrictID    *uuid.UUID `gorm:"type:uuid;index"`
	ReceivingOffice     string     `gorm:"type:varchar(200)"`
	ApprovedBy          string     `gorm:"type:varchar(100)"`
	ApprovalReference   string     `gorm:"type:varchar(100)"`
	Remarks             string     `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (IssuanceVoucherModel) TableName() string {
	return "issuance_vouchers"
}

// ToDomain converts the persistence model to a domain IssuanceVoucher
func (m *IssuanceVoucherModel) ToDomain() *movement.IssuanceVoucher {
	return &movement.IssuanceVoucher{
		BaseAggregateRoot:   m.Root(),
		Tier:                movement.Tier(m.Tier),
		IVNumber:            m.IVNumber,
		IssueDate:           m.IssueDate,
		IssuedByUserID:      m.IssuedByUserID,
		ReceivingStaffGNo:   m.ReceivingStaffGNo,
		ReceivingDistrictID: m.ReceivingDistrictID,
		SourceDistrictID:    m.SourceDistrictID,
		ReceivingOffice:     m.ReceivingOffice,
		ApprovedBy:          m.ApprovedBy,
		ApprovalReference:   m.ApprovalReference,
		Remarks:             m.Remarks,
	}
}

// IssuanceVoucherModelFromDomain creates a new persistence model from a domain IssuanceVoucher
func IssuanceVoucherModelFromDomain(v *movement.IssuanceVoucher) *IssuanceVoucherModel {
	m := &IssuanceVoucherModel{
		Tier:                string(v.Tier),
		IVNumber:            v.IVNumber,
		IssueDate:           v.IssueDate,
		IssuedByUserID:      v.IssuedByUserID,
		ReceivingStaffGNo:   v.ReceivingStaffGNo,
		ReceivingDistrictID: v.ReceivingDistrictID,
		SourceDistrictID:    v.SourceDistrictID,
		ReceivingOffice:     v.ReceivingOffice,
		ApprovedBy:          v.ApprovedBy,
		ApprovalReference:   v.ApprovalReference,
		Remarks:             v.Remarks,
	}
	m.SetRoot(v.BaseAggregateRoot)
	return m
}

// LARVoucherModel is the persistence model for LARVoucher
type LARVoucherModel struct {
	AggregateModel
	Tier             string    `gorm:"type:varchar(20);not null;index"`
	LARNumber        string    `gorm:"column:lar_number;type:varchar(30);not null;uniqueIndex"`
	ReturnDate       time.Time `gorm:"not null"`
	ReturnedByUserID string    `gorm:"type:varchar(100);not null"`
	IVIDRef          uuid.UUID `gorm:"column:iv_id_ref;type:uuid;not null;index"`
	DistrictID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Remarks          string    `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (LARVoucherModel) TableName() string {
	return "lar_vouchers"
}

// ToDomain converts the persistence model to a domain LARVoucher
func (m *LARVoucherModel) ToDomain() *movement.LARVoucher {
	return &movement.LARVoucher{
		BaseAggregateRoot: m.Root(),
		Tier:              movement.Tier(m.Tier),
		LARNumber:         m.LARNumber,
		ReturnDate:        m.ReturnDate,
		ReturnedByUserID:  m.ReturnedByUserID,
		IVIDRef:           m.IVIDRef,
		DistrictID:        m.DistrictID,
		Remarks:           m.Remarks,
	}
}

// LARVoucherModelFromDomain creates a new persistence model from a domain LARVoucher
func LARVoucherModelFromDomain(v *movement.LARVoucher) *LARVoucherModel {
	m := &LARVoucherModel{
		Tier:             string(v.Tier),
		LARNumber:        v.LARNumber,
		ReturnDate:       v.ReturnDate,
		ReturnedByUserID: v.ReturnedByUserID,
		IVIDRef:          v.IVIDRef,
		DistrictID:       v.DistrictID,
		Remarks:          v.Remarks,
	}
	m.SetRoot(v.BaseAggregateRoot)
	return m
}

// ItemMovementModel is the persistence model for ItemMovement.
// An issuance voucher holds at most one line per item.
type ItemMovementModel struct {
	AggregateModel
	Tier               string     `gorm:"type:varchar(20);not null;index"`
	IssuanceVoucherID  *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_item_movement_iv_item,priority:1,where:issuance_voucher_id IS NOT NULL"`
	LARVoucherID       *uuid.UUID `gorm:"column:lar_voucher_id;type:uuid;index"`
	OriginalMovementID *uuid.UUID `gorm:"type:uuid;index"`
	ItemID             uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_item_movement_iv_item,priority:2"`
	DistrictID         uuid.UUID  `gorm:"type:uuid;not null;index"`
	MetricID           uuid.UUID  `gorm:"type:uuid;not null"`
	Quantity           int64      `gorm:"not null"`
	MovementType       string     `gorm:"type:varchar(30);not null"`
	IsReturnable       bool       `gorm:"not null;default:false"`
	ReturnedQuantity   int64      `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ItemMovementModel) TableName() string {
	return "item_movements"
}

// ToDomain converts the persistence model to a domain ItemMovement
func (m *ItemMovementModel) ToDomain() *movement.ItemMovement {
	return &movement.ItemMovement{
		BaseAggregateRoot:  m.Root(),
		Tier:               movement.Tier(m.Tier),
		IssuanceVoucherID:  m.IssuanceVoucherID,
		LARVoucherID:       m.LARVoucherID,
		OriginalMovementID: m.OriginalMovementID,
		ItemID:             m.ItemID,
		DistrictID:         m.DistrictID,
		MetricID:           m.MetricID,
		Quantity:           m.Quantity,
		MovementType:       movement.MovementType(m.MovementType),
		IsReturnable:       m.IsReturnable,
		ReturnedQuantity:   m.ReturnedQuantity,
	}
}

// ItemMovementModelFromDomain creates a new persistence model from a domain ItemMovement
func ItemMovementModelFromDomain(mv *movement.ItemMovement) *ItemMovementModel {
	m := &ItemMovementModel{
		Tier:               string(mv.Tier),
		IssuanceVoucherID:  mv.IssuanceVoucherID,
		LARVoucherID:       mv.LARVoucherID,
		OriginalMovementID: mv.OriginalMovementID,
		ItemID:             mv.ItemID,
		DistrictID:         mv.DistrictID,
		MetricID:           mv.MetricID,
		Quantity:           mv.Quantity,
		MovementType:       string(mv.MovementType),
		IsReturnable:       mv.IsReturnable,
		ReturnedQuantity:   mv.ReturnedQuantity,
	}
	m.SetRoot(mv.BaseAggregateRoot)
	return m
}

// VoucherCounterModel holds the last suffix handed out per prefix and day
type VoucherCounterModel struct {
	Prefix string `gorm:"type:varchar(10);primaryKey;autoIncrement:false"`
	Day    string `gorm:"type:varchar(10);primaryKey;autoIncrement:false"`
	Value  int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (VoucherCounterModel) TableName() string {
	return "voucher_counters"
}
