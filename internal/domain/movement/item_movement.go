package movement

import (
	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// ItemMovement is one line of a voucher. Issue movements accumulate the
// quantity returned against them; returns point back at the issue they settle.
type ItemMovement struct {
	shared.BaseAggregateRoot
	Tier               Tier
	IssuanceVoucherID  *uuid.UUID
	LARVoucherID       *uuid.UUID
	OriginalMovementID *uuid.UUID
	ItemID             uuid.UUID
	DistrictID         uuid.UUID
	MetricID           uuid.UUID
	Quantity           int64
	MovementType       MovementType
	IsReturnable       bool
	ReturnedQuantity   int64
}

// NewIssueMovement creates the movement for one line of iv
func NewIssueMovement(iv *IssuanceVoucher, itemID, metricID uuid.UUID, quantity int64, isReturnable bool) (*ItemMovement, error) {
	if iv == nil {
		return nil, shared.NewValidationError("issuance voucher is required")
	}
	if err := validateLine(itemID, metricID, quantity); err != nil {
		return nil, err
	}
	ivID := iv.ID
	return &ItemMovement{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Tier:              iv.Tier,
		IssuanceVoucherID: &ivID,
		ItemID:            itemID,
		DistrictID:        iv.DistrictID(),
		MetricID:          metricID,
		Quantity:          quantity,
		MovementType:      iv.Tier.IssueType(),
		IsReturnable:      isReturnable,
	}, nil
}

// NewReturnMovement creates the movement for one line of lar settling original.
// It does not touch original; callers follow up with original.RecordReturn.
func NewReturnMovement(lar *LARVoucher, original *ItemMovement, quantity int64) (*ItemMovement, error) {
	if lar == nil || original == nil {
		return nil, shared.NewValidationError("return voucher and original movement are required")
	}
	if !original.MovementType.IsIssue() {
		return nil, shared.NewValidationError("movement %s is not an issue movement", original.ID)
	}
	if original.Tier != lar.Tier {
		return nil, shared.NewValidationError("movement %s belongs to the %s tier", original.ID, original.Tier)
	}
	if err := validateLine(original.ItemID, original.MetricID, quantity); err != nil {
		return nil, err
	}
	larID, origID := lar.ID, original.ID
	return &ItemMovement{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		Tier:               lar.Tier,
		LARVoucherID:       &larID,
		OriginalMovementID: &origID,
		ItemID:             original.ItemID,
		DistrictID:         original.DistrictID,
		MetricID:           original.MetricID,
		Quantity:           quantity,
		MovementType:       lar.Tier.ReturnType(),
		IsReturnable:       original.IsReturnable,
	}, nil
}

func validateLine(itemID, metricID uuid.UUID, quantity int64) error {
	if itemID == uuid.Nil {
		return shared.NewValidationError("item is required")
	}
	if metricID == uuid.Nil {
		return shared.NewValidationError("metric is required")
	}
	if quantity <= 0 {
		return shared.NewValidationError("quantity must be positive, got %d", quantity)
	}
	return nil
}

// RemainingReturnable is the quantity that can still come back
func (m *ItemMovement) RemainingReturnable() int64 {
	if !m.MovementType.IsIssue() || !m.IsReturnable {
		return 0
	}
	return m.Quantity - m.ReturnedQuantity
}

// IsOutstanding reports whether a returnable issue still has goods out
func (m *ItemMovement) IsOutstanding() bool {
	return m.RemainingReturnable() > 0
}

// IsFullyReturned reports returnedQuantity == quantity
func (m *ItemMovement) IsFullyReturned() bool {
	return m.MovementType.IsIssue() && m.ReturnedQuantity == m.Quantity
}

// IsPartiallyReturned reports 0 < returnedQuantity < quantity
func (m *ItemMovement) IsPartiallyReturned() bool {
	return m.MovementType.IsIssue() && m.ReturnedQuantity > 0 && m.ReturnedQuantity < m.Quantity
}

// RecordReturn adds q to the returned accumulator
func (m *ItemMovement) RecordReturn(q int64) error {
	if !m.MovementType.IsIssue() {
		return shared.NewInvariantViolation("movement %s is not an issue movement", m.ID)
	}
	if !m.IsReturnable {
		return shared.NewInvariantViolation("movement %s is consumable and cannot be returned", m.ID)
	}
	if q <= 0 {
		return shared.NewValidationError("return quantity must be positive, got %d", q)
	}
	if m.ReturnedQuantity+q > m.Quantity {
		return shared.NewInvariantViolation("movement %s has %d outstanding, cannot return %d",
			m.ID, m.Quantity-m.ReturnedQuantity, q)
	}
	m.ReturnedQuantity += q
	m.IncrementVersion()
	return nil
}
