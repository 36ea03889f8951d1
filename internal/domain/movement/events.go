package movement

import (
	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeIssuanceVoucherCreated = "IssuanceVoucherCreated"
	EventTypeLARVoucherCreated      = "LARVoucherCreated"
)

// IssuanceVoucherCreatedEvent is published after an IV is committed
type IssuanceVoucherCreatedEvent struct {
	shared.BaseDomainEvent
	VoucherID  uuid.UUID `json:"voucher_id"`
	Tier       Tier      `json:"tier"`
	IVNumber   string    `json:"iv_number"`
	DistrictID uuid.UUID `json:"district_id"`
}

// NewIssuanceVoucherCreatedEvent creates a new IssuanceVoucherCreatedEvent
func NewIssuanceVoucherCreatedEvent(v *IssuanceVoucher) *IssuanceVoucherCreatedEvent {
	return &IssuanceVoucherCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeIssuanceVoucherCreated, AggregateTypeIssuanceVoucher, v.ID),
		VoucherID:       v.ID,
		Tier:            v.Tier,
		IVNumber:        v.IVNumber,
		DistrictID:      v.DistrictID(),
	}
}

// LARVoucherCreatedEvent is published after a LAR is committed
type LARVoucherCreatedEvent struct {
	shared.BaseDomainEvent
	VoucherID uuid.UUID `json:"voucher_id"`
	Tier      Tier      `json:"tier"`
	LARNumber string    `json:"lar_number"`
	IVIDRef   uuid.UUID `json:"iv_id_ref"`
}

// NewLARVoucherCreatedEvent creates a new LARVoucherCreatedEvent
func NewLARVoucherCreatedEvent(v *LARVoucher) *LARVoucherCreatedEvent {
	return &LARVoucherCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLARVoucherCreated, AggregateTypeLARVoucher, v.ID),
		VoucherID:       v.ID,
		Tier:            v.Tier,
		LARNumber:       v.LARNumber,
		IVIDRef:         v.IVIDRef,
	}
}
