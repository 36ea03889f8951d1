package catalog

import (
	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// Event type constants
const (
	EventTypeItemCreated = "ItemCreated"
)

// ItemCreatedEvent is published when an item is added to the item master
type ItemCreatedEvent struct {
	shared.BaseDomainEvent
	ItemID   uuid.UUID `json:"item_id"`
	Code     string    `json:"code"`
	Name     string    `json:"name"`
	LedgerID uuid.UUID `json:"ledger_id"`
}

// NewItemCreatedEvent creates a new ItemCreatedEvent
func NewItemCreatedEvent(item *Item) *ItemCreatedEvent {
	return &ItemCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemCreated, AggregateTypeItem, item.ID),
		ItemID:          item.ID,
		Code:            item.Code,
		Name:            item.Name,
		LedgerID:        item.LedgerID,
	}
}
