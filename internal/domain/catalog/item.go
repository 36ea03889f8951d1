package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item is an entry in the item master. Its code is assigned once from the
// owning ledger's sequence and never changes.
type Item struct {
	shared.BaseAggregateRoot
	Code        string
	Name        string
	Description string
	LedgerID    uuid.UUID
	UnitValue   decimal.Decimal
}

// NewItem creates an item with an already allocated code
func NewItem(ledgerID uuid.UUID, code, name, description string, unitValue decimal.Decimal) (*Item, error) {
	if ledgerID == uuid.Nil {
		return nil, shared.NewValidationError("ledger is required")
	}
	if _, _, err := ParseItemCode(code); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("item name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewValidationError("item name cannot exceed 200 characters")
	}
	if unitValue.IsNegative() {
		return nil, shared.NewValidationError("unit value cannot be negative")
	}

	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              name,
		Description:       description,
		LedgerID:          ledgerID,
		UnitValue:         unitValue,
	}
	item.AddDomainEvent(NewItemCreatedEvent(item))
	return item, nil
}

// Rename changes the display fields. The code is left untouched.
func (i *Item) Rename(name, description string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewValidationError("item name cannot be empty")
	}
	i.Name = name
	i.Description = description
	i.IncrementVersion()
	return nil
}
