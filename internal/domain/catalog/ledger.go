package catalog

import (
	"strings"

	"github.com/psim/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeLedger = "Ledger"
	AggregateTypeItem   = "Item"
)

// Ledger is a named register of items. Each ledger owns a monotonic sequence
// from which item codes are derived.
type Ledger struct {
	shared.BaseAggregateRoot
	Code                  string
	Name                  string
	CurrentSequenceNumber int
}

// NewLedger creates a new ledger with its sequence at zero
func NewLedger(code, name string) (*Ledger, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewValidationError("ledger code cannot be empty")
	}
	if len(code) > 50 {
		return nil, shared.NewValidationError("ledger code cannot exceed 50 characters")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("ledger name cannot be empty")
	}
	if NumberPart(code) == "" {
		return nil, shared.NewValidationError("ledger code %q has no number part", code)
	}

	return &Ledger{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              code,
		Name:              strings.TrimSpace(name),
	}, nil
}

// NumberPart returns the text after the last '-' of the ledger code
func (l *Ledger) NumberPart() string {
	return NumberPart(l.Code)
}

// NextItemCode previews the code the next item created on this ledger will receive.
// It does not advance the sequence.
func (l *Ledger) NextItemCode() string {
	return FormatItemCode(l.NumberPart(), l.CurrentSequenceNumber+1)
}

// AdvanceSequence moves the sequence to seq. The sequence never decreases.
func (l *Ledger) AdvanceSequence(seq int) error {
	if seq <= l.CurrentSequenceNumber {
		return shared.NewInvariantViolation("ledger %s sequence cannot move from %d to %d", l.Code, l.CurrentSequenceNumber, seq)
	}
	l.CurrentSequenceNumber = seq
	l.IncrementVersion()
	return nil
}

// NumberPart returns the substring after the last '-' in code, or the whole code
// when it has no dash.
func NumberPart(code string) string {
	idx := strings.LastIndex(code, "-")
	if idx < 0 {
		return code
	}
	return code[idx+1:]
}
