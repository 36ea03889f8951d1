package catalog

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/psim/backend/internal/domain/shared"
)

var itemCodePattern = regexp.MustCompile(`^L([^-/\s]+)-(\d{3,})$`)

// FormatItemCode builds an item code of the form L{numberPart}-{seq}, with seq
// zero padded to three digits. Sequences above 999 are printed in full.
func FormatItemCode(numberPart string, seq int) string {
	return fmt.Sprintf("L%s-%03d", numberPart, seq)
}

// GenerateItemCode returns the code the next item on ledger would receive
func GenerateItemCode(ledger *Ledger) string {
	if ledger == nil {
		return ""
	}
	return ledger.NextItemCode()
}

// ParseItemCode splits an item code into its ledger number part and sequence
func ParseItemCode(code string) (string, int, error) {
	m := itemCodePattern.FindStringSubmatch(code)
	if m == nil {
		return "", 0, shared.NewValidationError("invalid item code %q", code)
	}
	seq, err := strconv.Atoi(m[2])
	if err != nil {
		return "", 0, shared.NewValidationError("invalid item code sequence %q", m[2])
	}
	return m[1], seq, nil
}
