package movement

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/psim/backend/internal/domain/shared"
)

// VoucherPrefix is the leading part of a voucher number
type VoucherPrefix string

const (
	PrefixIV  VoucherPrefix = "IV"
	PrefixLAR VoucherPrefix = "LAR"
)

// MaxDailySequence is the largest per-day suffix a voucher number can carry
const MaxDailySequence = 999

// CodeVoucherSequenceExhausted is returned once a prefix runs past MaxDailySequence for a day
const CodeVoucherSequenceExhausted = "VOUCHER_SEQUENCE_EXHAUSTED"

var voucherNumberPattern = regexp.MustCompile(`^(IV|LAR)/(\d{2})/(\d{2})/(\d{4})/(\d{3})$`)

// VoucherSequencer hands out per-day voucher suffixes backed by a persisted counter.
// The first call for a (prefix, day) returns 1.
type VoucherSequencer interface {
	NextDailySequence(ctx context.Context, prefix VoucherPrefix, day time.Time) (int, error)
}

// VoucherNumber is a parsed voucher number PREFIX/DD/MM/YYYY/rrr
type VoucherNumber struct {
	Prefix   VoucherPrefix
	Day      time.Time
	Sequence int
}

// String renders the number in its paper form
func (n VoucherNumber) String() string {
	return fmt.Sprintf("%s/%02d/%02d/%04d/%03d", n.Prefix, n.Day.Day(), int(n.Day.Month()), n.Day.Year(), n.Sequence)
}

// FormatVoucherNumber builds the voucher number for prefix, day and seq
func FormatVoucherNumber(prefix VoucherPrefix, day time.Time, seq int) (string, error) {
	if prefix != PrefixIV && prefix != PrefixLAR {
		return "", shared.NewValidationError("unknown voucher prefix %q", prefix)
	}
	if seq < 0 {
		return "", shared.NewValidationError("voucher sequence cannot be negative")
	}
	if seq > MaxDailySequence {
		return "", shared.NewDomainError(CodeVoucherSequenceExhausted,
			fmt.Sprintf("%s numbers for %s are exhausted", prefix, day.Format("02/01/2006")))
	}
	return VoucherNumber{Prefix: prefix, Day: day, Sequence: seq}.String(), nil
}

// ParseVoucherNumber validates s against the voucher number format
func ParseVoucherNumber(s string) (VoucherNumber, error) {
	m := voucherNumberPattern.FindStringSubmatch(s)
	if m == nil {
		return VoucherNumber{}, shared.NewValidationError("invalid voucher number %q", s)
	}
	day, err := time.Parse("02/01/2006", m[2]+"/"+m[3]+"/"+m[4])
	if err != nil {
		return VoucherNumber{}, shared.NewValidationError("invalid voucher date in %q", s)
	}
	seq, _ := strconv.Atoi(m[5])
	return VoucherNumber{Prefix: VoucherPrefix(m[1]), Day: day, Sequence: seq}, nil
}

// NextVoucherNumber allocates the next number for prefix on the calendar day of at
func NextVoucherNumber(ctx context.Context, seq VoucherSequencer, prefix VoucherPrefix, at time.Time) (string, error) {
	day := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, time.UTC)
	n, err := seq.NextDailySequence(ctx, prefix, day)
	if err != nil {
		return "", err
	}
	return FormatVoucherNumber(prefix, day, n)
}
