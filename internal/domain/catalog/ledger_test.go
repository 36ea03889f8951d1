package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLedger(t *testing.T) {
	t.Run("creates ledger with sequence at zero", func(t *testing.T) {
		ledger, err := NewLedger("ledger-2", "Ledger Two")
		require.NoError(t, err)
		assert.Equal(t, "ledger-2", ledger.Code)
		assert.Equal(t, 0, ledger.CurrentSequenceNumber)
		assert.Equal(t, 1, ledger.GetVersion())
	})

	t.Run("fails with empty code", func(t *testing.T) {
		_, err := NewLedger("  ", "Ledger")
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("fails with trailing dash", func(t *testing.T) {
		_, err := NewLedger("ledger-", "Ledger")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no number part")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewLedger("ledger-1", "")
		require.Error(t, err)
	})
}

func TestNumberPart(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"ledger-2", "2"},
		{"store-ledger-14", "14"},
		{"7", "7"},
		{"ledger-", ""},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, NumberPart(tt.code))
		})
	}
}

func TestLedger_NextItemCode(t *testing.T) {
	ledger, err := NewLedger("ledger-2", "Ledger Two")
	require.NoError(t, err)

	assert.Equal(t, "L2-001", ledger.NextItemCode())
	assert.Equal(t, "L2-001", GenerateItemCode(ledger), "preview does not advance the sequence")

	require.NoError(t, ledger.AdvanceSequence(1))
	assert.Equal(t, "L2-002", ledger.NextItemCode())
	assert.Equal(t, 2, ledger.GetVersion())
}

func TestLedger_AdvanceSequence(t *testing.T) {
	ledger, err := NewLedger("ledger-2", "Ledger Two")
	require.NoError(t, err)
	require.NoError(t, ledger.AdvanceSequence(3))

	err = ledger.AdvanceSequence(3)
	require.Error(t, err)
	assert.True(t, shared.IsInvariantViolation(err))
	assert.Equal(t, 3, ledger.CurrentSequenceNumber)
}

func TestGenerateItemCode_NilLedger(t *testing.T) {
	assert.Equal(t, "", GenerateItemCode(nil))
}

func TestFormatAndParseItemCode(t *testing.T) {
	assert.Equal(t, "L2-001", FormatItemCode("2", 1))
	assert.Equal(t, "L2-042", FormatItemCode("2", 42))
	assert.Equal(t, "L2-1000", FormatItemCode("2", 1000))

	part, seq, err := ParseItemCode("L14-007")
	require.NoError(t, err)
	assert.Equal(t, "14", part)
	assert.Equal(t, 7, seq)

	for _, bad := range []string{"", "2-001", "L2-01", "L2/001", "L-001"} {
		_, _, err := ParseItemCode(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewItem(t *testing.T) {
	ledgerID := uuid.New()

	t.Run("creates item and raises event", func(t *testing.T) {
		item, err := NewItem(ledgerID, "L2-001", "Riot Shield", "polycarbonate", decimal.NewFromInt(150))
		require.NoError(t, err)
		assert.Equal(t, "L2-001", item.Code)
		assert.Equal(t, ledgerID, item.LedgerID)

		events := item.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*ItemCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, item.ID, evt.ItemID)
		assert.Equal(t, "L2-001", evt.Code)
	})

	t.Run("rejects malformed code", func(t *testing.T) {
		_, err := NewItem(ledgerID, "X-1", "Shield", "", decimal.Zero)
		require.Error(t, err)
	})

	t.Run("rejects negative unit value", func(t *testing.T) {
		_, err := NewItem(ledgerID, "L2-001", "Shield", "", decimal.NewFromInt(-1))
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects missing ledger", func(t *testing.T) {
		_, err := NewItem(uuid.Nil, "L2-001", "Shield", "", decimal.Zero)
		require.Error(t, err)
	})
}

func TestItem_Rename(t *testing.T) {
	item, err := NewItem(uuid.New(), "L2-001", "Shield", "", decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, item.Rename("Riot Shield", "large"))
	assert.Equal(t, "Riot Shield", item.Name)
	assert.Equal(t, "L2-001", item.Code)
	assert.Equal(t, 2, item.GetVersion())

	assert.Error(t, item.Rename("", ""))
}

func TestReferenceEntities(t *testing.T) {
	d, err := NewDistrict("kandy", "Kandy District")
	require.NoError(t, err)
	assert.Equal(t, "KANDY", d.Code)

	m, err := NewMetric("PCS", "Pieces")
	require.NoError(t, err)
	assert.Equal(t, "pcs", m.Code)

	s, err := NewStaff(" G1234 ", "A. Perera", "Sergeant", &d.ID)
	require.NoError(t, err)
	assert.Equal(t, "G1234", s.GNo)
	assert.Equal(t, d.ID, *s.DistrictID)

	_, err = NewStaff("", "x", "", nil)
	assert.True(t, shared.IsValidationError(err))
}
