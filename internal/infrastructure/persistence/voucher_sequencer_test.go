package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormVoucherSequencer_NextDailySequence(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	seq := NewGormVoucherSequencer(db)
	day := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	for want := 1; want <= 3; want++ {
		got, err := seq.NextDailySequence(ctx, movement.PrefixIV, day)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	lar, err := seq.NextDailySequence(ctx, movement.PrefixLAR, day)
	require.NoError(t, err)
	assert.Equal(t, 1, lar, "prefixes count independently")

	next, err := seq.NextDailySequence(ctx, movement.PrefixIV, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, next, "a new day starts over")

	var rows int64
	require.NoError(t, db.Model(&models.VoucherCounterModel{}).Count(&rows).Error)
	assert.Equal(t, int64(3), rows)
}

func TestNextVoucherNumber_Exhausted(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	require.NoError(t, db.Create(&models.VoucherCounterModel{
		Prefix: string(movement.PrefixIV), Day: "2024-03-07", Value: 999,
	}).Error)

	_, err := movement.NextVoucherNumber(ctx, NewGormVoucherSequencer(db), movement.PrefixIV,
		time.Date(2024, 3, 7, 15, 0, 0, 0, time.UTC))
	require.Error(t, err)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, movement.CodeVoucherSequenceExhausted, de.Code)
}

func TestGormSequenceRepository_NextItemSequence(t *testing.T) {
	ctx := context.Background()
	db := newSQLiteDB(t)
	ledgers := NewGormLedgerRepository(db)
	seq := NewGormSequenceRepository(db)

	ledger := mustLedger(t, "ledger-5")
	require.NoError(t, ledgers.Create(ctx, ledger))

	for want := 1; want <= 2; want++ {
		got, err := seq.NextItemSequence(ctx, ledger.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	stored, err := ledgers.FindByID(ctx, ledger.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.CurrentSequenceNumber)
	assert.Equal(t, "L5-003", stored.NextItemCode())
}

func mustLedger(t *testing.T, code string) *catalog.Ledger {
	t.Helper()
	l, err := catalog.NewLedger(code, code)
	require.NoError(t, err)
	return l
}
