package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/loan"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/domain/stock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestGormHQStockRepository_SaveWithLock(t *testing.T) {
	ctx := context.Background()

	newRow := func(t *testing.T) *stock.HQStock {
		row, err := stock.NewHQStock(uuid.New(), uuid.New(), 10, nil)
		require.NoError(t, err)
		require.NoError(t, row.Decrease(4))
		return row
	}

	t.Run("updates when the stored version matches", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		row := newRow(t)

		mock.ExpectExec(`UPDATE "hq_stocks" SET .* WHERE id = \$5 AND version = \$6`).
			WithArgs(sqlmock.AnyArg(), int64(6), sqlmock.AnyArg(), int64(2), row.ID.String(), int64(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, NewGormHQStockRepository(db).SaveWithLock(ctx, row))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stale version is a concurrency conflict", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		row := newRow(t)

		mock.ExpectExec(`UPDATE "hq_stocks" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := NewGormHQStockRepository(db).SaveWithLock(ctx, row)
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("driver errors pass through", func(t *testing.T) {
		db, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		boom := errors.New("connection reset by peer")

		mock.ExpectExec(`UPDATE "hq_stocks" SET`).WillReturnError(boom)

		err := NewGormHQStockRepository(db).SaveWithLock(ctx, newRow(t))
		assert.ErrorIs(t, err, boom)
		assert.False(t, errors.Is(err, shared.ErrConcurrencyConflict))
	})
}

func TestSaveWithLock_ConflictOnEveryVersionedTable(t *testing.T) {
	ctx := context.Background()

	district, err := stock.NewDistrictStock(uuid.New(), uuid.New(), uuid.New(), 3, true)
	require.NoError(t, err)
	require.NoError(t, district.Increase(1))

	iv, err := movement.NewHQIssuanceVoucher("IV/07/03/2024/001", time.Now(), uuid.New(),
		movement.IssuanceDetails{IssuedByUserID: "u1", ReceivingStaffGNo: "G-1"})
	require.NoError(t, err)
	mv, err := movement.NewIssueMovement(iv, uuid.New(), uuid.New(), 5, true)
	require.NoError(t, err)
	require.NoError(t, mv.RecordReturn(2))

	l, err := loan.NewLoanItem(uuid.New(), 1, loan.Borrower{GNo: "G-1", EventName: "Parade"}, time.Now(), nil, "")
	require.NoError(t, err)
	require.NoError(t, l.MarkReturned(time.Now(), "u1"))

	cases := []struct {
		name  string
		table string
		save  func(db *gorm.DB) error
	}{
		{"district stock", "district_stocks", func(db *gorm.DB) error {
			return NewGormDistrictStockRepository(db).SaveWithLock(ctx, district)
		}},
		{"item movement", "item_movements", func(db *gorm.DB) error {
			return NewGormItemMovementRepository(db).SaveWithLock(ctx, mv)
		}},
		{"loan", "loan_items", func(db *gorm.DB) error {
			return NewGormLoanRepository(db).SaveWithLock(ctx, l)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, mockDB := newMockGormDB(t)
			defer mockDB.Close()

			mock.ExpectExec(`UPDATE "` + tc.table + `" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

			err := tc.save(db)
			assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormSequenceRepository_UnknownLedger(t *testing.T) {
	db, mock, mockDB := newMockGormDB(t)
	defer mockDB.Close()
	ledgerID := uuid.New()

	mock.ExpectExec(`UPDATE "ledgers" SET "current_sequence_number"=current_sequence_number \+ 1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := NewGormSequenceRepository(db).NextItemSequence(context.Background(), ledgerID)
	assert.True(t, shared.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatabase_Transaction(t *testing.T) {
	t.Run("commits", func(t *testing.T) {
		gdb, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		db := &Database{DB: gdb}

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM voucher_counters`).WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectCommit()

		err := db.Transaction(func(tx *gorm.DB) error {
			return tx.Exec("DELETE FROM voucher_counters WHERE day < ?", "2024-01-01").Error
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		gdb, mock, mockDB := newMockGormDB(t)
		defer mockDB.Close()
		db := &Database{DB: gdb}

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := db.Transaction(func(tx *gorm.DB) error {
			return assert.AnError
		})
		assert.ErrorIs(t, err, assert.AnError)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDatabase_PingAndClose(t *testing.T) {
	gdb, mock, _ := newMockGormDB(t)
	db := &Database{DB: gdb}

	mock.ExpectPing()
	require.NoError(t, db.Ping(context.Background()))

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, stats.OpenConnections, stats.InUse+stats.Idle)

	mock.ExpectClose()
	require.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
