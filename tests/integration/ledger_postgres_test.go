package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	appcatalog "github.com/psim/backend/internal/application/catalog"
	apploan "github.com/psim/backend/internal/application/loan"
	appmovement "github.com/psim/backend/internal/application/movement"
	"github.com/psim/backend/internal/domain/loan"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/domain/stock"
	"github.com/psim/backend/internal/infrastructure/event"
	"github.com/psim/backend/internal/infrastructure/persistence"
	"github.com/psim/backend/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ledgerNow = time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC)

type postgresLedger struct {
	ledgers  *appcatalog.LedgerService
	items    *appcatalog.ItemService
	refs     *appcatalog.ReferenceService
	stock    *appmovement.StockService
	issuance *appmovement.IssuanceService
	returns  *appmovement.ReturnService
	query    *appmovement.QueryService
	loans    *apploan.LoanService
	bus      *event.InMemoryEventBus

	ledgerID   uuid.UUID
	itemID     uuid.UUID
	districtID uuid.UUID
	metricID   uuid.UUID
	staffGNo   string
}

func newPostgresLedger(t *testing.T) *postgresLedger {
	t.Helper()
	tdb := NewTestDB(t)
	db := tdb.DB
	ctx := context.Background()

	itemRepo := persistence.NewGormItemRepository(db)
	districtRepo := persistence.NewGormDistrictRepository(db)
	metricRepo := persistence.NewGormMetricRepository(db)
	staffRepo := persistence.NewGormStaffRepository(db)
	ivRepo := persistence.NewGormIssuanceVoucherRepository(db)
	larRepo := persistence.NewGormLARVoucherRepository(db)
	movementRepo := persistence.NewGormItemMovementRepository(db)
	scope := persistence.NewGormMovementTransactionScope(db)
	clock := func() time.Time { return ledgerNow }

	bus := event.NewInMemoryEventBus(nil)
	require.NoError(t, bus.Start(ctx))
	t.Cleanup(func() { _ = bus.Stop(ctx) })

	l := &postgresLedger{bus: bus}
	l.ledgers = appcatalog.NewLedgerService(persistence.NewGormLedgerRepository(db))
	l.items = appcatalog.NewItemService(persistence.NewGormCatalogTransactionScope(db), itemRepo)
	l.items.SetEventPublisher(bus)
	l.refs = appcatalog.NewReferenceService(districtRepo, metricRepo, staffRepo)
	l.stock = appmovement.NewStockService(scope, itemRepo, metricRepo, districtRepo)
	l.issuance = appmovement.NewIssuanceService(scope, itemRepo, districtRepo, staffRepo, ivRepo, movementRepo)
	l.issuance.SetClock(clock, time.UTC)
	l.issuance.SetEventPublisher(bus)
	l.returns = appmovement.NewReturnService(scope, ivRepo, larRepo, movementRepo)
	l.returns.SetClock(clock, time.UTC)
	l.returns.SetEventPublisher(bus)
	l.query = appmovement.NewQueryService(
		persistence.NewGormHQStockRepository(db),
		persistence.NewGormDistrictStockRepository(db),
		ivRepo, movementRepo, itemRepo,
	)
	l.loans = apploan.NewLoanService(persistence.NewGormLoanRepository(db), itemRepo, nil)
	l.loans.SetClock(clock)
	l.loans.SetEventPublisher(bus)

	ledger, err := l.ledgers.CreateLedger(ctx, appcatalog.CreateLedgerRequest{Code: "ledger-4", Name: "Ledger Four"})
	require.NoError(t, err)
	district, err := l.refs.CreateDistrict(ctx, appcatalog.CreateDistrictRequest{Code: "GAL", Name: "Galle"})
	require.NoError(t, err)
	metric, err := l.refs.CreateMetric(ctx, appcatalog.CreateMetricRequest{Code: "pcs", Name: "Pieces"})
	require.NoError(t, err)
	staff, err := l.refs.RegisterStaff(ctx, appcatalog.RegisterStaffRequest{GNo: "G-400", Name: "Silva", DistrictID: &district.ID})
	require.NoError(t, err)
	value := decimal.RequireFromString("250.00")
	item, err := l.items.CreateItem(ctx, appcatalog.CreateItemRequest{LedgerID: ledger.ID, Name: "Raincoat", UnitValue: &value})
	require.NoError(t, err)

	l.ledgerID, l.itemID, l.districtID, l.metricID, l.staffGNo = ledger.ID, item.ID, district.ID, metric.ID, staff.GNo
	return l
}

func (l *postgresLedger) addHQ(t *testing.T, qty int64, threshold *int64) {
	t.Helper()
	_, err := l.stock.AddHQStock(context.Background(), appmovement.AddHQStockRequest{
		ItemID: l.itemID, MetricID: l.metricID, Quantity: qty, LowStockThreshold: threshold,
	})
	require.NoError(t, err)
}

func (l *postgresLedger) issue(qty int64) (*appmovement.IssuanceVoucherResponse, error) {
	return l.issuance.IssueToDistrict(context.Background(), appmovement.IssueToDistrictRequest{
		DistrictID:        l.districtID,
		ReceivingStaffGNo: l.staffGNo,
		Lines:             []appmovement.IssueLineRequest{{ItemID: l.itemID, Quantity: qty, IsReturnable: true}},
		IssuedByUserID:    "storekeeper",
	})
}

func (l *postgresLedger) hqQty(t *testing.T) int64 {
	t.Helper()
	row, err := l.query.CurrentHQStock(context.Background(), l.itemID)
	require.NoError(t, err)
	return row.Quantity
}

func TestPostgres_IssueAndReturn(t *testing.T) {
	l := newPostgresLedger(t)
	ctx := context.Background()

	item, err := l.items.GetItem(ctx, l.itemID)
	require.NoError(t, err)
	assert.Equal(t, "L4-001", item.Code)

	l.addHQ(t, 20, nil)

	iv, err := l.issue(12)
	require.NoError(t, err)
	assert.Equal(t, "IV/07/03/2024/001", iv.IVNumber)
	assert.Equal(t, int64(8), l.hqQty(t))

	district, err := l.query.CurrentDistrictStock(ctx, l.districtID, l.itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(12), district.Quantity)

	lar, err := l.returns.ReturnFromDistrict(ctx, appmovement.ReturnRequest{
		VoucherID:        iv.ID,
		Lines:            []appmovement.ReturnLineRequest{{OriginalMovementID: iv.Movements[0].ID, Quantity: 5}},
		ReturnedByUserID: "storekeeper",
	})
	require.NoError(t, err)
	assert.Equal(t, "LAR/07/03/2024/001", lar.LARNumber)
	assert.Equal(t, int64(13), l.hqQty(t))

	_, err = l.returns.ReturnFromDistrict(ctx, appmovement.ReturnRequest{
		VoucherID:        iv.ID,
		Lines:            []appmovement.ReturnLineRequest{{OriginalMovementID: iv.Movements[0].ID, Quantity: 8}},
		ReturnedByUserID: "storekeeper",
	})
	require.Error(t, err)
	assert.True(t, shared.IsValidationError(err), err.Error())
	assert.Equal(t, int64(13), l.hqQty(t))

	_, err = l.issuance.GetIssuanceVoucher(ctx, movement.TierDistrict, iv.ID)
	assert.True(t, shared.IsNotFound(err))
}

func TestPostgres_ConcurrentIssuance(t *testing.T) {
	l := newPostgresLedger(t)
	l.addHQ(t, 10, nil)

	const workers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		issued  int64
		numbers = map[string]struct{}{}
		errs    []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			iv, err := l.issue(2)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			issued += 2
			numbers[iv.IVNumber] = struct{}{}
		}()
	}
	wg.Wait()

	remaining := l.hqQty(t)
	assert.GreaterOrEqual(t, remaining, int64(0))
	assert.Equal(t, int64(10), issued+remaining)
	assert.Len(t, numbers, int(issued/2), "voucher numbers must not repeat")

	for _, err := range errs {
		retryable := errors.Is(err, shared.ErrConcurrencyConflict) || shared.IsValidationError(err) || shared.IsInvariantViolation(err)
		assert.True(t, retryable, err.Error())
	}
}

func TestPostgres_ConcurrentReturns(t *testing.T) {
	l := newPostgresLedger(t)
	ctx := context.Background()
	l.addHQ(t, 15, nil)

	iv, err := l.issue(10)
	require.NoError(t, err)
	require.Equal(t, int64(5), l.hqQty(t))
	movementID := iv.Movements[0].ID

	const workers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		errs      []error
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.returns.ReturnFromDistrict(ctx, appmovement.ReturnRequest{
				VoucherID:        iv.ID,
				Lines:            []appmovement.ReturnLineRequest{{OriginalMovementID: movementID, Quantity: 10}},
				ReturnedByUserID: "storekeeper",
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			succeeded++
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	for _, err := range errs {
		rejected := errors.Is(err, shared.ErrConcurrencyConflict) || shared.IsValidationError(err)
		assert.True(t, rejected, err.Error())
	}

	got, err := l.issuance.GetIssuanceVoucher(ctx, movement.TierHQ, iv.ID)
	require.NoError(t, err)
	require.Len(t, got.Movements, 1)
	assert.Equal(t, int64(10), got.Movements[0].ReturnedQuantity)
	assert.Equal(t, int64(15), l.hqQty(t))

	district, err := l.query.CurrentDistrictStock(ctx, l.districtID, l.itemID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), district.Quantity)

	returns, total, err := l.returns.ListReturnVouchers(ctx, movement.TierHQ, &iv.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, returns, 1)
	assert.Equal(t, int64(1), total)
}

func TestPostgres_LowStockEvent(t *testing.T) {
	l := newPostgresLedger(t)
	recorder := testutil.NewRecordingHandler(stock.EventTypeStockBelowThreshold, movement.EventTypeIssuanceVoucherCreated)
	l.bus.Subscribe(recorder)

	threshold := int64(5)
	l.addHQ(t, 8, &threshold)

	_, err := l.issue(2)
	require.NoError(t, err)
	assert.Empty(t, recorder.OfType(stock.EventTypeStockBelowThreshold))

	_, err = l.issue(2)
	require.NoError(t, err)
	require.True(t, testutil.WaitForEventCount(t, recorder, 4, time.Second))

	low := recorder.OfType(stock.EventTypeStockBelowThreshold)
	require.Len(t, low, 1)
	assert.Len(t, recorder.OfType(movement.EventTypeIssuanceVoucherCreated), 2)

	rows, err := l.query.LowHQStock(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, int64(4), rows[0].Quantity)
}

func TestPostgres_Loans(t *testing.T) {
	l := newPostgresLedger(t)
	ctx := context.Background()
	recorder := testutil.NewRecordingHandler(loan.EventTypeLoanOverdue)
	l.bus.Subscribe(recorder)

	due := ledgerNow.AddDate(0, 0, -2)
	overdue, err := l.loans.LoanOut(ctx, apploan.LoanOutRequest{
		ItemID: l.itemID, Quantity: 3, BorrowerGNo: l.staffGNo, EventName: "Perahera", DueDate: &due,
	})
	require.NoError(t, err)
	assert.True(t, overdue.IsOverdue)

	future := ledgerNow.AddDate(0, 0, 5)
	_, err = l.loans.LoanOut(ctx, apploan.LoanOutRequest{
		ItemID: l.itemID, Quantity: 1, BorrowerGNo: l.staffGNo, EventName: "Parade", DueDate: &future,
	})
	require.NoError(t, err)

	found, err := l.loans.ScanOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, found)
	require.True(t, testutil.WaitForEventCount(t, recorder, 1, time.Second))

	returned, err := l.loans.ReturnLoan(ctx, overdue.ID, "storekeeper", apploan.ReturnLoanRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(loan.StatusReturned), returned.Status)

	_, err = l.loans.ReturnLoan(ctx, overdue.ID, "storekeeper", apploan.ReturnLoanRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	open, err := l.loans.ListOverdue(ctx)
	require.NoError(t, err)
	assert.Empty(t, open)
}
