package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockLedgerRepository is a mock implementation of catalog.LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Ledger, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) FindByCode(ctx context.Context, code string) (*catalog.Ledger, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Ledger), args.Error(1)
}

func (m *MockLedgerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Ledger, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Ledger), args.Get(1).(int64), args.Error(2)
}

func (m *MockLedgerRepository) Create(ctx context.Context, ledger *catalog.Ledger) error {
	return m.Called(ctx, ledger).Error(0)
}

// MockItemRepository is a mock implementation of catalog.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByCode(ctx context.Context, code string) (*catalog.Item, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Item, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Item), args.Error(1)
}

func (m *MockItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Item), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemRepository) Create(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	return m.Called(ctx, item).Error(0)
}

// counterSequence hands out increasing values per ledger like the database counter does
type counterSequence struct {
	values map[uuid.UUID]int
	err    error
}

func (c *counterSequence) NextItemSequence(_ context.Context, ledgerID uuid.UUID) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.values == nil {
		c.values = make(map[uuid.UUID]int)
	}
	c.values[ledgerID]++
	return c.values[ledgerID], nil
}

type MockDistrictRepository struct {
	mock.Mock
}

func (m *MockDistrictRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.District, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.District), args.Error(1)
}

func (m *MockDistrictRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.District, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.District), args.Get(1).(int64), args.Error(2)
}

func (m *MockDistrictRepository) Create(ctx context.Context, d *catalog.District) error {
	return m.Called(ctx, d).Error(0)
}

type MockMetricRepository struct {
	mock.Mock
}

func (m *MockMetricRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Metric, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Metric), args.Error(1)
}

func (m *MockMetricRepository) FindAll(ctx context.Context) ([]catalog.Metric, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Metric), args.Error(1)
}

func (m *MockMetricRepository) Create(ctx context.Context, metric *catalog.Metric) error {
	return m.Called(ctx, metric).Error(0)
}

type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) FindByGNo(ctx context.Context, gNo string) (*catalog.Staff, error) {
	args := m.Called(ctx, gNo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Staff), args.Error(1)
}

func (m *MockStaffRepository) ExistsByGNo(ctx context.Context, gNo string) (bool, error) {
	args := m.Called(ctx, gNo)
	return args.Bool(0), args.Error(1)
}

func (m *MockStaffRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Staff, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Staff), args.Get(1).(int64), args.Error(2)
}

func (m *MockStaffRepository) Create(ctx context.Context, s *catalog.Staff) error {
	return m.Called(ctx, s).Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

func TestItemService_CreateItem_SequentialCodes(t *testing.T) {
	ctx := context.Background()
	ledger, err := catalog.NewLedger("ledger-2", "Ledger Two")
	require.NoError(t, err)

	ledgers := new(MockLedgerRepository)
	items := new(MockItemRepository)
	seq := &counterSequence{}
	ledgers.On("FindByID", ctx, ledger.ID).Return(ledger, nil)
	items.On("Create", ctx, mock.AnythingOfType("*catalog.Item")).Return(nil)
	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.Anything).Return(nil)

	svc := NewItemService(NewNoOpTransactionScope(ledgers, items, seq), items)
	svc.SetEventPublisher(publisher)

	var codes []string
	for _, name := range []string{"Riot shield", "Helmet", "Baton"} {
		resp, err := svc.CreateItem(ctx, CreateItemRequest{LedgerID: ledger.ID, Name: name})
		require.NoError(t, err)
		codes = append(codes, resp.Code)
		assert.True(t, resp.UnitValue.IsZero())
	}

	assert.Equal(t, []string{"L2-001", "L2-002", "L2-003"}, codes)
	assert.Equal(t, 3, seq.values[ledger.ID])
	publisher.AssertNumberOfCalls(t, "Publish", 3)
}

func TestItemService_CreateItem_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown ledger", func(t *testing.T) {
		ledgers := new(MockLedgerRepository)
		items := new(MockItemRepository)
		id := uuid.New()
		ledgers.On("FindByID", ctx, id).Return(nil, shared.NewNotFoundError("Ledger", id))

		_, err := NewItemService(NewNoOpTransactionScope(ledgers, items, &counterSequence{}), items).
			CreateItem(ctx, CreateItemRequest{LedgerID: id, Name: "Torch"})
		assert.True(t, shared.IsNotFound(err))
		items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("invalid name stops before insert", func(t *testing.T) {
		ledger, _ := catalog.NewLedger("ledger-7", "Seven")
		ledgers := new(MockLedgerRepository)
		items := new(MockItemRepository)
		ledgers.On("FindByID", ctx, ledger.ID).Return(ledger, nil)

		_, err := NewItemService(NewNoOpTransactionScope(ledgers, items, &counterSequence{}), items).
			CreateItem(ctx, CreateItemRequest{LedgerID: ledger.ID, Name: "   "})
		assert.True(t, shared.IsValidationError(err))
		items.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("negative unit value", func(t *testing.T) {
		ledger, _ := catalog.NewLedger("ledger-7", "Seven")
		ledgers := new(MockLedgerRepository)
		items := new(MockItemRepository)
		ledgers.On("FindByID", ctx, ledger.ID).Return(ledger, nil)
		value := decimal.NewFromInt(-1)

		_, err := NewItemService(NewNoOpTransactionScope(ledgers, items, &counterSequence{}), items).
			CreateItem(ctx, CreateItemRequest{LedgerID: ledger.ID, Name: "Torch", UnitValue: &value})
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("sequence failure", func(t *testing.T) {
		ledger, _ := catalog.NewLedger("ledger-7", "Seven")
		ledgers := new(MockLedgerRepository)
		items := new(MockItemRepository)
		ledgers.On("FindByID", ctx, ledger.ID).Return(ledger, nil)
		boom := errors.New("connection reset")

		_, err := NewItemService(NewNoOpTransactionScope(ledgers, items, &counterSequence{err: boom}), items).
			CreateItem(ctx, CreateItemRequest{LedgerID: ledger.ID, Name: "Torch"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestItemService_UpdateItem(t *testing.T) {
	ctx := context.Background()
	item, err := catalog.NewItem(uuid.New(), "L2-004", "Radio", "", decimal.Zero)
	require.NoError(t, err)
	items := new(MockItemRepository)
	items.On("FindByID", ctx, item.ID).Return(item, nil)
	items.On("Save", ctx, item).Return(nil)

	resp, err := NewItemService(nil, items).UpdateItem(ctx, item.ID, UpdateItemRequest{Name: "Handheld radio"})
	require.NoError(t, err)
	assert.Equal(t, "L2-004", resp.Code)
	assert.Equal(t, "Handheld radio", resp.Name)
	assert.Equal(t, 2, resp.Version)
}

func TestItemService_ListItems(t *testing.T) {
	ctx := context.Background()
	ledgerID := uuid.New()
	items := new(MockItemRepository)
	items.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
		return f.Filters["ledger_id"] == ledgerID && f.OrderBy == "code" && f.PageSize == 20
	})).Return([]catalog.Item{}, int64(0), nil)

	out, total, err := NewItemService(nil, items).ListItems(ctx, ItemListFilter{LedgerID: &ledgerID})
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, int64(0), total)
	items.AssertExpectations(t)
}

func TestLedgerService(t *testing.T) {
	ctx := context.Background()

	t.Run("create rejects a duplicate code", func(t *testing.T) {
		ledgers := new(MockLedgerRepository)
		existing, _ := catalog.NewLedger("ledger-2", "Two")
		ledgers.On("FindByCode", ctx, "ledger-2").Return(existing, nil)

		_, err := NewLedgerService(ledgers).CreateLedger(ctx, CreateLedgerRequest{Code: "ledger-2", Name: "Again"})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		ledgers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("create starts at sequence zero", func(t *testing.T) {
		ledgers := new(MockLedgerRepository)
		ledgers.On("FindByCode", ctx, "ledger-9").Return(nil, shared.NewNotFoundError("Ledger", "ledger-9"))
		ledgers.On("Create", ctx, mock.AnythingOfType("*catalog.Ledger")).Return(nil)

		resp, err := NewLedgerService(ledgers).CreateLedger(ctx, CreateLedgerRequest{Code: "ledger-9", Name: "Nine"})
		require.NoError(t, err)
		assert.Equal(t, 0, resp.CurrentSequenceNumber)
		assert.Equal(t, "L9-001", resp.NextItemCode)
	})

	t.Run("preview", func(t *testing.T) {
		ledgers := new(MockLedgerRepository)
		ledger, _ := catalog.NewLedger("ledger-2", "Two")
		ledger.CurrentSequenceNumber = 41
		missing := uuid.New()
		ledgers.On("FindByID", ctx, ledger.ID).Return(ledger, nil)
		ledgers.On("FindByID", ctx, missing).Return(nil, shared.NewNotFoundError("Ledger", missing))

		svc := NewLedgerService(ledgers)
		code, err := svc.PreviewItemCode(ctx, ledger.ID)
		require.NoError(t, err)
		assert.Equal(t, "L2-042", code)
		assert.Equal(t, 41, ledger.CurrentSequenceNumber, "preview must not advance the sequence")

		code, err = svc.PreviewItemCode(ctx, missing)
		require.NoError(t, err)
		assert.Empty(t, code)
	})
}

func TestReferenceService_RegisterStaff(t *testing.T) {
	ctx := context.Background()
	districts := new(MockDistrictRepository)
	staff := new(MockStaffRepository)
	svc := NewReferenceService(districts, new(MockMetricRepository), staff)

	staff.On("ExistsByGNo", ctx, "G-100").Return(true, nil).Once()
	_, err := svc.RegisterStaff(ctx, RegisterStaffRequest{GNo: "G-100", Name: "Perera"})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	missing := uuid.New()
	districts.On("FindByID", ctx, missing).Return(nil, shared.NewNotFoundError("District", missing))
	_, err = svc.RegisterStaff(ctx, RegisterStaffRequest{GNo: "G-101", Name: "Silva", DistrictID: &missing})
	assert.True(t, shared.IsNotFound(err))

	staff.On("ExistsByGNo", ctx, "G-102").Return(false, nil)
	staff.On("Create", ctx, mock.AnythingOfType("*catalog.Staff")).Return(nil)
	resp, err := svc.RegisterStaff(ctx, RegisterStaffRequest{GNo: " G-102 ", Name: "Fernando", Rank: "PC"})
	require.NoError(t, err)
	assert.Equal(t, "G-102", resp.GNo)
}

func TestReferenceService_DistrictsAndMetrics(t *testing.T) {
	ctx := context.Background()
	districts := new(MockDistrictRepository)
	metrics := new(MockMetricRepository)
	svc := NewReferenceService(districts, metrics, new(MockStaffRepository))

	districts.On("Create", ctx, mock.AnythingOfType("*catalog.District")).Return(nil)
	d, err := svc.CreateDistrict(ctx, CreateDistrictRequest{Code: "col", Name: "Colombo"})
	require.NoError(t, err)
	assert.Equal(t, "COL", d.Code)

	_, err = svc.CreateMetric(ctx, CreateMetricRequest{Code: "", Name: "Pieces"})
	assert.True(t, shared.IsValidationError(err))

	metrics.On("FindAll", ctx).Return([]catalog.Metric{{Code: "pcs", Name: "Pieces"}}, nil)
	list, err := svc.ListMetrics(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "pcs", list[0].Code)
}
