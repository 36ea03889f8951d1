package movement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/domain/stock"
	"github.com/stretchr/testify/mock"
)

// =============================================================================
// Mock Repositories
// =============================================================================

// MockHQStockRepository is a mock implementation of stock.HQStockRepository
type MockHQStockRepository struct {
	mock.Mock
}

func (m *MockHQStockRepository) FindByItem(ctx context.Context, itemID uuid.UUID) (*stock.HQStock, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.HQStock), args.Error(1)
}

func (m *MockHQStockRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.HQStock, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]stock.HQStock), args.Get(1).(int64), args.Error(2)
}

func (m *MockHQStockRepository) FindLow(ctx context.Context, threshold *int64) ([]stock.HQStock, error) {
	args := m.Called(ctx, threshold)
	return args.Get(0).([]stock.HQStock), args.Error(1)
}

func (m *MockHQStockRepository) Create(ctx context.Context, s *stock.HQStock) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockHQStockRepository) SaveWithLock(ctx context.Context, s *stock.HQStock) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockDistrictStockRepository is a mock implementation of stock.DistrictStockRepository
type MockDistrictStockRepository struct {
	mock.Mock
}

func (m *MockDistrictStockRepository) FindByDistrictAndItem(ctx context.Context, districtID, itemID uuid.UUID) (*stock.DistrictStock, error) {
	args := m.Called(ctx, districtID, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.DistrictStock), args.Error(1)
}

func (m *MockDistrictStockRepository) FindByDistrict(ctx context.Context, districtID uuid.UUID, category *stock.Category) ([]stock.DistrictStock, error) {
	args := m.Called(ctx, districtID, category)
	return args.Get(0).([]stock.DistrictStock), args.Error(1)
}

func (m *MockDistrictStockRepository) FindLow(ctx context.Context, districtID *uuid.UUID, threshold int64) ([]stock.DistrictStock, error) {
	args := m.Called(ctx, districtID, threshold)
	return args.Get(0).([]stock.DistrictStock), args.Error(1)
}

func (m *MockDistrictStockRepository) Create(ctx context.Context, s *stock.DistrictStock) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockDistrictStockRepository) SaveWithLock(ctx context.Context, s *stock.DistrictStock) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockIssuanceVoucherRepository is a mock implementation of movement.IssuanceVoucherRepository
type MockIssuanceVoucherRepository struct {
	mock.Mock
}

func (m *MockIssuanceVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*movement.IssuanceVoucher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*movement.IssuanceVoucher), args.Error(1)
}

func (m *MockIssuanceVoucherRepository) FindByNumber(ctx context.Context, ivNumber string) (*movement.IssuanceVoucher, error) {
	args := m.Called(ctx, ivNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*movement.IssuanceVoucher), args.Error(1)
}

func (m *MockIssuanceVoucherRepository) FindAll(ctx context.Context, tier movement.Tier, filter shared.Filter) ([]movement.IssuanceVoucher, int64, error) {
	args := m.Called(ctx, tier, filter)
	return args.Get(0).([]movement.IssuanceVoucher), args.Get(1).(int64), args.Error(2)
}

func (m *MockIssuanceVoucherRepository) Create(ctx context.Context, v *movement.IssuanceVoucher) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// MockLARVoucherRepository is a mock implementation of movement.LARVoucherRepository
type MockLARVoucherRepository struct {
	mock.Mock
}

func (m *MockLARVoucherRepository) FindByID(ctx context.Context, id uuid.UUID) (*movement.LARVoucher, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*movement.LARVoucher), args.Error(1)
}

func (m *MockLARVoucherRepository) FindAll(ctx context.Context, tier movement.Tier, ivID *uuid.UUID, filter shared.Filter) ([]movement.LARVoucher, int64, error) {
	args := m.Called(ctx, tier, ivID, filter)
	return args.Get(0).([]movement.LARVoucher), args.Get(1).(int64), args.Error(2)
}

func (m *MockLARVoucherRepository) Create(ctx context.Context, v *movement.LARVoucher) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

// MockItemMovementRepository is a mock implementation of movement.ItemMovementRepository
type MockItemMovementRepository struct {
	mock.Mock
}

func (m *MockItemMovementRepository) FindByID(ctx context.Context, id uuid.UUID) (*movement.ItemMovement, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*movement.ItemMovement), args.Error(1)
}

func (m *MockItemMovementRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]movement.ItemMovement, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]movement.ItemMovement), args.Error(1)
}

func (m *MockItemMovementRepository) FindByIssuanceVoucher(ctx context.Context, ivID uuid.UUID) ([]movement.ItemMovement, error) {
	args := m.Called(ctx, ivID)
	return args.Get(0).([]movement.ItemMovement), args.Error(1)
}

func (m *MockItemMovementRepository) FindByLARVoucher(ctx context.Context, larID uuid.UUID) ([]movement.ItemMovement, error) {
	args := m.Called(ctx, larID)
	return args.Get(0).([]movement.ItemMovement), args.Error(1)
}

func (m *MockItemMovementRepository) FindOutstanding(ctx context.Context, ivID uuid.UUID) ([]movement.ItemMovement, error) {
	args := m.Called(ctx, ivID)
	return args.Get(0).([]movement.ItemMovement), args.Error(1)
}

func (m *MockItemMovementRepository) FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]movement.ItemMovement, int64, error) {
	args := m.Called(ctx, itemID, filter)
	return args.Get(0).([]movement.ItemMovement), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemMovementRepository) CreateBatch(ctx context.Context, movements []*movement.ItemMovement) error {
	args := m.Called(ctx, movements)
	return args.Error(0)
}

func (m *MockItemMovementRepository) SaveWithLock(ctx context.Context, mv *movement.ItemMovement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

// MockVoucherSequencer is a mock implementation of movement.VoucherSequencer
type MockVoucherSequencer struct {
	mock.Mock
}

func (m *MockVoucherSequencer) NextDailySequence(ctx context.Context, prefix movement.VoucherPrefix, day time.Time) (int, error) {
	args := m.Called(ctx, prefix, day)
	return args.Int(0), args.Error(1)
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
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// MockDistrictRepository is a mock implementation of catalog.DistrictRepository
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
	args := m.Called(ctx, d)
	return args.Error(0)
}

// MockMetricRepository is a mock implementation of catalog.MetricRepository
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
	args := m.Called(ctx, metric)
	return args.Error(0)
}

// MockStaffRepository is a mock implementation of catalog.StaffRepository
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
	args := m.Called(ctx, s)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// MockMetricsRecorder is a mock implementation of MetricsRecorder
type MockMetricsRecorder struct {
	mock.Mock
}

func (m *MockMetricsRecorder) RecordIssuance(ctx context.Context, tier string, lines int, units int64) {
	m.Called(ctx, tier, lines, units)
}

func (m *MockMetricsRecorder) RecordReturn(ctx context.Context, tier string, lines int, units int64) {
	m.Called(ctx, tier, lines, units)
}

func (m *MockMetricsRecorder) RecordLowStock(ctx context.Context, tier string) {
	m.Called(ctx, tier)
}

// =============================================================================
// Fixture
// =============================================================================

type fixture struct {
	hq        *MockHQStockRepository
	district  *MockDistrictStockRepository
	ivs       *MockIssuanceVoucherRepository
	lars      *MockLARVoucherRepository
	movements *MockItemMovementRepository
	seq       *MockVoucherSequencer
	items     *MockItemRepository
	districts *MockDistrictRepository
	metrics   *MockMetricRepository
	staff     *MockStaffRepository
	scope     *NoOpTransactionScope
}

func newFixture() *fixture {
	f := &fixture{
		hq:        new(MockHQStockRepository),
		district:  new(MockDistrictStockRepository),
		ivs:       new(MockIssuanceVoucherRepository),
		lars:      new(MockLARVoucherRepository),
		movements: new(MockItemMovementRepository),
		seq:       new(MockVoucherSequencer),
		items:     new(MockItemRepository),
		districts: new(MockDistrictRepository),
		metrics:   new(MockMetricRepository),
		staff:     new(MockStaffRepository),
	}
	f.scope = NewNoOpTransactionScope(f.hq, f.district, f.ivs, f.lars, f.movements, f.seq)
	return f
}

var fixedNow = time.Date(2024, 3, 7, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func (f *fixture) issuanceService() *IssuanceService {
	s := NewIssuanceService(f.scope, f.items, f.districts, f.staff, f.ivs, f.movements)
	s.SetClock(fixedClock, time.UTC)
	return s
}

func (f *fixture) returnService() *ReturnService {
	s := NewReturnService(f.scope, f.ivs, f.lars, f.movements)
	s.SetClock(fixedClock, time.UTC)
	return s
}

func (f *fixture) assertNoWrites(t mock.TestingT) {
	f.hq.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.district.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.district.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.ivs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.lars.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	f.movements.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything)
	f.movements.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	f.seq.AssertNotCalled(t, "NextDailySequence", mock.Anything, mock.Anything, mock.Anything)
}

func testItem(id uuid.UUID) catalog.Item {
	return catalog.Item{
		BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: id}, Version: 1},
		Code:              "L2-001",
		Name:              "Riot shield",
	}
}
