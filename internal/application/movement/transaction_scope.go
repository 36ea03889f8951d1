package movement

import (
	"context"

	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/stock"
)

// TransactionScope provides transactional access to ledger repositories.
// Every repository handed to fn shares one database transaction, committed
// when fn returns nil and rolled back otherwise.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories a movement
// workflow mutates.
//
// Stock rows and issue movements are saved with SaveWithLock, so a workflow that
// read a stale row fails with a concurrency conflict and its whole transaction
// is rolled back.
type TransactionalRepositories interface {
	HQStockRepo() stock.HQStockRepository
	DistrictStockRepo() stock.DistrictStockRepository
	IssuanceVoucherRepo() movement.IssuanceVoucherRepository
	LARVoucherRepo() movement.LARVoucherRepository
	MovementRepo() movement.ItemMovementRepository
	VoucherSequencer() movement.VoucherSequencer
}

// NoOpTransactionScope runs fn against plain repositories without a transaction.
// This is useful for testing.
type NoOpTransactionScope struct {
	hqRepo        stock.HQStockRepository
	districtRepo  stock.DistrictStockRepository
	ivRepo        movement.IssuanceVoucherRepository
	larRepo       movement.LARVoucherRepository
	movementRepo  movement.ItemMovementRepository
	voucherSeqGen movement.VoucherSequencer
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	hqRepo stock.HQStockRepository,
	districtRepo stock.DistrictStockRepository,
	ivRepo movement.IssuanceVoucherRepository,
	larRepo movement.LARVoucherRepository,
	movementRepo movement.ItemMovementRepository,
	sequencer movement.VoucherSequencer,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		hqRepo:        hqRepo,
		districtRepo:  districtRepo,
		ivRepo:        ivRepo,
		larRepo:       larRepo,
		movementRepo:  movementRepo,
		voucherSeqGen: sequencer,
	}
}

// Execute runs the function without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// HQStockRepo returns the HQ stock repository.
func (s *NoOpTransactionScope) HQStockRepo() stock.HQStockRepository {
	return s.hqRepo
}

// DistrictStockRepo returns the district stock repository.
func (s *NoOpTransactionScope) DistrictStockRepo() stock.DistrictStockRepository {
	return s.districtRepo
}

// IssuanceVoucherRepo returns the IV repository.
func (s *NoOpTransactionScope) IssuanceVoucherRepo() movement.IssuanceVoucherRepository {
	return s.ivRepo
}

// LARVoucherRepo returns the LAR repository.
func (s *NoOpTransactionScope) LARVoucherRepo() movement.LARVoucherRepository {
	return s.larRepo
}

// MovementRepo returns the item movement repository.
func (s *NoOpTransactionScope) MovementRepo() movement.ItemMovementRepository {
	return s.movementRepo
}

// VoucherSequencer returns the voucher counter.
func (s *NoOpTransactionScope) VoucherSequencer() movement.VoucherSequencer {
	return s.voucherSeqGen
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
