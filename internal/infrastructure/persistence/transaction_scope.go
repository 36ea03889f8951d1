package persistence

import (
	"context"

	appcatalog "github.com/psim/backend/internal/application/catalog"
	appmovement "github.com/psim/backend/internal/application/movement"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/movement"
	"github.com/psim/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormMovementTransactionScope runs issuance, return and stock receipt workflows
// in one GORM transaction. If fn returns an error the transaction is rolled back.
type GormMovementTransactionScope struct {
	db *gorm.DB
}

// NewGormMovementTransactionScope creates a new GormMovementTransactionScope
func NewGormMovementTransactionScope(db *gorm.DB) *GormMovementTransactionScope {
	return &GormMovementTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormMovementTransactionScope) Execute(ctx context.Context, fn func(repos appmovement.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&movementTxRepositories{tx: tx})
	})
}

// movementTxRepositories hands out repositories bound to tx
type movementTxRepositories struct {
	tx *gorm.DB
}

func (r *movementTxRepositories) HQStockRepo() stock.HQStockRepository {
	return NewGormHQStockRepository(r.tx)
}

func (r *movementTxRepositories) DistrictStockRepo() stock.DistrictStockRepository {
	return NewGormDistrictStockRepository(r.tx)
}

func (r *movementTxRepositories) IssuanceVoucherRepo() movement.IssuanceVoucherRepository {
	return NewGormIssuanceVoucherRepository(r.tx)
}

func (r *movementTxRepositories) LARVoucherRepo() movement.LARVoucherRepository {
	return NewGormLARVoucherRepository(r.tx)
}

func (r *movementTxRepositories) MovementRepo() movement.ItemMovementRepository {
	return NewGormItemMovementRepository(r.tx)
}

// VoucherSequencer shares the workflow transaction, so a rolled back voucher
// also returns its counter value.
func (r *movementTxRepositories) VoucherSequencer() movement.VoucherSequencer {
	return NewGormVoucherSequencer(r.tx)
}

// GormCatalogTransactionScope runs item creation in one GORM transaction so the
// ledger sequence increment and the item insert commit together.
type GormCatalogTransactionScope struct {
	db *gorm.DB
}

// NewGormCatalogTransactionScope creates a new GormCatalogTransactionScope
func NewGormCatalogTransactionScope(db *gorm.DB) *GormCatalogTransactionScope {
	return &GormCatalogTransactionScope{db: db}
}

// Execute runs fn within a database transaction
func (s *GormCatalogTransactionScope) Execute(ctx context.Context, fn func(repos appcatalog.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&catalogTxRepositories{tx: tx})
	})
}

type catalogTxRepositories struct {
	tx *gorm.DB
}

func (r *catalogTxRepositories) LedgerRepo() catalog.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

func (r *catalogTxRepositories) ItemRepo() catalog.ItemRepository {
	return NewGormItemRepository(r.tx)
}

func (r *catalogTxRepositories) SequenceRepo() catalog.SequenceRepository {
	return NewGormSequenceRepository(r.tx)
}

var (
	_ appmovement.TransactionScope          = (*GormMovementTransactionScope)(nil)
	_ appmovement.TransactionalRepositories = (*movementTxRepositories)(nil)
	_ appcatalog.TransactionScope           = (*GormCatalogTransactionScope)(nil)
	_ appcatalog.TransactionalRepositories  = (*catalogTxRepositories)(nil)
)
