package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// LedgerRepository defines the interface for ledger persistence
type LedgerRepository interface {
	// FindByID finds a ledger by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Ledger, error)

	// FindByCode finds a ledger by its code
	FindByCode(ctx context.Context, code string) (*Ledger, error)

	// FindAll lists ledgers
	FindAll(ctx context.Context, filter shared.Filter) ([]Ledger, int64, error)

	// Create inserts a new ledger
	Create(ctx context.Context, ledger *Ledger) error
}

// SequenceRepository allocates item sequence numbers
type SequenceRepository interface {
	// NextItemSequence increments the ledger sequence and returns the new value in one
	// atomic step. Two concurrent callers never observe the same value.
	NextItemSequence(ctx context.Context, ledgerID uuid.UUID) (int, error)
}

// ItemRepository defines the interface for item persistence
type ItemRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)
	FindByCode(ctx context.Context, code string) (*Item, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Item, error)

	// FindAll lists items. Supported filter keys: ledger_id
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, int64, error)

	Create(ctx context.Context, item *Item) error
	Save(ctx context.Context, item *Item) error
}

// DistrictRepository defines the interface for district persistence
type DistrictRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*District, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]District, int64, error)
	Create(ctx context.Context, district *District) error
}

// MetricRepository defines the interface for metric persistence
type MetricRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Metric, error)
	FindAll(ctx context.Context) ([]Metric, error)
	Create(ctx context.Context, metric *Metric) error
}

// StaffRepository defines the interface for staff persistence
type StaffRepository interface {
	FindByGNo(ctx context.Context, gNo string) (*Staff, error)
	ExistsByGNo(ctx context.Context, gNo string) (bool, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Staff, int64, error)
	Create(ctx context.Context, staff *Staff) error
}
