package movement

import (
	"context"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// IssuanceVoucherRepository defines the interface for IV persistence
type IssuanceVoucherRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*IssuanceVoucher, error)
	FindByNumber(ctx context.Context, ivNumber string) (*IssuanceVoucher, error)

	// FindAll lists vouchers of a tier. Supported filter keys: district_id
	FindAll(ctx context.Context, tier Tier, filter shared.Filter) ([]IssuanceVoucher, int64, error)

	Create(ctx context.Context, v *IssuanceVoucher) error
}

// LARVoucherRepository defines the interface for LAR persistence
type LARVoucherRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LARVoucher, error)

	// FindAll lists return vouchers of a tier, optionally only those against ivID
	FindAll(ctx context.Context, tier Tier, ivID *uuid.UUID, filter shared.Filter) ([]LARVoucher, int64, error)

	Create(ctx context.Context, v *LARVoucher) error
}

// ItemMovementRepository defines the interface for movement persistence
type ItemMovementRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ItemMovement, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]ItemMovement, error)

	// FindByIssuanceVoucher returns the issue lines of an IV
	FindByIssuanceVoucher(ctx context.Context, ivID uuid.UUID) ([]ItemMovement, error)

	// FindByLARVoucher returns the return lines of a LAR
	FindByLARVoucher(ctx context.Context, larID uuid.UUID) ([]ItemMovement, error)

	// FindOutstanding returns returnable issue lines of an IV with goods still out
	FindOutstanding(ctx context.Context, ivID uuid.UUID) ([]ItemMovement, error)

	// FindByItem returns movements of an item across tiers, newest first
	FindByItem(ctx context.Context, itemID uuid.UUID, filter shared.Filter) ([]ItemMovement, int64, error)

	CreateBatch(ctx context.Context, movements []*ItemMovement) error

	// SaveWithLock persists the returned accumulator of m if its stored version
	// is still m.Version-1. Returns shared.ErrConcurrencyConflict otherwise.
	SaveWithLock(ctx context.Context, m *ItemMovement) error
}
