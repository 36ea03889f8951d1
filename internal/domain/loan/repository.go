package loan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// Repository defines the interface for loan persistence
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*LoanItem, error)

	// FindAll lists loans, optionally only those in status
	FindAll(ctx context.Context, status *Status, filter shared.Filter) ([]LoanItem, int64, error)

	// FindOverdue returns open loans whose due date is before now
	FindOverdue(ctx context.Context, now time.Time) ([]LoanItem, error)

	Create(ctx context.Context, l *LoanItem) error
	SaveWithLock(ctx context.Context, l *LoanItem) error
}
