package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/shared"
)

// LedgerService handles ledger registration and item code previews
type LedgerService struct {
	ledgerRepo catalog.LedgerRepository
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(ledgerRepo catalog.LedgerRepository) *LedgerService {
	return &LedgerService{ledgerRepo: ledgerRepo}
}

// CreateLedger registers a ledger with its sequence at zero
func (s *LedgerService) CreateLedger(ctx context.Context, req CreateLedgerRequest) (*LedgerResponse, error) {
	ledger, err := catalog.NewLedger(req.Code, req.Name)
	if err != nil {
		return nil, err
	}

	existing, err := s.ledgerRepo.FindByCode(ctx, ledger.Code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Ledger with this code already exists")
	}

	if err := s.ledgerRepo.Create(ctx, ledger); err != nil {
		return nil, err
	}
	resp := ToLedgerResponse(ledger)
	return &resp, nil
}

// GetLedger retrieves a ledger by ID
func (s *LedgerService) GetLedger(ctx context.Context, id uuid.UUID) (*LedgerResponse, error) {
	ledger, err := s.ledgerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToLedgerResponse(ledger)
	return &resp, nil
}

// ListLedgers lists ledgers ordered by code
func (s *LedgerService) ListLedgers(ctx context.Context, filter ListFilter) ([]LedgerResponse, int64, error) {
	ledgers, total, err := s.ledgerRepo.FindAll(ctx, filter.ToDomain("code"))
	if err != nil {
		return nil, 0, err
	}
	out := make([]LedgerResponse, len(ledgers))
	for i := range ledgers {
		out[i] = ToLedgerResponse(&ledgers[i])
	}
	return out, total, nil
}

// PreviewItemCode returns the code the next item on the ledger would receive.
// An unknown ledger yields "" rather than an error; other lookup failures are returned.
func (s *LedgerService) PreviewItemCode(ctx context.Context, ledgerID uuid.UUID) (string, error) {
	ledger, err := s.ledgerRepo.FindByID(ctx, ledgerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return catalog.GenerateItemCode(ledger), nil
}
