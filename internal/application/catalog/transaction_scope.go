package catalog

import (
	"context"

	"github.com/psim/backend/internal/domain/catalog"
)

// TransactionScope runs item master writes in one database transaction
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes the repositories bound to the running transaction
type TransactionalRepositories interface {
	LedgerRepo() catalog.LedgerRepository
	ItemRepo() catalog.ItemRepository
	SequenceRepo() catalog.SequenceRepository
}

// NoOpTransactionScope runs fn against the given repositories with no transaction.
// Used by unit tests.
type NoOpTransactionScope struct {
	repos noOpRepos
}

type noOpRepos struct {
	ledgers   catalog.LedgerRepository
	items     catalog.ItemRepository
	sequences catalog.SequenceRepository
}

func (r noOpRepos) LedgerRepo() catalog.LedgerRepository {
	return r.ledgers
}

func (r noOpRepos) ItemRepo() catalog.ItemRepository {
	return r.items
}

func (r noOpRepos) SequenceRepo() catalog.SequenceRepository {
	return r.sequences
}

// NewNoOpTransactionScope creates a scope over plain repositories
func NewNoOpTransactionScope(
	ledgers catalog.LedgerRepository,
	items catalog.ItemRepository,
	sequences catalog.SequenceRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{repos: noOpRepos{ledgers: ledgers, items: items, sequences: sequences}}
}

// Execute calls fn directly
func (s *NoOpTransactionScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.repos)
}
