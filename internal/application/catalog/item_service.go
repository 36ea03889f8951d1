package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/catalog"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ItemService handles the item master
type ItemService struct {
	scope          TransactionScope
	itemRepo       catalog.ItemRepository
	eventPublisher shared.EventPublisher
}

// NewItemService creates a new ItemService
func NewItemService(scope TransactionScope, itemRepo catalog.ItemRepository) *ItemService {
	return &ItemService{scope: scope, itemRepo: itemRepo}
}

// SetEventPublisher sets the publisher for ItemCreated events
func (s *ItemService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateItem allocates the next code of the ledger and inserts the item in the
// same transaction. A failed insert rolls the sequence back with it.
func (s *ItemService) CreateItem(ctx context.Context, req CreateItemRequest) (*ItemResponse, error) {
	unitValue := decimal.Zero
	if req.UnitValue != nil {
		unitValue = *req.UnitValue
	}

	var item *catalog.Item
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		ledger, err := repos.LedgerRepo().FindByID(ctx, req.LedgerID)
		if err != nil {
			return err
		}
		seq, err := repos.SequenceRepo().NextItemSequence(ctx, ledger.ID)
		if err != nil {
			return err
		}
		code := catalog.FormatItemCode(ledger.NumberPart(), seq)

		item, err = catalog.NewItem(ledger.ID, code, req.Name, req.Description, unitValue)
		if err != nil {
			return err
		}
		return repos.ItemRepo().Create(ctx, item)
	})
	if err != nil {
		return nil, err
	}

	events := item.PullDomainEvents()
	if s.eventPublisher != nil && len(events) > 0 {
		// the item is committed; a publish failure must not fail the request
		_ = s.eventPublisher.Publish(ctx, events...)
	}

	resp := ToItemResponse(item)
	return &resp, nil
}

// GetItem retrieves an item by ID
func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// GetItemByCode retrieves an item by its code
func (s *ItemService) GetItemByCode(ctx context.Context, code string) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}

// ListItems lists items, optionally of one ledger
func (s *ItemService) ListItems(ctx context.Context, filter ItemListFilter) ([]ItemResponse, int64, error) {
	domainFilter := ListFilter{
		Search:   filter.Search,
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
	}.ToDomain("code")
	if filter.LedgerID != nil {
		domainFilter.Filters["ledger_id"] = *filter.LedgerID
	}

	items, total, err := s.itemRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToItemResponses(items), total, nil
}

// UpdateItem renames an item. The code never changes.
func (s *ItemService) UpdateItem(ctx context.Context, id uuid.UUID, req UpdateItemRequest) (*ItemResponse, error) {
	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := item.Rename(req.Name, req.Description); err != nil {
		return nil, err
	}
	if err := s.itemRepo.Save(ctx, item); err != nil {
		return nil, err
	}
	resp := ToItemResponse(item)
	return &resp, nil
}
