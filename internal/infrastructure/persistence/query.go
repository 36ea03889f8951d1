package persistence

import (
	"errors"
	"fmt"

	"github.com/psim/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// applyPaging applies whitelisted ordering and page limits from filter
func applyPaging(query *gorm.DB, filter shared.Filter, allowed map[string]bool, defaultField string) *gorm.DB {
	field := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(field + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// notFoundOr maps gorm.ErrRecordNotFound to a NotFound domain error for entity/key
func notFoundOr(err error, entity string, key any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity, key)
	}
	return fmt.Errorf("failed to load %s: %w", entity, err)
}

// lockConflict is returned by SaveWithLock when no row matched the expected version
func lockConflict(entity string) error {
	return shared.NewDomainError(shared.CodeConcurrencyConflict,
		fmt.Sprintf("%s was modified by another transaction", entity))
}
