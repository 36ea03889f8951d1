package stock

import (
	"math"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
)

// Aggregate type constants
const (
	AggregateTypeHQStock       = "HQStock"
	AggregateTypeDistrictStock = "DistrictStock"
)

// Category classifies district stock for reporting
type Category string

const (
	// CategoryReturnable is Ledger-I stock that is expected to come back
	CategoryReturnable Category = "LEDGER_I"
	// CategoryConsumable is Ledger-II stock that is used up on issue
	CategoryConsumable Category = "LEDGER_II"
)

// IsValid reports whether c is a known category
func (c Category) IsValid() bool {
	return c == CategoryReturnable || c == CategoryConsumable
}

// increase and decrease are shared by both tiers. A balance stays within
// [0, math.MaxInt64].
func increase(balance *int64, q int64) error {
	if q <= 0 {
		return shared.NewValidationError("quantity must be positive, got %d", q)
	}
	if q > math.MaxInt64-*balance {
		return shared.NewInvariantViolation("stock balance overflow: have %d, adding %d", *balance, q)
	}
	*balance += q
	return nil
}

func decrease(balance *int64, q int64) error {
	if q <= 0 {
		return shared.NewValidationError("quantity must be positive, got %d", q)
	}
	if *balance-q < 0 {
		return shared.NewInvariantViolation("stock cannot go negative: have %d, removing %d", *balance, q)
	}
	*balance -= q
	return nil
}

// HQStock is the headquarters store balance for one item
type HQStock struct {
	shared.BaseAggregateRoot
	ItemID            uuid.UUID
	MetricID          uuid.UUID
	Quantity          int64
	LowStockThreshold *int64
}

// NewHQStock creates an HQ stock row. The metric is required up front.
func NewHQStock(itemID, metricID uuid.UUID, quantity int64, threshold *int64) (*HQStock, error) {
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("item is required")
	}
	if metricID == uuid.Nil {
		return nil, shared.NewValidationError("metric is required")
	}
	if quantity < 0 {
		return nil, shared.NewValidationError("initial quantity cannot be negative")
	}
	if threshold != nil && *threshold < 0 {
		return nil, shared.NewValidationError("low stock threshold cannot be negative")
	}
	return &HQStock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ItemID:            itemID,
		MetricID:          metricID,
		Quantity:          quantity,
		LowStockThreshold: threshold,
	}, nil
}

// Increase adds q units
func (s *HQStock) Increase(q int64) error {
	if err := increase(&s.Quantity, q); err != nil {
		return err
	}
	s.IncrementVersion()
	return nil
}

// Decrease removes q units. It raises StockBelowThreshold when the balance
// crosses the configured threshold.
func (s *HQStock) Decrease(q int64) error {
	wasLow := s.IsLow(nil)
	if err := decrease(&s.Quantity, q); err != nil {
		return err
	}
	s.IncrementVersion()
	if !wasLow && s.IsLow(nil) {
		s.AddDomainEvent(NewStockBelowThresholdEvent(s))
	}
	return nil
}

// SetThreshold replaces the low stock threshold. Nil clears it.
func (s *HQStock) SetThreshold(threshold *int64) error {
	if threshold != nil && *threshold < 0 {
		return shared.NewValidationError("low stock threshold cannot be negative")
	}
	s.LowStockThreshold = threshold
	s.IncrementVersion()
	return nil
}

// IsLow compares the quantity against threshold, or against the row's own
// threshold when threshold is nil. A row without any threshold is never low.
func (s *HQStock) IsLow(threshold *int64) bool {
	if threshold == nil {
		threshold = s.LowStockThreshold
	}
	if threshold == nil {
		return false
	}
	return s.Quantity < *threshold
}

// DistrictStock is a district store balance for one item
type DistrictStock struct {
	shared.BaseAggregateRoot
	DistrictID   uuid.UUID
	ItemID       uuid.UUID
	MetricID     uuid.UUID
	Quantity     int64
	IsReturnable bool
}

// NewDistrictStock creates a district stock row
func NewDistrictStock(districtID, itemID, metricID uuid.UUID, quantity int64, isReturnable bool) (*DistrictStock, error) {
	if districtID == uuid.Nil {
		return nil, shared.NewValidationError("district is required")
	}
	if itemID == uuid.Nil {
		return nil, shared.NewValidationError("item is required")
	}
	if metricID == uuid.Nil {
		return nil, shared.NewValidationError("metric is required")
	}
	if quantity < 0 {
		return nil, shared.NewValidationError("initial quantity cannot be negative")
	}
	return &DistrictStock{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		DistrictID:        districtID,
		ItemID:            itemID,
		MetricID:          metricID,
		Quantity:          quantity,
		IsReturnable:      isReturnable,
	}, nil
}

// Increase adds q units
func (s *DistrictStock) Increase(q int64) error {
	if err := increase(&s.Quantity, q); err != nil {
		return err
	}
	s.IncrementVersion()
	return nil
}

// Decrease removes q units
func (s *DistrictStock) Decrease(q int64) error {
	if err := decrease(&s.Quantity, q); err != nil {
		return err
	}
	s.IncrementVersion()
	return nil
}

// Category returns LEDGER_I for returnable stock and LEDGER_II for consumables
func (s *DistrictStock) Category() Category {
	if s.IsReturnable {
		return CategoryReturnable
	}
	return CategoryConsumable
}

// Accepts checks that goods with the given metric and returnable flag can be
// merged into this row.
func (s *DistrictStock) Accepts(metricID uuid.UUID, isReturnable bool) error {
	if s.MetricID != metricID {
		return shared.NewValidationError("district stock for item %s is kept in a different metric", s.ItemID)
	}
	if s.IsReturnable != isReturnable {
		return shared.NewValidationError("district stock for item %s is %s, cannot merge %s goods",
			s.ItemID, s.Category(), categoryOf(isReturnable))
	}
	return nil
}

// CheckCategory rejects an issue line whose returnable flag disagrees with the row
func (s *DistrictStock) CheckCategory(isReturnable bool) error {
	if s.IsReturnable != isReturnable {
		return shared.NewValidationError("district stock for item %s is %s, line asks for %s goods",
			s.ItemID, s.Category(), categoryOf(isReturnable))
	}
	return nil
}

// IsLow reports whether the quantity is below threshold
func (s *DistrictStock) IsLow(threshold int64) bool {
	return s.Quantity < threshold
}

func categoryOf(isReturnable bool) Category {
	if isReturnable {
		return CategoryReturnable
	}
	return CategoryConsumable
}
