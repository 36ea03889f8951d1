package stock

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/psim/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func TestNewHQStock(t *testing.T) {
	t.Run("requires metric", func(t *testing.T) {
		_, err := NewHQStock(uuid.New(), uuid.Nil, 5, nil)
		require.Error(t, err)
		assert.True(t, shared.IsValidationError(err))
	})

	t.Run("rejects negative initial quantity", func(t *testing.T) {
		_, err := NewHQStock(uuid.New(), uuid.New(), -1, nil)
		require.Error(t, err)
	})

	t.Run("creates row", func(t *testing.T) {
		s, err := NewHQStock(uuid.New(), uuid.New(), 5, ptr(2))
		require.NoError(t, err)
		assert.Equal(t, int64(5), s.Quantity)
		assert.Equal(t, 1, s.GetVersion())
	})
}

func TestHQStock_Decrease(t *testing.T) {
	t.Run("decreases and bumps version", func(t *testing.T) {
		s, err := NewHQStock(uuid.New(), uuid.New(), 10, nil)
		require.NoError(t, err)
		require.NoError(t, s.Decrease(4))
		assert.Equal(t, int64(6), s.Quantity)
		assert.Equal(t, 2, s.GetVersion())
	})

	t.Run("refuses to go negative", func(t *testing.T) {
		s, err := NewHQStock(uuid.New(), uuid.New(), 5, nil)
		require.NoError(t, err)

		err = s.Decrease(6)
		require.Error(t, err)
		assert.True(t, shared.IsInvariantViolation(err))
		assert.Equal(t, int64(5), s.Quantity)
		assert.Equal(t, 1, s.GetVersion())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		s, err := NewHQStock(uuid.New(), uuid.New(), 5, nil)
		require.NoError(t, err)
		assert.True(t, shared.IsValidationError(s.Decrease(0)))
		assert.True(t, shared.IsValidationError(s.Increase(-3)))
	})

	t.Run("raises below threshold event once", func(t *testing.T) {
		s, err := NewHQStock(uuid.New(), uuid.New(), 10, ptr(5))
		require.NoError(t, err)

		require.NoError(t, s.Decrease(3))
		assert.Empty(t, s.GetDomainEvents())

		require.NoError(t, s.Decrease(3))
		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*StockBelowThresholdEvent)
		require.True(t, ok)
		assert.Equal(t, int64(4), evt.Quantity)
		assert.Equal(t, int64(5), evt.Threshold)

		require.NoError(t, s.Decrease(1))
		assert.Len(t, s.GetDomainEvents(), 1)
	})
}

func TestStock_IncreaseOverflow(t *testing.T) {
	t.Run("hq", func(t *testing.T) {
		s, err := NewHQStock(uuid.New(), uuid.New(), math.MaxInt64, nil)
		require.NoError(t, err)

		err = s.Increase(1)
		require.Error(t, err)
		assert.True(t, shared.IsInvariantViolation(err))
		assert.Equal(t, int64(math.MaxInt64), s.Quantity)
		assert.Equal(t, 1, s.GetVersion())
	})

	t.Run("district", func(t *testing.T) {
		s, err := NewDistrictStock(uuid.New(), uuid.New(), uuid.New(), math.MaxInt64-2, true)
		require.NoError(t, err)

		require.NoError(t, s.Increase(2))
		assert.Equal(t, int64(math.MaxInt64), s.Quantity)
		assert.True(t, shared.IsInvariantViolation(s.Increase(1)))
		assert.Equal(t, int64(math.MaxInt64), s.Quantity)
	})
}

func TestHQStock_IsLow(t *testing.T) {
	s, err := NewHQStock(uuid.New(), uuid.New(), 3, nil)
	require.NoError(t, err)

	assert.False(t, s.IsLow(nil), "no threshold configured")
	assert.True(t, s.IsLow(ptr(4)))
	assert.False(t, s.IsLow(ptr(3)))

	require.NoError(t, s.SetThreshold(ptr(10)))
	assert.True(t, s.IsLow(nil))
	assert.Error(t, s.SetThreshold(ptr(-1)))
}

func TestDistrictStock(t *testing.T) {
	metricID := uuid.New()
	s, err := NewDistrictStock(uuid.New(), uuid.New(), metricID, 0, true)
	require.NoError(t, err)
	assert.Equal(t, CategoryReturnable, s.Category())

	require.NoError(t, s.Increase(10))
	require.NoError(t, s.Decrease(10))
	assert.Equal(t, int64(0), s.Quantity)
	assert.Equal(t, 3, s.GetVersion())

	err = s.Decrease(1)
	assert.True(t, shared.IsInvariantViolation(err))

	assert.NoError(t, s.Accepts(metricID, true))
	assert.True(t, shared.IsValidationError(s.Accepts(uuid.New(), true)))
	assert.True(t, shared.IsValidationError(s.Accepts(metricID, false)))

	c, err := NewDistrictStock(uuid.New(), uuid.New(), metricID, 2, false)
	require.NoError(t, err)
	assert.Equal(t, CategoryConsumable, c.Category())
	assert.True(t, c.IsLow(3))
	assert.False(t, c.IsLow(2))
}

func TestCategory_IsValid(t *testing.T) {
	assert.True(t, CategoryReturnable.IsValid())
	assert.True(t, CategoryConsumable.IsValid())
	assert.False(t, Category("LEDGER_III").IsValid())
}
