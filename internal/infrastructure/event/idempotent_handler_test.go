package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) Release(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockStore) Close() error { return nil }

func TestIdempotentHandler_SkipsDuplicates(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	inner := newRecordingHandler("LoanOverdue")
	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), nil)

	ev := newTestEvent("LoanOverdue")
	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), newTestEvent("LoanOverdue")))

	assert.Equal(t, 2, inner.count())
	assert.Equal(t, IdempotencyStats{Processed: 2, Duplicate: 1}, h.Stats())
	assert.Equal(t, []string{"LoanOverdue"}, h.EventTypes())
}

func TestIdempotentHandler_FailureReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })
	inner := newRecordingHandler("LoanOverdue")
	inner.err = errors.New("smtp down")
	h := NewIdempotentHandler(inner, store, shared.DefaultIdempotencyConfig(), nil)

	ev := newTestEvent("LoanOverdue")
	assert.Error(t, h.Handle(context.Background(), ev))

	inner.err = nil
	require.NoError(t, h.Handle(context.Background(), ev), "redelivery after a failure is handled")
	assert.Equal(t, 2, inner.count())
	assert.Equal(t, int64(1), h.Stats().Failed)
}

func TestIdempotentHandler_StoreErrorStillHandles(t *testing.T) {
	store := &mockStore{}
	ev := newTestEvent("ItemCreated")
	store.On("MarkProcessed", mock.Anything, "event:"+ev.EventID().String(), 24*time.Hour).
		Return(false, errors.New("redis timeout"))

	inner := newRecordingHandler("ItemCreated")
	h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{}, nil)

	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, 1, inner.count())
	store.AssertExpectations(t)
}

func TestIdempotentHandler_Disabled(t *testing.T) {
	store := &mockStore{}
	inner := newRecordingHandler("ItemCreated")
	h := NewIdempotentHandler(inner, store, shared.IdempotencyConfig{TTL: time.Hour, Enabled: false}, nil)

	ev := newTestEvent("ItemCreated")
	require.NoError(t, h.Handle(context.Background(), ev))
	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Equal(t, 2, inner.count())
	store.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything, mock.Anything)
}
