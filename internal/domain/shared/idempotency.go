package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers Idempotency-Key values of write requests so a
// retried POST does not create a second voucher.
type IdempotencyStore interface {
	// MarkProcessed claims key for ttl. It reports false when the key is already held.
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)
	IsProcessed(ctx context.Context, key string) (bool, error)
	// Release drops key so a failed request can be retried with it
	Release(ctx context.Context, key string) error
	Close() error
}

// IdempotencyConfig controls the Idempotency-Key middleware
type IdempotencyConfig struct {
	Enabled bool
	TTL     time.Duration
}

// DefaultIdempotencyConfig blocks replays for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{Enabled: true, TTL: 24 * time.Hour}
}
