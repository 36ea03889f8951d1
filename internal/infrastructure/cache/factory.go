package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/psim/backend/internal/domain/shared"
	"github.com/psim/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const pingTimeout = 5 * time.Second

// Locker is what TryLock callers depend on
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (ReleaseFunc, bool, error)
}

// Backends groups the redis-or-memory components built at startup
type Backends struct {
	Client      *redis.Client // nil when running on memory
	Idempotency shared.IdempotencyStore
	Locker      Locker
}

// Close releases the stores and the redis client
func (b *Backends) Close() error {
	if b.Idempotency != nil {
		_ = b.Idempotency.Close()
	}
	if b.Client != nil {
		return b.Client.Close()
	}
	return nil
}

// Factory builds Backends from redis configuration
type Factory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption configures a Factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable redis degrades to
// memory backends instead of failing startup. Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a factory
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Connect opens and pings a redis client
func (f *Factory) Connect(ctx context.Context) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis %s: %w", f.redisConfig.Addr(), err)
	}
	return client, nil
}

// Build returns redis backends when redis is configured and reachable, and
// memory backends otherwise.
func (f *Factory) Build(ctx context.Context) (*Backends, error) {
	if f.redisConfig.Host == "" {
		f.logger.Info("Redis not configured, using in-memory idempotency store and locks")
		return f.inMemory(), nil
	}

	client, err := f.Connect(ctx)
	if err != nil {
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory idempotency store and locks. "+
			"Replays and scheduled jobs are not coordinated across instances.",
			zap.Error(err),
		)
		return f.inMemory(), nil
	}

	f.logger.Info("Using Redis idempotency store and locks", zap.String("addr", f.redisConfig.Addr()))
	return &Backends{
		Client:      client,
		Idempotency: NewRedisIdempotencyStore(client, DefaultIdempotencyPrefix),
		Locker:      NewRedisLocker(client),
	}, nil
}

func (f *Factory) inMemory() *Backends {
	return &Backends{
		Idempotency: NewInMemoryIdempotencyStore(),
		Locker:      NewInMemoryLocker(),
	}
}
