package integration

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/psim/backend/internal/infrastructure/cache"
	"github.com/psim/backend/internal/infrastructure/config"
	"github.com/psim/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	redisContainer   testcontainers.Container
	redisContainerMu sync.Mutex
	redisHost        string
	redisPort        int
)

// newRedisBackends starts the shared redis container on first use and
// returns backends built by the same factory the server uses.
func newRedisBackends(t *testing.T) *cache.Backends {
	t.Helper()
	skipIfShort(t)
	ctx := context.Background()

	redisContainerMu.Lock()
	if redisContainer == nil {
		container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "redis:7-alpine",
				ExposedPorts: []string{"6379/tcp"},
				WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
			},
			Started: true,
		})
		if err != nil {
			redisContainerMu.Unlock()
			require.NoError(t, err, "Failed to start Redis container")
		}
		host, err := container.Host(ctx)
		require.NoError(t, err)
		port, err := container.MappedPort(ctx, "6379")
		require.NoError(t, err)
		p, err := strconv.Atoi(port.Port())
		require.NoError(t, err)
		redisContainer, redisHost, redisPort = container, host, p
	}
	host, port := redisHost, redisPort
	redisContainerMu.Unlock()

	backends, err := cache.NewFactory(
		config.RedisConfig{Host: host, Port: port},
		cache.WithInMemoryFallback(false),
	).Build(ctx)
	require.NoError(t, err)
	require.NotNil(t, backends.Client)
	require.NoError(t, backends.Client.FlushDB(ctx).Err())
	t.Cleanup(func() { _ = backends.Close() })
	return backends
}

func terminateRedis(ctx context.Context) {
	redisContainerMu.Lock()
	defer redisContainerMu.Unlock()
	if redisContainer != nil {
		_ = redisContainer.Terminate(ctx)
	}
}

func TestRedis_IdempotencyStore(t *testing.T) {
	backends := newRedisBackends(t)
	store := backends.Idempotency
	ctx := context.Background()

	first, err := store.MarkProcessed(ctx, "storekeeper:k-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := store.MarkProcessed(ctx, "storekeeper:k-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, again)

	seen, err := store.IsProcessed(ctx, "storekeeper:k-1")
	require.NoError(t, err)
	assert.True(t, seen)

	require.NoError(t, store.Release(ctx, "storekeeper:k-1"))
	seen, err = store.IsProcessed(ctx, "storekeeper:k-1")
	require.NoError(t, err)
	assert.False(t, seen)

	keys, err := backends.Client.Keys(ctx, cache.DefaultIdempotencyPrefix+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedis_IdempotencyKeyExpires(t *testing.T) {
	backends := newRedisBackends(t)
	ctx := context.Background()

	_, err := backends.Idempotency.MarkProcessed(ctx, "storekeeper:short", time.Second)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		seen, err := backends.Idempotency.IsProcessed(ctx, "storekeeper:short")
		return err == nil && !seen
	}, 5*time.Second, 100*time.Millisecond)
}

func TestRedis_Locker(t *testing.T) {
	backends := newRedisBackends(t)
	ctx := context.Background()

	release, ok, err := backends.Locker.TryLock(ctx, "job:low-stock-scan", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = backends.Locker.TryLock(ctx, "job:low-stock-scan", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not obtain the lock")

	require.NoError(t, release(ctx))

	release, ok, err = backends.Locker.TryLock(ctx, "job:low-stock-scan", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, release(ctx))
}

func TestRedis_RateLimiterStore(t *testing.T) {
	backends := newRedisBackends(t)
	ctx := context.Background()

	instance, err := middleware.NewRateLimiter(2, time.Minute, backends.Client)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := instance.Get(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, res.Reached)
	}
	res, err := instance.Get(ctx, "10.0.0.1")
	require.NoError(t, err)
	assert.True(t, res.Reached)

	other, err := instance.Get(ctx, "10.0.0.2")
	require.NoError(t, err)
	assert.False(t, other.Reached)
}
