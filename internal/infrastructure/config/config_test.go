package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearPSIMEnv blanks every PSIM_ variable for the duration of the test
func clearPSIMEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "PSIM_") {
			t.Setenv(key, "")
		}
	}
}

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearPSIMEnv(t)

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "psim-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "psim", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.Equal(t, 5, cfg.Database.MaxIdleConns)
		assert.Empty(t, cfg.Redis.Host)
		assert.Equal(t, "Asia/Colombo", cfg.Ledger.Timezone)
		assert.True(t, cfg.Idempotency.Enabled)
		assert.Equal(t, 24*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, "0 6 * * *", cfg.Scheduler.LowStockCron)
		assert.Equal(t, "psim-backend", cfg.Telemetry.ServiceName)
		assert.Contains(t, cfg.HTTP.CORSAllowHeaders, "Idempotency-Key")
	})

	t.Run("loads values from environment variables with PSIM prefix", func(t *testing.T) {
		clearPSIMEnv(t)
		t.Setenv("PSIM_APP_PORT", "9000")
		t.Setenv("PSIM_DATABASE_HOST", "testdb.local")
		t.Setenv("PSIM_DATABASE_PORT", "5433")
		t.Setenv("PSIM_DATABASE_PASSWORD", "testpass")
		t.Setenv("PSIM_REDIS_HOST", "cache.local")
		t.Setenv("PSIM_LEDGER_TIMEZONE", "UTC")
		t.Setenv("PSIM_IDEMPOTENCY_ENABLED", "false")
		t.Setenv("PSIM_IDEMPOTENCY_TTL", "2h")
		t.Setenv("PSIM_HTTP_RATE_LIMIT_REQUESTS", "50")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, "testpass", cfg.Database.Password)
		assert.Equal(t, "cache.local:6379", cfg.Redis.Addr())
		assert.Equal(t, time.UTC, cfg.Ledger.Location())
		assert.False(t, cfg.Idempotency.Enabled)
		assert.Equal(t, 2*time.Hour, cfg.Idempotency.TTL)
		assert.Equal(t, int64(50), cfg.HTTP.RateLimitRequests)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearPSIMEnv(t)
		t.Setenv("PSIM_DATABASE_MAX_OPEN_CONNS", "10")
		t.Setenv("PSIM_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot exceed")
	})

	t.Run("validates MaxIdleConns cannot be negative", func(t *testing.T) {
		clearPSIMEnv(t)
		t.Setenv("PSIM_DATABASE_MAX_IDLE_CONNS", "-1")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns cannot be negative")
	})

	t.Run("rejects unknown ledger timezone", func(t *testing.T) {
		clearPSIMEnv(t)
		t.Setenv("PSIM_LEDGER_TIMEZONE", "Mars/Olympus")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "ledger.timezone")
	})

	t.Run("rejects malformed cron spec when scheduler is enabled", func(t *testing.T) {
		clearPSIMEnv(t)
		t.Setenv("PSIM_SCHEDULER_ENABLED", "true")
		t.Setenv("PSIM_SCHEDULER_OVERDUE_LOANS_CRON", "every hour")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "scheduler.overdue_loans_cron")
	})

	t.Run("rejects sampling ratio outside 0..1", func(t *testing.T) {
		clearPSIMEnv(t)
		t.Setenv("PSIM_TELEMETRY_SAMPLING_RATIO", "1.5")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sampling_ratio")
	})
}

func TestLoad_ProductionValidation(t *testing.T) {
	base := func(t *testing.T) {
		clearPSIMEnv(t)
		t.Setenv("PSIM_APP_ENV", "production")
		t.Setenv("PSIM_DATABASE_PASSWORD", "secure-password")
		t.Setenv("PSIM_DATABASE_SSLMODE", "require")
	}

	t.Run("requires database.password", func(t *testing.T) {
		base(t)
		t.Setenv("PSIM_DATABASE_PASSWORD", "")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password is required in production")
	})

	t.Run("requires SSL", func(t *testing.T) {
		base(t)
		t.Setenv("PSIM_DATABASE_SSLMODE", "disable")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sslmode")
	})

	t.Run("forbids wildcard CORS", func(t *testing.T) {
		base(t)
		t.Setenv("PSIM_HTTP_CORS_ALLOW_ORIGINS", "*")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cors_allow_origins")
	})

	t.Run("forbids full SQL in traces", func(t *testing.T) {
		base(t)
		t.Setenv("PSIM_TELEMETRY_DB_LOG_FULL_SQL", "true")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db_log_full_sql")
	})

	t.Run("passes with valid production config", func(t *testing.T) {
		base(t)

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "production", cfg.App.Env)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	t.Run("generates valid DSN", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "store", Password: "pw", DBName: "psim", SSLMode: "disable"}

		dsn := cfg.DSN()
		assert.Equal(t, "postgres://store:pw@localhost:5432/psim?sslmode=disable", dsn)
	})

	t.Run("escapes special characters in password", func(t *testing.T) {
		cfg := DatabaseConfig{Host: "localhost", Port: 5432, User: "user", Password: "pass@word#123", DBName: "db", SSLMode: "disable"}

		assert.Contains(t, cfg.DSN(), "pass%40word%23123")
	})
}

func TestLedgerConfig_Location(t *testing.T) {
	assert.Equal(t, "Asia/Colombo", LedgerConfig{Timezone: "Asia/Colombo"}.Location().String())
	assert.Equal(t, time.UTC, LedgerConfig{Timezone: "nowhere"}.Location())
}
