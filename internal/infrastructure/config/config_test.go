package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Save original env vars and restore after tests
	originalEnv := map[string]string{
		"AUCTION_APP_NAME":                  os.Getenv("AUCTION_APP_NAME"),
		"AUCTION_APP_ENV":                   os.Getenv("AUCTION_APP_ENV"),
		"AUCTION_APP_PORT":                  os.Getenv("AUCTION_APP_PORT"),
		"AUCTION_DATABASE_HOST":             os.Getenv("AUCTION_DATABASE_HOST"),
		"AUCTION_DATABASE_PORT":             os.Getenv("AUCTION_DATABASE_PORT"),
		"AUCTION_DATABASE_USER":             os.Getenv("AUCTION_DATABASE_USER"),
		"AUCTION_DATABASE_PASSWORD":         os.Getenv("AUCTION_DATABASE_PASSWORD"),
		"AUCTION_DATABASE_DBNAME":           os.Getenv("AUCTION_DATABASE_DBNAME"),
		"AUCTION_DATABASE_MAX_OPEN_CONNS":   os.Getenv("AUCTION_DATABASE_MAX_OPEN_CONNS"),
		"AUCTION_DATABASE_MAX_IDLE_CONNS":   os.Getenv("AUCTION_DATABASE_MAX_IDLE_CONNS"),
		"AUCTION_BIDDING_LOCK_TTL":          os.Getenv("AUCTION_BIDDING_LOCK_TTL"),
		"AUCTION_BIDDING_CASCADE_LOCK_TTL":  os.Getenv("AUCTION_BIDDING_CASCADE_LOCK_TTL"),
		"AUCTION_BIDDING_SNIPE_THRESHOLD":   os.Getenv("AUCTION_BIDDING_SNIPE_THRESHOLD"),
		"AUCTION_BIDDING_MAX_CASCADE_DEPTH": os.Getenv("AUCTION_BIDDING_MAX_CASCADE_DEPTH"),
	}

	defer func() {
		for k, v := range originalEnv {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	}()

	clearEnv := func() {
		for k := range originalEnv {
			os.Unsetenv(k)
		}
	}

	t.Run("loads default values when env vars not set", func(t *testing.T) {
		clearEnv()

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "auction-backend", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "auction", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)

		assert.Equal(t, 10*time.Second, cfg.Bidding.LockTTL)
		assert.Equal(t, 30*time.Second, cfg.Bidding.CascadeLockTTL)
		assert.Equal(t, 60*time.Second, cfg.Bidding.IdempotencyWindow)
		assert.Equal(t, 2*time.Minute, cfg.Bidding.SnipeThreshold)
		assert.Equal(t, 2*time.Minute, cfg.Bidding.SnipeExtension)
		assert.Equal(t, 10, cfg.Bidding.MaxCascadeDepth)
	})

	t.Run("loads values from environment variables with AUCTION prefix", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUCTION_APP_NAME", "test-app")
		os.Setenv("AUCTION_APP_PORT", "9000")
		os.Setenv("AUCTION_DATABASE_HOST", "testdb.local")
		os.Setenv("AUCTION_DATABASE_PORT", "5433")
		os.Setenv("AUCTION_BIDDING_LOCK_TTL", "15s")
		os.Setenv("AUCTION_BIDDING_SNIPE_THRESHOLD", "90s")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "test-app", cfg.App.Name)
		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.Equal(t, 15*time.Second, cfg.Bidding.LockTTL)
		assert.Equal(t, 90*time.Second, cfg.Bidding.SnipeThreshold)
	})

	t.Run("validates MaxIdleConns cannot exceed MaxOpenConns", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUCTION_DATABASE_MAX_OPEN_CONNS", "10")
		os.Setenv("AUCTION_DATABASE_MAX_IDLE_CONNS", "20")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_idle_conns")
	})

	t.Run("validates cascade lock TTL covers the plain lock TTL", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUCTION_BIDDING_LOCK_TTL", "30s")
		os.Setenv("AUCTION_BIDDING_CASCADE_LOCK_TTL", "10s")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cascade_lock_ttl")
	})

	t.Run("requires password in production", func(t *testing.T) {
		clearEnv()
		os.Setenv("AUCTION_APP_ENV", "production")

		_, err := Load()
		require.Error(t, err)
	})
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "auction",
		Password: "p@ss/word",
		DBName:   "auction",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "sslmode=disable")
	// Special characters in credentials must be escaped
	assert.NotContains(t, dsn, "p@ss/word")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "redis.local", Port: 6380}
	assert.Equal(t, "redis.local:6380", cfg.Addr())
}
