package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("should apply defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, 3001, cfg.Server.Port)
		assert.Equal(t, "0.0.0.0", cfg.Server.Host)
		assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
		assert.Equal(t, 10, cfg.Pool.BatchSize)
		assert.Equal(t, 5, cfg.Pool.MaxAttempts)
		assert.Equal(t, "globetalk.events", cfg.Events.TopicPrefix)
	})

	t.Run("PORT overrides the listen port", func(t *testing.T) {
		t.Setenv("PORT", "8080")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, 8080, cfg.Server.Port)
		assert.Equal(t, "0.0.0.0:8080", cfg.Server.GetServerAddr())
	})

	t.Run("REDIS_URL overrides the store address", func(t *testing.T) {
		t.Setenv("REDIS_URL", "redis://cache:6380/1")

		cfg, err := Load()
		require.NoError(t, err)
		assert.Equal(t, "redis://cache:6380/1", cfg.Redis.URL)
	})

	t.Run("should reject an out-of-range PORT", func(t *testing.T) {
		t.Setenv("PORT", "70000")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server port")
	})
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Port: 3001, Host: "0.0.0.0"},
			Redis:  RedisConfig{URL: "redis://localhost:6379/0"},
			Auth:   AuthConfig{JWTSecret: "a-long-enough-secret"},
			Pool:   PoolConfig{BatchSize: 10, MaxAttempts: 5},
			Log:    LogConfig{Level: "info", Encoding: "console"},
		}
	}

	t.Run("should accept a valid configuration", func(t *testing.T) {
		require.NoError(t, validateConfig(valid()))
	})

	t.Run("should reject a short JWT secret", func(t *testing.T) {
		cfg := valid()
		cfg.Auth.JWTSecret = "short"
		require.Error(t, validateConfig(cfg))
	})

	t.Run("should reject a zero pool batch size", func(t *testing.T) {
		cfg := valid()
		cfg.Pool.BatchSize = 0
		require.Error(t, validateConfig(cfg))
	})

	t.Run("should reject an unknown log level", func(t *testing.T) {
		cfg := valid()
		cfg.Log.Level = "verbose"
		require.Error(t, validateConfig(cfg))
	})
}
