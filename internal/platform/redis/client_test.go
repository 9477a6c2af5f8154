package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pcps/internal/platform/config"
)

func TestOptions(t *testing.T) {
	t.Run("empty url is not configured", func(t *testing.T) {
		_, err := Options(config.RedisConfig{})
		assert.ErrorIs(t, err, ErrNotConfigured)
	})

	t.Run("invalid url", func(t *testing.T) {
		_, err := Options(config.RedisConfig{URL: "http://nope"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse redis url")
	})

	t.Run("pool and timeouts applied", func(t *testing.T) {
		opts, err := Options(config.RedisConfig{
			URL:          "redis://cache:6380/2",
			PoolSize:     7,
			MinIdleConns: 3,
			DialTimeout:  time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 3 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache:6380", opts.Addr)
		assert.Equal(t, 2, opts.DB)
		assert.Equal(t, 7, opts.PoolSize)
		assert.Equal(t, 3, opts.MinIdleConns)
		assert.Equal(t, time.Second, opts.DialTimeout)
		assert.Equal(t, 2*time.Second, opts.ReadTimeout)
		assert.Equal(t, 3*time.Second, opts.WriteTimeout)
	})

	t.Run("zero values keep url settings", func(t *testing.T) {
		opts, err := Options(config.RedisConfig{URL: "redis://cache:6379/0?pool_size=4"})
		require.NoError(t, err)
		assert.Equal(t, 4, opts.PoolSize)
	})
}

func TestNewWithoutURLKeepsRegistryInMemory(t *testing.T) {
	client, err := New(context.Background(), config.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}
