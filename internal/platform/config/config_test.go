package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "http", cfg.Sync.Transport)
	assert.Equal(t, 10*time.Second, cfg.Sync.DeliveryTimeout)
	assert.False(t, cfg.Server.SeedExample)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Equal(t, "pcps:targets", cfg.Redis.TargetsKey)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("PCPS_STORE_BACKEND", "sqlite")
	t.Setenv("PCPS_KAFKA_BROKERS", "k1:9092, k2:9092,K1:9092")
	t.Setenv("PCPS_SIMULATED_FAILING", "https://down.example")
	t.Setenv("PCPS_DELIVERY_TIMEOUT", "250ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, []string{"https://down.example"}, cfg.Sync.SimulatedFailing)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.DeliveryTimeout)
}

func TestParseEnvError(t *testing.T) {
	t.Setenv("PCPS_DELIVERY_TIMEOUT", "soon")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse env:")
}
