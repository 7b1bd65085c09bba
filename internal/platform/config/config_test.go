package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 28*time.Second, cfg.Registry.Interval)
	assert.Equal(t, 2*time.Second, cfg.Rules.WaitTimeout)
	assert.Equal(t, "configs/cnae_rules.yaml", cfg.Rules.SeedPath)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.False(t, cfg.UsesSQL())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://vigisan@localhost/vigisan?sslmode=disable")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092,kafka-2:9092")
	t.Setenv("RULES_WAIT_TIMEOUT", "500ms")
	t.Setenv("REGISTRY_CACHE_TTL", "1h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.UsesSQL())
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 500*time.Millisecond, cfg.Rules.WaitTimeout)
	assert.Equal(t, time.Hour, cfg.Registry.CacheTTL)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{"sql driver without url", map[string]string{"STORE_DRIVER": "sqlite"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "mongo"}},
		{"zero batch concurrency", map[string]string{"BATCH_CONCURRENCY": "0"}},
		{"sample rate out of range", map[string]string{"AUDIT_OPS_SAMPLE_RATE": "1.5"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
