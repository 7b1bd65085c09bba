// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config is the full service configuration.
type Config struct {
	Server   Server
	Store    Store
	Redis    RedisConfig
	Kafka    Kafka
	Registry Registry
	Rules    Rules
	Auth     Auth
	Batch    Batch
	Audit    Audit
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"VIGISAN_ADDR" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	RequestTimeout  time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
}

// Store selects where rules, processes and compliance audit live.
type Store struct {
	Driver      string        `env:"STORE_DRIVER" envDefault:"memory"`
	DatabaseURL string        `env:"DATABASE_URL"`
	TxTimeout   time.Duration `env:"STORE_TX_TIMEOUT" envDefault:"5s"`
}

// RedisConfig configures the registry cache. An empty URL disables it.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Kafka configures the audit event sink. No brokers disables it.
type Kafka struct {
	Brokers     []string `env:"KAFKA_BROKERS" envSeparator:","`
	ClientID    string   `env:"KAFKA_CLIENT_ID" envDefault:"vigisan"`
	TopicPrefix string   `env:"KAFKA_TOPIC_PREFIX" envDefault:"vigisan.audit"`
	Partitions  int32    `env:"KAFKA_TOPIC_PARTITIONS" envDefault:"3"`
	Replication int16    `env:"KAFKA_TOPIC_REPLICATION" envDefault:"1"`
}

// Registry configures the public CNPJ registry client.
type Registry struct {
	BaseURL  string        `env:"REGISTRY_BASE_URL" envDefault:"https://receitaws.com.br"`
	Interval time.Duration `env:"REGISTRY_INTERVAL" envDefault:"28s"`
	Burst    int           `env:"REGISTRY_BURST" envDefault:"1"`
	Timeout  time.Duration `env:"REGISTRY_TIMEOUT" envDefault:"15s"`
	CacheTTL time.Duration `env:"REGISTRY_CACHE_TTL" envDefault:"24h"`
}

// Rules configures the rule catalogue.
type Rules struct {
	SeedPath    string        `env:"RULES_SEED_PATH" envDefault:"configs/cnae_rules.yaml"`
	WaitTimeout time.Duration `env:"RULES_WAIT_TIMEOUT" envDefault:"2s"`
}

// Auth configures operator tokens and the rule administration token.
// An empty AdminToken disables the rule administration routes.
type Auth struct {
	AdminToken    string        `env:"ADMIN_TOKEN"`
	JWTSigningKey string        `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string        `env:"JWT_ISSUER" envDefault:"vigisan"`
	JWTAudience   string        `env:"JWT_AUDIENCE" envDefault:"vigisan-operators"`
	TokenTTL      time.Duration `env:"OPERATOR_TOKEN_TTL" envDefault:"12h"`
}

// Batch configures bulk analyses.
type Batch struct {
	Concurrency int `env:"BATCH_CONCURRENCY" envDefault:"2"`
	MaxItems    int `env:"BATCH_MAX_ITEMS" envDefault:"500"`
}

// Audit configures the operational event tracker.
type Audit struct {
	OpsSampleRate float64 `env:"AUDIT_OPS_SAMPLE_RATE" envDefault:"1"`
	AsyncBuffer   int     `env:"AUDIT_ASYNC_BUFFER" envDefault:"1024"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres, DriverSQLite:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORE_DRIVER=%s", c.Store.Driver)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.Store.Driver)
	}
	if c.Batch.Concurrency < 1 {
		return fmt.Errorf("BATCH_CONCURRENCY must be at least 1")
	}
	if c.Audit.OpsSampleRate < 0 || c.Audit.OpsSampleRate > 1 {
		return fmt.Errorf("AUDIT_OPS_SAMPLE_RATE must be within [0,1]")
	}
	return nil
}

// UsesSQL reports whether the stores are backed by a database.
func (c *Config) UsesSQL() bool {
	return c.Store.Driver == DriverPostgres || c.Store.Driver == DriverSQLite
}
