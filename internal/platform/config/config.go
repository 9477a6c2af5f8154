package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	pstrings "pcps/pkg/platform/strings"
)

// Config is the full runtime configuration, read once at startup.
type Config struct {
	Server Server
	Log    Log
	Store  Store
	Redis  RedisConfig
	Sync   Sync
	Kafka  Kafka
	Notify Notify
	Otel   Otel
	AWS    AWS
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `env:"PCPS_ADDR" envDefault:":8080"`
	RequestTimeout  time.Duration `env:"PCPS_REQUEST_TIMEOUT" envDefault:"30s"`
	ShutdownTimeout time.Duration `env:"PCPS_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	SeedExample     bool          `env:"PCPS_SEED_EXAMPLE" envDefault:"false"`
}

type Log struct {
	Level  string `env:"PCPS_LOG_LEVEL" envDefault:"info"`
	Format string `env:"PCPS_LOG_FORMAT" envDefault:"json"`
}

// Store selects where the family document lives.
type Store struct {
	Backend    string `env:"PCPS_STORE_BACKEND" envDefault:"memory"` // memory, sqlite, postgres, mysql, s3
	SQLitePath string `env:"PCPS_SQLITE_PATH" envDefault:"pcps.db"`
	DSN        string `env:"PCPS_DATABASE_URL"`
	S3Bucket   string `env:"PCPS_S3_BUCKET"`
	S3Key      string `env:"PCPS_S3_KEY" envDefault:"pcps/family.json"`
}

// RedisConfig holds connection settings for the target registry store.
// An empty URL keeps the registry in memory.
type RedisConfig struct {
	URL          string        `env:"PCPS_REDIS_URL"`
	TargetsKey   string        `env:"PCPS_REDIS_TARGETS_KEY" envDefault:"pcps:targets"`
	PoolSize     int           `env:"PCPS_REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"PCPS_REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"PCPS_REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"PCPS_REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"PCPS_REDIS_WRITE_TIMEOUT" envDefault:"3s"`
}

// Sync configures delivery to platform adapters.
type Sync struct {
	Transport        string        `env:"PCPS_TRANSPORT" envDefault:"http"` // http, simulated
	DeliveryTimeout  time.Duration `env:"PCPS_DELIVERY_TIMEOUT" envDefault:"10s"`
	SigningKey       string        `env:"PCPS_SIGNING_KEY"`
	SigningSecretID  string        `env:"PCPS_SIGNING_SECRET_ID"`
	TokenTTL         time.Duration `env:"PCPS_TOKEN_TTL" envDefault:"5m"`
	SimulatedLatency time.Duration `env:"PCPS_SIMULATED_LATENCY" envDefault:"300ms"`
	SimulatedFailing []string      `env:"PCPS_SIMULATED_FAILING" envSeparator:","`
	SeedSuggested    bool          `env:"PCPS_SEED_SUGGESTED_TARGETS" envDefault:"true"`
}

// Kafka configures save event publication. No brokers keeps events in memory.
type Kafka struct {
	Brokers           []string      `env:"PCPS_KAFKA_BROKERS" envSeparator:","`
	Topic             string        `env:"PCPS_KAFKA_TOPIC" envDefault:"pcps.save-events"`
	Partitions        int32         `env:"PCPS_KAFKA_PARTITIONS" envDefault:"1"`
	ReplicationFactor int16         `env:"PCPS_KAFKA_REPLICATION" envDefault:"1"`
	ProduceTimeout    time.Duration `env:"PCPS_KAFKA_PRODUCE_TIMEOUT" envDefault:"5s"`
	FailureThreshold  int           `env:"PCPS_KAFKA_FAILURE_THRESHOLD" envDefault:"5"`
	SuccessThreshold  int           `env:"PCPS_KAFKA_SUCCESS_THRESHOLD" envDefault:"2"`
}

// Notify configures failure emails to guardians. An empty sender disables it.
type Notify struct {
	FromAddress string `env:"PCPS_NOTIFY_FROM"`
	FromName    string `env:"PCPS_NOTIFY_FROM_NAME" envDefault:"Family Policy Sync"`
}

type Otel struct {
	Enabled     bool   `env:"PCPS_OTEL_ENABLED" envDefault:"true"`
	Endpoint    string `env:"PCPS_OTEL_ENDPOINT"`
	ServiceName string `env:"PCPS_OTEL_SERVICE_NAME" envDefault:"pcps"`
}

type AWS struct {
	Region   string `env:"PCPS_AWS_REGION" envDefault:"eu-west-2"`
	Endpoint string `env:"PCPS_AWS_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// FromEnv builds the full Config so main stays lean. List values are
// trimmed and deduplicated.
func FromEnv() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Kafka.Brokers = pstrings.DedupeHosts(cfg.Kafka.Brokers)
	cfg.Sync.SimulatedFailing = pstrings.DedupeAndTrim(cfg.Sync.SimulatedFailing)
	return cfg, nil
}
