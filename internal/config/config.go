package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// RPC endpoint client settings
	RPC RPCConfig

	// Balance aggregation settings
	Aggregator AggregatorConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Logging configuration
	Log LogConfig
}

// RPCConfig holds per-endpoint client settings
type RPCConfig struct {
	DialTimeout    time.Duration `envconfig:"RPC_DIAL_TIMEOUT" default:"5s"`
	RequestTimeout time.Duration `envconfig:"RPC_REQUEST_TIMEOUT" default:"10s"`
}

// AggregatorConfig holds fan-out settings for balance queries
type AggregatorConfig struct {
	MaxConcurrency int           `envconfig:"AGGREGATOR_MAX_CONCURRENCY" default:"16"`
	ClientPoolSize int           `envconfig:"AGGREGATOR_CLIENT_POOL_SIZE" default:"64"`
	RecentTasks    int           `envconfig:"AGGREGATOR_RECENT_TASKS" default:"8"`
	ResultTTL      time.Duration `envconfig:"AGGREGATOR_RESULT_TTL" default:"10m"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"balances"`
	Password        string        `envconfig:"DB_PASSWORD" default:"balances"`
	Name            string        `envconfig:"DB_NAME" default:"wallet_balances"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	SubmitPerMinute int           `envconfig:"API_SUBMIT_PER_MINUTE" default:"30"`
	MetricsPath     string        `envconfig:"API_METRICS_PATH" default:"/metrics"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"` // json or console
	Output string `envconfig:"LOG_OUTPUT" default:"stdout"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the aggregator cannot run with
func (c *Config) Validate() error {
	if c.Aggregator.MaxConcurrency <= 0 {
		return fmt.Errorf("AGGREGATOR_MAX_CONCURRENCY must be positive, got %d", c.Aggregator.MaxConcurrency)
	}
	if c.Aggregator.ClientPoolSize <= 0 {
		return fmt.Errorf("AGGREGATOR_CLIENT_POOL_SIZE must be positive, got %d", c.Aggregator.ClientPoolSize)
	}
	if c.RPC.RequestTimeout <= 0 {
		return fmt.Errorf("RPC_REQUEST_TIMEOUT must be positive, got %s", c.RPC.RequestTimeout)
	}
	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}
