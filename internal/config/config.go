package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Quota backends
const (
	QuotaBackendMemory = "memory"
	QuotaBackendRedis  = "redis"
)

// Config holds all application configuration
type Config struct {
	// SportDevs tennis API
	TennisAPIKey            string        `envconfig:"TENNIS_API_KEY" required:"true"`
	TennisAPIBaseURL        string        `envconfig:"TENNIS_API_BASE_URL" default:"https://tennis.sportdevs.com"`
	TennisAPITimeout        time.Duration `envconfig:"TENNIS_API_TIMEOUT" default:"30s"`
	TennisRequestsPerMinute int           `envconfig:"TENNIS_API_REQUESTS_PER_MINUTE" default:"0"`
	TennisPageSize          int           `envconfig:"TENNIS_API_PAGE_SIZE" default:"150"`

	// Quota guard
	QuotaBackend string        `envconfig:"QUOTA_BACKEND" default:"memory"`
	QuotaMax     int           `envconfig:"QUOTA_MAX" default:"50"`
	QuotaWindow  time.Duration `envconfig:"QUOTA_WINDOW" default:"24h"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"sportrate"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"sportrate"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP server
	HTTPPort         int      `envconfig:"HTTP_PORT" default:"8080"`
	OperatorToken    string   `envconfig:"OPERATOR_TOKEN" required:"true"`
	CORSAllowOrigins []string `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`

	// Import behaviour
	ImportRejectUndated bool   `envconfig:"IMPORT_REJECT_UNDATED" default:"false"`
	ImportCron          string `envconfig:"IMPORT_CRON" default:""`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.TennisAPIKey == "" {
		return fmt.Errorf("TENNIS_API_KEY is required")
	}

	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.OperatorToken == "" {
		return fmt.Errorf("OPERATOR_TOKEN is required")
	}

	if c.QuotaMax <= 0 {
		return fmt.Errorf("QUOTA_MAX must be positive, got %d", c.QuotaMax)
	}

	if c.QuotaBackend != QuotaBackendMemory && c.QuotaBackend != QuotaBackendRedis {
		return fmt.Errorf("QUOTA_BACKEND must be %q or %q, got %q", QuotaBackendMemory, QuotaBackendRedis, c.QuotaBackend)
	}

	// The provider caps a page at 150 matches
	if c.TennisPageSize <= 0 || c.TennisPageSize > 150 {
		return fmt.Errorf("TENNIS_API_PAGE_SIZE must be between 1 and 150, got %d", c.TennisPageSize)
	}

	if c.IsProduction() && len(c.OperatorToken) < 16 {
		return fmt.Errorf("OPERATOR_TOKEN must be at least 16 characters in production")
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
