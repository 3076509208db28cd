package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
)

// Config holds all application configuration
type Config struct {
	// Player API
	APIURL     string        `envconfig:"API_URL" required:"true"`
	APIKey     string        `envconfig:"API_KEY" required:"true"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`

	// Storage: a SQLite file path or a postgres:// connection string
	DatabaseName string `envconfig:"DATABASE_NAME" default:"database.db"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Worker
	RotationCron string `envconfig:"ROTATION_CRON" default:"0 6 * * *"`
	RunOnStart   bool   `envconfig:"RUN_ON_START" default:"true"`

	// Invocation lock (Redis)
	LockEnabled   bool          `envconfig:"LOCK_ENABLED" default:"false"`
	LockKey       string        `envconfig:"LOCK_KEY" default:"player_rotation:lock"`
	LockTTL       time.Duration `envconfig:"LOCK_TTL" default:"5m"`
	RedisHost     string        `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int           `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int           `envconfig:"REDIS_DB" default:"0"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
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
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("API_URL is required")
	}

	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("API_KEY is required")
	}

	if strings.TrimSpace(c.DatabaseName) == "" {
		return fmt.Errorf("DATABASE_NAME must not be empty")
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive")
	}

	if c.LockEnabled && c.LockTTL <= 0 {
		return fmt.Errorf("LOCK_TTL must be positive when LOCK_ENABLED is set")
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	return mustLoad(os.Stdout, os.Exit)
}

// mustLoad runs before logging is configured, so failures go through a
// bare zerolog logger on w.
func mustLoad(w io.Writer, exit func(int)) *Config {
	cfg, err := Load()
	if err != nil {
		logger := zerolog.New(w).With().Timestamp().Logger()
		logger.Error().Err(err).Msg("Failed to load configuration")
		exit(1)
		return nil
	}
	return cfg
}
