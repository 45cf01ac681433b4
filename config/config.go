package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"raffler/database"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Environment
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // "development", "production" or "test"
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"` // "text" or "json"

	// Storage
	DatabaseDriver string `env:"DATABASE_DRIVER" envDefault:"postgres"` // "postgres" or "sqlite"
	DatabaseURL    string `env:"DATABASE_URL"`
	DatabaseName   string `env:"DATABASE_NAME"`
	SQLitePath     string `env:"SQLITE_PATH"`

	// Messaging: empty disables NATS publishing
	NATSServers string `env:"NATS_SERVERS"`

	// Settlement locking: empty address keeps locks in process
	RedisAddr         string        `env:"REDIS_ADDR"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" envDefault:"0"`
	SettlementLockTTL time.Duration `env:"SETTLEMENT_LOCK_TTL" envDefault:"2m"`

	// Prize rules
	RuleSet     string `env:"RULE_SET" envDefault:"cascade-v1"`
	RuleSetFile string `env:"RULE_SET_FILE"`

	// HTTP API
	HTTPAddr  string `env:"HTTP_ADDR" envDefault:":8080"`
	JWTSecret string `env:"JWT_SECRET"`

	// Workers
	PendingResultsSchedule string `env:"PENDING_RESULTS_SCHEDULE" envDefault:"@every 1h"`

	// OpenTelemetry metrics
	OTelEnabled          bool   `env:"OTEL_ENABLED" envDefault:"false"`
	OTelServiceName      string `env:"OTEL_SERVICE_NAME" envDefault:"raffler"`
	OTelExporterType     string `env:"OTEL_EXPORTER_TYPE" envDefault:"none"` // "console", "otlp" or "none"
	OTelOTLPEndpoint     string `env:"OTEL_OTLP_ENDPOINT" envDefault:"localhost:4317"`
	OTelExportIntervalMS int    `env:"OTEL_EXPORT_INTERVAL_MS" envDefault:"60000"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	// If instance is already set (e.g., by tests), return it
	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = Load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// Load reads a .env file when present, then the environment
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the storage settings for the selected driver
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.SettlementLockTTL <= 0 {
		return fmt.Errorf("SETTLEMENT_LOCK_TTL must be positive")
	}
	return nil
}

// ValidateServe checks the settings only the HTTP server needs
func (c *Config) ValidateServe() error {
	if c.JWTSecret == "" && !c.IsTest() {
		return fmt.Errorf("JWT_SECRET is required to serve the API")
	}
	return nil
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsTest reports whether the test environment is active
func (c *Config) IsTest() bool {
	return c.Environment == "test"
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
// This should only be called from test files
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
// This should only be called from test files
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:            "test",
		LogLevel:               "debug",
		LogFormat:              "text",
		DatabaseDriver:         DriverSQLite,
		SQLitePath:             ":memory:",
		SettlementLockTTL:      time.Minute,
		RuleSet:                "cascade-v1",
		HTTPAddr:               ":0",
		JWTSecret:              "test-secret",
		PendingResultsSchedule: "@every 1h",
		OTelServiceName:        "raffler-test",
		OTelExporterType:       "none",
		OTelExportIntervalMS:   60000,
	}
}
