package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost:5432")
	t.Setenv("DATABASE_NAME", "raffler")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "cascade-v1", cfg.RuleSet)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "@every 1h", cfg.PendingResultsSchedule)
	assert.Equal(t, 2*time.Minute, cfg.SettlementLockTTL)
	assert.Equal(t, "postgres://u:p@localhost:5432/raffler?sslmode=disable", cfg.GetDatabaseURL())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/raffler.db")
	t.Setenv("RULE_SET", "exceptions-v2")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SETTLEMENT_LOCK_TTL", "30s")
	t.Setenv("OTEL_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "exceptions-v2", cfg.RuleSet)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 30*time.Second, cfg.SettlementLockTTL)
	assert.True(t, cfg.OTelEnabled)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "test config", mutate: func(c *Config) {}},
		{name: "postgres without url", mutate: func(c *Config) { c.DatabaseDriver = DriverPostgres }, wantErr: true},
		{name: "sqlite without path", mutate: func(c *Config) { c.SQLitePath = "" }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.DatabaseDriver = "mysql" }, wantErr: true},
		{name: "zero lock ttl", mutate: func(c *Config) { c.SettlementLockTTL = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewTestConfig()
			tt.mutate(cfg)
			if tt.wantErr {
				assert.Error(t, cfg.Validate())
			} else {
				assert.NoError(t, cfg.Validate())
			}
		})
	}
}

func TestConfig_ValidateServe(t *testing.T) {
	cfg := NewTestConfig()
	cfg.JWTSecret = ""
	assert.NoError(t, cfg.ValidateServe())

	cfg.Environment = "production"
	assert.Error(t, cfg.ValidateServe())
}

func TestSetTestConfig(t *testing.T) {
	defer ResetConfig()

	cfg := NewTestConfig()
	cfg.RuleSet = "exceptions-v2"
	SetTestConfig(cfg)

	assert.Same(t, cfg, Get())
}
