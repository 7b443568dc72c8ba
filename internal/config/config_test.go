package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TENNIS_API_KEY", "key")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("OPERATOR_TOKEN", "operator-token-0123")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, QuotaBackendMemory, cfg.QuotaBackend)
	assert.Equal(t, 50, cfg.QuotaMax)
	assert.Equal(t, 24*time.Hour, cfg.QuotaWindow)
	assert.Equal(t, 150, cfg.TennisPageSize)
	assert.Equal(t, 30*time.Second, cfg.TennisAPITimeout)
	assert.False(t, cfg.ImportRejectUndated)
	assert.Empty(t, cfg.ImportCron)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("TENNIS_API_KEY", "")
	t.Setenv("DATABASE_PASSWORD", "secret")
	t.Setenv("OPERATOR_TOKEN", "operator-token-0123")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			TennisAPIKey:     "key",
			DatabasePassword: "secret",
			OperatorToken:    "short",
			QuotaBackend:     QuotaBackendMemory,
			QuotaMax:         50,
			TennisPageSize:   150,
			AppEnv:           "development",
		}
	}

	tests := map[string]struct {
		mutate  func(c *Config)
		wantErr bool
	}{
		"valid":               {func(c *Config) {}, false},
		"zero quota":          {func(c *Config) { c.QuotaMax = 0 }, true},
		"unknown backend":     {func(c *Config) { c.QuotaBackend = "etcd" }, true},
		"page too large":      {func(c *Config) { c.TennisPageSize = 151 }, true},
		"page zero":           {func(c *Config) { c.TennisPageSize = 0 }, true},
		"short prod token":    {func(c *Config) { c.AppEnv = "production" }, true},
		"long prod token":     {func(c *Config) { c.AppEnv = "production"; c.OperatorToken = "0123456789abcdef" }, false},
		"missing operator":    {func(c *Config) { c.OperatorToken = "" }, true},
		"redis backend valid": {func(c *Config) { c.QuotaBackend = QuotaBackendRedis }, false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
