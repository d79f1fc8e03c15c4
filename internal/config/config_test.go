package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "./api_keys.json", cfg.APIKeysFile)
	assert.Equal(t, "./webhook_config.json", cfg.WebhookConfigFile)
	assert.False(t, cfg.RequireAuth)
	assert.Equal(t, 10*time.Second, cfg.WebhookTimeout)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("API_KEYS_FILE", "/tmp/keys.json")
	t.Setenv("REQUIRE_AUTH", "true")
	t.Setenv("WEBHOOK_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "/tmp/keys.json", cfg.APIKeysFile)
	assert.True(t, cfg.RequireAuth)
	assert.Equal(t, 5*time.Second, cfg.WebhookTimeout)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REQUIRE_AUTH", "maybe")
	t.Setenv("WEBHOOK_TIMEOUT", "soon")

	cfg := Load()

	assert.False(t, cfg.RequireAuth)
	assert.Equal(t, 10*time.Second, cfg.WebhookTimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Port = "nope" }, "PORT"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "PORT"},
		{"empty keys file", func(c *Config) { c.APIKeysFile = "" }, "API_KEYS_FILE"},
		{"empty webhook file", func(c *Config) { c.WebhookConfigFile = "" }, "WEBHOOK_CONFIG_FILE"},
		{"zero timeout", func(c *Config) { c.WebhookTimeout = 0 }, "WEBHOOK_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
