// Package config provides configuration management for the webhook notify service.
// It handles loading configuration from environment variables with sensible defaults
// and validates the configuration to ensure the application starts safely.
//
// Environment Variables:
//
// Application Settings:
//   - PORT: Server port (default: 5000)
//   - LOG_LEVEL: Logging level (default: info)
//
// Persistence:
//   - API_KEYS_FILE: Path to the credential store document (default: ./api_keys.json)
//   - WEBHOOK_CONFIG_FILE: Path to the webhook registry document (default: ./webhook_config.json)
//
// Security:
//   - REQUIRE_AUTH: Gate API routes behind API key verification (default: false)
//
// Delivery:
//   - WEBHOOK_TIMEOUT: Per-endpoint delivery timeout (default: 10s)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration values for the service.
// Load it with Load() and validate with Validate() before use.
type Config struct {
	Port     string // Server port number
	LogLevel string // Logging level (debug, info, warn, error)

	APIKeysFile       string // Path to the credential store JSON document
	WebhookConfigFile string // Path to the webhook registry JSON document

	RequireAuth bool // Whether API routes require key/secret headers

	WebhookTimeout time.Duration // Timeout for a single webhook delivery attempt
}

// Load creates a new Config instance with values loaded from environment
// variables, falling back to defaults for anything unset. Call Validate()
// on the result before use.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "5000"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		APIKeysFile:       getEnv("API_KEYS_FILE", "./api_keys.json"),
		WebhookConfigFile: getEnv("WEBHOOK_CONFIG_FILE", "./webhook_config.json"),

		RequireAuth: getBoolEnv("REQUIRE_AUTH", false),

		WebhookTimeout: getDurationEnv("WEBHOOK_TIMEOUT", 10*time.Second),
	}
}

// getEnv retrieves an environment variable value or returns a default value if not set.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable value or returns a default value.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv retrieves a duration environment variable value or returns a default value.
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Validate checks that all configuration values are usable. The application
// should call this after Load() and before starting.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if c.APIKeysFile == "" {
		return fmt.Errorf("API_KEYS_FILE must not be empty")
	}

	if c.WebhookConfigFile == "" {
		return fmt.Errorf("WEBHOOK_CONFIG_FILE must not be empty")
	}

	if c.WebhookTimeout <= 0 {
		return fmt.Errorf("WEBHOOK_TIMEOUT must be a positive duration")
	}

	return nil
}
