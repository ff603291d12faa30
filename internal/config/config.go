// Package config handles loading and validating configuration from environment variables.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/riskdesk/console/internal/store"
)

// DefaultRiskAPIURL is the decision webhook the console polls.
const DefaultRiskAPIURL = "https://deepak8157.app.n8n.cloud/webhook/risk-decisions"

// Config holds all configuration values for the console.
type Config struct {
	// Decision source
	RiskAPIURL   string
	FetchLimit   int
	FetchTimeout time.Duration

	// Polling
	PollInterval     time.Duration
	InitialRiskLevel store.RiskLevel

	// View
	PageSize int

	// UI
	EnableTUI bool

	// Headless HTTP surface
	HTTPAddr         string
	APIRatePerSecond float64
	APIRateBurst     int

	// Logging
	LogLevel string
	LogFile  string
}

// Load reads configuration from environment variables with fallback to .env file.
// Priority order: Environment variables > .env file > hardcoded defaults
func Load() (*Config, error) {
	// Attempt to load .env file (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		RiskAPIURL:   getEnv("RISK_API_URL", DefaultRiskAPIURL),
		FetchLimit:   getEnvInt("FETCH_LIMIT", 200),
		FetchTimeout: time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 0)) * time.Second,

		PollInterval:     time.Duration(getEnvInt("POLL_INTERVAL_SECONDS", 15)) * time.Second,
		InitialRiskLevel: store.RiskLevel(getEnv("INITIAL_RISK_LEVEL", string(store.RiskAll))),

		PageSize: getEnvInt("PAGE_SIZE", 50),

		EnableTUI: getEnvBool("ENABLE_TUI", true),

		HTTPAddr:         getEnv("HTTP_ADDR", ""),
		APIRatePerSecond: getEnvFloat("API_RATE_PER_SECOND", 1),
		APIRateBurst:     getEnvInt("API_RATE_BURST", 5),

		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		LogFile:  getEnv("LOG_FILE", "./data/riskdesk.log"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set and valid.
func (c *Config) Validate() error {
	if c.RiskAPIURL == "" {
		return fmt.Errorf("RISK_API_URL is required")
	}
	u, err := url.Parse(c.RiskAPIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("RISK_API_URL must be an absolute URL")
	}

	if c.FetchLimit < 1 {
		return fmt.Errorf("FETCH_LIMIT must be at least 1")
	}

	if c.FetchTimeout < 0 {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must not be negative")
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("POLL_INTERVAL_SECONDS must be positive")
	}

	if !c.InitialRiskLevel.Valid() {
		return fmt.Errorf("INITIAL_RISK_LEVEL must be one of all, pass, review, block")
	}

	if c.PageSize < 1 {
		return fmt.Errorf("PAGE_SIZE must be at least 1")
	}

	if !c.EnableTUI && c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required when ENABLE_TUI is false")
	}

	if c.APIRatePerSecond <= 0 {
		return fmt.Errorf("API_RATE_PER_SECOND must be positive")
	}

	if c.APIRateBurst < 1 {
		return fmt.Errorf("API_RATE_BURST must be at least 1")
	}

	return nil
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an environment variable as an integer or returns a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat retrieves an environment variable as a float64 or returns a default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

// getEnvBool retrieves an environment variable as a boolean or returns a default.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
