// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	FrontendURL string
	DBPath      string

	// CatalogURL points at the course catalog API. Empty means the
	// built-in static catalog (development and tests).
	CatalogURL    string
	SearchTimeout time.Duration

	// QuestionDelay paces the reveal of the next canned question on the
	// conversation stream.
	QuestionDelay time.Duration
	// RevealInterval paces the staggered appearance of search results.
	RevealInterval time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		DBPath:         getEnv("DB_PATH", "./data/skillsnavigator.db"),
		CatalogURL:     getEnv("CATALOG_URL", ""),
		SearchTimeout:  getEnvDuration("SEARCH_TIMEOUT_MS", 10*time.Second),
		QuestionDelay:  getEnvDuration("QUESTION_DELAY_MS", 400*time.Millisecond),
		RevealInterval: getEnvDuration("REVEAL_INTERVAL_MS", 500*time.Millisecond),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.SearchTimeout <= 0 {
		return fmt.Errorf("SEARCH_TIMEOUT_MS must be > 0")
	}
	if c.QuestionDelay < 0 {
		return fmt.Errorf("QUESTION_DELAY_MS must be >= 0")
	}
	if c.RevealInterval <= 0 {
		return fmt.Errorf("REVEAL_INTERVAL_MS must be > 0")
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	ms, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || ms < 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}
