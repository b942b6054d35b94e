// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// server mode, LLM providers, sessions, and snapshot settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration

	// Data Configuration
	DataDir string // Data directory for the SQLite catalog database

	// LLM Configuration (all optional; advisor degrades to rule-based responses)
	GeminiAPIKey   string
	GroqAPIKey     string
	CerebrasAPIKey string
	LLMProviders   []string // Provider fallback order, e.g. ["gemini", "groq"]

	// LLM Model Overrides (empty = use defaults from genai package)
	GeminiModels   []string
	GroqModels     []string
	CerebrasModels []string

	// LLM response cache and budget
	LLMCacheTTL      time.Duration // TTL for cached narrator responses (default: 1h)
	LLMRateBurst     float64       // Burst tokens per session (default: 20)
	LLMRefillPerHour float64       // Tokens refilled per hour per session (default: 20)
	LLMDailyLimit    int           // Max LLM requests per session per day (default: 100, 0 = disabled)

	// Session Configuration
	SessionTTL     time.Duration // Idle TTL before a session is evicted (default: 2h)
	SessionHistory int           // Conversation turns kept per session (default: 20)

	// Advisor Configuration
	MaxRecommendations int // Courses returned by recommendation handlers (default: 5)

	// Ingest Configuration
	IngestTimeout    time.Duration
	IngestMaxRetries int
	CatalogURL       string // Optional HTML catalog page for cmd/seed

	// Snapshot Configuration (S3-compatible object storage)
	SnapshotEnabled   bool
	SnapshotEndpoint  string
	SnapshotAccessKey string
	SnapshotSecretKey string
	SnapshotBucket    string
	SnapshotKey       string

	// Sentry Configuration
	SentryDSN         string
	SentryEnvironment string
	SentrySampleRate  float64

	// Better Stack log shipping
	BetterstackToken string

	// Metrics Authentication
	MetricsUsername string // Username for /metrics Basic Auth (default: "prometheus")
	MetricsPassword string // Password for /metrics Basic Auth (empty = no auth)
}

// Load reads configuration from environment variables.
// It attempts to load a .env file first, then reads from env vars.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),

		DataDir: getEnv("DATA_DIR", getDefaultDataDir()),

		GeminiAPIKey:   getEnv("GEMINI_API_KEY", ""),
		GroqAPIKey:     getEnv("GROQ_API_KEY", ""),
		CerebrasAPIKey: getEnv("CEREBRAS_API_KEY", ""),
		LLMProviders:   getListEnv("LLM_PROVIDERS", []string{"gemini", "groq", "cerebras"}),

		GeminiModels:   getListEnv("GEMINI_MODELS", nil),
		GroqModels:     getListEnv("GROQ_MODELS", nil),
		CerebrasModels: getListEnv("CEREBRAS_MODELS", nil),

		LLMCacheTTL:      getDurationEnv("LLM_CACHE_TTL", time.Hour),
		LLMRateBurst:     getFloatEnv("LLM_RATE_BURST", 20.0),
		LLMRefillPerHour: getFloatEnv("LLM_REFILL_PER_HOUR", 20.0),
		LLMDailyLimit:    getIntEnv("LLM_DAILY_LIMIT", 100),

		SessionTTL:     getDurationEnv("SESSION_TTL", 2*time.Hour),
		SessionHistory: getIntEnv("SESSION_HISTORY", 20),

		MaxRecommendations: getIntEnv("MAX_RECOMMENDATIONS", 5),

		IngestTimeout:    getDurationEnv("INGEST_TIMEOUT", IngestRequest),
		IngestMaxRetries: getIntEnv("INGEST_MAX_RETRIES", 5),
		CatalogURL:       getEnv("CATALOG_URL", ""),

		SnapshotEnabled:   getBoolEnv("SNAPSHOT_ENABLED", false),
		SnapshotEndpoint:  getEnv("SNAPSHOT_ENDPOINT", ""),
		SnapshotAccessKey: getEnv("SNAPSHOT_ACCESS_KEY_ID", ""),
		SnapshotSecretKey: getEnv("SNAPSHOT_SECRET_ACCESS_KEY", ""),
		SnapshotBucket:    getEnv("SNAPSHOT_BUCKET", ""),
		SnapshotKey:       getEnv("SNAPSHOT_KEY", "catalog.db.zst"),

		SentryDSN:         getEnv("SENTRY_DSN", ""),
		SentryEnvironment: getEnv("SENTRY_ENVIRONMENT", "production"),
		SentrySampleRate:  getFloatEnv("SENTRY_SAMPLE_RATE", 1.0),

		BetterstackToken: getEnv("BETTERSTACK_TOKEN", ""),

		MetricsUsername: getEnv("METRICS_USERNAME", "prometheus"),
		MetricsPassword: getEnv("METRICS_PASSWORD", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	var errs []error

	if c.Port == "" {
		errs = append(errs, errors.New("PORT is required"))
	}
	if c.DataDir == "" {
		errs = append(errs, errors.New("DATA_DIR is required"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %v", c.SessionTTL))
	}
	if c.SessionHistory <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_HISTORY must be positive, got %d", c.SessionHistory))
	}
	if c.MaxRecommendations <= 0 {
		errs = append(errs, fmt.Errorf("MAX_RECOMMENDATIONS must be positive, got %d", c.MaxRecommendations))
	}
	if c.LLMCacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("LLM_CACHE_TTL must be positive, got %v", c.LLMCacheTTL))
	}
	if c.IngestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("INGEST_TIMEOUT must be positive, got %v", c.IngestTimeout))
	}
	if c.IngestMaxRetries < 0 {
		errs = append(errs, fmt.Errorf("INGEST_MAX_RETRIES cannot be negative, got %d", c.IngestMaxRetries))
	}
	if c.SnapshotEnabled {
		if c.SnapshotEndpoint == "" {
			errs = append(errs, errors.New("SNAPSHOT_ENDPOINT is required when snapshots are enabled"))
		}
		if c.SnapshotAccessKey == "" || c.SnapshotSecretKey == "" {
			errs = append(errs, errors.New("snapshot credentials are required when snapshots are enabled"))
		}
		if c.SnapshotBucket == "" {
			errs = append(errs, errors.New("SNAPSHOT_BUCKET is required when snapshots are enabled"))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// getEnv retrieves environment variable with fallback to default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv retrieves integer environment variable with fallback to default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getDurationEnv retrieves duration environment variable with fallback to default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getFloatEnv retrieves float64 environment variable with fallback to default value
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getBoolEnv retrieves boolean environment variable with fallback to default value
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getListEnv retrieves a comma-separated environment variable as a slice.
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}

// getDefaultDataDir returns platform-specific default data directory
func getDefaultDataDir() string {
	if runtime.GOOS == "windows" {
		return "./data"
	}
	return "/data"
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "catalog.db")
}

// HasLLMProvider returns true if at least one LLM provider is configured.
func (c *Config) HasLLMProvider() bool {
	return c.GeminiAPIKey != "" || c.GroqAPIKey != "" || c.CerebrasAPIKey != ""
}
