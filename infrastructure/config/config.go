package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// CollabConfig holds tuning knobs for the editing core
type CollabConfig struct {
	// HistoryRetention is how many accepted operations each document keeps
	// for transforming late submissions and catching up rejoins
	HistoryRetention int
	// SettleDelay is how long an edit burst must be quiet before link
	// extraction runs
	SettleDelay time.Duration
	// SessionTimeout expires sessions that stop heartbeating
	SessionTimeout time.Duration
	// ReapInterval is how often the session reaper sweeps
	ReapInterval time.Duration
}

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string
	Environment   string

	// Storage configuration. BadgerPath empty selects the in-memory store.
	BadgerPath string

	// Redis configuration. RedisAddr empty disables cross-instance fanout.
	RedisAddr     string
	RedisPassword string
	RedisChannel  string

	// Logging
	LogLevel string

	// Authentication
	JWTSecret string
	JWTIssuer string

	// Feature flags
	EnableMetrics bool
	EnableCORS    bool

	// Editing core configuration
	Collab CollabConfig
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		BadgerPath: getEnv("BADGER_PATH", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisChannel:  getEnv("REDIS_CHANNEL", "notegraph-events"),

		JWTSecret: getEnv("JWT_SECRET", ""),
		JWTIssuer: getEnv("JWT_ISSUER", "notegraph"),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableCORS:    getEnvBool("ENABLE_CORS", true),

		Collab: CollabConfig{
			HistoryRetention: getEnvInt("HISTORY_RETENTION", 500),
			SettleDelay:      getEnvDuration("SETTLE_DELAY", 2*time.Second),
			SessionTimeout:   getEnvDuration("SESSION_TIMEOUT", 90*time.Second),
			ReapInterval:     getEnvDuration("REAP_INTERVAL", 15*time.Second),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.IsProduction() {
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in production")
		}
		if c.BadgerPath == "" {
			return fmt.Errorf("BADGER_PATH is required in production")
		}
	}
	if c.Collab.HistoryRetention < 1 {
		return fmt.Errorf("HISTORY_RETENTION must be at least 1")
	}
	if c.Collab.SettleDelay <= 0 {
		return fmt.Errorf("SETTLE_DELAY must be positive")
	}
	if c.Collab.SessionTimeout < c.Collab.ReapInterval {
		return fmt.Errorf("SESSION_TIMEOUT must not be shorter than REAP_INTERVAL")
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration gets a duration environment variable with a default value
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
