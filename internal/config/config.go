package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all agent configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	Monitors MonitorConfig
	Summary  SummaryConfig
	Logging  LoggingConfig
}

// ServerConfig contains HTTP server configuration. The agent binds to
// loopback by default: it is a local control interface, not a service.
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	DashboardURL    string
}

// DatabaseConfig contains the timeline store configuration
type DatabaseConfig struct {
	Path string
}

// EngineConfig contains rule engine thresholds
type EngineConfig struct {
	SustainThreshold time.Duration
	QuietGap         time.Duration
	// Timezone used for away-window membership; empty means local time
	Timezone string
}

// MonitorConfig contains boundary producer configuration
type MonitorConfig struct {
	InputPollInterval time.Duration
	FolderEnabled     bool
	InputEnabled      bool
	SessionEnabled    bool
}

// SummaryConfig contains the daily digest configuration
type SummaryConfig struct {
	Enabled bool
	// Cron spec for the digest; default fires at 08:00 every day
	Schedule string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "127.0.0.1"),
			Port:            getEnvAsInt("SERVER_PORT", 8741),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 15*time.Second),
			DashboardURL:    getEnv("DASHBOARD_URL", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "vigil.db"),
		},
		Engine: EngineConfig{
			SustainThreshold: getEnvAsDuration("ENGINE_SUSTAIN_THRESHOLD", 10*time.Second),
			QuietGap:         getEnvAsDuration("ENGINE_QUIET_GAP", 30*time.Second),
			Timezone:         getEnv("ENGINE_TIMEZONE", ""),
		},
		Monitors: MonitorConfig{
			InputPollInterval: getEnvAsDuration("INPUT_POLL_INTERVAL", 5*time.Second),
			FolderEnabled:     getEnvAsBool("FOLDER_MONITOR_ENABLED", true),
			InputEnabled:      getEnvAsBool("INPUT_MONITOR_ENABLED", true),
			SessionEnabled:    getEnvAsBool("SESSION_MONITOR_ENABLED", true),
		},
		Summary: SummaryConfig{
			Enabled:  getEnvAsBool("SUMMARY_ENABLED", false),
			Schedule: getEnv("SUMMARY_SCHEDULE", "0 8 * * *"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("DB_PATH must not be empty")
	}
	if c.Engine.Timezone != "" {
		if _, err := time.LoadLocation(c.Engine.Timezone); err != nil {
			return fmt.Errorf("invalid ENGINE_TIMEZONE: %w", err)
		}
	}
	return nil
}

// Location resolves the configured timezone, defaulting to local time.
func (c *Config) Location() *time.Location {
	if c.Engine.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Engine.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
