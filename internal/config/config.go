package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Rhymond/go-money"
)

type Config struct {
	// Backend selection
	DataBackend string

	// SQLite backend
	SQLiteDBPath string

	// Memory backend; empty keeps everything in process
	DataFile string

	// Store guard
	StoreMaxBytes int
	StoreMaxDepth int

	// Reports
	Currency         string
	HistoryPoints    int
	HistoryCacheSize int
	HistoryCacheTTL  time.Duration

	LogLevel string
}

var (
	validBackends  = []string{"memory", "sqlite"}
	validLogLevels = []string{"debug", "info", "warn", "warning", "error"}
)

func Load() *Config {
	cfg := &Config{
		DataBackend:  getEnv("DATA_BACKEND", "sqlite"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/findash.db"),
		DataFile:     getEnv("DATA_FILE", ""),

		StoreMaxBytes: getEnvInt("STORE_MAX_BYTES", 200*1024),
		StoreMaxDepth: getEnvInt("STORE_MAX_DEPTH", 8),

		Currency:         strings.ToUpper(getEnv("CURRENCY", money.USD)),
		HistoryPoints:    getEnvInt("HISTORY_POINTS", 365),
		HistoryCacheSize: getEnvInt("HISTORY_CACHE_SIZE", 16),
		HistoryCacheTTL:  getEnvDuration("HISTORY_CACHE_TTL", 10*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if err := ensureDir(c.SQLiteDBPath); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create SQLite database directory: %v", err))
		}
	}

	if c.DataBackend == "memory" && c.DataFile != "" {
		if err := ensureDir(c.DataFile); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create data file directory: %v", err))
		}
	}

	if c.StoreMaxBytes < 1024 {
		errors = append(errors, fmt.Sprintf("invalid store max bytes %d: must be at least 1024", c.StoreMaxBytes))
	}
	if c.StoreMaxDepth < 2 || c.StoreMaxDepth > 64 {
		errors = append(errors, fmt.Sprintf("invalid store max depth %d: must be between 2 and 64", c.StoreMaxDepth))
	}

	if money.GetCurrency(c.Currency) == nil {
		errors = append(errors, fmt.Sprintf("unknown currency '%s'", c.Currency))
	}

	if c.HistoryPoints < 2 {
		errors = append(errors, fmt.Sprintf("invalid history points %d: must be at least 2", c.HistoryPoints))
	}
	if c.HistoryCacheSize < 1 {
		errors = append(errors, fmt.Sprintf("invalid history cache size %d: must be at least 1", c.HistoryCacheSize))
	}
	if c.HistoryCacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid history cache ttl %v: cannot be negative", c.HistoryCacheTTL))
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.LogLevel)) {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of %v", c.LogLevel, validLogLevels))
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ensureDir creates the parent directory of path when missing.
func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("'%s': %w", dir, err)
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
