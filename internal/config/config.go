package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/jwebster45206/arena-engine/pkg/arena"
)

type Config struct {
	Port           string
	Environment    string
	LogLevel       slog.Level
	RedisURL       string
	BridgeURL      string
	DataDir        string
	Comp           string
	HeadlinerReset arena.HeadlinerReset
	SessionTTL     time.Duration
	WorkerID       string
}

func Load() (*Config, error) {
	reset, err := arena.ParseHeadlinerReset(strings.ToLower(getEnv("HEADLINER_RESET", "session")))
	if err != nil {
		return nil, err
	}

	ttl, err := parseDuration(getEnv("SESSION_TTL", "6h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:       getEnv("REDIS_URL", "redis://localhost:6379"),
		BridgeURL:      getEnv("BRIDGE_URL", "http://localhost:9090"),
		DataDir:        getEnv("DATA_DIR", "./data"),
		Comp:           getEnv("COMP", "default.json"),
		HeadlinerReset: reset,
		SessionTTL:     ttl,
		WorkerID:       os.Getenv("WORKER_ID"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values Load cannot default.
func (c *Config) Validate() error {
	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	if _, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid PORT %q: %w", c.Port, err)
	}
	return nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parseDuration accepts Go durations ("90m") or a bare number of hours.
func parseDuration(s string) (time.Duration, error) {
	if hours, err := strconv.Atoi(s); err == nil {
		return time.Duration(hours) * time.Hour, nil
	}
	return time.ParseDuration(s)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
