package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port        string
	MetricsPort string

	// Ledger storage
	DataFile string

	// Telegram
	TelegramBotToken string
	TelegramChatID   int64

	// Shared secret for mutating endpoints
	Secret string

	// Monthly report scheduler
	SchedulerInterval time.Duration
	ReportHour        int // UTC hour on the last day of the month

	// Logging
	LogLevel  string
	LogFormat string
}

func Load() *Config {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		MetricsPort: getEnv("METRICS_PORT", "9091"),

		DataFile: getEnv("DATA_FILE", "data/bets.json"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnvInt64("TELEGRAM_CHAT_ID", 0),

		Secret: getEnv("BETPOISSON_SECRET", "betpoisson2025"),

		SchedulerInterval: getEnvDuration("SCHEDULER_INTERVAL", time.Minute),
		ReportHour:        getEnvInt("REPORT_HOUR", 20),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate ports
	for name, p := range map[string]string{"port": c.Port, "metrics port": c.MetricsPort} {
		if port, err := strconv.Atoi(p); err != nil {
			errors = append(errors, fmt.Sprintf("invalid %s '%s': must be a number", name, p))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("invalid %s %d: must be between 1 and 65535", name, port))
		}
	}

	// Validate Telegram credentials
	if c.TelegramBotToken == "" {
		errors = append(errors, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.TelegramChatID == 0 {
		errors = append(errors, "TELEGRAM_CHAT_ID is required")
	}

	// Validate ledger file path
	if c.DataFile == "" {
		errors = append(errors, "ledger data file path cannot be empty")
	} else {
		dir := filepath.Dir(c.DataFile)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create ledger data directory '%s': %v", dir, err))
				}
			}
		}
	}

	// Validate scheduler configuration
	if c.SchedulerInterval < time.Second {
		errors = append(errors, fmt.Sprintf("invalid scheduler interval %v: must be at least 1 second", c.SchedulerInterval))
	} else if c.SchedulerInterval > time.Hour {
		errors = append(errors, fmt.Sprintf("invalid scheduler interval %v: must be at most 1 hour", c.SchedulerInterval))
	}
	if c.ReportHour < 0 || c.ReportHour > 23 {
		errors = append(errors, fmt.Sprintf("invalid report hour %d: must be between 0 and 23", c.ReportHour))
	}

	// Validate logging configuration
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of [debug info warn error]", c.LogLevel))
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be 'text' or 'json'", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
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

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
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
