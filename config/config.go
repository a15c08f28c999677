/*
config.go - Environment-driven configuration

PURPOSE:
  Loads server configuration from the environment, with a .env file as
  an optional local override. Flags in cmd/server take precedence over
  the values loaded here.

VARIABLES:
  PORT                 HTTP server port (default: 8080)
  DB_PATH              SQLite database path (default: attendance.db)
  TIMEZONE             IANA zone for dates and payroll months (default: Asia/Tokyo)
  EXPECTED_START_HOUR  Lateness boundary, hour of day (default: 9)
  EXPECTED_END_HOUR    Early-leave boundary, hour of day (default: 18)
  LOG_LEVEL            zerolog level: debug, info, warn, error (default: info)

SEE ALSO:
  - cmd/server/main.go: Applies this configuration at startup
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the resolved server configuration.
type Config struct {
	Port              int
	DBPath            string
	Timezone          string
	ExpectedStartHour int
	ExpectedEndHour   int
	LogLevel          zerolog.Level
}

// Load reads a .env file if present, then resolves the environment.
func Load() (*Config, error) {
	// Missing .env is not an error; the environment alone is enough.
	_ = godotenv.Load()

	cfg := &Config{
		Port:              envInt("PORT", 8080),
		DBPath:            envStr("DB_PATH", "attendance.db"),
		Timezone:          envStr("TIMEZONE", "Asia/Tokyo"),
		ExpectedStartHour: envInt("EXPECTED_START_HOUR", 9),
		ExpectedEndHour:   envInt("EXPECTED_END_HOUR", 18),
		LogLevel:          zerolog.InfoLevel,
	}

	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		parsed, err := zerolog.ParseLevel(lvl)
		if err != nil {
			return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", lvl, err)
		}
		cfg.LogLevel = parsed
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	if cfg.ExpectedStartHour < 0 || cfg.ExpectedStartHour > 23 ||
		cfg.ExpectedEndHour < 0 || cfg.ExpectedEndHour > 23 {
		return nil, fmt.Errorf("expected hours out of range: %d-%d",
			cfg.ExpectedStartHour, cfg.ExpectedEndHour)
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
