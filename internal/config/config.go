// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied by LoadFromEnv when the environment is silent.
const (
	DefaultDBPath     = "nba.duckdb"
	DefaultMetaDBPath = "nbalake_meta.sqlite"
	DefaultAPIBaseURL = "https://stats.nba.com/stats"
	DefaultSeason     = "2024-25"
)

// Config holds the configuration for the pipeline CLI.
type Config struct {
	DBPath      string        // path to the DuckDB warehouse file
	MetaDBPath  string        // path to the SQLite run-history metastore
	APIBaseURL  string        // NBA stats API base URL
	Season      string        // season in API format, e.g. "2024-25"
	SeasonLabel string        // season label written to the gold layer, e.g. "2024-2025"
	HTTPTimeout time.Duration // per-request timeout for API calls
	RateLimit   float64       // sustained API requests per second
	LogLevel    string        // log level: debug, info, warn, error (default "info")
	LogFormat   string        // "text" (default) or "json"

	// Warnings collects non-fatal warnings generated during config loading.
	// These are logged by the caller after the logger is initialised.
	Warnings []string
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger from the configured level and format.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// LoadFromEnv loads configuration from environment variables, applying
// defaults for anything unset.
func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:      os.Getenv("NBALAKE_DB_PATH"),
		MetaDBPath:  os.Getenv("NBALAKE_META_DB_PATH"),
		APIBaseURL:  os.Getenv("NBA_API_BASE_URL"),
		Season:      os.Getenv("NBA_SEASON"),
		SeasonLabel: os.Getenv("SEASON_LABEL"),
		LogLevel:    os.Getenv("LOG_LEVEL"),
		LogFormat:   os.Getenv("LOG_FORMAT"),
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("parse HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parse RATE_LIMIT_RPS: %w", err)
		}
		cfg.RateLimit = f
	}

	// Defaults
	if cfg.DBPath == "" {
		cfg.DBPath = DefaultDBPath
	}
	if cfg.MetaDBPath == "" {
		cfg.MetaDBPath = DefaultMetaDBPath
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.Season == "" {
		cfg.Season = DefaultSeason
	}
	if cfg.SeasonLabel == "" {
		label, err := SeasonLabel(cfg.Season)
		if err != nil {
			return nil, err
		}
		cfg.SeasonLabel = label
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = 30 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = 1 // the stats endpoint throttles aggressively
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	return cfg, nil
}

// SeasonLabel expands an API-format season ("2024-25") into the label
// written to the gold layer ("2024-2025").
func SeasonLabel(season string) (string, error) {
	start, end, ok := strings.Cut(season, "-")
	if !ok || len(start) != 4 || len(end) != 2 {
		return "", fmt.Errorf("invalid season %q: want YYYY-YY", season)
	}
	startYear, err := strconv.Atoi(start)
	if err != nil {
		return "", fmt.Errorf("invalid season %q: want YYYY-YY", season)
	}
	endYear := startYear + 1
	if end != fmt.Sprintf("%02d", endYear%100) {
		return "", fmt.Errorf("invalid season %q: years are not consecutive", season)
	}
	return fmt.Sprintf("%d-%d", startYear, endYear), nil
}

// LoadDotEnv reads a .env file and sets any variables not already in the
// environment. Lines must be in KEY=VALUE format. Comments (#) and blank
// lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
