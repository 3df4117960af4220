package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnvDefaults(t *testing.T) {
	for _, key := range []string{
		"NBALAKE_DB_PATH", "NBALAKE_META_DB_PATH", "NBA_API_BASE_URL",
		"NBA_SEASON", "SEASON_LABEL", "LOG_LEVEL", "LOG_FORMAT",
		"HTTP_TIMEOUT", "RATE_LIMIT_RPS",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, DefaultMetaDBPath, cfg.MetaDBPath)
	assert.Equal(t, DefaultAPIBaseURL, cfg.APIBaseURL)
	assert.Equal(t, DefaultSeason, cfg.Season)
	assert.Equal(t, "2024-2025", cfg.SeasonLabel)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, float64(1), cfg.RateLimit)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromEnvOverrides(t *testing.T) {
	t.Setenv("NBALAKE_DB_PATH", "/tmp/wh.duckdb")
	t.Setenv("NBA_SEASON", "2023-24")
	t.Setenv("SEASON_LABEL", "")
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/wh.duckdb", cfg.DBPath)
	assert.Equal(t, "2023-24", cfg.Season)
	assert.Equal(t, "2023-2024", cfg.SeasonLabel)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2.5, cfg.RateLimit)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadFromEnvBadDuration(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "not-a-duration")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP_TIMEOUT")
}

func TestSeasonLabel(t *testing.T) {
	tests := []struct {
		season  string
		want    string
		wantErr bool
	}{
		{season: "2024-25", want: "2024-2025"},
		{season: "1999-00", want: "1999-2000"},
		{season: "2023-24", want: "2023-2024"},
		{season: "2024-26", wantErr: true},
		{season: "2024", wantErr: true},
		{season: "24-25", wantErr: true},
		{season: "abcd-ef", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.season, func(t *testing.T) {
			got, err := SeasonLabel(tt.season)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}

	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.level}
		assert.Equal(t, tt.want, cfg.SlogLevel(), "level %q", tt.level)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nNBA_SEASON=2022-23\nSEASON_LABEL=\"2022-2023\"\n\nBROKEN LINE\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("NBA_SEASON", "")
	t.Setenv("SEASON_LABEL", "")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "2022-23", os.Getenv("NBA_SEASON"))
	assert.Equal(t, "2022-2023", os.Getenv("SEASON_LABEL"))

	// env vars take precedence over the file
	t.Setenv("NBA_SEASON", "2024-25")
	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "2024-25", os.Getenv("NBA_SEASON"))
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
