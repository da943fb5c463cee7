package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/reserve/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)

	assert.Equal(t, "bitcoin", cfg.Asset)
	assert.Equal(t, "USD", cfg.CurrencyCode())
	assert.Equal(t, "bolt", cfg.Storage.Backend)
	assert.Equal(t, "bitcoinTransactions", cfg.Storage.Key)
	assert.Equal(t, time.Minute, cfg.GetInterval())
	assert.Equal(t, 30*time.Second, cfg.GetTimeout())
	assert.Equal(t, date.New(2024, time.January, 1), cfg.GetHistoryRange().From)
	assert.Equal(t, 0, cfg.Feed.Retries)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
asset = "ethereum"
currency = "EUR"
log_level = "debug"

[storage]
backend = "file"
path = "/tmp/rsv"

[feed]
interval = "5m"
retries = 3
history_from = "2023-06-01"
cache_dir = "-"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "ethereum", cfg.Asset)
	assert.Equal(t, "eur", cfg.Currency)
	assert.Equal(t, "EUR", cfg.CurrencyCode())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/tmp/rsv", cfg.GetStoragePath())
	assert.Equal(t, 5*time.Minute, cfg.GetInterval())
	assert.Equal(t, 3, cfg.Feed.Retries)
	assert.Equal(t, date.New(2023, time.June, 1), cfg.GetHistoryRange().From)
	assert.Equal(t, "", cfg.GetCacheDir())
	// untouched values keep their defaults
	assert.Equal(t, "bitcoinTransactions", cfg.Storage.Key)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `log_level = "info"`)
	t.Setenv("RSV_LOG_LEVEL", "error")
	t.Setenv("RSV_STORAGE_BACKEND", "redis")
	t.Setenv("RSV_REDIS_ADDR", "localhost:6379")
	t.Setenv("RSV_FEED_RETRIES", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.LogLevel)
	assert.Equal(t, "redis", cfg.Storage.Backend)
	assert.Equal(t, "localhost:6379", cfg.Storage.RedisAddr)
	assert.Equal(t, 2, cfg.Feed.Retries)
}

func TestLoad_FeedEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[feed]\ntimeout = \"10s\"\nrate_limit = 5\nhistory_from = \"2023-06-01\"")
	t.Setenv("RSV_FEED_TIMEOUT", "2s")
	t.Setenv("RSV_FEED_RATE_LIMIT", "0")
	t.Setenv("RSV_FEED_HISTORY_FROM", "2022-03-15")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.GetTimeout())
	assert.Equal(t, 0, cfg.Feed.RateLimit, "0 disables the rate limit")
	assert.Equal(t, date.New(2022, time.March, 15), cfg.GetHistoryRange().From)

	t.Setenv("RSV_FEED_HISTORY_FROM", "someday")
	_, err = Load(path)
	assert.Error(t, err, "env values are validated like file values")
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"syntax":         `asset = `,
		"backend":        "[storage]\nbackend = \"postgres\"",
		"redis addr":     "[storage]\nbackend = \"redis\"",
		"interval":       "[feed]\ninterval = \"soon\"",
		"negative":       "[feed]\ninterval = \"-1s\"",
		"history_from":   "[feed]\nhistory_from = \"yesterday\"",
		"log level":      `log_level = "loud"`,
		"base url":       "[feed]\nbase_url = \"not a url\"",
		"too many tries": "[feed]\nretries = 100",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}

func TestGetStoragePath_Default(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/data")
	cfg := NewDefaultConfig()
	assert.Equal(t, filepath.Join("/data", "rsv", "reserve.db"), cfg.GetStoragePath())

	cfg.Storage.Backend = "file"
	assert.Equal(t, filepath.Join("/data", "rsv"), cfg.GetStoragePath())
}
