// Package config loads the rsv configuration.
//
// Values come from the defaults, then the TOML config file, then RSV_*
// environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/reserve/date"
	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for rsv.
type Config struct {
	Asset    string        `toml:"asset" validate:"required"`    // CoinGecko coin id
	Currency string        `toml:"currency" validate:"required"` // quote currency, CoinGecko vs_currency
	LogLevel string        `toml:"log_level" validate:"omitempty,oneof=trace debug info warn error disabled"`
	Storage  StorageConfig `toml:"storage"`
	Feed     FeedConfig    `toml:"feed"`
	Server   ServerConfig  `toml:"server"`
	Assist   AssistConfig  `toml:"assist"`
}

// StorageConfig selects where the transaction log is stored.
type StorageConfig struct {
	Backend   string `toml:"backend" validate:"oneof=bolt file memory redis"`
	Path      string `toml:"path"` // bolt database file or file backend folder, default in the user data folder
	Key       string `toml:"key" validate:"required"`
	RedisAddr string `toml:"redis_addr" validate:"required_if=Backend redis"`
}

// FeedConfig configures the CoinGecko client and the price polling.
type FeedConfig struct {
	BaseURL     string `toml:"base_url" validate:"required,url"`
	Interval    string `toml:"interval"`
	Timeout     string `toml:"timeout"`
	RateLimit   int    `toml:"rate_limit" validate:"gte=0"` // requests per minute
	Retries     int    `toml:"retries" validate:"gte=0,lte=10"`
	HistoryFrom string `toml:"history_from"`
	CacheDir    string `toml:"cache_dir"` // "-" disables the cache
}

// ServerConfig holds the read-only HTTP view configuration.
type ServerConfig struct {
	Addr string `toml:"addr" validate:"required"`
}

// AssistConfig holds the AI commentary configuration.
type AssistConfig struct {
	Model string `toml:"model"`
}

// NewDefaultConfig returns the configuration used when nothing is set.
func NewDefaultConfig() *Config {
	return &Config{
		Asset:    "bitcoin",
		Currency: "usd",
		LogLevel: "warn",
		Storage: StorageConfig{
			Backend: "bolt",
			Key:     "bitcoinTransactions",
		},
		Feed: FeedConfig{
			BaseURL:     "https://api.coingecko.com/api/v3",
			Interval:    "60s",
			Timeout:     "30s",
			RateLimit:   30,
			HistoryFrom: "2024-01-01",
		},
		Server: ServerConfig{Addr: "localhost:8080"},
		Assist: AssistConfig{Model: "gemini-2.5-pro"},
	}
}

// DefaultPath returns the default config file location: rsv/config.toml in the
// user config folder.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "rsv", "config.toml")
}

// Load reads the config files in order, later files overriding earlier ones,
// then applies the environment overrides. Missing files are skipped.
func Load(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for _, path := range paths {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func applyEnvOverrides(config *Config) {
	strs := map[string]*string{
		"RSV_ASSET":             &config.Asset,
		"RSV_CURRENCY":          &config.Currency,
		"RSV_LOG_LEVEL":         &config.LogLevel,
		"RSV_STORAGE_BACKEND":   &config.Storage.Backend,
		"RSV_STORAGE_PATH":      &config.Storage.Path,
		"RSV_STORAGE_KEY":       &config.Storage.Key,
		"RSV_REDIS_ADDR":        &config.Storage.RedisAddr,
		"RSV_FEED_BASE_URL":     &config.Feed.BaseURL,
		"RSV_FEED_INTERVAL":     &config.Feed.Interval,
		"RSV_FEED_TIMEOUT":      &config.Feed.Timeout,
		"RSV_FEED_HISTORY_FROM": &config.Feed.HistoryFrom,
		"RSV_FEED_CACHE_DIR":    &config.Feed.CacheDir,
		"RSV_SERVER_ADDR":       &config.Server.Addr,
		"RSV_ASSIST_MODEL":      &config.Assist.Model,
	}
	for name, field := range strs {
		if v := os.Getenv(name); v != "" {
			*field = v
		}
	}

	ints := map[string]*int{
		"RSV_FEED_RATE_LIMIT": &config.Feed.RateLimit,
		"RSV_FEED_RETRIES":    &config.Feed.Retries,
	}
	for name, field := range ints {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*field = n
			}
		}
	}
	config.Currency = strings.ToLower(config.Currency)
}

var validate = validator.New()

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	for name, d := range map[string]string{"feed.interval": c.Feed.Interval, "feed.timeout": c.Feed.Timeout} {
		if d == "" {
			continue
		}
		if v, err := time.ParseDuration(d); err != nil || v <= 0 {
			return fmt.Errorf("invalid configuration: %s: %q is not a positive duration", name, d)
		}
	}
	if c.Feed.HistoryFrom != "" {
		if _, err := date.Parse(c.Feed.HistoryFrom); err != nil {
			return fmt.Errorf("invalid configuration: feed.history_from: %w", err)
		}
	}
	return nil
}

// CurrencyCode returns the upper case currency code used to format amounts.
func (c *Config) CurrencyCode() string { return strings.ToUpper(c.Currency) }

// GetInterval returns the price polling interval, 60s by default.
func (c *Config) GetInterval() time.Duration { return parseDuration(c.Feed.Interval, time.Minute) }

// GetTimeout returns the HTTP timeout, 30s by default.
func (c *Config) GetTimeout() time.Duration { return parseDuration(c.Feed.Timeout, 30*time.Second) }

// GetHistoryRange returns the range of the historical series, from
// history_from (2024-01-01 by default) to today.
func (c *Config) GetHistoryRange() date.Range {
	from, err := date.Parse(c.Feed.HistoryFrom)
	if err != nil {
		from = date.New(2024, time.January, 1)
	}
	return date.Since(from)
}

// GetStoragePath returns the storage path, defaulting to the user data folder.
func (c *Config) GetStoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	dir := filepath.Join(dataDir(), "rsv")
	if c.Storage.Backend == "file" {
		return dir
	}
	return filepath.Join(dir, "reserve.db")
}

// GetCacheDir returns the http cache folder, "" when disabled.
func (c *Config) GetCacheDir() string {
	switch c.Feed.CacheDir {
	case "-":
		return ""
	case "":
		dir, err := os.UserCacheDir()
		if err != nil {
			return ""
		}
		return filepath.Join(dir, "rsv")
	}
	return c.Feed.CacheDir
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// dataDir returns $XDG_DATA_HOME, or ~/.local/share.
func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".local", "share")
}
