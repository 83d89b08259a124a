package common

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage"`
	Cache       CacheConfig     `toml:"cache"`
	HTTP        HTTPConfig      `toml:"http"`
	Providers   ProvidersConfig `toml:"providers"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Logging     LoggingConfig   `toml:"logging"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

// CacheConfig controls the provider response cache.
type CacheConfig struct {
	Enabled                bool   `toml:"enabled"`
	SweepSchedule          string `toml:"sweep_schedule"`           // cron spec, e.g. "@every 10m"
	MarketTTLSeconds       int    `toml:"market_ttl_seconds"`       // price history entries
	FundamentalsTTLSeconds int    `toml:"fundamentals_ttl_seconds"` // fundamentals entries
	NewsTTLSeconds         int    `toml:"news_ttl_seconds"`         // news entries
}

// MarketTTL returns the price-history cache TTL as a duration.
func (c CacheConfig) MarketTTL() time.Duration {
	return time.Duration(c.MarketTTLSeconds) * time.Second
}

// FundamentalsTTL returns the fundamentals cache TTL as a duration.
func (c CacheConfig) FundamentalsTTL() time.Duration {
	return time.Duration(c.FundamentalsTTLSeconds) * time.Second
}

// NewsTTL returns the news cache TTL as a duration.
func (c CacheConfig) NewsTTL() time.Duration {
	return time.Duration(c.NewsTTLSeconds) * time.Second
}

// HTTPConfig controls the outbound fetch client.
type HTTPConfig struct {
	TimeoutSeconds      int     `toml:"timeout_seconds"`       // per-attempt timeout
	MaxRetries          int     `toml:"max_retries"`           // retries after the first attempt
	RetryBackoffSeconds float64 `toml:"retry_backoff_seconds"` // base delay, doubled per attempt
}

// Timeout returns the per-attempt timeout as a duration.
func (c HTTPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetryBackoff returns the base retry delay as a duration.
func (c HTTPConfig) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffSeconds * float64(time.Second))
}

// ProvidersConfig holds external data source credentials and tuning.
// An empty API key selects the synthetic variant for that facet.
type ProvidersConfig struct {
	PolygonAPIKey  string `toml:"polygon_api_key"`
	FMPAPIKey      string `toml:"fmp_api_key"`
	NewsAPIKey     string `toml:"news_api_key"`
	NewsAPIBaseURL string `toml:"news_api_base_url"`
	NewsPageSize   int    `toml:"news_page_size"`
	RateLimit      int    `toml:"rate_limit"` // requests per second per provider
}

// PipelineConfig tunes the recommendation pipeline.
type PipelineConfig struct {
	PriceHistoryDays int `toml:"price_history_days"` // bars requested per ticker
	MaxNewsArticles  int `toml:"max_news_articles"`  // articles requested per ticker
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// DefaultConfig returns the configuration defaults applied before any
// file or environment overrides.
func DefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path:           "./data/alphalens",
				ResetOnStartup: false,
			},
		},
		Cache: CacheConfig{
			Enabled:                true,
			SweepSchedule:          "@every 10m",
			MarketTTLSeconds:       60,
			FundamentalsTTLSeconds: 86400,
			NewsTTLSeconds:         300,
		},
		HTTP: HTTPConfig{
			TimeoutSeconds:      10,
			MaxRetries:          2,
			RetryBackoffSeconds: 0.5,
		},
		Providers: ProvidersConfig{
			NewsAPIBaseURL: "https://newsapi.org/v2",
			NewsPageSize:   8,
			RateLimit:      10,
		},
		Pipeline: PipelineConfig{
			PriceHistoryDays: 200,
			MaxNewsArticles:  20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFiles loads configuration: defaults -> file(s) -> environment.
// Later files override earlier ones. Missing paths are an error; calling
// with no paths returns defaults plus environment overrides.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := DefaultConfig()

	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies ALPHALENS_* environment variables on top of
// file configuration. Credentials are the common case here.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("ALPHALENS_POLYGON_API_KEY"); v != "" {
		config.Providers.PolygonAPIKey = v
	}
	if v := os.Getenv("ALPHALENS_FMP_API_KEY"); v != "" {
		config.Providers.FMPAPIKey = v
	}
	if v := os.Getenv("ALPHALENS_NEWS_API_KEY"); v != "" {
		config.Providers.NewsAPIKey = v
	}
	if v := os.Getenv("ALPHALENS_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("ALPHALENS_BADGER_PATH"); v != "" {
		config.Storage.Badger.Path = v
	}
	if v := os.Getenv("ALPHALENS_CACHE_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			config.Cache.Enabled = enabled
		}
	}
}
