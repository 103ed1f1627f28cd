// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the search stage.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Endpoint is the HTML search endpoint. Empty selects the default.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// TopN is the number of competitor pages to fetch (default 5).
	TopN int `json:"top_n" yaml:"top_n" mapstructure:"top_n"`

	// MaxRetries bounds retries on HTTP 429 from the search endpoint.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ScrapeConfig holds settings for fetching competitor pages.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MinDelay and MaxDelay bound the random pause before each page fetch.
	MinDelay time.Duration `json:"min_delay" yaml:"min_delay" mapstructure:"min_delay"`
	MaxDelay time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`

	// RatePerSecond caps the aggregate page-fetch rate; 0 disables the cap.
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second" mapstructure:"rate_per_second"`

	// MaxBodyBytes caps how much of each page is read.
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// AIProvider identifies a text-generation API.
type AIProvider string

const (
	ProviderAnthropic AIProvider = "anthropic"
	ProviderOpenAI    AIProvider = "openai"
)

// AIConfig holds shared settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the API: anthropic or openai.
	Provider AIProvider `json:"provider" yaml:"provider" mapstructure:"provider"`

	// Models lists the primary model followed by fallbacks, tried in order
	// when a model reports it is overloaded or unavailable.
	Models []string `json:"models" yaml:"models" mapstructure:"models"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint (proxies, tests).
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`

	// MaxRetries is the number of SDK-level retry attempts per model (default 2).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// MaxTokens bounds each generation.
	MaxTokens int `json:"max_tokens" yaml:"max_tokens" mapstructure:"max_tokens"`

	// ScoreTimeout bounds one relevance-scoring call.
	ScoreTimeout time.Duration `json:"score_timeout" yaml:"score_timeout" mapstructure:"score_timeout"`

	// NarrativeTimeout bounds the narrative synthesis call.
	NarrativeTimeout time.Duration `json:"narrative_timeout" yaml:"narrative_timeout" mapstructure:"narrative_timeout"`

	// ScoreConcurrency bounds how many scoring calls run at once.
	ScoreConcurrency int `json:"score_concurrency" yaml:"score_concurrency" mapstructure:"score_concurrency"`
}

// CacheBackend selects where cache entries live.
type CacheBackend string

const (
	CacheMemory CacheBackend = "memory"
	CacheSQLite CacheBackend = "sqlite"
)

// CacheConfig holds settings for the raw-aggregate and full-analysis caches.
type CacheConfig struct {
	Backend CacheBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// Path is the SQLite database file when Backend is sqlite.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	AggregateTTL time.Duration `json:"aggregate_ttl" yaml:"aggregate_ttl" mapstructure:"aggregate_ttl"`
	AnalysisTTL  time.Duration `json:"analysis_ttl" yaml:"analysis_ttl" mapstructure:"analysis_ttl"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// File, when set, receives JSON logs with size-based rotation.
	File string `json:"file" yaml:"file" mapstructure:"file"`
}

// Config groups all settings for the pipeline.
type Config struct {
	Search SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	Scrape ScrapeConfig `json:"scrape" yaml:"scrape" mapstructure:"scrape"`
	AI     AIConfig     `json:"ai" yaml:"ai" mapstructure:"ai"`
	Cache  CacheConfig  `json:"cache" yaml:"cache" mapstructure:"cache"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`

	// MeasurementsFile is a YAML file of externally measured volume,
	// competition, and trend values. Empty disables measurements.
	MeasurementsFile string `json:"measurements_file" yaml:"measurements_file" mapstructure:"measurements_file"`
}

const defaultUserAgent = "Mozilla/5.0 (compatible; seo-engine/0.1)"

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			HTTPConfig: HTTPConfig{Timeout: 15 * time.Second, UserAgent: defaultUserAgent},
			TopN:       5,
			MaxRetries: 2,
		},
		Scrape: ScrapeConfig{
			HTTPConfig:    HTTPConfig{Timeout: 10 * time.Second, UserAgent: defaultUserAgent},
			MinDelay:      400 * time.Millisecond,
			MaxDelay:      900 * time.Millisecond,
			RatePerSecond: 1,
			MaxBodyBytes:  2 << 20,
		},
		AI: AIConfig{
			Provider:         ProviderAnthropic,
			Models:           []string{"claude-sonnet-4-5", "claude-haiku-4-5"},
			MaxRetries:       2,
			MaxTokens:        4096,
			ScoreTimeout:     20 * time.Second,
			NarrativeTimeout: 60 * time.Second,
			ScoreConcurrency: 3,
		},
		Cache: CacheConfig{
			Backend:      CacheMemory,
			Path:         "seo-engine-cache.db",
			AggregateTTL: 15 * time.Minute,
			AnalysisTTL:  24 * time.Hour,
		},
		Log: LogConfig{Level: "info"},
	}
}
