// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the seo-engine CLI. Each pipeline
// stage is a subcommand: serp runs a search, competitors adds scraping and
// aggregation, and analyze adds AI scoring and the merged analysis.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/seo-engine/internal/logging"
	"github.com/pdiddy/seo-engine/internal/secrets"
	"github.com/pdiddy/seo-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys loaded from .secrets/ at startup.
	loadedSecrets map[string]string

	logger    = zap.NewNop()
	closeLogs = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "seo-engine",
	Short: "Competitor and content analysis for SEO topics",
	Long: `seo-engine searches the web for a topic, scrapes the top-ranking pages,
aggregates their headings and keywords into an outline and content gaps,
and asks a language model to score each competitor and draft an analysis.

Stages are subcommands: serp, competitors, and analyze.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/", os.Stderr)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		l, closeFn, err := logging.New(cfg.Log, os.Stderr)
		if err != nil {
			return err
		}
		logger, closeLogs = l, closeFn
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLogs()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./seo-engine.yaml or ~/.config/seo-engine/seo-engine.yaml)")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-file", "", "also write JSON logs to this file (rotated)")
	pf.String("cache", "", "cache backend: memory or sqlite")
	pf.String("provider", "", "AI provider: anthropic or openai")

	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = viper.BindPFlag("log.file", pf.Lookup("log-file"))
	_ = viper.BindPFlag("cache.backend", pf.Lookup("cache"))
	_ = viper.BindPFlag("ai.provider", pf.Lookup("provider"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("seo-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "seo-engine"))
		}
	}

	viper.SetEnvPrefix("SEO_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults(types.DefaultConfig())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every key so that SEO_ENGINE_* variables reach
// Unmarshal even when no config file sets them.
func setDefaults(d types.Config) {
	defaults := map[string]any{
		"search.timeout":         d.Search.Timeout,
		"search.user_agent":      d.Search.UserAgent,
		"search.endpoint":        d.Search.Endpoint,
		"search.top_n":           d.Search.TopN,
		"search.max_retries":     d.Search.MaxRetries,
		"scrape.timeout":         d.Scrape.Timeout,
		"scrape.user_agent":      d.Scrape.UserAgent,
		"scrape.min_delay":       d.Scrape.MinDelay,
		"scrape.max_delay":       d.Scrape.MaxDelay,
		"scrape.rate_per_second": d.Scrape.RatePerSecond,
		"scrape.max_body_bytes":  d.Scrape.MaxBodyBytes,
		"ai.provider":            string(d.AI.Provider),
		"ai.models":              d.AI.Models,
		"ai.api_key":             d.AI.APIKey,
		"ai.base_url":            d.AI.BaseURL,
		"ai.max_retries":         d.AI.MaxRetries,
		"ai.max_tokens":          d.AI.MaxTokens,
		"ai.score_timeout":       d.AI.ScoreTimeout,
		"ai.narrative_timeout":   d.AI.NarrativeTimeout,
		"ai.score_concurrency":   d.AI.ScoreConcurrency,
		"cache.backend":          string(d.Cache.Backend),
		"cache.path":             d.Cache.Path,
		"cache.aggregate_ttl":    d.Cache.AggregateTTL,
		"cache.analysis_ttl":     d.Cache.AnalysisTTL,
		"log.level":              d.Log.Level,
		"log.file":               d.Log.File,
		"measurements_file":      d.MeasurementsFile,
	}
	for k, v := range defaults {
		viper.SetDefault(k, v)
	}
}

// loadConfig decodes the merged file, environment, and flag settings and
// fills the AI key from secrets when it is not configured directly.
func loadConfig() (types.Config, error) {
	cfg := types.DefaultConfig()
	if err := viper.Unmarshal(&cfg); err != nil {
		return types.Config{}, fmt.Errorf("decoding configuration: %w", err)
	}
	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = secrets.Lookup(loadedSecrets, secrets.KeyForProvider(cfg.AI.Provider), nil)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
