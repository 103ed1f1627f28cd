// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"net/http"

	"github.com/pdiddy/seo-engine/internal/analysis"
	"github.com/pdiddy/seo-engine/internal/cache"
	"github.com/pdiddy/seo-engine/internal/competitors"
	"github.com/pdiddy/seo-engine/internal/measure"
	"github.com/pdiddy/seo-engine/internal/serp"
	"github.com/pdiddy/seo-engine/internal/textgen"
	"github.com/pdiddy/seo-engine/internal/throttle"
	"github.com/pdiddy/seo-engine/pkg/types"
)

// buildOrchestrator wires search, scraping, and the raw-report cache.
// The returned backend must be closed by the caller.
func buildOrchestrator(cfg types.Config, progress io.Writer) (*competitors.Orchestrator, cache.Backend, error) {
	store, err := cache.Open(cfg.Cache)
	if err != nil {
		return nil, nil, err
	}

	o := competitors.New(
		serp.NewDuckDuckGoBackend(&http.Client{Timeout: cfg.Search.Timeout}, cfg.Search),
		competitors.NewHTTPFetcher(&http.Client{}, cfg.Scrape),
		throttle.New(cfg.Scrape),
		cache.New[types.CompetitorReport](store, competitors.CacheNamespace, cfg.Cache.AggregateTTL, cache.WithLogger(logger)),
		cfg.Search,
		logger.Named("competitors"),
	)
	o.Progress = progress
	return o, store, nil
}

// buildAnalyzer wires the orchestrator, text generation, measurements, and
// the analysis cache.
func buildAnalyzer(cfg types.Config, progress io.Writer) (*analysis.Analyzer, cache.Backend, error) {
	gen, err := textgen.New(cfg.AI, nil, logger.Named("textgen"))
	if err != nil {
		return nil, nil, fmt.Errorf("configuring %s: %w", cfg.AI.Provider, err)
	}

	o, store, err := buildOrchestrator(cfg, progress)
	if err != nil {
		return nil, nil, err
	}

	var m measure.Measurer = measure.None{}
	if cfg.MeasurementsFile != "" {
		m = measure.NewFileMeasurer(cfg.MeasurementsFile)
	}

	a := analysis.New(
		o,
		gen,
		m,
		cache.New[types.AnalysisResult](store, analysis.CacheNamespace, cfg.Cache.AnalysisTTL, cache.WithLogger(logger)),
		cfg.AI,
		logger.Named("analysis"),
	)
	return a, store, nil
}
