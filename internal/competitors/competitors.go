// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package competitors drives one competitor-research request: cache lookup,
// web search, throttled sequential page scraping, and aggregation. The raw
// report is cached; failed searches and cancelled (partial) runs are not.
package competitors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/seo-engine/internal/aggregate"
	"github.com/pdiddy/seo-engine/internal/cache"
	"github.com/pdiddy/seo-engine/internal/features"
	"github.com/pdiddy/seo-engine/internal/serp"
	"github.com/pdiddy/seo-engine/internal/throttle"
	"github.com/pdiddy/seo-engine/pkg/types"
)

// ErrSearchFailed is returned when the search phase fails. Such failures are
// never cached.
var ErrSearchFailed = serp.ErrSearchFailed

// CacheNamespace is the cache namespace holding raw reports.
const CacheNamespace = "competitors"

// searchResultLimit is the result-count hint sent to the search engine.
// Snippets from all returned results feed gap detection; only the first
// TopN pages are scraped.
const searchResultLimit = 10

// ScrapeSummary counts the outcome of one scraping pass.
type ScrapeSummary struct {
	Fetched int
	Failed  int
}

// Total returns the number of pages attempted.
func (s ScrapeSummary) Total() int {
	return s.Fetched + s.Failed
}

// Orchestrator wires the search backend, page fetcher, throttle, and cache.
type Orchestrator struct {
	Search   serp.Backend
	Fetcher  Fetcher
	Throttle throttle.Throttle
	Cache    *cache.Cache[types.CompetitorReport]

	SearchConfig types.SearchConfig
	Logger       *zap.Logger

	// Progress receives one human-readable line per page. Nil discards.
	Progress io.Writer

	// Now stamps reports; tests replace it.
	Now func() time.Time
}

// New returns an Orchestrator. A nil logger logs nothing.
func New(backend serp.Backend, fetcher Fetcher, th throttle.Throttle, c *cache.Cache[types.CompetitorReport], cfg types.SearchConfig, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		Search:       backend,
		Fetcher:      fetcher,
		Throttle:     th,
		Cache:        c,
		SearchConfig: cfg,
		Logger:       logger,
		Now:          time.Now,
	}
}

// Key returns the cache key for a query in a language.
func Key(query string, topN int, language string) string {
	return cache.Key(query, strconv.Itoa(topN), language)
}

// Run produces the competitor report for topic in location.
//
// A cache hit returns immediately without network calls. Search failures
// wrap ErrSearchFailed and are not cached. Page failures become placeholder
// pages. If ctx is cancelled while scraping, Run stops issuing fetches and
// returns the partial report with Partial set; it is not cached.
func (o *Orchestrator) Run(ctx context.Context, topic, location string) (types.CompetitorReport, error) {
	logger := o.logger()
	region := serp.RegionForLocation(location)
	query := serp.BuildQuery(topic, location)
	topN := o.topN()
	key := Key(query, topN, region.Language)

	if o.Cache != nil {
		if report, ok := o.Cache.Get(key); ok {
			logger.Info("competitor report cache hit", zap.String("query", query))
			return report, nil
		}
	}

	logger.Info("searching", zap.String("backend", o.Search.Name()), zap.String("query", query), zap.String("region", region.Code))
	results, err := o.Search.Search(ctx, serp.Query{Text: query, Region: region, Limit: searchResultLimit}, o.SearchConfig)
	if err != nil {
		logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return types.CompetitorReport{}, fmt.Errorf("searching %q: %w", query, err)
	}
	logger.Info("search complete", zap.Int("results", len(results)))

	targets := results
	if len(targets) > topN {
		targets = targets[:topN]
	}
	pages, summary, partial := o.Scrape(ctx, targets, topic)

	snippets := make([]string, 0, len(results))
	for _, r := range results {
		snippets = append(snippets, r.Snippet)
	}

	report := types.CompetitorReport{
		Topic:       topic,
		Location:    location,
		Language:    region.Language,
		Query:       query,
		Results:     results,
		Pages:       pages,
		Signals:     aggregate.Build(pages, snippets, topic),
		Partial:     partial,
		GeneratedAt: o.now(),
	}
	logger.Info("competitor report built",
		zap.Int("fetched", summary.Fetched),
		zap.Int("failed", summary.Failed),
		zap.Bool("partial", partial),
		zap.Int("common_headings", len(report.Signals.CommonHeadings)),
	)

	if !partial && o.Cache != nil {
		if err := o.Cache.Set(key, report); err != nil {
			logger.Warn("caching competitor report", zap.Error(err))
		}
	}
	return report, nil
}

// Scrape fetches results one at a time, waiting on the throttle before
// each request. A failed page is recorded as a placeholder and the batch
// continues. When ctx ends, Scrape stops and reports partial = true along
// with the pages collected so far.
func (o *Orchestrator) Scrape(ctx context.Context, results []types.SearchResult, topic string) (pages []types.CompetitorPage, summary ScrapeSummary, partial bool) {
	logger := o.logger()
	w := o.Progress
	if w == nil {
		w = io.Discard
	}
	th := o.Throttle
	if th == nil {
		th = throttle.None{}
	}

	pages = make([]types.CompetitorPage, 0, len(results))
	for i, r := range results {
		if err := th.Wait(ctx); err != nil {
			logger.Info("scrape cancelled", zap.Int("remaining", len(results)-i), zap.Error(err))
			partial = true
			break
		}

		fmt.Fprintf(w, "fetching [%d/%d] %s\n", i+1, len(results), r.URL)
		page, err := o.scrapePage(ctx, r, topic)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("scrape cancelled during fetch", zap.String("url", r.URL))
				partial = true
				break
			}
			fmt.Fprintf(w, "failed:  %s (%v)\n", r.URL, err)
			logger.Warn("page failed", zap.String("url", r.URL), zap.Error(err))
			pages = append(pages, placeholder(r, err))
			summary.Failed++
			continue
		}

		logger.Debug("page extracted",
			zap.String("url", r.URL),
			zap.Int("h1", len(page.HeadingsLevel1)),
			zap.Int("h2", len(page.HeadingsLevel2)),
			zap.Int("entities", len(page.Entities)),
		)
		pages = append(pages, page)
		summary.Fetched++
	}

	fmt.Fprintf(w, "\nScrape summary: %d fetched, %d failed (total: %d)\n",
		summary.Fetched, summary.Failed, summary.Total())
	return pages, summary, partial
}

func (o *Orchestrator) scrapePage(ctx context.Context, r types.SearchResult, topic string) (types.CompetitorPage, error) {
	body, err := o.Fetcher.Fetch(ctx, r.URL)
	if err != nil {
		return types.CompetitorPage{}, err
	}
	f, err := features.Extract(bytes.NewReader(body), topic)
	if err != nil {
		return types.CompetitorPage{}, fmt.Errorf("extracting %s: %w", r.URL, err)
	}
	return f.Page(r.URL, r.Title), nil
}

// placeholder stands in for a page that could not be fetched or parsed.
func placeholder(r types.SearchResult, err error) types.CompetitorPage {
	return types.CompetitorPage{
		URL:            r.URL,
		Title:          r.Title,
		HeadingsLevel1: []string{},
		HeadingsLevel2: []string{},
		Entities:       []string{},
		Err:            err.Error(),
	}
}

func (o *Orchestrator) topN() int {
	if o.SearchConfig.TopN > 0 {
		return o.SearchConfig.TopN
	}
	return types.DefaultConfig().Search.TopN
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
