// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis turns a competitor report into the final analysis: it
// scores each competitor's relevance, asks a model for the narrative
// sections, overlays measured volume, competition, and trend, and caches the
// merged result.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/seo-engine/internal/cache"
	"github.com/pdiddy/seo-engine/internal/keywords"
	"github.com/pdiddy/seo-engine/internal/measure"
	"github.com/pdiddy/seo-engine/internal/textgen"
	"github.com/pdiddy/seo-engine/pkg/types"
)

// ErrNarrativeMalformed is returned when the narrative answer is not the
// requested JSON shape.
var ErrNarrativeMalformed = errors.New("malformed narrative analysis")

// CacheNamespace is the cache namespace holding merged analyses.
const CacheNamespace = "analysis"

const (
	defaultNarrativeTimeout = 60 * time.Second
	maxSplicedKeywords      = 3
)

// CompetitorSource produces the raw competitor report.
type CompetitorSource interface {
	Run(ctx context.Context, topic, location string) (types.CompetitorReport, error)
}

// Estimate is an integer the model may send as a number or a numeric
// string ("12,000"). Unparseable values decode as 0.
type Estimate int

// UnmarshalJSON accepts numbers and numeric strings.
func (e *Estimate) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", ""), 64)
		if err != nil {
			*e = 0
			return nil
		}
		f = parsed
	default:
		*e = 0
		return nil
	}
	if math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		*e = 0
		return nil
	}
	*e = Estimate(math.Round(f))
	return nil
}

// BaseCompetitor is a competitor as the model listed it.
type BaseCompetitor struct {
	Title  string `json:"title"`
	Domain string `json:"domain"`
	URL    string `json:"url"`
}

// BaseAnalysis is the model's draft before measured values and scores are
// merged in.
type BaseAnalysis struct {
	SearchVolume       Estimate         `json:"search_volume"`
	Competition        string           `json:"competition"`
	Trend              string           `json:"trend"`
	Keywords           []string         `json:"keywords"`
	TargetKeywords     []string         `json:"target_keywords"`
	Competitors        []BaseCompetitor `json:"competitors"`
	ContentSuggestions []string         `json:"content_suggestions"`
	SEOScores          BaseScores       `json:"seo_scores"`
	MarketInsights     []string         `json:"market_insights"`
}

// BaseScores are the drafted SEO sub-scores, before clamping.
type BaseScores struct {
	Overall     Estimate `json:"overall"`
	Content     Estimate `json:"content"`
	Keywords    Estimate `json:"keywords"`
	Readability Estimate `json:"readability"`
	Technical   Estimate `json:"technical"`
}

// Analyzer performs full analyses.
type Analyzer struct {
	Competitors CompetitorSource
	Generator   textgen.Generator
	Measurer    measure.Measurer
	Cache       *cache.Cache[types.AnalysisResult]
	Config      types.AIConfig
	Logger      *zap.Logger

	// Now and NewID are replaced in tests.
	Now   func() time.Time
	NewID func() string
}

// New returns an Analyzer. A nil measurer means no measurements; a nil
// logger logs nothing.
func New(src CompetitorSource, gen textgen.Generator, m measure.Measurer, c *cache.Cache[types.AnalysisResult], cfg types.AIConfig, logger *zap.Logger) *Analyzer {
	if m == nil {
		m = measure.None{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		Competitors: src,
		Generator:   gen,
		Measurer:    m,
		Cache:       c,
		Config:      cfg,
		Logger:      logger,
		Now:         time.Now,
		NewID:       uuid.NewString,
	}
}

// PerformAnalysis returns the merged analysis for topic in location.
//
// A cached analysis younger than the TTL is returned as is. Search failure
// and the failure of every model during narrative synthesis are fatal;
// individual scoring failures score 0 and measurement failures keep the
// AI estimates.
func (a *Analyzer) PerformAnalysis(ctx context.Context, topic, location string) (types.AnalysisResult, error) {
	logger := a.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	key := cache.Key(topic, location)
	if a.Cache != nil {
		if r, ok := a.Cache.Get(key); ok {
			logger.Info("analysis cache hit", zap.String("topic", topic), zap.String("location", location))
			return r, nil
		}
	}

	report, err := a.Competitors.Run(ctx, topic, location)
	if err != nil {
		return types.AnalysisResult{}, fmt.Errorf("gathering competitors: %w", err)
	}

	scored := ScoreAll(ctx, a.Generator, report.Pages, topic, a.Config, logger)

	base, err := a.Narrative(ctx, report)
	if err != nil {
		return types.AnalysisResult{}, err
	}

	m, err := a.measurer().Measure(ctx, topic, location)
	switch {
	case errors.Is(err, measure.ErrNoMeasurement):
		logger.Debug("no measurement; keeping AI estimates", zap.String("topic", topic))
		m = measure.Measurement{}
	case err != nil:
		logger.Warn("measurement failed; keeping AI estimates", zap.String("topic", topic), zap.Error(err))
		m = measure.Measurement{}
	}

	result := Merge(base, scored, m)
	result.ID = a.newID()
	result.Topic = topic
	result.Location = location
	result.Signals = report.Signals
	result.GeneratedAt = a.now()

	if report.Partial {
		logger.Info("partial competitor report; analysis not cached", zap.String("topic", topic))
	} else if a.Cache != nil {
		if err := a.Cache.Set(key, result); err != nil {
			logger.Warn("caching analysis", zap.Error(err))
		}
	}
	return result, nil
}

// Narrative asks the model for the draft analysis. A generation failure is
// returned as is (ErrAllModelsUnavailable when every model was
// unavailable); an answer that is not the requested JSON wraps
// ErrNarrativeMalformed.
func (a *Analyzer) Narrative(ctx context.Context, report types.CompetitorReport) (BaseAnalysis, error) {
	prompt, err := renderNarrativePrompt(narrativeData{
		Topic:       report.Topic,
		Location:    report.Location,
		Signals:     report.Signals,
		Competitors: report.Results,
	})
	if err != nil {
		return BaseAnalysis{}, fmt.Errorf("rendering narrative prompt: %w", err)
	}

	timeout := a.Config.NarrativeTimeout
	if timeout <= 0 {
		timeout = defaultNarrativeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := a.Generator.Generate(ctx, textgen.Request{
		System:    narrativeSystem,
		Prompt:    prompt,
		JSON:      true,
		MaxTokens: a.Config.MaxTokens,
	})
	if err != nil {
		return BaseAnalysis{}, fmt.Errorf("narrative analysis: %w", err)
	}
	return ParseNarrative(out)
}

// ParseNarrative decodes a narrative answer.
func ParseNarrative(out string) (BaseAnalysis, error) {
	raw, err := textgen.ExtractJSON(out)
	if err != nil {
		return BaseAnalysis{}, fmt.Errorf("%w: %v", ErrNarrativeMalformed, err)
	}
	var base BaseAnalysis
	if err := json.Unmarshal([]byte(raw), &base); err != nil {
		return BaseAnalysis{}, fmt.Errorf("%w: %v", ErrNarrativeMalformed, err)
	}
	return base, nil
}

// Merge combines the draft, the scored competitors, and the measurement.
// Measured fields replace the AI estimates and are listed in
// MeasuredFields. Up to three related keywords not already targeted are
// placed at the front of TargetKeywords. The competitor list is the scored
// list, titled with the draft's title where the draft named the same
// domain.
func Merge(base BaseAnalysis, scored []types.ScoredCompetitor, m measure.Measurement) types.AnalysisResult {
	r := types.AnalysisResult{
		SearchVolume:       int(base.SearchVolume),
		Competition:        types.ParseCompetitionTier(base.Competition),
		Trend:              types.ParseTrendDirection(base.Trend),
		Keywords:           nonNil(base.Keywords),
		TargetKeywords:     SpliceKeywords(base.TargetKeywords, m.RelatedKeywords, maxSplicedKeywords),
		Competitors:        mergeCompetitors(base.Competitors, scored),
		ContentSuggestions: nonNil(base.ContentSuggestions),
		SEOScores:          clampScores(base.SEOScores),
		MarketInsights:     nonNil(base.MarketInsights),
	}

	if m.SearchVolume != nil {
		r.SearchVolume = *m.SearchVolume
	}
	if m.Competition != "" {
		r.Competition = m.Competition
	}
	if m.Trend != "" {
		r.Trend = m.Trend
	}
	r.MeasuredFields = m.Fields()
	return r
}

// SpliceKeywords puts up to n related keywords that are not already in
// target (exactly or nearly) in front of target, in their given order.
func SpliceKeywords(target, related []string, n int) []string {
	var picked []string
	for _, k := range related {
		if len(picked) == n {
			break
		}
		k = strings.TrimSpace(k)
		if k == "" || keywords.FuzzyContains(target, k) || keywords.FuzzyContains(picked, k) {
			continue
		}
		picked = append(picked, k)
	}
	out := make([]string, 0, len(picked)+len(target))
	out = append(out, picked...)
	return append(out, target...)
}

func mergeCompetitors(drafted []BaseCompetitor, scored []types.ScoredCompetitor) []types.ScoredCompetitor {
	titles := make(map[string]string, len(drafted))
	for _, c := range drafted {
		domain := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Domain)), "www.")
		if domain == "" {
			domain = Domain(c.URL)
		}
		if domain != "" && c.Title != "" {
			if _, seen := titles[domain]; !seen {
				titles[domain] = c.Title
			}
		}
	}

	out := make([]types.ScoredCompetitor, len(scored))
	for i, sc := range scored {
		if t, ok := titles[sc.Domain]; ok {
			sc.Title = t
		}
		out[i] = sc
	}
	return out
}

func clampScores(s BaseScores) types.SEOScores {
	c := func(v Estimate) int { return clampScore(float64(v)) }
	return types.SEOScores{
		Overall:     c(s.Overall),
		Content:     c(s.Content),
		Keywords:    c(s.Keywords),
		Readability: c(s.Readability),
		Technical:   c(s.Technical),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (a *Analyzer) measurer() measure.Measurer {
	if a.Measurer == nil {
		return measure.None{}
	}
	return a.Measurer
}

func (a *Analyzer) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func (a *Analyzer) newID() string {
	if a.NewID == nil {
		return uuid.NewString()
	}
	return a.NewID()
}
