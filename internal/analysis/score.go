// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/seo-engine/internal/textgen"
	"github.com/pdiddy/seo-engine/pkg/types"
)

const (
	// maxSummaryChars bounds the page summary sent for scoring.
	maxSummaryChars = 8000

	scoreMaxTokens = 256

	defaultScoreTimeout     = 20 * time.Second
	defaultScoreConcurrency = 3
)

// pageSummary is the JSON shape sent to the model for scoring.
type pageSummary struct {
	Topic      string   `json:"topic"`
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	HeadingsH1 []string `json:"headings_h1"`
	HeadingsH2 []string `json:"headings_h2"`
	Entities   []string `json:"entities"`
}

// Summarize renders page as JSON of at most 8000 characters. Oversized
// summaries lose trailing entries from their longest list until they fit;
// a title that alone is too long is cut.
func Summarize(page types.CompetitorPage, topic string) string {
	s := pageSummary{
		Topic:      topic,
		Title:      page.Title,
		URL:        page.URL,
		HeadingsH1: append([]string{}, page.HeadingsLevel1...),
		HeadingsH2: append([]string{}, page.HeadingsLevel2...),
		Entities:   append([]string{}, page.Entities...),
	}

	for {
		data, _ := json.Marshal(s)
		if len(data) <= maxSummaryChars {
			return string(data)
		}
		switch longest := longestList(&s); {
		case longest != nil:
			// Drop roughly the excess share of the list, at least one entry.
			n := len(*longest)*(len(data)-maxSummaryChars)/len(data) + 1
			*longest = (*longest)[:len(*longest)-min(n, len(*longest))]
		case len(s.Title) > 0:
			r := []rune(s.Title)
			s.Title = string(r[:len(r)/2])
		case len(s.Topic) > 0:
			r := []rune(s.Topic)
			s.Topic = string(r[:len(r)/2])
		default:
			s.URL = ""
		}
	}
}

func longestList(s *pageSummary) *[]string {
	var best *[]string
	for _, l := range []*[]string{&s.Entities, &s.HeadingsH2, &s.HeadingsH1} {
		if len(*l) > 0 && (best == nil || len(*l) > len(*best)) {
			best = l
		}
	}
	return best
}

// ScoreCompetitor asks gen for a 0-100 relevance score for page. The
// returned competitor always carries a score; on any failure it is 0 and
// the error says why.
func ScoreCompetitor(ctx context.Context, gen textgen.Generator, page types.CompetitorPage, topic string, timeout time.Duration) (types.ScoredCompetitor, error) {
	sc := types.ScoredCompetitor{
		Title:  page.Title,
		Domain: Domain(page.URL),
		URL:    page.URL,
	}
	if page.Failed() {
		sc.Reason = "page could not be fetched"
		return sc, fmt.Errorf("page not fetched: %s", page.Err)
	}

	prompt, err := renderScoringPrompt(topic, Summarize(page, topic))
	if err != nil {
		return sc, fmt.Errorf("rendering scoring prompt: %w", err)
	}

	if timeout <= 0 {
		timeout = defaultScoreTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := gen.Generate(ctx, textgen.Request{
		System:    scoringSystem,
		Prompt:    prompt,
		JSON:      true,
		MaxTokens: scoreMaxTokens,
	})
	if err != nil {
		return sc, fmt.Errorf("scoring %s: %w", page.URL, err)
	}

	raw, err := textgen.ExtractJSON(out)
	if err != nil {
		return sc, fmt.Errorf("scoring %s: %w", page.URL, err)
	}
	var resp map[string]any
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return sc, fmt.Errorf("parsing score for %s: %w", page.URL, err)
	}

	sc.RelevanceScore = ParseScore(resp["score"])
	if reason, ok := resp["reason"].(string); ok {
		sc.Reason = strings.TrimSpace(reason)
	}
	return sc, nil
}

// ScoreAll scores every page with at most concurrency calls in flight.
// Output order matches pages. Scoring failures are logged and score 0.
func ScoreAll(ctx context.Context, gen textgen.Generator, pages []types.CompetitorPage, topic string, cfg types.AIConfig, logger *zap.Logger) []types.ScoredCompetitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.ScoreConcurrency
	if limit <= 0 {
		limit = defaultScoreConcurrency
	}

	out := make([]types.ScoredCompetitor, len(pages))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, p := range pages {
		g.Go(func() error {
			sc, err := ScoreCompetitor(ctx, gen, p, topic, cfg.ScoreTimeout)
			if err != nil {
				logger.Warn("competitor scored 0", zap.String("url", p.URL), zap.Error(err))
			}
			out[i] = sc
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// ParseScore converts a model's "score" value into [0,100]. Numbers and
// numeric strings are rounded and clamped; anything else, including NaN,
// is 0.
func ParseScore(v any) int {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(x), "%"), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) {
		return 0
	}
	return clampScore(math.Round(f))
}

func clampScore(f float64) int {
	switch {
	case f <= 0:
		return 0
	case f >= 100:
		return 100
	}
	return int(f)
}

// Domain returns the host of rawURL without a leading "www.".
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
