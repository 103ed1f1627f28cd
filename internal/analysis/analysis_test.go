// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/seo-engine/internal/cache"
	"github.com/pdiddy/seo-engine/internal/measure"
	"github.com/pdiddy/seo-engine/internal/serp"
	"github.com/pdiddy/seo-engine/internal/textgen"
	"github.com/pdiddy/seo-engine/pkg/types"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

const narrativeJSON = `Here is the analysis:
` + "```json" + `
{
  "search_volume": "12,500",
  "competition": "Medium",
  "trend": "rising",
  "keywords": ["coffee shops", "espresso bars"],
  "target_keywords": ["best coffee shops austin", "espresso austin"],
  "competitors": [{"title": "Austin's Best Coffee (AI)", "domain": "www.site1.example", "url": "https://site1.example/"}],
  "content_suggestions": ["Add a map of shops"],
  "seo_scores": {"overall": 78.4, "content": 140, "keywords": -3, "readability": 70, "technical": 65},
  "market_insights": ["Demand peaks on weekends"]
}
` + "```"

// scriptedGen answers narrative prompts with narrative and scoring prompts
// by the first URL in scores that the prompt mentions.
type scriptedGen struct {
	narrative    string
	narrativeErr error
	scores       map[string]string
	scoreErr     error

	narrativeCalls atomic.Int32
	scoreCalls     atomic.Int32
}

func (g *scriptedGen) Name() string { return "scripted" }

func (g *scriptedGen) Generate(_ context.Context, req textgen.Request) (string, error) {
	if req.System == narrativeSystem {
		g.narrativeCalls.Add(1)
		return g.narrative, g.narrativeErr
	}
	g.scoreCalls.Add(1)
	if g.scoreErr != nil {
		return "", g.scoreErr
	}
	for u, resp := range g.scores {
		if strings.Contains(req.Prompt, u) {
			return resp, nil
		}
	}
	return `{"score": 50, "reason": "default"}`, nil
}

type fakeSource struct {
	report types.CompetitorReport
	err    error
	calls  int
}

func (s *fakeSource) Run(context.Context, string, string) (types.CompetitorReport, error) {
	s.calls++
	return s.report, s.err
}

type fakeMeasurer struct {
	m   measure.Measurement
	err error
}

func (f fakeMeasurer) Measure(context.Context, string, string) (measure.Measurement, error) {
	return f.m, f.err
}

func sampleReport() types.CompetitorReport {
	return types.CompetitorReport{
		Topic:    "best coffee shops",
		Location: "Austin, USA",
		Results: []types.SearchResult{
			{URL: "https://site1.example/", Title: "Site 1"},
			{URL: "https://site2.example/", Title: "Site 2"},
			{URL: "https://site3.example/", Title: "Site 3"},
		},
		Pages: []types.CompetitorPage{
			{URL: "https://site1.example/", Title: "Site 1 page", HeadingsLevel2: []string{"Best Coffee Shops in Austin"}},
			{URL: "https://site2.example/", Title: "Site 2 page", HeadingsLevel2: []string{"Espresso"}},
			{URL: "https://site3.example/", Title: "Site 3", HeadingsLevel1: []string{}, HeadingsLevel2: []string{}, Entities: []string{}, Err: "HTTP 500"},
		},
		Signals: types.AggregateSignals{CommonHeadings: []string{"Best Coffee Shops In Austin", "Espresso"}},
	}
}

func newAnalyzer(t *testing.T, src CompetitorSource, gen textgen.Generator, m measure.Measurer) *Analyzer {
	t.Helper()
	c := cache.New[types.AnalysisResult](cache.NewMemory(), CacheNamespace, 24*time.Hour)
	a := New(src, gen, m, c, types.AIConfig{ScoreTimeout: time.Second, NarrativeTimeout: time.Second, ScoreConcurrency: 2}, zaptest.NewLogger(t))
	a.Now = func() time.Time { return fixedNow }
	a.NewID = func() string { return "analysis-1" }
	return a
}

func intPtr(v int) *int { return &v }

// --- ParseScore ---

func TestParseScore(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int
	}{
		{"in range", 85.0, 85},
		{"rounds", 72.6, 73},
		{"above range", 150.0, 100},
		{"below range", -5.0, 0},
		{"numeric string", "72", 72},
		{"padded string", " 64.4 ", 64},
		{"percent string", "85%", 85},
		{"string above range", "1000", 100},
		{"json number", json.Number("99.5"), 100},
		{"int", 42, 42},
		{"NaN", math.NaN(), 0},
		{"NaN string", "NaN", 0},
		{"infinite", math.Inf(1), 100},
		{"non-numeric string", "high", 0},
		{"bool", true, 0},
		{"missing", nil, 0},
		{"object", map[string]any{"v": 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseScore(tt.in)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

// --- Summarize ---

func TestSummarize_Bounded(t *testing.T) {
	page := types.CompetitorPage{URL: "https://big.example/", Title: "Big page"}
	for i := 0; i < 2000; i++ {
		page.Entities = append(page.Entities, fmt.Sprintf("entity number %04d", i))
		page.HeadingsLevel2 = append(page.HeadingsLevel2, fmt.Sprintf("heading %04d", i))
	}

	s := Summarize(page, "coffee")
	assert.LessOrEqual(t, len(s), maxSummaryChars)

	var decoded pageSummary
	require.NoError(t, json.Unmarshal([]byte(s), &decoded))
	assert.Equal(t, "Big page", decoded.Title)
	assert.Equal(t, "entity number 0000", decoded.Entities[0], "trailing entries are dropped first")
}

func TestSummarize_HugeTitle(t *testing.T) {
	page := types.CompetitorPage{URL: "https://x.example/", Title: strings.Repeat("é", 20000)}
	s := Summarize(page, "coffee")
	assert.LessOrEqual(t, len(s), maxSummaryChars)
	assert.True(t, json.Valid([]byte(s)))
}

func TestSummarize_Small(t *testing.T) {
	page := types.CompetitorPage{URL: "https://x.example/", Title: "T", HeadingsLevel1: []string{"H"}}
	var decoded pageSummary
	require.NoError(t, json.Unmarshal([]byte(Summarize(page, "topic")), &decoded))
	assert.Equal(t, "topic", decoded.Topic)
	assert.Equal(t, []string{"H"}, decoded.HeadingsH1)
}

// --- ScoreCompetitor ---

func TestScoreCompetitor(t *testing.T) {
	page := types.CompetitorPage{URL: "https://www.site1.example/guide", Title: "Guide"}

	tests := []struct {
		name      string
		answer    string
		err       error
		wantScore int
		wantErr   bool
	}{
		{"valid", `{"score": 77, "reason": "covers the topic"}`, nil, 77, false},
		{"fenced and clamped", "```json\n{\"score\": 130}\n```", nil, 100, false},
		{"string score", `{"score": "55.5"}`, nil, 56, false},
		{"non-numeric score", `{"score": "very high"}`, nil, 0, false},
		{"missing score", `{"reason": "no score"}`, nil, 0, false},
		{"not json", `I would rate it highly.`, nil, 0, true},
		{"broken json", `{"score": 80`, nil, 0, true},
		{"call fails", "", errors.New("boom"), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &textgenFunc{fn: func(context.Context, textgen.Request) (string, error) { return tt.answer, tt.err }}
			sc, err := ScoreCompetitor(context.Background(), gen, page, "coffee", time.Second)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantScore, sc.RelevanceScore)
			assert.Equal(t, "site1.example", sc.Domain)
			assert.Equal(t, page.URL, sc.URL)
			assert.Equal(t, "Guide", sc.Title)
		})
	}
}

type textgenFunc struct {
	fn func(context.Context, textgen.Request) (string, error)
}

func (f *textgenFunc) Name() string { return "func" }

func (f *textgenFunc) Generate(ctx context.Context, req textgen.Request) (string, error) {
	return f.fn(ctx, req)
}

func TestScoreCompetitor_FailedPageSkipsCall(t *testing.T) {
	called := false
	gen := &textgenFunc{fn: func(context.Context, textgen.Request) (string, error) {
		called = true
		return `{"score": 90}`, nil
	}}
	sc, err := ScoreCompetitor(context.Background(), gen, types.CompetitorPage{URL: "https://x.example/", Err: "HTTP 500"}, "t", time.Second)
	assert.Error(t, err)
	assert.False(t, called)
	assert.Equal(t, 0, sc.RelevanceScore)
}

func TestScoreCompetitor_Timeout(t *testing.T) {
	gen := &textgenFunc{fn: func(ctx context.Context, _ textgen.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}}
	start := time.Now()
	sc, err := ScoreCompetitor(context.Background(), gen, types.CompetitorPage{URL: "https://x.example/"}, "t", 30*time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, sc.RelevanceScore)
	assert.Less(t, time.Since(start), 5*time.Second)
}

// --- ScoreAll ---

func TestScoreAll_OrderAndConcurrency(t *testing.T) {
	var inFlight, peak atomic.Int32
	gen := &textgenFunc{fn: func(ctx context.Context, req textgen.Request) (string, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		if strings.Contains(req.Prompt, "slow.example") {
			<-ctx.Done()
			return "", ctx.Err()
		}
		time.Sleep(5 * time.Millisecond)
		for i := 0; i < 6; i++ {
			if strings.Contains(req.Prompt, fmt.Sprintf("p%d.example", i)) {
				return fmt.Sprintf(`{"score": %d}`, i*10), nil
			}
		}
		return `{"score": 1}`, nil
	}}

	var pages []types.CompetitorPage
	for i := 0; i < 6; i++ {
		pages = append(pages, types.CompetitorPage{URL: fmt.Sprintf("https://p%d.example/", i), Title: "P"})
	}
	pages[3].URL = "https://slow.example/"

	cfg := types.AIConfig{ScoreTimeout: 50 * time.Millisecond, ScoreConcurrency: 2}
	got := ScoreAll(context.Background(), gen, pages, "t", cfg, zaptest.NewLogger(t))

	require.Len(t, got, 6)
	for i, sc := range got {
		assert.Equal(t, pages[i].URL, sc.URL)
		if i == 3 {
			assert.Equal(t, 0, sc.RelevanceScore)
			continue
		}
		assert.Equal(t, i*10, sc.RelevanceScore)
	}
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

// --- Merge ---

func TestMerge_MeasuredOverridesEstimates(t *testing.T) {
	base, err := ParseNarrative(narrativeJSON)
	require.NoError(t, err)

	m := measure.Measurement{
		Trend:        types.TrendDeclining,
		SearchVolume: intPtr(900),
		Competition:  types.CompetitionHigh,
	}
	r := Merge(base, nil, m)
	assert.Equal(t, 900, r.SearchVolume)
	assert.Equal(t, types.CompetitionHigh, r.Competition)
	assert.Equal(t, types.TrendDeclining, r.Trend)
	assert.ElementsMatch(t, []string{"search_volume", "competition", "trend"}, r.MeasuredFields)
}

func TestMerge_KeepsEstimatesWithoutMeasurement(t *testing.T) {
	base, err := ParseNarrative(narrativeJSON)
	require.NoError(t, err)

	r := Merge(base, nil, measure.Measurement{})
	assert.Equal(t, 12500, r.SearchVolume)
	assert.Equal(t, types.CompetitionMedium, r.Competition)
	assert.Equal(t, types.TrendRising, r.Trend)
	assert.Empty(t, r.MeasuredFields)
	assert.Equal(t, types.SEOScores{Overall: 78, Content: 100, Keywords: 0, Readability: 70, Technical: 65}, r.SEOScores)
	assert.NotNil(t, r.Competitors)
}

func TestSpliceKeywords(t *testing.T) {
	target := []string{"best coffee shops austin", "espresso austin"}
	related := []string{"Best Coffee Shops Austin", "latte art", "best coffee shop austin", "cold brew", "pour over", "matcha"}

	got := SpliceKeywords(target, related, 3)
	assert.Equal(t, []string{"latte art", "cold brew", "pour over", "best coffee shops austin", "espresso austin"}, got)
}

func TestSpliceKeywords_NothingNew(t *testing.T) {
	got := SpliceKeywords([]string{"coffee"}, []string{"Coffee", " "}, 3)
	assert.Equal(t, []string{"coffee"}, got)
	assert.Equal(t, []string{}, SpliceKeywords(nil, nil, 3))
}

func TestMerge_CompetitorsUseScoresAndAITitles(t *testing.T) {
	base := BaseAnalysis{Competitors: []BaseCompetitor{
		{Title: "AI title for site1", Domain: "www.Site1.example"},
		{Title: "Unrelated", URL: "https://elsewhere.example/"},
	}}
	scored := []types.ScoredCompetitor{
		{Title: "Page title 1", Domain: "site1.example", URL: "https://site1.example/", RelevanceScore: 81},
		{Title: "Page title 2", Domain: "site2.example", URL: "https://site2.example/", RelevanceScore: 0},
	}
	r := Merge(base, scored, measure.Measurement{})
	require.Len(t, r.Competitors, 2)
	assert.Equal(t, "AI title for site1", r.Competitors[0].Title)
	assert.Equal(t, 81, r.Competitors[0].RelevanceScore)
	assert.Equal(t, "Page title 2", r.Competitors[1].Title)
	assert.Equal(t, 0, r.Competitors[1].RelevanceScore)
}

func TestParseNarrative_Malformed(t *testing.T) {
	_, err := ParseNarrative("I cannot help with that.")
	assert.ErrorIs(t, err, ErrNarrativeMalformed)

	_, err = ParseNarrative(`{"keywords": "not a list"}`)
	assert.ErrorIs(t, err, ErrNarrativeMalformed)
}

func TestEstimate(t *testing.T) {
	tests := []struct {
		in   string
		want Estimate
	}{
		{`1200`, 1200},
		{`"3,400"`, 3400},
		{`12.6`, 13},
		{`"lots"`, 0},
		{`-5`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var e Estimate
			require.NoError(t, json.Unmarshal([]byte(tt.in), &e))
			assert.Equal(t, tt.want, e)
		})
	}
}

func TestDomain(t *testing.T) {
	assert.Equal(t, "example.com", Domain("https://WWW.Example.com/path"))
	assert.Equal(t, "blog.example.com", Domain("https://blog.example.com"))
	assert.Equal(t, "", Domain("::bad"))
}

// --- PerformAnalysis ---

func TestPerformAnalysis(t *testing.T) {
	src := &fakeSource{report: sampleReport()}
	gen := &scriptedGen{
		narrative: narrativeJSON,
		scores: map[string]string{
			"site1.example": `{"score": 92, "reason": "thorough"}`,
			"site2.example": `{"score": "not a number"}`,
		},
	}
	m := fakeMeasurer{m: measure.Measurement{
		SearchVolume:    intPtr(8000),
		Trend:           types.TrendStable,
		RelatedKeywords: []string{"coffee near me", "espresso austin", "latte art", "cold brew"},
	}}
	a := newAnalyzer(t, src, gen, m)

	r, err := a.PerformAnalysis(context.Background(), "best coffee shops", "Austin, USA")
	require.NoError(t, err)

	assert.Equal(t, "analysis-1", r.ID)
	assert.Equal(t, fixedNow, r.GeneratedAt)
	assert.Equal(t, "best coffee shops", r.Topic)
	assert.Equal(t, 8000, r.SearchVolume)
	assert.Equal(t, types.TrendStable, r.Trend)
	assert.Equal(t, types.CompetitionMedium, r.Competition, "unmeasured field keeps the AI estimate")
	assert.ElementsMatch(t, []string{"search_volume", "trend"}, r.MeasuredFields)
	assert.Equal(t, []string{"coffee near me", "latte art", "cold brew", "best coffee shops austin", "espresso austin"}, r.TargetKeywords)

	require.Len(t, r.Competitors, 3)
	assert.Equal(t, "Austin's Best Coffee (AI)", r.Competitors[0].Title)
	assert.Equal(t, 92, r.Competitors[0].RelevanceScore)
	assert.Equal(t, 0, r.Competitors[1].RelevanceScore)
	assert.Equal(t, 0, r.Competitors[2].RelevanceScore, "failed page is kept with score 0")
	assert.Equal(t, "https://site3.example/", r.Competitors[2].URL)
	assert.Equal(t, sampleReport().Signals, r.Signals)

	assert.Equal(t, int32(2), gen.scoreCalls.Load(), "failed page is not sent for scoring")
	assert.Equal(t, int32(1), gen.narrativeCalls.Load())
}

func TestPerformAnalysis_CacheHit(t *testing.T) {
	src := &fakeSource{report: sampleReport()}
	gen := &scriptedGen{narrative: narrativeJSON}
	a := newAnalyzer(t, src, gen, nil)

	first, err := a.PerformAnalysis(context.Background(), "Best Coffee Shops", "Austin, USA")
	require.NoError(t, err)
	second, err := a.PerformAnalysis(context.Background(), "best coffee shops", "austin, usa")
	require.NoError(t, err)

	assert.Equal(t, 1, src.calls)
	assert.Equal(t, int32(1), gen.narrativeCalls.Load())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.TargetKeywords, second.TargetKeywords)
}

func TestPerformAnalysis_CacheExpires(t *testing.T) {
	clock := fixedNow
	src := &fakeSource{report: sampleReport()}
	a := newAnalyzer(t, src, &scriptedGen{narrative: narrativeJSON}, nil)
	a.Cache = cache.New[types.AnalysisResult](cache.NewMemory(), CacheNamespace, 24*time.Hour,
		cache.WithClock(func() time.Time { return clock }))

	_, err := a.PerformAnalysis(context.Background(), "coffee", "")
	require.NoError(t, err)
	clock = clock.Add(25 * time.Hour)
	_, err = a.PerformAnalysis(context.Background(), "coffee", "")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestPerformAnalysis_SearchFailure(t *testing.T) {
	src := &fakeSource{err: fmt.Errorf("%w: HTTP 503", serp.ErrSearchFailed)}
	gen := &scriptedGen{narrative: narrativeJSON}
	a := newAnalyzer(t, src, gen, nil)

	_, err := a.PerformAnalysis(context.Background(), "coffee", "")
	assert.ErrorIs(t, err, serp.ErrSearchFailed)
	assert.Equal(t, int32(0), gen.narrativeCalls.Load())

	_, err = a.PerformAnalysis(context.Background(), "coffee", "")
	assert.Error(t, err)
	assert.Equal(t, 2, src.calls, "failures are not cached")
}

func TestPerformAnalysis_AllModelsUnavailable(t *testing.T) {
	down := &textgen.StatusError{Model: "m", Status: 529, Err: errors.New("overloaded")}
	fb := textgen.NewFallback(zaptest.NewLogger(t),
		&textgenFunc{fn: func(context.Context, textgen.Request) (string, error) { return "", down }},
		&textgenFunc{fn: func(context.Context, textgen.Request) (string, error) { return "", down }},
	)
	a := newAnalyzer(t, &fakeSource{report: sampleReport()}, fb, nil)

	_, err := a.PerformAnalysis(context.Background(), "coffee", "")
	assert.ErrorIs(t, err, textgen.ErrAllModelsUnavailable)
}

func TestPerformAnalysis_MalformedNarrative(t *testing.T) {
	a := newAnalyzer(t, &fakeSource{report: sampleReport()}, &scriptedGen{narrative: "no json"}, nil)
	_, err := a.PerformAnalysis(context.Background(), "coffee", "")
	assert.ErrorIs(t, err, ErrNarrativeMalformed)
}

func TestPerformAnalysis_ScoringFailuresAreNotFatal(t *testing.T) {
	gen := &scriptedGen{narrative: narrativeJSON, scoreErr: errors.New("scoring down")}
	a := newAnalyzer(t, &fakeSource{report: sampleReport()}, gen, nil)

	r, err := a.PerformAnalysis(context.Background(), "coffee", "")
	require.NoError(t, err)
	for _, c := range r.Competitors {
		assert.Equal(t, 0, c.RelevanceScore)
	}
}

func TestPerformAnalysis_MeasurementErrorKeepsEstimates(t *testing.T) {
	a := newAnalyzer(t, &fakeSource{report: sampleReport()}, &scriptedGen{narrative: narrativeJSON},
		fakeMeasurer{err: errors.New("measurement service down")})

	r, err := a.PerformAnalysis(context.Background(), "coffee", "")
	require.NoError(t, err)
	assert.Equal(t, 12500, r.SearchVolume)
	assert.Equal(t, types.TrendRising, r.Trend)
	assert.Empty(t, r.MeasuredFields)
}

func TestPerformAnalysis_PartialReportNotCached(t *testing.T) {
	report := sampleReport()
	report.Partial = true
	src := &fakeSource{report: report}
	a := newAnalyzer(t, src, &scriptedGen{narrative: narrativeJSON}, nil)

	_, err := a.PerformAnalysis(context.Background(), "coffee", "")
	require.NoError(t, err)
	_, err = a.PerformAnalysis(context.Background(), "coffee", "")
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestRenderNarrativePrompt(t *testing.T) {
	p, err := renderNarrativePrompt(narrativeData{
		Topic:       "best coffee shops",
		Location:    "Austin",
		Signals:     types.AggregateSignals{CommonHeadings: []string{"Espresso"}, ContentGaps: []string{"wifi", "parking"}},
		Competitors: []types.SearchResult{{Title: "Site 1", URL: "https://site1.example/"}},
	})
	require.NoError(t, err)
	assert.Contains(t, p, `"best coffee shops" targeting searchers in Austin`)
	assert.Contains(t, p, "- Espresso")
	assert.Contains(t, p, "wifi, parking")
	assert.Contains(t, p, "- Site 1 (https://site1.example/)")
}
