// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/seo-engine/pkg/types"
)

func sampleAnalysis() types.AnalysisResult {
	return types.AnalysisResult{
		ID:             "abc",
		Topic:          "cold brew",
		Location:       "Austin, USA",
		SearchVolume:   1200,
		Competition:    types.CompetitionMedium,
		Trend:          types.TrendRising,
		MeasuredFields: []string{"search_volume"},
		Competitors: []types.ScoredCompetitor{
			{Title: "Cold Brew Guide", Domain: "example.com", RelevanceScore: 87, Reason: "covers ratios"},
		},
		TargetKeywords: []string{"cold brew ratio"},
		SEOScores:      types.SEOScores{Overall: 70},
		Signals: types.AggregateSignals{
			SuggestedOutline: []string{"# Cold Brew", "## Ratios"},
			ContentGaps:      []string{"Nitro Cold Brew"},
		},
	}
}

func TestPrintAnalysis(t *testing.T) {
	var buf bytes.Buffer
	printAnalysis(&buf, sampleAnalysis())
	out := buf.String()

	assert.Contains(t, out, "Analysis abc: cold brew (Austin, USA)")
	assert.Contains(t, out, "Search volume: 1200 (measured)")
	assert.Contains(t, out, "Competition:   medium (estimated)")
	assert.Contains(t, out, " 87  example.com  Cold Brew Guide")
	assert.Contains(t, out, "       covers ratios")
	assert.Contains(t, out, "  ## Ratios")
	assert.Contains(t, out, "Content gaps:\n  - Nitro Cold Brew")
	assert.NotContains(t, out, "Market insights")
}

func TestPrintReport_FailedPage(t *testing.T) {
	r := types.CompetitorReport{
		Query: "cold brew",
		Pages: []types.CompetitorPage{
			{URL: "https://a.example", Title: "A", HeadingsLevel1: []string{"x"}},
			{URL: "https://b.example", Err: "status 500"},
		},
	}
	var buf bytes.Buffer
	printReport(&buf, r)
	out := buf.String()

	assert.Contains(t, out, "Query: cold brew (0 results, 2 pages, 1 failed)")
	assert.Contains(t, out, "https://a.example (1 headings, 0 entities)")
	assert.Contains(t, out, "https://b.example (failed: status 500)")
}

func TestWriteYAML_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeYAML(&buf, sampleAnalysis()))

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "cold brew", got["topic"])
	assert.Equal(t, "medium", got["competition"])
}

func TestWriteJSON_Indented(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]int{"a": 1}))
	assert.Equal(t, "{\n  \"a\": 1\n}\n", buf.String())
}
