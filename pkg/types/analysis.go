// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strings"
	"time"
)

// CompetitionTier is the competition level for a topic in a location.
type CompetitionTier string

const (
	CompetitionLow    CompetitionTier = "low"
	CompetitionMedium CompetitionTier = "medium"
	CompetitionHigh   CompetitionTier = "high"
)

// ParseCompetitionTier maps free-form text to a tier. Unknown values map to "".
func ParseCompetitionTier(s string) CompetitionTier {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return CompetitionLow
	case "medium", "moderate", "mid":
		return CompetitionMedium
	case "high":
		return CompetitionHigh
	}
	return ""
}

// TrendDirection is the direction of search interest over time.
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// ParseTrendDirection maps free-form text to a direction. Unknown values map to "".
func ParseTrendDirection(s string) TrendDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rising", "up", "increasing", "growing":
		return TrendRising
	case "stable", "flat", "steady":
		return TrendStable
	case "declining", "down", "decreasing", "falling":
		return TrendDeclining
	}
	return ""
}

// ScoredCompetitor is a competitor annotated with an AI relevance score.
// RelevanceScore is a proxy for how closely the page covers the topic; it
// is not a backlink or domain-authority metric.
type ScoredCompetitor struct {
	Title          string `json:"title" yaml:"title"`
	Domain         string `json:"domain" yaml:"domain"`
	URL            string `json:"url" yaml:"url"`
	RelevanceScore int    `json:"relevance_score" yaml:"relevance_score"`
	Reason         string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// SEOScores holds the AI-drafted SEO sub-scores, each in [0,100].
type SEOScores struct {
	Overall     int `json:"overall" yaml:"overall"`
	Content     int `json:"content" yaml:"content"`
	Keywords    int `json:"keywords" yaml:"keywords"`
	Readability int `json:"readability" yaml:"readability"`
	Technical   int `json:"technical" yaml:"technical"`
}

// AnalysisResult is the merged analysis returned to the caller.
type AnalysisResult struct {
	ID       string `json:"id" yaml:"id"`
	Topic    string `json:"topic" yaml:"topic"`
	Location string `json:"location" yaml:"location"`

	SearchVolume int             `json:"search_volume" yaml:"search_volume"`
	Competition  CompetitionTier `json:"competition" yaml:"competition"`
	Trend        TrendDirection  `json:"trend" yaml:"trend"`

	// MeasuredFields lists which of search_volume, competition, and trend
	// came from the measurement collaborator rather than the AI estimate.
	MeasuredFields []string `json:"measured_fields,omitempty" yaml:"measured_fields,omitempty"`

	Keywords       []string `json:"keywords" yaml:"keywords"`
	TargetKeywords []string `json:"target_keywords" yaml:"target_keywords"`

	Competitors []ScoredCompetitor `json:"competitors" yaml:"competitors"`

	ContentSuggestions []string  `json:"content_suggestions" yaml:"content_suggestions"`
	SEOScores          SEOScores `json:"seo_scores" yaml:"seo_scores"`
	MarketInsights     []string  `json:"market_insights" yaml:"market_insights"`

	Signals AggregateSignals `json:"signals" yaml:"signals"`

	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}
