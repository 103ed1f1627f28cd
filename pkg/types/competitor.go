// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CompetitorPage holds the features extracted from one fetched competitor page.
// A page whose fetch failed is kept as a placeholder with empty slices and a
// non-empty Err so the batch can continue.
type CompetitorPage struct {
	URL            string   `json:"url" yaml:"url"`
	Title          string   `json:"title" yaml:"title"`
	HeadingsLevel1 []string `json:"headings_h1" yaml:"headings_h1"`
	HeadingsLevel2 []string `json:"headings_h2" yaml:"headings_h2"`

	// Entities is the de-duplicated union of structured-data entities,
	// declared meta keywords, and ranked content keywords.
	Entities []string `json:"entities" yaml:"entities"`

	// Err is a short failure reason for placeholder pages.
	Err string `json:"error,omitempty" yaml:"error,omitempty"`
}

// Failed reports whether the page is a placeholder for a failed fetch.
func (p CompetitorPage) Failed() bool {
	return p.Err != ""
}

// Headings returns the level-1 headings followed by the level-2 headings.
func (p CompetitorPage) Headings() []string {
	out := make([]string, 0, len(p.HeadingsLevel1)+len(p.HeadingsLevel2))
	out = append(out, p.HeadingsLevel1...)
	return append(out, p.HeadingsLevel2...)
}

// AggregateSignals combines headings and keywords across all competitor pages.
type AggregateSignals struct {
	// CommonHeadings is frequency-ranked and title-cased, at most 15 entries.
	CommonHeadings []string `json:"common_headings" yaml:"common_headings"`

	// CommonKeywords is frequency-ranked and title-cased, at most 25 entries.
	CommonKeywords []string `json:"common_keywords" yaml:"common_keywords"`

	// SuggestedOutline holds at most 10 "## "-prefixed entries drawn from
	// CommonHeadings, topic-relevant headings first.
	SuggestedOutline []string `json:"suggested_outline" yaml:"suggested_outline"`

	// ContentGaps holds at most 8 terms found in snippets but in no heading.
	ContentGaps []string `json:"content_gaps" yaml:"content_gaps"`
}

// CompetitorReport is the raw search+scrape aggregate for one request.
type CompetitorReport struct {
	Topic    string `json:"topic" yaml:"topic"`
	Location string `json:"location" yaml:"location"`
	Language string `json:"language" yaml:"language"`
	Query    string `json:"query" yaml:"query"`

	Results []SearchResult   `json:"results" yaml:"results"`
	Pages   []CompetitorPage `json:"pages" yaml:"pages"`
	Signals AggregateSignals `json:"signals" yaml:"signals"`

	// Partial is set when scraping was cancelled before every page was fetched.
	Partial bool `json:"partial,omitempty" yaml:"partial,omitempty"`

	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
}

// FailedPages returns the number of placeholder pages in the report.
func (r CompetitorReport) FailedPages() int {
	n := 0
	for _, p := range r.Pages {
		if p.Failed() {
			n++
		}
	}
	return n
}
