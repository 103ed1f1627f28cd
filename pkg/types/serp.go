// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the seo-engine pipeline:
// search results, competitor pages, aggregate signals, the raw competitor
// report, and the merged analysis result.
package types

// SearchResult is one organic result parsed from a search-engine results page.
// URL is always the destination URL, never the engine's redirect wrapper.
type SearchResult struct {
	URL     string `json:"url" yaml:"url"`
	Title   string `json:"title" yaml:"title"`
	Snippet string `json:"snippet" yaml:"snippet"`
}
