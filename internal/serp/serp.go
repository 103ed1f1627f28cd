// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package serp fetches a web-search results page and parses it into ordered,
// de-duplicated SearchResults whose URLs are the real destinations.
package serp

import (
	"context"
	"errors"
	"strings"

	"github.com/pdiddy/seo-engine/pkg/types"
)

// ErrSearchFailed is returned when the search endpoint is unreachable or
// returns unusable content.
var ErrSearchFailed = errors.New("search failed")

// Query holds the parameters of one search.
type Query struct {
	Text   string
	Region Region
	// Limit caps the number of results returned; 0 means no cap.
	Limit int
}

// Backend performs a web search. Each engine implements this interface.
type Backend interface {
	Name() string
	Search(ctx context.Context, q Query, cfg types.SearchConfig) ([]types.SearchResult, error)
}

// BuildQuery combines a topic and a location into the search text.
func BuildQuery(topic, location string) string {
	topic = strings.TrimSpace(topic)
	location = strings.TrimSpace(location)
	if location == "" {
		return topic
	}
	if r, ok := regionAliases[strings.ToLower(location)]; ok && r.Global() {
		return topic
	}
	return topic + " " + location
}
