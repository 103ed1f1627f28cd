// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package serp

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/pdiddy/seo-engine/internal/httputil"
	"github.com/pdiddy/seo-engine/pkg/types"
)

// duckDuckGoEndpoint is the HTML-only results endpoint. Declared as a var so
// tests can substitute an httptest server.
var duckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// maxResultsPageBytes caps how much of a results page is read.
const maxResultsPageBytes = 4 << 20

// DuckDuckGoBackend searches the DuckDuckGo HTML endpoint.
type DuckDuckGoBackend struct {
	Client *http.Client
	Parser *Parser
}

// NewDuckDuckGoBackend returns a backend using client, or a client with the
// configured timeout when client is nil.
func NewDuckDuckGoBackend(client *http.Client, cfg types.SearchConfig) *DuckDuckGoBackend {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &DuckDuckGoBackend{Client: client, Parser: NewParser(DefaultOrigin)}
}

// Name returns the backend identifier.
func (b *DuckDuckGoBackend) Name() string { return "duckduckgo" }

// Search fetches and parses one results page. Transport errors, non-2xx
// responses, and empty bodies wrap ErrSearchFailed. A page that parses to
// zero results is not an error.
func (b *DuckDuckGoBackend) Search(ctx context.Context, q Query, cfg types.SearchConfig) ([]types.SearchResult, error) {
	if q.Text == "" {
		return nil, fmt.Errorf("%w: empty query", ErrSearchFailed)
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = duckDuckGoEndpoint
	}
	region := q.Region
	if region.Code == "" {
		region = GlobalRegion
	}

	params := url.Values{
		"q":  {q.Text},
		"kl": {region.Code},
	}
	if q.Limit > 0 {
		params.Set("num", strconv.Itoa(q.Limit))
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrSearchFailed, err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", region.AcceptLanguage())

	resp, err := httputil.DoWithRetry(ctx, b.Client, req, cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d from %s", ErrSearchFailed, resp.StatusCode, b.Name())
	}

	body, err := httputil.ReadBody(resp, maxResultsPageBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, fmt.Errorf("%w: empty response from %s", ErrSearchFailed, b.Name())
	}

	parser := b.Parser
	if parser == nil {
		parser = NewParser(DefaultOrigin)
	}
	results := parser.Parse(bytes.NewReader(body))
	if q.Limit > 0 && len(results) > q.Limit {
		results = results[:q.Limit]
	}
	return results, nil
}
