// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package competitors

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/pdiddy/seo-engine/internal/httputil"
	"github.com/pdiddy/seo-engine/pkg/types"
)

// ErrPageFetch is wrapped by every page-fetch failure.
var ErrPageFetch = errors.New("page fetch failed")

// Fetcher retrieves the HTML of one competitor page.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// HTTPFetcher fetches pages over HTTP with a per-page timeout and body cap.
type HTTPFetcher struct {
	Client *http.Client
	Config types.ScrapeConfig
}

// NewHTTPFetcher returns a fetcher using client, or a default client when
// client is nil.
func NewHTTPFetcher(client *http.Client, cfg types.ScrapeConfig) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{Client: client, Config: cfg}
}

// Fetch GETs pageURL. Non-2xx statuses, non-HTML content types, and
// transport errors (including the per-page timeout) wrap ErrPageFetch.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if f.Config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: creating request: %v", ErrPageFetch, err)
	}
	if f.Config.UserAgent != "" {
		req.Header.Set("User-Agent", f.Config.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	// Pages are not retried: a 429 from a competitor site becomes a
	// placeholder rather than stretching the sequential batch.
	resp, err := httputil.DoWithRetry(ctx, f.Client, req, -1)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrPageFetch, resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !isHTML(ct) {
		return nil, fmt.Errorf("%w: content type %q", ErrPageFetch, ct)
	}

	body, err := httputil.ReadBody(resp, f.Config.MaxBodyBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageFetch, err)
	}
	return body, nil
}

// isHTML accepts HTML media types and a missing header.
func isHTML(contentType string) bool {
	if contentType == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mt == "text/html" || mt == "application/xhtml+xml"
}
