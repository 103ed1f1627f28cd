// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package serp

import (
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/seo-engine/internal/htmltext"
	"github.com/pdiddy/seo-engine/pkg/types"
)

const (
	// DefaultOrigin is the search engine's own origin; relative result links
	// resolve against it.
	DefaultOrigin = "https://duckduckgo.com"

	resultLinkSelector = "a.result__a"
	// Snippets come as either an anchor or a div depending on the layout.
	snippetSelector = "a.result__snippet, div.result__snippet"

	redirectPath    = "/l/"
	targetParam     = "uddg"
	maxDecodePasses = 3
)

// Parser turns a results page into SearchResults.
type Parser struct {
	origin *url.URL
}

// NewParser returns a Parser that resolves links against origin. An empty
// or unparseable origin falls back to DefaultOrigin.
func NewParser(origin string) *Parser {
	u, err := url.Parse(origin)
	if origin == "" || err != nil || u.Host == "" {
		u, _ = url.Parse(DefaultOrigin)
	}
	return &Parser{origin: u}
}

// ParseResults parses a results page with the default origin.
func ParseResults(page string) []types.SearchResult {
	return NewParser(DefaultOrigin).Parse(strings.NewReader(page))
}

// Parse extracts results in document order. The i-th snippet belongs to the
// i-th result link; links without a snippet get "". Results whose URL cannot
// be resolved, or that point at the engine's ad or redirect endpoints, are
// dropped, and later duplicates of a URL are dropped. A page with no result
// links yields an empty, non-nil slice.
func (p *Parser) Parse(r io.Reader) []types.SearchResult {
	results := []types.SearchResult{}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return results
	}

	var snippets []string
	doc.Find(snippetSelector).Each(func(_ int, s *goquery.Selection) {
		snippets = append(snippets, htmltext.NormalizeText(s.Text()))
	})

	seen := make(map[string]bool)
	doc.Find(resultLinkSelector).Each(func(i int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok {
			return
		}
		target, ok := p.NormalizeURL(href)
		if !ok || seen[target] {
			return
		}
		seen[target] = true

		snippet := ""
		if i < len(snippets) {
			snippet = snippets[i]
		}
		results = append(results, types.SearchResult{
			URL:     target,
			Title:   htmltext.NormalizeText(s.Text()),
			Snippet: snippet,
		})
	})
	return results
}

// NormalizeURL resolves href against the engine origin and unwraps redirect
// links by decoding their target parameter, using at most three decode
// passes in total. It returns false for links that cannot be resolved to an
// external http(s) URL, including the engine's /y.js ad endpoint.
func (p *Parser) NormalizeURL(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	u, err := p.origin.Parse(href)
	if err != nil {
		return "", false
	}

	passes := 0
	for passes < maxDecodePasses && p.isEngine(u) && u.Path == redirectPath {
		target := u.Query().Get(targetParam)
		passes++
		for passes < maxDecodePasses && stillEncoded(target) {
			decoded, err := url.QueryUnescape(target)
			if err != nil {
				break
			}
			target = decoded
			passes++
		}
		if target == "" {
			return "", false
		}
		if u, err = p.origin.Parse(target); err != nil {
			return "", false
		}
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	// Anything still on the engine's host is an ad, a redirect we could not
	// unwrap, or engine chrome.
	if p.isEngine(u) {
		return "", false
	}
	return canonical(u), true
}

func (p *Parser) isEngine(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	engine := strings.ToLower(p.origin.Hostname())
	return host == engine || strings.HasSuffix(host, "."+engine)
}

// stillEncoded reports a redirect target that is still percent-encoded,
// such as "https%3A%2F%2Fexample.com".
func stillEncoded(s string) bool {
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "//") {
		return false
	}
	return strings.Contains(s, "%")
}

// canonical lowercases scheme and host, drops the fragment, the default
// port, and an empty trailing '?', re-encodes the path from its decoded
// form, and gives an empty path a trailing slash so equivalent URLs compare
// equal.
func canonical(u *url.URL) string {
	c := *u
	c.Scheme = strings.ToLower(c.Scheme)
	c.Host = strings.ToLower(c.Host)
	if port := c.Port(); (c.Scheme == "https" && port == "443") || (c.Scheme == "http" && port == "80") {
		c.Host = strings.TrimSuffix(c.Host, ":"+port)
	}
	c.Fragment = ""
	c.RawFragment = ""
	c.RawPath = ""
	c.ForceQuery = false
	if c.Path == "" {
		c.Path = "/"
	}
	return c.String()
}
