// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package features extracts headings, structured-data entities, and declared
// keywords from one competitor page. Missing elements yield empty slices;
// a page is only rejected when its HTML cannot be read at all.
package features

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/seo-engine/internal/htmltext"
	"github.com/pdiddy/seo-engine/internal/keywords"
	"github.com/pdiddy/seo-engine/pkg/types"
)

// nonContentSelectors lists elements removed before body text is ranked.
const nonContentSelectors = "script, style, noscript, nav, header, footer"

// Features is everything extracted from one page.
type Features struct {
	Title          string
	HeadingsLevel1 []string
	HeadingsLevel2 []string

	// StructuredEntities come from JSON-LD blocks.
	StructuredEntities []string
	// MetaKeywords come from the keywords meta tag and article:tag properties.
	MetaKeywords []string
	// ContentKeywords are ranked topic phrases from the visible body text.
	ContentKeywords []string
}

// Entities returns the de-duplicated union of structured entities, meta
// keywords, and content keywords, in that order.
func (f Features) Entities() []string {
	return dedupe(f.StructuredEntities, f.MetaKeywords, f.ContentKeywords)
}

// Page converts the features into a CompetitorPage for url. When the page
// has no <title>, fallbackTitle (usually the search-result title) is used.
func (f Features) Page(url, fallbackTitle string) types.CompetitorPage {
	title := f.Title
	if title == "" {
		title = fallbackTitle
	}
	return types.CompetitorPage{
		URL:            url,
		Title:          title,
		HeadingsLevel1: f.HeadingsLevel1,
		HeadingsLevel2: f.HeadingsLevel2,
		Entities:       f.Entities(),
	}
}

// Extract parses a page and pulls out its features. topic drives the
// content-keyword ranking.
func Extract(r io.Reader, topic string) (Features, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Features{}, fmt.Errorf("parse html: %w", err)
	}

	f := Features{
		Title:              documentTitle(doc),
		HeadingsLevel1:     headings(doc, "h1"),
		HeadingsLevel2:     headings(doc, "h2"),
		StructuredEntities: structuredEntities(doc),
		MetaKeywords:       metaKeywords(doc),
	}

	// Body extraction removes nodes, so it runs last.
	f.ContentKeywords = keywords.RankPhrases(bodyText(doc), topic)
	return f, nil
}

// ExtractString is Extract over an in-memory document.
func ExtractString(html, topic string) (Features, error) {
	return Extract(strings.NewReader(html), topic)
}

// documentTitle prefers head > title and otherwise takes the first title
// outside inline SVG, whose <title> elements name icons.
func documentTitle(doc *goquery.Document) string {
	title := doc.Find("head > title").First()
	if title.Length() == 0 {
		title = doc.Find("title").FilterFunction(func(_ int, s *goquery.Selection) bool {
			return s.Closest("svg").Length() == 0
		}).First()
	}
	return htmltext.NormalizeText(title.Text())
}

func headings(doc *goquery.Document, tag string) []string {
	out := []string{}
	doc.Find(tag).Each(func(_ int, s *goquery.Selection) {
		text := htmltext.NormalizeText(elementText(s))
		if utf8.RuneCountInString(text) > 1 {
			out = append(out, text)
		}
	})
	return out
}

// phrasing lists inline elements whose text runs on without a break.
var phrasing = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true,
	"code": true, "data": true, "dfn": true, "em": true, "i": true, "kbd": true,
	"mark": true, "q": true, "s": true, "samp": true, "small": true, "span": true,
	"strong": true, "sub": true, "sup": true, "time": true, "u": true, "var": true,
}

// elementText is the selection's text with a space at every line break and
// around every non-inline element.
func elementText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
			return
		case html.ElementNode:
			if !phrasing[n.Data] {
				b.WriteByte(' ')
				defer b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return b.String()
}

func metaKeywords(doc *goquery.Document) []string {
	var raw []string
	doc.Find("meta").Each(func(_ int, s *goquery.Selection) {
		content, ok := s.Attr("content")
		if !ok {
			return
		}
		name, _ := s.Attr("name")
		property, _ := s.Attr("property")
		switch {
		case strings.EqualFold(strings.TrimSpace(name), "keywords"):
			raw = append(raw, strings.Split(content, ",")...)
		case strings.EqualFold(strings.TrimSpace(property), "article:tag"):
			raw = append(raw, content)
		}
	})
	return dedupe(raw)
}

func bodyText(doc *goquery.Document) string {
	body := doc.Find("body").First()
	if body.Length() == 0 {
		return ""
	}
	body.Find(nonContentSelectors).Remove()

	// Join text nodes with spaces so words from adjacent elements do not fuse.
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range body.Nodes {
		walk(n)
	}
	return htmltext.CollapseSpace(b.String())
}

// dedupe normalizes every string, drops empties, and keeps the first
// occurrence of each case-insensitive value.
func dedupe(lists ...[]string) []string {
	out := []string{}
	seen := make(map[string]bool)
	for _, list := range lists {
		for _, s := range list {
			n := htmltext.NormalizeText(s)
			key := strings.ToLower(n)
			if n == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, n)
		}
	}
	return out
}
