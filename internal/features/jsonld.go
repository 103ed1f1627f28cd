// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const jsonLDSelector = `script[type="application/ld+json"]`

// structuredEntities flattens every parseable JSON-LD block into strings.
// A block that fails to parse is skipped; the others still count.
func structuredEntities(doc *goquery.Document) []string {
	var raw []string
	doc.Find(jsonLDSelector).Each(func(_ int, s *goquery.Selection) {
		var v any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &v); err != nil {
			return
		}
		raw = collectNode(v, raw)
	})
	return dedupe(raw)
}

// collectNode accepts a single object, an array of objects, or an object
// with an @graph list.
func collectNode(v any, out []string) []string {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			out = collectNode(item, out)
		}
	case map[string]any:
		out = appendStrings(out, t["@type"])
		out = appendString(out, t["name"])
		out = appendString(out, t["headline"])
		out = collectParty(t["author"], out)
		out = collectParty(t["publisher"], out)
		out = collectAbout(t["about"], out)
		out = collectKeywords(t["keywords"], out)
		if g, ok := t["@graph"]; ok {
			out = collectNode(g, out)
		}
	}
	return out
}

// collectParty handles author and publisher values: a name string, an
// object with name and @type, or a list of either.
func collectParty(v any, out []string) []string {
	switch t := v.(type) {
	case string:
		return append(out, t)
	case []any:
		for _, item := range t {
			out = collectParty(item, out)
		}
	case map[string]any:
		out = appendString(out, t["name"])
		out = appendStrings(out, t["@type"])
	}
	return out
}

func collectAbout(v any, out []string) []string {
	switch t := v.(type) {
	case string:
		return append(out, t)
	case []any:
		for _, item := range t {
			out = collectAbout(item, out)
		}
	case map[string]any:
		out = appendString(out, t["name"])
	}
	return out
}

// collectKeywords accepts a comma-separated string or a list of strings.
func collectKeywords(v any, out []string) []string {
	switch t := v.(type) {
	case string:
		return append(out, strings.Split(t, ",")...)
	case []any:
		for _, item := range t {
			out = collectKeywords(item, out)
		}
	}
	return out
}

func appendString(out []string, v any) []string {
	if s, ok := v.(string); ok {
		return append(out, s)
	}
	return out
}

// appendStrings accepts a string or a list of strings (as @type allows).
func appendStrings(out []string, v any) []string {
	switch t := v.(type) {
	case string:
		return append(out, t)
	case []any:
		for _, item := range t {
			out = appendString(out, item)
		}
	}
	return out
}
