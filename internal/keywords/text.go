// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase upper-cases the first letter of every word and leaves the rest
// of each word as written.
func TitleCase(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

// minSimilarity is the normalized Levenshtein similarity at which two
// keywords count as the same term.
const minSimilarity = 0.85

// Similar reports whether a and b are the same keyword ignoring case and
// small spelling differences ("coffee shop" vs "coffee shops").
func Similar(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	dist := levenshtein.ComputeDistance(a, b)
	return 1-float64(dist)/float64(longest) >= minSimilarity
}

// FuzzyContains reports whether any entry of list is Similar to term.
func FuzzyContains(list []string, term string) bool {
	for _, s := range list {
		if Similar(s, term) {
			return true
		}
	}
	return false
}
