// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package aggregate merges per-page headings and keywords across all
// competitors into frequency-ranked lists, a suggested outline, and a set of
// content gaps.
package aggregate

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/seo-engine/internal/htmltext"
	"github.com/pdiddy/seo-engine/internal/keywords"
	"github.com/pdiddy/seo-engine/pkg/types"
)

const (
	maxHeadings = 15
	maxKeywords = 25
	maxOutline  = 10
	maxGaps     = 8

	outlinePrefix = "## "
)

// Build computes the aggregate signals for a set of pages and the snippets
// of the search results they came from. Placeholder pages contribute nothing.
func Build(pages []types.CompetitorPage, snippets []string, topic string) types.AggregateSignals {
	var allHeadings, allKeywords []string
	for _, p := range pages {
		allHeadings = append(allHeadings, p.Headings()...)
		allKeywords = append(allKeywords, p.Entities...)
	}

	headings := top(FrequencyRank(allHeadings), maxHeadings)
	return types.AggregateSignals{
		CommonHeadings:   headings,
		CommonKeywords:   top(FrequencyRank(allKeywords), maxKeywords),
		SuggestedOutline: BuildSuggestedOutline(headings, topic),
		ContentGaps:      FindContentGaps(allHeadings, snippets, topic),
	}
}

// FrequencyRank counts items case-insensitively after normalization and
// returns them most frequent first, title-cased. Ties keep first-seen order.
func FrequencyRank(items []string) []string {
	type entry struct {
		key   string
		count int
	}
	index := make(map[string]int)
	var entries []entry

	for _, item := range items {
		key := strings.ToLower(htmltext.NormalizeText(item))
		if key == "" {
			continue
		}
		if i, ok := index[key]; ok {
			entries[i].count++
			continue
		}
		index[key] = len(entries)
		entries = append(entries, entry{key: key, count: 1})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = keywords.TitleCase(e.key)
	}
	return out
}

// BuildSuggestedOutline orders headings that mention a topic token ahead of
// the rest, keeps the first ten, and renders each as a level-2 Markdown
// heading.
func BuildSuggestedOutline(commonHeadings []string, topic string) []string {
	tokens := keywords.TopicTokens(topic)

	var matching, rest []string
	for _, h := range commonHeadings {
		if keywords.ContainsAny(strings.ToLower(h), tokens) {
			matching = append(matching, h)
		} else {
			rest = append(rest, h)
		}
	}

	ordered := top(append(matching, rest...), maxOutline)
	out := make([]string, len(ordered))
	for i, h := range ordered {
		out[i] = outlinePrefix + h
	}
	return out
}

// FindContentGaps returns topic tokens and topic-relevant snippet bigrams
// that occur in at least one snippet but in none of the headings. Matching
// is case-insensitive on normalized text; each gap is returned as it is
// written in the first snippet that contains it. At most eight gaps are
// returned, in the order they were found.
func FindContentGaps(allHeadings, snippets []string, topic string) []string {
	headings := lowerAll(allHeadings)
	texts := normalizeAll(snippets)
	tokens := keywords.TopicTokens(topic)

	candidates := append([]string(nil), tokens...)
	for _, s := range texts {
		words := keywords.Tokenize(s)
		for i := 0; i+1 < len(words); i++ {
			if keywords.IsStopWord(words[i]) || keywords.IsStopWord(words[i+1]) {
				continue
			}
			bigram := words[i] + " " + words[i+1]
			if keywords.ContainsAny(bigram, tokens) {
				candidates = append(candidates, bigram)
			}
		}
	}

	gaps := make([]string, 0, maxGaps)
	seen := make(map[string]bool)
	for _, c := range candidates {
		if len(gaps) == maxGaps {
			break
		}
		if seen[c] {
			continue
		}
		seen[c] = true
		if anyContains(headings, c) {
			continue
		}
		if span, ok := firstFold(texts, c); ok {
			gaps = append(gaps, span)
		}
	}
	return gaps
}

// firstFold returns the first span of texts that matches the lowercase
// needle ignoring case, as written in the text.
func firstFold(texts []string, needle string) (string, bool) {
	for _, t := range texts {
		if span, ok := indexFold(t, needle); ok {
			return span, true
		}
	}
	return "", false
}

func indexFold(text, needle string) (string, bool) {
	if needle == "" {
		return "", false
	}
	for i := range text {
		j, k := i, 0
		for k < len(needle) && j < len(text) {
			tr, tn := utf8.DecodeRuneInString(text[j:])
			nr, nn := utf8.DecodeRuneInString(needle[k:])
			if tr != nr && unicode.ToLower(tr) != nr {
				break
			}
			j += tn
			k += nn
		}
		if k == len(needle) {
			return text[i:j], true
		}
	}
	return "", false
}

func normalizeAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if n := htmltext.NormalizeText(s); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if n := strings.ToLower(htmltext.NormalizeText(s)); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func anyContains(haystacks []string, needle string) bool {
	for _, h := range haystacks {
		if strings.Contains(h, needle) {
			return true
		}
	}
	return false
}

func top(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
