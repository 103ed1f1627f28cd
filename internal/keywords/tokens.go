// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package keywords tokenizes page text and ranks topic-anchored multi-word
// phrases. It also provides the title-casing and fuzzy-matching helpers the
// aggregation and merge stages share.
package keywords

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// minTokenLen is the minimum token length in runes.
const minTokenLen = 3

// stopWords are rejected as topic tokens and break n-gram windows. Question
// words are deliberately absent so phrases like "how to brew" survive.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true, "not": true,
	"you": true, "your": true, "yours": true, "all": true, "any": true, "can": true,
	"had": true, "her": true, "his": true, "him": true, "was": true, "were": true,
	"one": true, "our": true, "ours": true, "out": true, "has": true, "have": true,
	"having": true, "its": true, "this": true, "that": true,
	"these": true, "those": true, "with": true, "from": true, "they": true,
	"them": true, "their": true, "there": true, "then": true, "than": true,
	"will": true, "would": true, "could": true, "should": true, "shall": true,
	"may": true, "might": true, "must": true, "been": true, "being": true,
	"into": true, "onto": true, "upon": true, "about": true, "over": true,
	"under": true, "also": true, "just": true, "only": true, "very": true,
	"more": true, "most": true, "some": true, "such": true, "each": true,
	"other": true, "which": true, "who": true, "whom": true, "whose": true,
	"why": true, "while": true, "does": true, "did": true, "doing": true,
	"done": true, "get": true, "got": true, "use": true, "used": true,
	"using": true, "here": true, "let": true, "lets": true,
	"she": true, "hers": true, "himself": true, "herself": true, "itself": true,
	"myself": true, "yourself": true, "ourselves": true, "themselves": true,
	"because": true, "since": true, "until": true, "although": true,
	"though": true, "unless": true, "however": true, "therefore": true,
	"thus": true, "hence": true, "nor": true, "yet": true, "both": true,
	"either": true, "neither": true, "via": true, "per": true, "etc": true,
	"like": true, "well": true, "much": true, "many": true, "every": true,
	"own": true, "same": true, "too": true, "again": true, "further": true,
	"once": true, "now": true, "off": true, "down": true, "above": true,
	"below": true, "between": true, "through": true, "during": true,
	"before": true, "after": true, "against": true, "within": true,
	"without": true, "among": true, "around": true, "something": true,
	"anything": true, "everything": true, "nothing": true, "click": true,
	"read": true, "cookie": true, "cookies": true,
}

// IsStopWord reports whether the lowercase word is in the stop-word set.
func IsStopWord(w string) bool {
	return stopWords[w]
}

// isWordRune accepts letters and digits from any script, so accented and
// non-Latin words tokenize as single runs.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize splits text into lowercase letter/digit runs of at least three
// runes. Stop words are kept so callers can reject windows containing them.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !isWordRune(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= minTokenLen {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// TopicTokens returns the distinct tokens of topic with stop words removed,
// in first-seen order.
func TopicTokens(topic string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tok := range Tokenize(topic) {
		if stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

// ContainsAny reports whether s contains any of the tokens as a substring.
// s is compared as given; callers lowercase it first.
func ContainsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}
