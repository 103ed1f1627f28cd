// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"sort"
	"strings"
)

const (
	minGram        = 2
	maxGram        = 4
	maxPhrases     = 10
	questionBoost  = 1.5
	longPhraseMin  = 1 // occurrences needed by a maxGram phrase
	shortPhraseMin = 2 // occurrences needed by shorter phrases
)

var questionWords = map[string]bool{
	"what": true, "how": true, "when": true, "where": true,
}

// Phrase is a ranked n-gram.
type Phrase struct {
	Text  string
	Count int
	Score float64
	words int
	order int
}

// RankPhrases returns up to ten topic-relevant 2-, 3-, and 4-word phrases
// from text, most significant first. A phrase qualifies when it contains a
// topic token, has no stop word, and occurs often enough for its length:
// once for four words, twice otherwise. Question phrases score 1.5x.
func RankPhrases(text, topic string) []string {
	ranked := ScorePhrases(text, topic)
	if len(ranked) > maxPhrases {
		ranked = ranked[:maxPhrases]
	}
	out := make([]string, len(ranked))
	for i, p := range ranked {
		out[i] = p.Text
	}
	return out
}

// ScorePhrases is RankPhrases without the cap, keeping counts and scores.
func ScorePhrases(text, topic string) []Phrase {
	topicTokens := TopicTokens(topic)
	if len(topicTokens) == 0 {
		return nil
	}

	tokens := Tokenize(text)
	counts := make(map[string]*Phrase)
	var order []*Phrase

	for i := range tokens {
		for n := minGram; n <= maxGram && i+n <= len(tokens); n++ {
			window := tokens[i : i+n]
			if hasStopWord(window) {
				// Longer windows from i contain the same stop word.
				break
			}
			key := strings.Join(window, " ")
			if p, ok := counts[key]; ok {
				p.Count++
				continue
			}
			p := &Phrase{Text: key, Count: 1, words: n, order: len(order)}
			counts[key] = p
			order = append(order, p)
		}
	}

	var ranked []Phrase
	for _, p := range order {
		if !ContainsAny(p.Text, topicTokens) {
			continue
		}
		if p.Count < minCount(p.words) {
			continue
		}
		p.Score = float64(p.Count)
		if isQuestion(p.Text) {
			p.Score *= questionBoost
		}
		ranked = append(ranked, *p)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

func minCount(words int) int {
	if words >= maxGram {
		return longPhraseMin
	}
	return shortPhraseMin
}

func hasStopWord(window []string) bool {
	for _, w := range window {
		if stopWords[w] {
			return true
		}
	}
	return false
}

// isQuestion reports whether a phrase contains a question word. Phrases are
// built from tokens, so punctuation such as '?' never reaches here.
func isQuestion(phrase string) bool {
	for _, w := range strings.Fields(phrase) {
		if questionWords[w] {
			return true
		}
	}
	return false
}
