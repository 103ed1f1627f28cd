// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package keywords

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"lowercases and drops short", "The Best Coffee in NY", []string{"the", "best", "coffee"}},
		{"punctuation splits", "espresso-based, pour-over!", []string{"espresso", "based", "pour", "over"}},
		{"accented letters", "Café crème brûlée", []string{"café", "crème", "brûlée"}},
		{"digits kept", "top 100 shops 2026", []string{"top", "100", "shops", "2026"}},
		{"empty", "", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			if len(tt.want) == 0 {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTopicTokens(t *testing.T) {
	assert.Equal(t, []string{"best", "coffee", "shops"}, TopicTokens("the best coffee shops"))
	assert.Equal(t, []string{"coffee"}, TopicTokens("Coffee coffee COFFEE"))
	assert.Empty(t, TopicTokens("the and for"))
}

func TestRankPhrases_FrequencyThresholds(t *testing.T) {
	text := "cold brew coffee is great. cold brew coffee again. " +
		"single coffee mention here. espresso machine guide espresso machine."
	got := RankPhrases(text, "coffee")

	assert.Contains(t, got, "brew coffee")
	assert.Contains(t, got, "cold brew coffee")
	// Two-word phrase seen once is below the floor.
	assert.NotContains(t, got, "single coffee")
	// Phrases without a topic token never appear, however frequent.
	assert.NotContains(t, got, "cold brew")
	assert.NotContains(t, got, "espresso machine")
}

func TestRankPhrases_FourGramNeedsOneOccurrence(t *testing.T) {
	got := RankPhrases("roasting green coffee beans at home", "coffee")
	assert.Contains(t, got, "roasting green coffee beans")
	assert.NotContains(t, got, "green coffee")
}

func TestRankPhrases_StopWordBreaksWindow(t *testing.T) {
	text := "coffee with milk coffee with milk coffee with milk"
	got := RankPhrases(text, "coffee milk")
	for _, p := range got {
		assert.NotContains(t, strings.Fields(p), "with", "phrase %q spans a stop word", p)
	}
}

func TestRankPhrases_QuestionBoost(t *testing.T) {
	// "best coffee" appears 3 times, "how coffee" twice; 2 * 1.5 == 3 ties,
	// and the stable sort keeps first-seen order.
	text := "how coffee best coffee how coffee best coffee best coffee"
	ranked := ScorePhrases(text, "coffee")
	require.NotEmpty(t, ranked)

	scores := make(map[string]float64)
	for _, p := range ranked {
		scores[p.Text] = p.Score
	}
	assert.InDelta(t, 3.0, scores["how coffee"], 1e-9)
	assert.InDelta(t, 3.0, scores["best coffee"], 1e-9)
	assert.Equal(t, "how coffee", ranked[0].Text)
}

func TestRankPhrases_QuestionMarkAloneNoBoost(t *testing.T) {
	text := "cold coffee? cold coffee? how coffee how coffee"
	ranked := ScorePhrases(text, "coffee")

	scores := make(map[string]float64)
	for _, p := range ranked {
		scores[p.Text] = p.Score
	}
	assert.InDelta(t, 2.0, scores["cold coffee"], 1e-9)
	assert.InDelta(t, 3.0, scores["how coffee"], 1e-9)
}

func TestRankPhrases_NeverSingleWords(t *testing.T) {
	text := strings.Repeat("coffee coffee shops coffee beans roast ", 20)
	for _, p := range RankPhrases(text, "coffee shops") {
		assert.Contains(t, p, " ", "phrase %q has no internal space", p)
	}
}

func TestRankPhrases_CapsAtTen(t *testing.T) {
	var b strings.Builder
	for _, w := range []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot",
		"golf", "hotel", "india", "juliet", "kilo", "lima"} {
		b.WriteString("coffee " + w + ". coffee " + w + ". ")
	}
	got := RankPhrases(b.String(), "coffee")
	assert.Len(t, got, 10)
}

func TestRankPhrases_NoTopicTokens(t *testing.T) {
	assert.Empty(t, RankPhrases("coffee coffee coffee", "the and"))
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Best Coffee Shops In Your City", TitleCase("best coffee shops in your city"))
	assert.Equal(t, "IPhone Tips", TitleCase("iPhone tips"))
	assert.Equal(t, "", TitleCase(""))
}

func TestSimilar(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"coffee shops", "Coffee Shops", true},
		{"coffee shop", "coffee shops", true},
		{"seo tips", "seo tools", false},
		{"", "coffee", false},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Similar(tt.a, tt.b))
		})
	}
	assert.True(t, FuzzyContains([]string{"latte art", "coffee shop"}, "Coffee Shops"))
	assert.False(t, FuzzyContains(nil, "anything"))
}
