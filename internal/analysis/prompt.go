// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package analysis

import (
	"bytes"
	"text/template"

	"github.com/pdiddy/seo-engine/pkg/types"
)

const scoringSystem = "You are an SEO analyst who rates how well a web page covers a search topic."

// scoringPromptTmpl asks for a relevance score for one competitor page.
var scoringPromptTmpl = template.Must(template.New("scoring").Parse(`Rate how relevant and thorough the following competitor page is for the topic "{{.Topic}}".

Consider whether its title, headings, and entities address what a searcher for this topic wants. Do not guess at backlinks or domain authority; judge only the content summary below.

Respond with a JSON object of the form {"score": <integer 0-100>, "reason": "<one sentence>"}.

Page summary (JSON):
{{.Summary}}
`))

const narrativeSystem = "You are an SEO strategist who writes concise, data-grounded content analyses."

// narrativePromptTmpl asks for the narrative sections of the analysis.
var narrativePromptTmpl = template.Must(template.New("narrative").Parse(`Write an SEO content analysis for the topic "{{.Topic}}"{{if .Location}} targeting searchers in {{.Location}}{{end}}.

Signals gathered from the top-ranking competitor pages:
{{- if .Signals.CommonHeadings}}
Common headings:
{{- range .Signals.CommonHeadings}}
- {{.}}
{{- end}}
{{- end}}
{{- if .Signals.CommonKeywords}}
Common keywords: {{range $i, $k := .Signals.CommonKeywords}}{{if $i}}, {{end}}{{$k}}{{end}}
{{- end}}
{{- if .Signals.ContentGaps}}
Content gaps (in search snippets but not in competitor headings): {{range $i, $g := .Signals.ContentGaps}}{{if $i}}, {{end}}{{$g}}{{end}}
{{- end}}
{{- if .Competitors}}
Competitors:
{{- range .Competitors}}
- {{.Title}} ({{.URL}})
{{- end}}
{{- end}}

Respond with a JSON object with exactly these fields:
{
  "search_volume": <estimated monthly searches, integer>,
  "competition": "low" | "medium" | "high",
  "trend": "rising" | "stable" | "declining",
  "keywords": [<up to 15 related keywords>],
  "target_keywords": [<up to 8 keywords to target, most valuable first>],
  "competitors": [{"title": "...", "domain": "...", "url": "..."}],
  "content_suggestions": [<up to 8 concrete suggestions>],
  "seo_scores": {"overall": 0-100, "content": 0-100, "keywords": 0-100, "readability": 0-100, "technical": 0-100},
  "market_insights": [<up to 5 short insights>]
}
`))

type scoringData struct {
	Topic   string
	Summary string
}

type narrativeData struct {
	Topic       string
	Location    string
	Signals     types.AggregateSignals
	Competitors []types.SearchResult
}

func renderScoringPrompt(topic, summary string) (string, error) {
	var buf bytes.Buffer
	if err := scoringPromptTmpl.Execute(&buf, scoringData{Topic: topic, Summary: summary}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func renderNarrativePrompt(d narrativeData) (string, error) {
	var buf bytes.Buffer
	if err := narrativePromptTmpl.Execute(&buf, d); err != nil {
		return "", err
	}
	return buf.String(), nil
}
