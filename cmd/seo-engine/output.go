// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/seo-engine/pkg/types"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func printReport(w io.Writer, r types.CompetitorReport) {
	fmt.Fprintf(w, "Query: %s (%d results, %d pages, %d failed)\n", r.Query, len(r.Results), len(r.Pages), r.FailedPages())
	for i, p := range r.Pages {
		status := fmt.Sprintf("%d headings, %d entities", len(p.HeadingsLevel1)+len(p.HeadingsLevel2), len(p.Entities))
		if p.Failed() {
			status = "failed: " + p.Err
		}
		fmt.Fprintf(w, "  %d. %s\n     %s (%s)\n", i+1, p.Title, p.URL, status)
	}
	printSignals(w, r.Signals)
}

func printSignals(w io.Writer, s types.AggregateSignals) {
	printList(w, "Common headings", s.CommonHeadings)
	printList(w, "Common keywords", s.CommonKeywords)
	if len(s.SuggestedOutline) > 0 {
		fmt.Fprintln(w, "\nSuggested outline:")
		for _, h := range s.SuggestedOutline {
			fmt.Fprintf(w, "  %s\n", h)
		}
	}
	printList(w, "Content gaps", s.ContentGaps)
}

func printAnalysis(w io.Writer, r types.AnalysisResult) {
	fmt.Fprintf(w, "Analysis %s: %s", r.ID, r.Topic)
	if r.Location != "" {
		fmt.Fprintf(w, " (%s)", r.Location)
	}
	fmt.Fprintln(w)

	measured := func(field string) string {
		for _, f := range r.MeasuredFields {
			if f == field {
				return "measured"
			}
		}
		return "estimated"
	}
	fmt.Fprintf(w, "  Search volume: %d (%s)\n", r.SearchVolume, measured("search_volume"))
	fmt.Fprintf(w, "  Competition:   %s (%s)\n", orDash(string(r.Competition)), measured("competition"))
	fmt.Fprintf(w, "  Trend:         %s (%s)\n", orDash(string(r.Trend)), measured("trend"))

	s := r.SEOScores
	fmt.Fprintf(w, "  SEO scores:    overall %d, content %d, keywords %d, readability %d, technical %d\n",
		s.Overall, s.Content, s.Keywords, s.Readability, s.Technical)

	if len(r.Competitors) > 0 {
		fmt.Fprintln(w, "\nCompetitors (relevance 0-100):")
		for _, c := range r.Competitors {
			fmt.Fprintf(w, "  %3d  %s  %s\n", c.RelevanceScore, c.Domain, c.Title)
			if c.Reason != "" {
				fmt.Fprintf(w, "       %s\n", c.Reason)
			}
		}
	}

	printList(w, "Target keywords", r.TargetKeywords)
	printList(w, "Keywords", r.Keywords)
	printList(w, "Content suggestions", r.ContentSuggestions)
	printList(w, "Market insights", r.MarketInsights)
	printSignals(w, r.Signals)
}

func printList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", strings.TrimSpace(it))
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
