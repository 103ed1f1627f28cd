// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the full competitor and content analysis for a topic",
	Long: `Analyze searches for the topic, scrapes the top competitor pages, scores
each competitor's relevance with a language model, drafts the narrative
sections, and overlays measured volume, competition, and trend when a
measurements file is configured. Results are cached for 24 hours.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("topic", "", "topic to analyze (required)")
	analyzeCmd.Flags().String("location", "", "target location, e.g. \"Austin, USA\"")
	analyzeCmd.Flags().Bool("json", false, "output the analysis as JSON")
	analyzeCmd.Flags().Bool("yaml", false, "output the analysis as YAML")
	analyzeCmd.Flags().String("measurements", "", "YAML file of measured volume, competition, and trend")
	_ = analyzeCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	location, _ := cmd.Flags().GetString("location")
	asJSON, _ := cmd.Flags().GetBool("json")
	asYAML, _ := cmd.Flags().GetBool("yaml")
	if asJSON && asYAML {
		return fmt.Errorf("--json and --yaml are mutually exclusive")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if path, _ := cmd.Flags().GetString("measurements"); path != "" {
		cfg.MeasurementsFile = path
	}

	analyzer, store, err := buildAnalyzer(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result, err := analyzer.PerformAnalysis(ctx, topic, location)
	if err != nil {
		return err
	}

	switch {
	case asJSON:
		return writeJSON(os.Stdout, result)
	case asYAML:
		return writeYAML(os.Stdout, result)
	}
	printAnalysis(os.Stdout, result)
	return nil
}
