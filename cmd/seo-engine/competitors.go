// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var competitorsCmd = &cobra.Command{
	Use:   "competitors",
	Short: "Search, scrape, and aggregate competitor pages without AI scoring",
	Long: `Competitors searches for the topic, fetches the top-ranking pages one at a
time with a randomized delay, and aggregates their headings and keywords
into common headings, a suggested outline, and content gaps. Pages that
fail are listed but do not stop the run. Press Ctrl-C to stop scraping
and report what was collected so far. Results are cached for 15 minutes.`,
	RunE: runCompetitors,
}

func init() {
	competitorsCmd.Flags().String("topic", "", "topic to research (required)")
	competitorsCmd.Flags().String("location", "", "target location, e.g. \"Austin, USA\"")
	competitorsCmd.Flags().Int("top-n", 0, "number of competitor pages to fetch (default 5)")
	competitorsCmd.Flags().Bool("json", false, "output the report as JSON")
	_ = competitorsCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(competitorsCmd)
}

func runCompetitors(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	location, _ := cmd.Flags().GetString("location")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if n, _ := cmd.Flags().GetInt("top-n"); n > 0 {
		cfg.Search.TopN = n
	}

	o, store, err := buildOrchestrator(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	report, err := o.Run(ctx, topic, location)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(os.Stdout, report)
	}
	printReport(os.Stdout, report)
	if report.Partial {
		fmt.Fprintln(os.Stderr, "\nInterrupted: report covers only the pages fetched before cancellation.")
	}
	return nil
}
