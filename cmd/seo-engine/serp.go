// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/seo-engine/internal/serp"
)

var serpCmd = &cobra.Command{
	Use:   "serp",
	Short: "Run one web search and print the parsed results",
	Long: `Serp fetches one HTML results page for the query and prints the
de-duplicated results with their destination URLs. Redirect wrappers
are unwrapped and ads are dropped.`,
	RunE: runSerp,
}

func init() {
	serpCmd.Flags().String("query", "", "search text (required)")
	serpCmd.Flags().String("region", "", "location used to pick the search region, e.g. \"Germany\"")
	serpCmd.Flags().Int("max-results", 10, "maximum number of results to return")
	serpCmd.Flags().Bool("json", false, "output results as JSON")
	_ = serpCmd.MarkFlagRequired("query")

	rootCmd.AddCommand(serpCmd)
}

func runSerp(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	region, _ := cmd.Flags().GetString("region")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	backend := serp.NewDuckDuckGoBackend(&http.Client{Timeout: cfg.Search.Timeout}, cfg.Search)
	results, err := backend.Search(cmd.Context(), serp.Query{
		Text:   query,
		Region: serp.RegionForLocation(region),
		Limit:  maxResults,
	}, cfg.Search)
	if err != nil {
		return err
	}

	if asJSON {
		return serp.FormatJSON(results, os.Stdout)
	}
	serp.FormatTable(results, os.Stdout)
	return nil
}
