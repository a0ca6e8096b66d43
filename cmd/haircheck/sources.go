package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/haircheck/internal/sources"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources [summary]",
	Short: "Rank publication venues relevant to a case summary",
	Long: `Sources runs the venue-ranking pipeline directly: extracts keywords from
the summary, queries the OpenAlex works API, scores every returned work
against the summary, and prints the ranked venues as JSON.`,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().String("sort-by", "", "venue ordering: relevance (default) or count")

	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide a case summary to rank venues for")
	}
	summary := strings.Join(args, " ")

	sortBy, _ := cmd.Flags().GetString("sort-by")
	key, err := sources.ParseSortKey(sortBy)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	result, err := newFinder(cfg.Sources).Find(context.Background(), summary, key)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
