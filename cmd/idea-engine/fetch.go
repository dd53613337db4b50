// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/idea-engine/internal/pipeline"
	"github.com/pdiddy/idea-engine/internal/source"
	"github.com/pdiddy/idea-engine/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [source]",
	Short: "Fetch postings from a single source",
	Long: `Fetch runs one source adapter and prints the raw postings it returns.
Sources: hackernews, reddit, producthunt, indiehackers. Useful for
inspecting a source's output without running the full pipeline.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	var adapter source.Adapter
	switch types.SourceName(args[0]) {
	case types.SourceHackerNews:
		adapter = source.NewHackerNews(pipeline.NewHTTPClient(cfg.Sources.HackerNews.Timeout), cfg.Sources.HackerNews)
	case types.SourceReddit:
		adapter = source.NewReddit(pipeline.NewHTTPClient(cfg.Sources.Reddit.Timeout), cfg.Sources.Reddit)
	case types.SourceProductHunt:
		adapter = source.NewProductHunt(pipeline.NewHTTPClient(cfg.Sources.ProductHunt.Timeout), cfg.Sources.ProductHunt)
	case types.SourceIndieHackers:
		adapter = source.NewIndieHackers(pipeline.NewHTTPClient(cfg.Sources.IndieHackers.Timeout), cfg.Sources.IndieHackers)
	default:
		return fmt.Errorf("unknown source %q: use hackernews, reddit, producthunt, or indiehackers", args[0])
	}

	outcome := adapter.Fetch(context.Background())
	if outcome.Err != nil && !outcome.Partial {
		return outcome.Err
	}
	if outcome.Err != nil {
		fmt.Fprintf(os.Stderr, "warning: partial fetch: %v\n", outcome.Err)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(outcome.Postings)
	}

	for _, p := range outcome.Postings {
		fmt.Fprintf(os.Stdout, "%4d  %-70s  %s\n", p.OriginScore, p.Title, p.URL)
	}
	fmt.Fprintf(os.Stdout, "\n%d postings from %s\n", len(outcome.Postings), adapter.Name())
	return nil
}

func init() {
	fetchCmd.Flags().Bool("json", false, "output postings as JSON")

	rootCmd.AddCommand(fetchCmd)
}
