// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/idea-engine/internal/store"
	"github.com/pdiddy/idea-engine/pkg/types"
)

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "List the highest-scoring stored ideas",
	Long: `Top lists stored ideas ordered by descending score, optionally filtered
by minimum score or by source.`,
	RunE: runTop,
}

func runTop(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Store.DataDir = dataDir
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	minScore, _ := cmd.Flags().GetFloat64("min-score")
	src, _ := cmd.Flags().GetString("source")
	limit, _ := cmd.Flags().GetInt("limit")

	ideas, err := st.TopIdeas(context.Background(), store.TopQuery{
		MinScore: minScore,
		Source:   types.SourceName(src),
		Limit:    limit,
	})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ideas)
	}

	if len(ideas) == 0 {
		fmt.Println("No ideas found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-50s  %-12s  %-8s  %-8s  %s\n",
		"Score", "Title", "Source", "Diff", "Market", "Notified")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))

	for _, idea := range ideas {
		title := idea.Title
		if len(title) > 50 {
			title = title[:47] + "..."
		}
		notified := ""
		if idea.Notified {
			notified = "yes"
		}
		fmt.Fprintf(os.Stdout, "%-5.2f  %-50s  %-12s  %-8s  %-8s  %s\n",
			idea.Score, title, idea.Source, idea.Difficulty, idea.MarketPotential, notified)
	}

	fmt.Fprintf(os.Stdout, "\n%d ideas\n", len(ideas))
	return nil
}

func init() {
	topCmd.Flags().Float64("min-score", 0, "minimum normalized score (0.0-1.0)")
	topCmd.Flags().String("source", "", "filter by source: hackernews, reddit, producthunt, indiehackers")
	topCmd.Flags().Int("limit", 20, "maximum ideas to list")
	topCmd.Flags().String("data-dir", "", "override the data directory")
	topCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(topCmd)
}
