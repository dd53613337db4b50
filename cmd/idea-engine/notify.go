// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/idea-engine/internal/notify"
	"github.com/pdiddy/idea-engine/internal/store"
	"github.com/pdiddy/idea-engine/pkg/types"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Deliver pending notifications for stored ideas",
	Long: `Notify selects the highest-scoring stored ideas that have not been
notified yet and delivers them to the configured Telegram chat. Useful
after a run executed with --no-notify, or to re-drive delivery after a
Telegram outage.`,
	RunE: runNotify,
}

func runNotify(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Store.DataDir = dataDir
	}

	token := secretDefault("telegram-bot-token", "")
	chatID := secretDefault("telegram-chat-id", "")
	if token == "" || chatID == "" {
		return fmt.Errorf("telegram credentials missing: add telegram-bot-token and telegram-chat-id to .secrets/")
	}
	sender := notify.NewTelegramSender(token, chatID)

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := context.Background()

	stored, err := st.TopIdeas(ctx, store.TopQuery{MinScore: cfg.Notify.MinScore})
	if err != nil {
		return err
	}

	candidates := make([]types.ScoredIdea, 0, len(stored))
	for _, rec := range stored {
		if rec.Notified {
			continue
		}
		candidates = append(candidates, storedToScored(rec))
	}

	selected := notify.Select(candidates, cfg.Notify)
	if len(selected) == 0 {
		fmt.Println("Nothing to notify.")
		return nil
	}

	events := notify.SendAll(ctx, sender, selected, os.Stdout)
	for _, ev := range events {
		if err := st.MarkNotified(ctx, ev.Idea.Key(), ev.NotifiedAt); err != nil {
			fmt.Fprintf(os.Stderr, "warning: marking notified %s: %v\n", ev.Idea.Key().URL, err)
		}
	}

	fmt.Printf("\nnotified %d of %d candidates\n", len(events), len(selected))
	return nil
}

// storedToScored rebuilds the scored-idea shape the notifier renders from a
// persisted row.
func storedToScored(rec store.StoredIdea) types.ScoredIdea {
	p := types.NormalizedPosting{
		Raw: types.RawPosting{
			Source:      rec.Source,
			Title:       rec.Title,
			URL:         rec.URL,
			OriginScore: rec.OriginScore,
		},
	}
	return types.ScoredIdea{
		Idea: types.CanonicalIdea{
			Primary: p,
			Members: []types.NormalizedPosting{p},
			Sources: rec.Sources,
		},
		Analysis: types.Analysis{
			Score:           rec.Score,
			Tags:            rec.Tags,
			Summary:         rec.Summary,
			Difficulty:      rec.Difficulty,
			MarketPotential: rec.MarketPotential,
			Insight:         rec.Insight,
		},
	}
}

func init() {
	notifyCmd.Flags().String("data-dir", "", "override the data directory")

	rootCmd.AddCommand(notifyCmd)
}
