// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/idea-engine/internal/notify"
	"github.com/pdiddy/idea-engine/internal/pipeline"
	"github.com/pdiddy/idea-engine/internal/score"
	"github.com/pdiddy/idea-engine/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the full ingestion and analysis pipeline",
	Long: `Run fetches postings from every enabled source in parallel, deduplicates
them into canonical ideas, scores each idea with the configured model,
persists the results, and notifies the highest-scoring new ideas.

A machine-readable run summary is written under the data directory. Failing
sources are reported and skipped; the run only aborts when every source
fails.`,
	RunE: runPipeline,
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()

	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Store.DataDir = dataDir
	}
	if noNotify, _ := cmd.Flags().GetBool("no-notify"); noNotify {
		cfg.Notify.Enabled = false
	}

	var sender notify.Sender
	if cfg.Notify.Enabled {
		token := secretDefault("telegram-bot-token", "")
		chatID := secretDefault("telegram-chat-id", "")
		if token == "" || chatID == "" {
			fmt.Fprintln(os.Stderr, "warning: telegram credentials missing, notifications disabled")
			cfg.Notify.Enabled = false
		} else {
			sender = notify.NewTelegramSender(token, chatID)
		}
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	scoringTimeout := cfg.Scoring.Timeout
	if scoringTimeout <= 0 {
		scoringTimeout = 2 * time.Minute
	}
	backend := score.NewOllamaBackend(&http.Client{Timeout: scoringTimeout}, cfg.Scoring)
	scorer := score.New(backend, cfg.Scoring)
	adapters := pipeline.NewAdapters(cfg.Sources)

	o := pipeline.New(cfg, adapters, scorer, sender, st)
	summary, err := o.Run(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		fmt.Fprintln(os.Stderr, "run finished with failures; see run summary")
	}
	return nil
}

func init() {
	runCmd.Flags().String("data-dir", "", "override the data directory")
	runCmd.Flags().Bool("no-notify", false, "skip notification delivery for this run")

	rootCmd.AddCommand(runCmd)
}
