// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pdiddy/idea-engine/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dashboard snapshot from the stored ideas",
	Long: `Export rewrites the dashboard feed (ideas.json and its YAML dual) under
the data directory's export/ folder from the current database contents.`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig()
	if dataDir, _ := cmd.Flags().GetString("data-dir"); dataDir != "" {
		cfg.Store.DataDir = dataDir
	}

	st, err := store.NewStore(cfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.ExportSnapshot(context.Background()); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", filepath.Join(cfg.Store.DataDir, "export"))
	return nil
}

func init() {
	exportCmd.Flags().String("data-dir", "", "override the data directory")

	rootCmd.AddCommand(exportCmd)
}
