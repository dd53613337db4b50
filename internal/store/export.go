// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.yaml.in/yaml/v3"
)

const exportDir = "export"

// Snapshot is the dashboard feed written after each run.
type Snapshot struct {
	GeneratedAt string       `json:"generated_at" yaml:"generated_at"`
	Count       int          `json:"count" yaml:"count"`
	Ideas       []StoredIdea `json:"ideas" yaml:"ideas"`
}

// ExportSnapshot writes every stored idea, best first, to
// dataDir/export/ideas.json and a YAML dual alongside it.
func (s *Store) ExportSnapshot(ctx context.Context) error {
	ideas, err := s.TopIdeas(ctx, TopQuery{})
	if err != nil {
		return fmt.Errorf("loading ideas for export: %w", err)
	}

	snap := Snapshot{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Count:       len(ideas),
		Ideas:       ideas,
	}

	dir := filepath.Join(s.dataDir, exportDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating export directory: %w", err)
	}

	jsonData, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ideas.json"), jsonData, 0o644); err != nil {
		return fmt.Errorf("writing ideas.json: %w", err)
	}

	yamlData, err := yaml.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshaling snapshot YAML: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "ideas.yaml"), yamlData, 0o644); err != nil {
		return fmt.Errorf("writing ideas.yaml: %w", err)
	}

	return nil
}
