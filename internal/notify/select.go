// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package notify picks the ideas worth surfacing and delivers them to a
// Telegram chat.
package notify

import (
	"sort"

	"github.com/pdiddy/idea-engine/pkg/types"
)

const (
	defaultMinScore = 0.8
	defaultMaxCount = 5
)

// Select returns the ideas to notify: score strictly above the minimum,
// ordered by descending score, capped at the configured count. Ties keep
// their input order. The input slice is not modified.
func Select(scored []types.ScoredIdea, cfg types.NotifyConfig) []types.ScoredIdea {
	minScore := cfg.MinScore
	if minScore <= 0 {
		minScore = defaultMinScore
	}
	maxCount := cfg.MaxCount
	if maxCount <= 0 {
		maxCount = defaultMaxCount
	}

	picked := make([]types.ScoredIdea, 0, len(scored))
	for _, s := range scored {
		if s.Analysis.Score > minScore {
			picked = append(picked, s)
		}
	}

	sort.SliceStable(picked, func(i, j int) bool {
		return picked[i].Analysis.Score > picked[j].Analysis.Score
	})

	if len(picked) > maxCount {
		picked = picked[:maxCount]
	}
	return picked
}
