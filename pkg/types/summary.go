// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// SourceSummary holds the per-source counts for one run.
type SourceSummary struct {
	// Fetched is the number of postings the adapter returned.
	Fetched int `json:"fetched" yaml:"fetched"`

	// DeduplicatedAway counts this source's postings that were merged into
	// another idea.
	DeduplicatedAway int `json:"deduplicated_away" yaml:"deduplicated_away"`

	// Scored counts ideas whose primary posting came from this source and
	// were successfully annotated.
	Scored int `json:"scored" yaml:"scored"`

	// ScoringFailed counts ideas whose primary posting came from this source
	// and could not be annotated this run.
	ScoringFailed int `json:"scoring_failed" yaml:"scoring_failed"`

	// PartialFailure is true when the adapter exhausted its retries mid-way
	// and returned only the postings collected up to that point.
	PartialFailure bool `json:"partial_failure" yaml:"partial_failure"`

	// Error records the adapter's failure message, if any. A permanent
	// failure sets Error without PartialFailure.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunSummary is the machine-readable outcome of one pipeline run, suitable
// for operational alerting. Every dropped item is counted somewhere; the
// summary is emitted even when every source partially failed.
type RunSummary struct {
	// StartedAt and FinishedAt bracket the run.
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`

	// Sources maps each source name to its fetch outcome.
	Sources map[SourceName]SourceSummary `json:"sources" yaml:"sources"`

	// Malformed counts postings excluded from dedup (empty title).
	Malformed int `json:"malformed" yaml:"malformed"`

	// DeduplicatedAway counts postings merged into another idea.
	DeduplicatedAway int `json:"deduplicated_away" yaml:"deduplicated_away"`

	// Scored counts ideas successfully annotated by the model.
	Scored int `json:"scored" yaml:"scored"`

	// ScoringFailed counts ideas the model could not annotate this run.
	ScoringFailed int `json:"scoring_failed" yaml:"scoring_failed"`

	// ScoringSkipped counts ideas skipped for exceeding the failed-run budget.
	ScoringSkipped int `json:"scoring_skipped" yaml:"scoring_skipped"`

	// StoreErrors counts ideas whose persistence write failed.
	StoreErrors int `json:"store_errors" yaml:"store_errors"`

	// Notified counts notification events emitted.
	Notified int `json:"notified" yaml:"notified"`
}

// TotalFetched sums the fetched counts across all sources.
func (s RunSummary) TotalFetched() int {
	total := 0
	for _, src := range s.Sources {
		total += src.Fetched
	}
	return total
}

// HasFailures reports whether any source failed or any idea was dropped.
func (s RunSummary) HasFailures() bool {
	if s.ScoringFailed > 0 || s.StoreErrors > 0 {
		return true
	}
	for _, src := range s.Sources {
		if src.PartialFailure || src.Error != "" {
			return true
		}
	}
	return false
}
