// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "idea-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// RetryConfig holds the retry and rate-limit policy for a network-bound
// operation.
type RetryConfig struct {
	// MinInterval is the minimum spacing between consecutive operations
	// issued through one executor.
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`

	// MaxAttempts bounds the total attempts per operation (default 3).
	MaxAttempts int `json:"max_attempts" yaml:"max_attempts"`

	// BaseBackoff is the wait before the first retry (default 1s).
	BaseBackoff time.Duration `json:"base_backoff" yaml:"base_backoff"`

	// BackoffMultiplier scales the wait on every further retry (default 2.0).
	BackoffMultiplier float64 `json:"backoff_multiplier" yaml:"backoff_multiplier"`

	// JitterFraction randomizes each wait by ±fraction (default 0.2).
	JitterFraction float64 `json:"jitter_fraction" yaml:"jitter_fraction"`
}

// SourceConfig holds settings for one source adapter.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// Enabled controls whether the adapter runs.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MaxPages bounds pagination (default 2).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// MinOriginScore drops postings below this source-native score.
	MinOriginScore int `json:"min_origin_score" yaml:"min_origin_score"`

	// Retry is the per-source rate-limit and retry policy.
	Retry RetryConfig `json:"retry" yaml:"retry"`

	// Subreddits lists the subreddits the Reddit adapter reads.
	Subreddits []string `json:"subreddits,omitempty" yaml:"subreddits,omitempty"`

	// TimeFilter selects the Reddit listing window (day, week, month).
	TimeFilter string `json:"time_filter,omitempty" yaml:"time_filter,omitempty"`

	// FeedURL is the feed endpoint for the RSS-backed adapter.
	FeedURL string `json:"feed_url,omitempty" yaml:"feed_url,omitempty"`
}

// SourcesConfig groups the per-source adapter settings.
type SourcesConfig struct {
	HackerNews   SourceConfig `json:"hackernews" yaml:"hackernews"`
	Reddit       SourceConfig `json:"reddit" yaml:"reddit"`
	ProductHunt  SourceConfig `json:"producthunt" yaml:"producthunt"`
	IndieHackers SourceConfig `json:"indiehackers" yaml:"indiehackers"`
}

// DedupConfig holds settings for near-duplicate detection.
type DedupConfig struct {
	// SimilarityThreshold is the merge threshold on a 0-100 scale (default 80).
	SimilarityThreshold float64 `json:"similarity_threshold" yaml:"similarity_threshold"`

	// FingerprintPrefixLen is the number of fingerprint characters used for
	// coarse blocking before pairwise comparison (default 8).
	FingerprintPrefixLen int `json:"fingerprint_prefix_len" yaml:"fingerprint_prefix_len"`

	// BodyPrefixLen bounds how much body text participates in similarity
	// comparison (default 200 runes).
	BodyPrefixLen int `json:"body_prefix_len" yaml:"body_prefix_len"`
}

// ScoringConfig holds settings for the model-backed batch scorer.
type ScoringConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the scoring backend endpoint (default http://localhost:11434).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the model identifier (e.g. "mistral:latest").
	Model string `json:"model" yaml:"model"`

	// Temperature is the sampling temperature (default 0.3).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens bounds the response length (default 500).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// BatchSize is the number of ideas scored per batch (default 10).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// Concurrency bounds the in-flight requests within one batch (default 1;
	// batches themselves always run sequentially).
	Concurrency int `json:"concurrency" yaml:"concurrency"`

	// InterBatchPause is the wait between consecutive batches (default 1s).
	InterBatchPause time.Duration `json:"inter_batch_pause" yaml:"inter_batch_pause"`

	// MaxFailedRuns is how many consecutive runs an idea may fail scoring
	// before it is skipped permanently (default 3).
	MaxFailedRuns int `json:"max_failed_runs" yaml:"max_failed_runs"`

	// Retry is the per-request retry policy against the backend.
	Retry RetryConfig `json:"retry" yaml:"retry"`
}

// NotifyConfig holds settings for notification selection and delivery.
type NotifyConfig struct {
	// Enabled controls whether notifications are sent at all.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// MinScore is the selection threshold on the normalized score (default 0.8).
	MinScore float64 `json:"min_score" yaml:"min_score"`

	// MaxCount bounds the notifications per run (default 5).
	MaxCount int `json:"max_count" yaml:"max_count"`
}

// StoreConfig holds settings for the persistence layer.
type StoreConfig struct {
	// DataDir is the base directory for the database, snapshots, and run
	// summaries (default "data").
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// PipelineConfig groups all stage configurations for one end-to-end run.
type PipelineConfig struct {
	Sources SourcesConfig `json:"sources" yaml:"sources"`
	Dedup   DedupConfig   `json:"dedup" yaml:"dedup"`
	Scoring ScoringConfig `json:"scoring" yaml:"scoring"`
	Notify  NotifyConfig  `json:"notify" yaml:"notify"`
	Store   StoreConfig   `json:"store" yaml:"store"`

	// RunDeadline bounds the whole run; in-flight fetches are cancelled on
	// expiry and already-collected results still flow downstream (default 10m).
	RunDeadline time.Duration `json:"run_deadline" yaml:"run_deadline"`
}
