// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/idea-engine/pkg/types"
)

func init() {
	viper.SetDefault("store.data_dir", "data")
	viper.SetDefault("run_deadline", "10m")

	viper.SetDefault("sources.hackernews.enabled", true)
	viper.SetDefault("sources.reddit.enabled", true)
	viper.SetDefault("sources.producthunt.enabled", true)
	viper.SetDefault("sources.indiehackers.enabled", true)
	viper.SetDefault("sources.hackernews.min_origin_score", 5)
	viper.SetDefault("sources.reddit.min_origin_score", 10)
	viper.SetDefault("sources.reddit.time_filter", "week")
	viper.SetDefault("sources.producthunt.min_origin_score", 20)

	viper.SetDefault("scoring.base_url", "http://localhost:11434")
	viper.SetDefault("scoring.model", "mistral:latest")
	viper.SetDefault("scoring.temperature", 0.3)
	viper.SetDefault("scoring.max_tokens", 500)
	viper.SetDefault("scoring.batch_size", 10)
	viper.SetDefault("scoring.inter_batch_pause", "1s")
	viper.SetDefault("scoring.max_failed_runs", 3)

	viper.SetDefault("notify.enabled", false)
	viper.SetDefault("notify.min_score", 0.8)
	viper.SetDefault("notify.max_count", 5)
}

// pipelineConfig assembles the run configuration from viper, which merges
// the YAML config file, IDEA_ENGINE_* environment variables, and defaults.
func pipelineConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Sources: types.SourcesConfig{
			HackerNews:   sourceConfig("sources.hackernews"),
			Reddit:       sourceConfig("sources.reddit"),
			ProductHunt:  sourceConfig("sources.producthunt"),
			IndieHackers: sourceConfig("sources.indiehackers"),
		},
		Dedup: types.DedupConfig{
			SimilarityThreshold:  viper.GetFloat64("dedup.similarity_threshold"),
			FingerprintPrefixLen: viper.GetInt("dedup.fingerprint_prefix_len"),
			BodyPrefixLen:        viper.GetInt("dedup.body_prefix_len"),
		},
		Scoring: types.ScoringConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("scoring.timeout"),
				UserAgent: viper.GetString("scoring.user_agent"),
			},
			BaseURL:         viper.GetString("scoring.base_url"),
			Model:           viper.GetString("scoring.model"),
			Temperature:     viper.GetFloat64("scoring.temperature"),
			MaxTokens:       viper.GetInt("scoring.max_tokens"),
			BatchSize:       viper.GetInt("scoring.batch_size"),
			Concurrency:     viper.GetInt("scoring.concurrency"),
			InterBatchPause: viper.GetDuration("scoring.inter_batch_pause"),
			MaxFailedRuns:   viper.GetInt("scoring.max_failed_runs"),
			Retry:           retryConfig("scoring.retry"),
		},
		Notify: types.NotifyConfig{
			Enabled:  viper.GetBool("notify.enabled"),
			MinScore: viper.GetFloat64("notify.min_score"),
			MaxCount: viper.GetInt("notify.max_count"),
		},
		Store: types.StoreConfig{
			DataDir: viper.GetString("store.data_dir"),
		},
		RunDeadline: viper.GetDuration("run_deadline"),
	}
}

func sourceConfig(key string) types.SourceConfig {
	cfg := types.SourceConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration(key + ".timeout"),
			UserAgent: viper.GetString(key + ".user_agent"),
		},
		Enabled:        viper.GetBool(key + ".enabled"),
		MaxPages:       viper.GetInt(key + ".max_pages"),
		MinOriginScore: viper.GetInt(key + ".min_origin_score"),
		Retry:          retryConfig(key + ".retry"),
		Subreddits:     viper.GetStringSlice(key + ".subreddits"),
		TimeFilter:     viper.GetString(key + ".time_filter"),
		FeedURL:        viper.GetString(key + ".feed_url"),
	}
	return cfg
}

func retryConfig(key string) types.RetryConfig {
	cfg := types.RetryConfig{
		MinInterval:       viper.GetDuration(key + ".min_interval"),
		MaxAttempts:       viper.GetInt(key + ".max_attempts"),
		BaseBackoff:       viper.GetDuration(key + ".base_backoff"),
		BackoffMultiplier: viper.GetFloat64(key + ".backoff_multiplier"),
		JitterFraction:    viper.GetFloat64(key + ".jitter_fraction"),
	}
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = time.Second
	}
	return cfg
}
