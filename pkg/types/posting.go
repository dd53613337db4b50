// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the idea-engine pipeline:
// postings as fetched from sources, canonical deduplicated ideas, scored
// ideas, notification events, and the configuration for each stage.
package types

import "time"

// SourceName identifies one of the known idea sources.
type SourceName string

const (
	SourceHackerNews   SourceName = "hackernews"
	SourceReddit       SourceName = "reddit"
	SourceProductHunt  SourceName = "producthunt"
	SourceIndieHackers SourceName = "indiehackers"
)

// RawPosting is one item as fetched from a source, before normalization.
// Immutable once created; produced by a source adapter.
type RawPosting struct {
	// SourceID is the stable per-source identifier (story ID, permalink slug).
	SourceID string `json:"source_id" yaml:"source_id"`

	// Source identifies which adapter produced this posting.
	Source SourceName `json:"source" yaml:"source"`

	// Title is the posting title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Body is the posting text. May be empty for link-only postings.
	Body string `json:"body" yaml:"body"`

	// URL is the external link to the original posting.
	URL string `json:"url" yaml:"url"`

	// OriginScore is the source-native popularity signal (upvotes, points).
	OriginScore int `json:"origin_score" yaml:"origin_score"`

	// FetchedAt records when the adapter retrieved this posting.
	FetchedAt time.Time `json:"fetched_at" yaml:"fetched_at"`
}

// Key returns the (source, url) identity used for storage upserts and
// notification markers.
func (p RawPosting) Key() IdeaKey {
	return IdeaKey{Source: p.Source, URL: p.URL}
}

// NormalizedPosting is a RawPosting with whitespace and HTML markup stripped,
// casing folded for matching, and a derived content fingerprint used as a
// fast pre-filter before pairwise similarity comparison. One-to-one with its
// RawPosting.
type NormalizedPosting struct {
	Raw RawPosting `json:"raw" yaml:"raw"`

	// NormTitle is the matching form of the title: lowercased, tags stripped,
	// whitespace collapsed.
	NormTitle string `json:"norm_title" yaml:"norm_title"`

	// NormBody is the matching form of the body.
	NormBody string `json:"norm_body" yaml:"norm_body"`

	// Fingerprint is a coarse content hash of NormTitle+NormBody. Postings
	// are bucketed by fingerprint prefix before similarity comparison.
	Fingerprint string `json:"fingerprint" yaml:"fingerprint"`
}

// IdeaKey identifies an idea across runs. Storage upserts, notification
// markers, and scoring-failure bookkeeping are all keyed on it.
type IdeaKey struct {
	Source SourceName `json:"source" yaml:"source"`
	URL    string     `json:"url" yaml:"url"`
}
