// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Difficulty classifies the implementation effort for an idea.
type Difficulty string

const (
	DifficultyLow    Difficulty = "low"
	DifficultyMedium Difficulty = "medium"
	DifficultyHigh   Difficulty = "high"
)

// MarketPotential classifies the addressable market size for an idea.
type MarketPotential string

const (
	MarketNiche    MarketPotential = "niche"
	MarketModerate MarketPotential = "moderate"
	MarketLarge    MarketPotential = "large"
)

// CanonicalIdea is the deduplicated unit: one or more normalized postings
// judged to describe the same business idea, merged across sources.
type CanonicalIdea struct {
	// Primary is the contributor with the highest origin score (ties broken
	// by earliest fetch time); its title, body, and URL represent the idea.
	Primary NormalizedPosting `json:"primary" yaml:"primary"`

	// Members lists every contributing posting in discovery order,
	// including Primary.
	Members []NormalizedPosting `json:"members" yaml:"members"`

	// Sources is the set of distinct source names among the members,
	// in first-seen order. Multi-source ideas carry a mild quality signal.
	Sources []SourceName `json:"sources" yaml:"sources"`
}

// Key returns the storage identity of the idea, taken from its primary posting.
func (c CanonicalIdea) Key() IdeaKey {
	return c.Primary.Raw.Key()
}

// Analysis holds the model's annotation of one idea.
type Analysis struct {
	// Score is the model's assessment normalized to [0.0, 1.0].
	Score float64 `json:"score" yaml:"score"`

	// Tags are up to three topic labels describing the idea.
	Tags []string `json:"tags" yaml:"tags"`

	// Summary is a one- or two-sentence synthesis of the idea.
	Summary string `json:"summary" yaml:"summary"`

	// Difficulty classifies implementation effort: low, medium, or high.
	Difficulty Difficulty `json:"difficulty" yaml:"difficulty"`

	// MarketPotential classifies market size: niche, moderate, or large.
	MarketPotential MarketPotential `json:"market_potential" yaml:"market_potential"`

	// Insight is the model's commentary on the business potential.
	Insight string `json:"insight,omitempty" yaml:"insight,omitempty"`
}

// ScoredIdea is a CanonicalIdea plus its model annotation. Created once by
// the batch scorer and never mutated; re-scoring produces a new value, which
// keeps storage upserts idempotent on the idea key.
type ScoredIdea struct {
	Idea CanonicalIdea `json:"idea" yaml:"idea"`

	Analysis Analysis `json:"analysis" yaml:"analysis"`

	// ModelRawResponse preserves the backend's full text response for audit.
	ModelRawResponse string `json:"model_raw_response,omitempty" yaml:"model_raw_response,omitempty"`

	// ScoredAt records when the annotation was produced.
	ScoredAt time.Time `json:"scored_at" yaml:"scored_at"`
}

// Key returns the storage identity of the scored idea.
func (s ScoredIdea) Key() IdeaKey {
	return s.Idea.Key()
}

// NotificationEvent is a scored idea selected for alerting. Delivery is
// at-least-once: the same idea may generate more than one event across runs,
// and the notification channel must tolerate duplicates.
type NotificationEvent struct {
	Idea ScoredIdea `json:"idea" yaml:"idea"`

	// NotifiedAt records when the event was emitted.
	NotifiedAt time.Time `json:"notified_at" yaml:"notified_at"`
}
