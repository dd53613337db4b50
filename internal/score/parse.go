// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// ParseError reports a model response that did not yield a valid analysis.
// Parse failures are retried once per idea; Final marks the retry budget as
// spent so the executor stops.
type ParseError struct {
	Reason string
	Final  bool
}

func (e *ParseError) Error() string { return "parsing model response: " + e.Reason }

// analysisWire is the JSON shape the model is asked to produce. Score is on
// the model's 0-100 scale; ParseAnalysis normalizes it.
type analysisWire struct {
	// Score is a pointer so an absent key is distinguishable from a
	// legitimate zero.
	Score           *float64 `json:"score"`
	Tags            []string `json:"tags"`
	Summary         string   `json:"summary"`
	Difficulty      string   `json:"difficulty"`
	MarketPotential string   `json:"market_potential"`
	Insight         string   `json:"insight"`
}

// ParseAnalysis extracts the JSON object from the model's free-form text
// response and validates it. The object is located between the first "{"
// and the last "}" so surrounding prose is tolerated. A missing object,
// missing keys, an unknown enum value, or an out-of-range score fails the
// parse; there is no default score.
func ParseAnalysis(raw string) (types.Analysis, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return types.Analysis{}, &ParseError{Reason: "no JSON object in response"}
	}

	var wire analysisWire
	if err := json.Unmarshal([]byte(raw[start:end+1]), &wire); err != nil {
		return types.Analysis{}, &ParseError{Reason: err.Error()}
	}

	if wire.Score == nil {
		return types.Analysis{}, &ParseError{Reason: "missing score"}
	}
	if *wire.Score < 0 || *wire.Score > 100 {
		return types.Analysis{}, &ParseError{Reason: fmt.Sprintf("score %g out of range [0,100]", *wire.Score)}
	}
	if wire.Summary == "" {
		return types.Analysis{}, &ParseError{Reason: "missing summary"}
	}

	difficulty, err := parseDifficulty(wire.Difficulty)
	if err != nil {
		return types.Analysis{}, err
	}
	market, err := parseMarketPotential(wire.MarketPotential)
	if err != nil {
		return types.Analysis{}, err
	}

	tags := wire.Tags
	if len(tags) > 3 {
		tags = tags[:3]
	}

	return types.Analysis{
		Score:           *wire.Score / 100,
		Tags:            tags,
		Summary:         wire.Summary,
		Difficulty:      difficulty,
		MarketPotential: market,
		Insight:         wire.Insight,
	}, nil
}

func parseDifficulty(s string) (types.Difficulty, error) {
	switch types.Difficulty(strings.ToLower(s)) {
	case types.DifficultyLow:
		return types.DifficultyLow, nil
	case types.DifficultyMedium:
		return types.DifficultyMedium, nil
	case types.DifficultyHigh:
		return types.DifficultyHigh, nil
	}
	return "", &ParseError{Reason: fmt.Sprintf("invalid difficulty %q", s)}
}

func parseMarketPotential(s string) (types.MarketPotential, error) {
	switch strings.ToLower(s) {
	// Some models answer "small" for the smallest bucket; accept it as niche.
	case "niche", "small":
		return types.MarketNiche, nil
	case "moderate":
		return types.MarketModerate, nil
	case "large":
		return types.MarketLarge, nil
	}
	return "", &ParseError{Reason: fmt.Sprintf("invalid market_potential %q", s)}
}
