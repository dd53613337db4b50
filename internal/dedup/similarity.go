// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"strings"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// defaultBodyPrefixLen bounds how much body text enters the comparison.
const defaultBodyPrefixLen = 200

// Similarity scores two normalized postings on a 0-100 scale. Titles carry
// 70% of the weight and a bounded body prefix 30%; when either posting has
// no body the comparison is title-only. Similarity is symmetric and strictly
// pairwise; transitive grouping happens in the deduplicator.
func Similarity(a, b types.NormalizedPosting, bodyPrefixLen int) float64 {
	titleScore := tokenRatio(a.NormTitle, b.NormTitle)

	if bodyPrefixLen <= 0 {
		bodyPrefixLen = defaultBodyPrefixLen
	}
	bodyA := runePrefix(a.NormBody, bodyPrefixLen)
	bodyB := runePrefix(b.NormBody, bodyPrefixLen)
	if bodyA == "" || bodyB == "" {
		return titleScore
	}

	return 0.7*titleScore + 0.3*tokenRatio(bodyA, bodyB)
}

// tokenRatio is the Sørensen–Dice coefficient over token multisets,
// scaled to 0-100.
func tokenRatio(a, b string) float64 {
	ta := strings.Fields(a)
	tb := strings.Fields(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 100
	}
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	counts := make(map[string]int, len(ta))
	for _, tok := range ta {
		counts[tok]++
	}
	common := 0
	for _, tok := range tb {
		if counts[tok] > 0 {
			counts[tok]--
			common++
		}
	}

	return 200 * float64(common) / float64(len(ta)+len(tb))
}

func runePrefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
