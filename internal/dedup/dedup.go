// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/idea-engine/pkg/types"
)

const defaultSimilarityThreshold = 80.0

// Result holds the deduplicated ideas plus drop counts.
type Result struct {
	Ideas []types.CanonicalIdea

	// Malformed counts postings excluded from dedup entirely (empty title).
	Malformed int

	// MergedAway counts postings folded into another idea.
	MergedAway int
}

// Deduplicate collapses normalized postings into canonical ideas. Postings
// are bucketed by fingerprint prefix so pairwise comparison stays local;
// within a bucket, any pair at or above the similarity threshold is joined
// in a union-find, so A~B and B~C merge A, B, and C even when A~C alone
// falls below the threshold. Malformed postings are excluded and logged to w.
func Deduplicate(postings []types.NormalizedPosting, cfg types.DedupConfig, w io.Writer) Result {
	threshold := cfg.SimilarityThreshold
	if threshold <= 0 {
		threshold = defaultSimilarityThreshold
	}

	// Drop malformed postings up front; they must never merge silently.
	var result Result
	valid := make([]types.NormalizedPosting, 0, len(postings))
	for _, p := range postings {
		if p.NormTitle == "" {
			result.Malformed++
			fmt.Fprintf(w, "dropping malformed posting from %s: %s (empty title)\n", p.Raw.Source, p.Raw.URL)
			continue
		}
		valid = append(valid, p)
	}

	// Coarse blocking by fingerprint prefix.
	buckets := make(map[string][]int)
	for i, p := range valid {
		key := bucketKey(p.Fingerprint, cfg.FingerprintPrefixLen)
		buckets[key] = append(buckets[key], i)
	}

	uf := newUnionFind(len(valid))
	for _, members := range buckets {
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				a, b := members[i], members[j]
				if Similarity(valid[a], valid[b], cfg.BodyPrefixLen) >= threshold {
					uf.union(a, b)
				}
			}
		}
	}

	groups := uf.groups()
	roots := make([]int, 0, len(groups))
	for root := range groups {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	for _, root := range roots {
		idea := buildIdea(valid, groups[root])
		result.Ideas = append(result.Ideas, idea)
		result.MergedAway += len(idea.Members) - 1
	}

	return result
}

// buildIdea assembles one CanonicalIdea from a merged group. Members keep
// discovery order; the primary is the member with the highest origin score,
// ties broken by earliest fetch time.
func buildIdea(postings []types.NormalizedPosting, group []int) types.CanonicalIdea {
	members := make([]types.NormalizedPosting, 0, len(group))
	for _, i := range group {
		members = append(members, postings[i])
	}

	primary := members[0]
	for _, m := range members[1:] {
		if m.Raw.OriginScore > primary.Raw.OriginScore {
			primary = m
			continue
		}
		if m.Raw.OriginScore == primary.Raw.OriginScore && m.Raw.FetchedAt.Before(primary.Raw.FetchedAt) {
			primary = m
		}
	}

	var sources []types.SourceName
	seen := make(map[types.SourceName]struct{})
	for _, m := range members {
		if _, ok := seen[m.Raw.Source]; ok {
			continue
		}
		seen[m.Raw.Source] = struct{}{}
		sources = append(sources, m.Raw.Source)
	}

	return types.CanonicalIdea{
		Primary: primary,
		Members: members,
		Sources: sources,
	}
}
