// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup collapses near-identical postings from different sources
// into canonical ideas. Postings are bucketed by a coarse fingerprint prefix
// first, then compared pairwise within a bucket, and merged transitively via
// union-find.
package dedup

import (
	"crypto/sha256"
	"fmt"
	"html"
	"sort"
	"strings"
	"unicode"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// blockTokenCount is how many of the longest title tokens form the leading,
// locality-sensitive part of the fingerprint. Near-identical titles share
// their longest tokens, so they land in the same blocking bucket.
const blockTokenCount = 4

// Normalize strips markup and folds casing so postings from different
// sources compare cleanly, and derives the content fingerprint.
func Normalize(raw types.RawPosting) types.NormalizedPosting {
	title := normalizeText(raw.Title)
	body := normalizeText(raw.Body)

	return types.NormalizedPosting{
		Raw:         raw,
		NormTitle:   title,
		NormBody:    body,
		Fingerprint: fingerprint(title, body),
	}
}

// NormalizeAll maps every raw posting to its normalized form, preserving order.
func NormalizeAll(raw []types.RawPosting) []types.NormalizedPosting {
	out := make([]types.NormalizedPosting, len(raw))
	for i, p := range raw {
		out[i] = Normalize(p)
	}
	return out
}

// normalizeText lowercases, strips HTML tags and entities, drops
// punctuation, and collapses whitespace.
func normalizeText(s string) string {
	s = stripTags(html.UnescapeString(s))

	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// stripTags removes anything between < and >.
func stripTags(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
			b.WriteRune(' ')
		case r == '>':
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// fingerprint derives the coarse content hash: a blocking key from the
// longest title tokens, then a digest of the full normalized content. The
// prefix is locality-sensitive (shared by near-identical titles) while the
// tail distinguishes full content.
func fingerprint(title, body string) string {
	return blockKey(title) + ":" + contentDigest(title, body)
}

// blockKey joins the longest title tokens in sorted order.
func blockKey(title string) string {
	tokens := strings.Fields(title)
	sort.SliceStable(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	if len(tokens) > blockTokenCount {
		tokens = tokens[:blockTokenCount]
	}
	sort.Strings(tokens)
	return strings.Join(tokens, "-")
}

// contentDigest is the first 12 hex characters of SHA-256 over the sorted
// unique tokens of title+body.
func contentDigest(title, body string) string {
	tokens := strings.Fields(title + " " + body)
	sort.Strings(tokens)
	uniq := tokens[:0]
	prev := ""
	for i, tok := range tokens {
		if i == 0 || tok != prev {
			uniq = append(uniq, tok)
		}
		prev = tok
	}

	h := sha256.New()
	for _, tok := range uniq {
		h.Write([]byte(tok))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}

// bucketKey truncates a fingerprint to the configured blocking prefix.
func bucketKey(fp string, prefixLen int) string {
	if prefixLen <= 0 {
		prefixLen = 16
	}
	runes := []rune(fp)
	if len(runes) > prefixLen {
		return string(runes[:prefixLen])
	}
	return fp
}
