// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source fetches candidate business-idea postings from heterogeneous
// online sources and normalizes them into RawPostings. Each adapter
// implements the Adapter interface per the Strategy pattern; adapters share
// a retry.Executor and never share mutable state.
package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/pdiddy/idea-engine/internal/retry"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// Adapter fetches recent postings from one source.
type Adapter interface {
	Name() types.SourceName
	Fetch(ctx context.Context) Outcome
}

// Outcome is the result of one adapter call. Successfully fetched postings
// are never discarded because a later page failed:
//
//   - Err == nil: complete fetch.
//   - Err != nil, Partial: retries were exhausted mid-way; Postings holds
//     everything collected before the failure.
//   - Err != nil, !Partial: the source failed permanently (bad credentials,
//     malformed payload); Postings holds whatever preceded the abort.
type Outcome struct {
	Postings []types.RawPosting
	Partial  bool
	Err      error
}

// malformedError marks a response whose schema did not parse. Malformed
// payloads are permanent: retrying the same page cannot help.
type malformedError struct {
	err error
}

func (e *malformedError) Error() string { return fmt.Sprintf("malformed response: %v", e.err) }

func (e *malformedError) Unwrap() error { return e.err }

// fetchRetryable classifies adapter errors for the retry executor:
// malformed payloads and non-429 4xx responses are permanent, timeouts and
// 5xx are transient.
func fetchRetryable(err error) bool {
	var me *malformedError
	if errors.As(err, &me) {
		return false
	}
	return retry.RetryableHTTP(err)
}

// outcomeFromErr folds an executor error into an Outcome over the postings
// collected so far.
func outcomeFromErr(collected []types.RawPosting, err error) Outcome {
	if err == nil {
		return Outcome{Postings: collected}
	}
	if retry.IsPermanent(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Outcome{Postings: collected, Err: err}
	}
	return Outcome{Postings: collected, Partial: true, Err: err}
}

// getJSON issues a GET request and decodes the JSON body into v.
func getJSON(ctx context.Context, client *http.Client, url, userAgent string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := retry.CheckStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &malformedError{err: err}
	}
	return nil
}

// dedupeByID drops postings repeating an already-seen SourceID. Sources may
// return the same item across overlapping pages.
func dedupeByID(postings []types.RawPosting) []types.RawPosting {
	seen := make(map[string]struct{}, len(postings))
	out := postings[:0]
	for _, p := range postings {
		if _, ok := seen[p.SourceID]; ok {
			continue
		}
		seen[p.SourceID] = struct{}{}
		out = append(out, p)
	}
	return out
}

// maxPagesOrDefault applies the pagination bound (default 2).
func maxPagesOrDefault(cfg types.SourceConfig) int {
	if cfg.MaxPages > 0 {
		return cfg.MaxPages
	}
	return 2
}
