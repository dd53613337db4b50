// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package score

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pdiddy/idea-engine/internal/retry"
	"github.com/pdiddy/idea-engine/pkg/types"
)

const (
	defaultBatchSize       = 10
	defaultInterBatchPause = time.Second
)

// Scorer annotates canonical ideas via the scoring backend in fixed-size
// batches. Batches run strictly sequentially; within a batch, requests run
// with bounded concurrency. A single idea's failure never aborts the batch.
type Scorer struct {
	backend Backend
	cfg     types.ScoringConfig
	exec    *retry.Executor

	// now returns the scoring timestamp. Tests substitute a fixed clock.
	now func() time.Time
}

// Failure records one idea the scorer could not annotate.
type Failure struct {
	Idea types.CanonicalIdea
	Err  error
}

// Outcome holds the batch run results; Scored preserves input order.
type Outcome struct {
	Scored []types.ScoredIdea
	Failed []Failure
}

// New builds a Scorer. All requests share one executor so the backend rate
// limit holds across the whole run.
func New(backend Backend, cfg types.ScoringConfig) *Scorer {
	return &Scorer{
		backend: backend,
		cfg:     cfg,
		exec:    retry.New(cfg.Retry, scoringRetryable),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// scoringRetryable classifies scorer errors: backend timeouts, 5xx, and 429
// are transient per the usual HTTP rules; a parse failure is transient until
// its single retry is spent.
func scoringRetryable(err error) bool {
	var pe *ParseError
	if errors.As(err, &pe) {
		return !pe.Final
	}
	return retry.RetryableHTTP(err)
}

// ScoreAll processes ideas in batches of the configured size, pausing
// between batches, and writes per-idea progress to w.
func (s *Scorer) ScoreAll(ctx context.Context, ideas []types.CanonicalIdea, w io.Writer) Outcome {
	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	pause := s.cfg.InterBatchPause
	if pause <= 0 {
		pause = defaultInterBatchPause
	}

	var out Outcome
	for start := 0; start < len(ideas); start += batchSize {
		if start > 0 {
			select {
			case <-ctx.Done():
				for _, idea := range ideas[start:] {
					out.Failed = append(out.Failed, Failure{Idea: idea, Err: ctx.Err()})
				}
				return out
			case <-time.After(pause):
			}
		}

		end := min(start+batchSize, len(ideas))
		s.scoreBatch(ctx, ideas[start:end], &out, w)
	}
	return out
}

// scoreBatch runs one batch with bounded concurrency and appends results in
// input order.
func (s *Scorer) scoreBatch(ctx context.Context, batch []types.CanonicalIdea, out *Outcome, w io.Writer) {
	concurrency := s.cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}
	if concurrency > len(batch) {
		concurrency = len(batch)
	}

	type slot struct {
		scored types.ScoredIdea
		err    error
	}
	slots := make([]slot, len(batch))

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)
	for i, idea := range batch {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, idea types.CanonicalIdea) {
			defer wg.Done()
			defer func() { <-sem }()
			slots[i].scored, slots[i].err = s.scoreOne(ctx, idea)
		}(i, idea)
	}
	wg.Wait()

	for i, sl := range slots {
		if sl.err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", batch[i].Primary.Raw.Title, sl.err)
			out.Failed = append(out.Failed, Failure{Idea: batch[i], Err: sl.err})
			continue
		}
		fmt.Fprintf(w, "scored  %s (%.2f)\n", batch[i].Primary.Raw.Title, sl.scored.Analysis.Score)
		out.Scored = append(out.Scored, sl.scored)
	}
}

// scoreOne submits one idea through the shared executor. The first parse
// failure is surfaced as retryable; the second is marked final so the
// executor stops and the idea is reported as scoring_failed.
func (s *Scorer) scoreOne(ctx context.Context, idea types.CanonicalIdea) (types.ScoredIdea, error) {
	prompt := BuildPrompt(idea)
	opts := GenerateOptions{Temperature: s.cfg.Temperature, MaxTokens: s.cfg.MaxTokens}

	parseFailures := 0
	var scored types.ScoredIdea

	err := s.exec.Do(ctx, func(ctx context.Context) error {
		raw, err := s.backend.Generate(ctx, prompt, opts)
		if err != nil {
			return err
		}

		analysis, err := ParseAnalysis(raw)
		if err != nil {
			parseFailures++
			var pe *ParseError
			if errors.As(err, &pe) && parseFailures > 1 {
				pe.Final = true
			}
			return err
		}

		scored = types.ScoredIdea{
			Idea:             idea,
			Analysis:         analysis,
			ModelRawResponse: raw,
			ScoredAt:         s.now(),
		}
		return nil
	})
	if err != nil {
		return types.ScoredIdea{}, err
	}
	return scored, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
