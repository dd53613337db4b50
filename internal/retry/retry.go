// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry provides a reusable rate-limit and retry policy for
// network-bound operations. An Executor knows nothing about what the
// operation does; source adapters and the scoring backend share it.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/pdiddy/idea-engine/pkg/types"
)

const (
	defaultMaxAttempts = 3
	defaultBaseBackoff = time.Second
	defaultMultiplier  = 2.0
)

// ExhaustedError is returned once every attempt has failed with a retryable
// error. It wraps the last underlying error.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// PermanentError is returned when the retryable predicate classifies a
// failure as non-transient. The operation is not retried.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return fmt.Sprintf("permanent: %v", e.Err) }

func (e *PermanentError) Unwrap() error { return e.Err }

// IsPermanent reports whether err carries a PermanentError.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// Executor wraps fallible operations with a minimum inter-operation interval
// and exponential backoff with jitter. One executor instance gates one
// logical resource (a source API, the scoring backend).
type Executor struct {
	cfg       types.RetryConfig
	retryable func(error) bool

	// Sleep waits for d or until the context is cancelled. Tests substitute
	// a recording implementation to avoid real sleeps.
	Sleep func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	lastStart time.Time
	rng       *rand.Rand
}

// New builds an Executor from cfg. The retryable predicate classifies an
// operation error as transient (retry) or permanent (abort); a nil predicate
// treats every error as retryable.
func New(cfg types.RetryConfig, retryable func(error) bool) *Executor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = defaultBaseBackoff
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = defaultMultiplier
	}
	if retryable == nil {
		retryable = func(error) bool { return true }
	}
	return &Executor{
		cfg:       cfg,
		retryable: retryable,
		Sleep:     sleepContext,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Do runs op, retrying transient failures up to MaxAttempts total attempts.
// Consecutive operation starts through the same executor are spaced at least
// MinInterval apart. Retried attempts wait
// BaseBackoff * Multiplier^attempt * (1 ± JitterFraction).
// A permanent failure returns a PermanentError immediately; exhausting the
// attempt budget returns an ExhaustedError wrapping the last failure.
func (e *Executor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt < e.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			if err := e.Sleep(ctx, e.backoff(attempt-1)); err != nil {
				return err
			}
		}
		if err := e.throttle(ctx); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !e.retryable(err) {
			return &PermanentError{Err: err}
		}
		lastErr = err
	}
	return &ExhaustedError{Attempts: e.cfg.MaxAttempts, Err: lastErr}
}

// throttle enforces MinInterval between operation starts.
func (e *Executor) throttle(ctx context.Context) error {
	if e.cfg.MinInterval <= 0 {
		return nil
	}

	e.mu.Lock()
	now := time.Now()
	wait := e.cfg.MinInterval - now.Sub(e.lastStart)
	if wait < 0 {
		wait = 0
	}
	e.lastStart = now.Add(wait)
	e.mu.Unlock()

	if wait == 0 {
		return nil
	}
	return e.Sleep(ctx, wait)
}

// backoff returns the wait before retry number attempt+1.
func (e *Executor) backoff(attempt int) time.Duration {
	d := float64(e.cfg.BaseBackoff) * math.Pow(e.cfg.BackoffMultiplier, float64(attempt))
	if f := e.cfg.JitterFraction; f > 0 {
		e.mu.Lock()
		jitter := 1 + f*(2*e.rng.Float64()-1)
		e.mu.Unlock()
		d *= jitter
	}
	return time.Duration(d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
