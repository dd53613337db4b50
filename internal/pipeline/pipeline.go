// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the end-to-end ingestion flow: fetch from every
// enabled source in parallel, deduplicate, score, persist, and notify.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/idea-engine/internal/dedup"
	"github.com/pdiddy/idea-engine/internal/notify"
	"github.com/pdiddy/idea-engine/internal/score"
	"github.com/pdiddy/idea-engine/internal/source"
	"github.com/pdiddy/idea-engine/internal/store"
	"github.com/pdiddy/idea-engine/pkg/types"
)

const (
	defaultRunDeadline   = 10 * time.Minute
	defaultMaxFailedRuns = 3
	defaultHTTPTimeout   = 30 * time.Second
	runsDir              = "runs"
)

// ErrAllSourcesFailed is returned when every adapter failed and no posting
// reached the pipeline. Partial failures never produce this.
var ErrAllSourcesFailed = errors.New("all sources failed")

// Orchestrator wires the pipeline stages together for one run.
type Orchestrator struct {
	adapters []source.Adapter
	scorer   *score.Scorer
	sender   notify.Sender
	store    *store.Store
	cfg      types.PipelineConfig

	// now returns run timestamps. Tests substitute a fixed clock.
	now func() time.Time
}

// New builds an Orchestrator over the given stages. sender may be nil when
// notifications are disabled.
func New(cfg types.PipelineConfig, adapters []source.Adapter, scorer *score.Scorer, sender notify.Sender, st *store.Store) *Orchestrator {
	return &Orchestrator{
		adapters: adapters,
		scorer:   scorer,
		sender:   sender,
		store:    st,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewAdapters builds the enabled source adapters from configuration. Each
// adapter gets a client honoring its configured timeout.
func NewAdapters(cfg types.SourcesConfig) []source.Adapter {
	var adapters []source.Adapter
	if cfg.HackerNews.Enabled {
		adapters = append(adapters, source.NewHackerNews(NewHTTPClient(cfg.HackerNews.Timeout), cfg.HackerNews))
	}
	if cfg.Reddit.Enabled {
		adapters = append(adapters, source.NewReddit(NewHTTPClient(cfg.Reddit.Timeout), cfg.Reddit))
	}
	if cfg.ProductHunt.Enabled {
		adapters = append(adapters, source.NewProductHunt(NewHTTPClient(cfg.ProductHunt.Timeout), cfg.ProductHunt))
	}
	if cfg.IndieHackers.Enabled {
		adapters = append(adapters, source.NewIndieHackers(NewHTTPClient(cfg.IndieHackers.Timeout), cfg.IndieHackers))
	}
	return adapters
}

// NewHTTPClient builds an HTTP client with the configured per-request
// timeout, falling back to the 30s default when unset.
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &http.Client{Timeout: timeout}
}

type fetchResult struct {
	name    types.SourceName
	outcome source.Outcome
}

// Run executes one full pipeline pass and writes progress to w. The returned
// summary is complete even on partial failure; only a run where every source
// failed outright returns ErrAllSourcesFailed.
func (o *Orchestrator) Run(ctx context.Context, w io.Writer) (types.RunSummary, error) {
	deadline := o.cfg.RunDeadline
	if deadline <= 0 {
		deadline = defaultRunDeadline
	}
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	summary := types.RunSummary{
		StartedAt: o.now(),
		Sources:   make(map[types.SourceName]types.SourceSummary),
	}

	postings := o.fetchAll(ctx, &summary, w)

	if len(postings) == 0 && o.allSourcesFailed(summary) {
		summary.FinishedAt = o.now()
		o.writeRunSummary(summary, w)
		return summary, ErrAllSourcesFailed
	}

	normalized := dedup.NormalizeAll(postings)
	result := dedup.Deduplicate(normalized, o.cfg.Dedup, w)
	summary.Malformed = result.Malformed
	summary.DeduplicatedAway = result.MergedAway
	for _, idea := range result.Ideas {
		primaryKey := idea.Primary.Raw.Key()
		for _, m := range idea.Members {
			if m.Raw.Key() == primaryKey {
				continue
			}
			addSource(&summary, m.Raw.Source, func(s *types.SourceSummary) { s.DeduplicatedAway++ })
		}
	}
	fmt.Fprintf(w, "deduplicated %d postings into %d ideas (%d malformed, %d merged away)\n",
		len(postings), len(result.Ideas), result.Malformed, result.MergedAway)

	ideas := o.skipExhausted(ctx, result.Ideas, &summary, w)

	outcome := o.scorer.ScoreAll(ctx, ideas, w)
	summary.Scored = len(outcome.Scored)
	summary.ScoringFailed = len(outcome.Failed)
	for _, s := range outcome.Scored {
		addSource(&summary, s.Idea.Primary.Raw.Source, func(src *types.SourceSummary) { src.Scored++ })
	}
	for _, f := range outcome.Failed {
		addSource(&summary, f.Idea.Primary.Raw.Source, func(src *types.SourceSummary) { src.ScoringFailed++ })
	}

	for _, f := range outcome.Failed {
		if _, err := o.store.RecordScoringFailure(ctx, f.Idea.Key(), f.Err); err != nil {
			fmt.Fprintf(w, "warning: failure bookkeeping for %s: %v\n", f.Idea.Key().URL, err)
			summary.StoreErrors++
		}
	}
	for _, s := range outcome.Scored {
		if err := o.store.UpsertScored(ctx, s); err != nil {
			fmt.Fprintf(w, "warning: store write for %s: %v\n", s.Key().URL, err)
			summary.StoreErrors++
		}
	}

	o.notifyTop(ctx, outcome.Scored, &summary, w)

	if err := o.store.ExportSnapshot(ctx); err != nil {
		fmt.Fprintf(w, "warning: snapshot export failed: %v\n", err)
	}

	summary.FinishedAt = o.now()
	o.writeRunSummary(summary, w)

	fmt.Fprintf(w, "\nfetched: %d, ideas: %d, scored: %d, failed: %d, skipped: %d, notified: %d\n",
		summary.TotalFetched(), len(result.Ideas), summary.Scored,
		summary.ScoringFailed, summary.ScoringSkipped, summary.Notified)

	return summary, nil
}

// fetchAll runs every adapter concurrently and merges their postings. A
// failed source is recorded in the summary and does not block the others.
func (o *Orchestrator) fetchAll(ctx context.Context, summary *types.RunSummary, w io.Writer) []types.RawPosting {
	ch := make(chan fetchResult, len(o.adapters))
	var wg sync.WaitGroup

	for _, a := range o.adapters {
		wg.Add(1)
		go func(a source.Adapter) {
			defer wg.Done()
			ch <- fetchResult{name: a.Name(), outcome: a.Fetch(ctx)}
		}(a)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var all []types.RawPosting
	for fr := range ch {
		src := types.SourceSummary{Fetched: len(fr.outcome.Postings)}
		if fr.outcome.Err != nil {
			src.Error = fr.outcome.Err.Error()
			src.PartialFailure = fr.outcome.Partial
			fmt.Fprintf(w, "warning: source %s failed: %v\n", fr.name, fr.outcome.Err)
		}
		fmt.Fprintf(w, "fetched %d from %s\n", len(fr.outcome.Postings), fr.name)
		summary.Sources[fr.name] = src
		all = append(all, fr.outcome.Postings...)
	}
	return all
}

// addSource updates one source's summary entry in place.
func addSource(summary *types.RunSummary, name types.SourceName, f func(*types.SourceSummary)) {
	src := summary.Sources[name]
	f(&src)
	summary.Sources[name] = src
}

func (o *Orchestrator) allSourcesFailed(summary types.RunSummary) bool {
	if len(summary.Sources) == 0 {
		return true
	}
	for _, src := range summary.Sources {
		if src.Error == "" {
			return false
		}
	}
	return true
}

// skipExhausted drops ideas that have already failed scoring in too many
// consecutive runs.
func (o *Orchestrator) skipExhausted(ctx context.Context, ideas []types.CanonicalIdea, summary *types.RunSummary, w io.Writer) []types.CanonicalIdea {
	maxRuns := o.cfg.Scoring.MaxFailedRuns
	if maxRuns <= 0 {
		maxRuns = defaultMaxFailedRuns
	}

	exhausted, err := o.store.ExhaustedKeys(ctx, maxRuns)
	if err != nil {
		fmt.Fprintf(w, "warning: loading scoring failures: %v\n", err)
		return ideas
	}
	if len(exhausted) == 0 {
		return ideas
	}

	kept := ideas[:0:0]
	for _, idea := range ideas {
		if exhausted[idea.Key()] {
			fmt.Fprintf(w, "skipping %s (failed %d+ runs)\n", idea.Primary.Raw.Title, maxRuns)
			summary.ScoringSkipped++
			continue
		}
		kept = append(kept, idea)
	}
	return kept
}

// notifyTop selects, delivers, and marks the best freshly scored ideas.
// Ideas already notified in a previous run are excluded before selection.
func (o *Orchestrator) notifyTop(ctx context.Context, scored []types.ScoredIdea, summary *types.RunSummary, w io.Writer) {
	if !o.cfg.Notify.Enabled || o.sender == nil {
		return
	}

	// Delivery is at-least-once: when the markers cannot be read, proceed
	// with an empty set and accept a possible duplicate over silence.
	already, err := o.store.NotifiedKeys(ctx)
	if err != nil {
		fmt.Fprintf(w, "warning: loading notified markers: %v\n", err)
		summary.StoreErrors++
		already = map[types.IdeaKey]bool{}
	}

	fresh := make([]types.ScoredIdea, 0, len(scored))
	for _, s := range scored {
		if !already[s.Key()] {
			fresh = append(fresh, s)
		}
	}

	selected := notify.Select(fresh, o.cfg.Notify)
	events := notify.SendAll(ctx, o.sender, selected, w)
	summary.Notified = len(events)

	for _, ev := range events {
		if err := o.store.MarkNotified(ctx, ev.Idea.Key(), ev.NotifiedAt); err != nil {
			fmt.Fprintf(w, "warning: marking notified %s: %v\n", ev.Idea.Key().URL, err)
			summary.StoreErrors++
		}
	}
}

// writeRunSummary persists the summary as YAML under dataDir/runs/.
func (o *Orchestrator) writeRunSummary(summary types.RunSummary, w io.Writer) {
	dataDir := o.cfg.Store.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	dir := filepath.Join(dataDir, runsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fmt.Fprintf(w, "warning: creating runs directory: %v\n", err)
		return
	}

	data, err := yaml.Marshal(summary)
	if err != nil {
		fmt.Fprintf(w, "warning: marshaling run summary: %v\n", err)
		return
	}

	name := fmt.Sprintf("run-%s.yaml", summary.StartedAt.Format("20060102-150405"))
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		fmt.Fprintf(w, "warning: writing run summary: %v\n", err)
	}
}
