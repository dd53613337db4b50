// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/idea-engine/internal/score"
	"github.com/pdiddy/idea-engine/internal/source"
	"github.com/pdiddy/idea-engine/internal/store"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// stubAdapter returns a canned outcome.
type stubAdapter struct {
	name    types.SourceName
	outcome source.Outcome
}

func (s *stubAdapter) Name() types.SourceName { return s.name }

func (s *stubAdapter) Fetch(_ context.Context) source.Outcome { return s.outcome }

// backendFunc adapts a function to the scoring Backend interface.
type backendFunc func(ctx context.Context, prompt string, opts score.GenerateOptions) (string, error)

func (f backendFunc) Generate(ctx context.Context, prompt string, opts score.GenerateOptions) (string, error) {
	return f(ctx, prompt, opts)
}

// recordingSender remembers everything it delivers.
type recordingSender struct {
	sent []types.ScoredIdea
}

func (r *recordingSender) Send(_ context.Context, idea types.ScoredIdea) error {
	r.sent = append(r.sent, idea)
	return nil
}

func posting(src types.SourceName, title string, originScore int) types.RawPosting {
	return types.RawPosting{
		SourceID:    title,
		Source:      src,
		Title:       title,
		Body:        "some body text about " + title,
		URL:         fmt.Sprintf("https://example.com/%s/%s", src, strings.ReplaceAll(title, " ", "-")),
		OriginScore: originScore,
		FetchedAt:   time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	}
}

// scoreByTitle answers with a high score for titles containing "winner" and a
// middling one otherwise.
func scoreByTitle(_ context.Context, prompt string, _ score.GenerateOptions) (string, error) {
	n := 60
	if strings.Contains(prompt, "winner") {
		n = 92
	}
	return fmt.Sprintf(`{"score": %d, "tags": ["t"], "summary": "s", "difficulty": "low", "market_potential": "large", "insight": "i"}`, n), nil
}

func testPipelineConfig(dataDir string) types.PipelineConfig {
	return types.PipelineConfig{
		Scoring: types.ScoringConfig{
			BatchSize:       10,
			InterBatchPause: time.Millisecond,
			Retry:           types.RetryConfig{MaxAttempts: 2, BaseBackoff: time.Millisecond},
		},
		Notify: types.NotifyConfig{Enabled: true, MinScore: 0.8, MaxCount: 5},
		Store:  types.StoreConfig{DataDir: dataDir},
	}
}

func newTestOrchestrator(t *testing.T, cfg types.PipelineConfig, adapters []source.Adapter, backend score.Backend, sender *recordingSender) (*Orchestrator, *store.Store) {
	t.Helper()
	st, err := store.NewStore(cfg.Store)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return New(cfg, adapters, score.New(backend, cfg.Scoring), sender, st), st
}

func TestRun_EndToEnd(t *testing.T) {
	dataDir := t.TempDir()
	adapters := []source.Adapter{
		&stubAdapter{name: types.SourceHackerNews, outcome: source.Outcome{Postings: []types.RawPosting{
			posting(types.SourceHackerNews, "winner invoicing robots", 50),
			posting(types.SourceHackerNews, "plain idea one", 10),
		}}},
		&stubAdapter{name: types.SourceReddit, outcome: source.Outcome{Postings: []types.RawPosting{
			posting(types.SourceReddit, "plain idea two", 20),
		}}},
	}
	sender := &recordingSender{}
	o, st := newTestOrchestrator(t, testPipelineConfig(dataDir), adapters, backendFunc(scoreByTitle), sender)

	summary, err := o.Run(context.Background(), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.TotalFetched())
	assert.Equal(t, 2, summary.Sources[types.SourceHackerNews].Fetched)
	assert.Equal(t, 3, summary.Scored)
	assert.Zero(t, summary.ScoringFailed)
	assert.Zero(t, summary.StoreErrors)
	assert.False(t, summary.HasFailures())

	// Only the high scorer crosses the notification threshold.
	assert.Equal(t, 1, summary.Notified)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "winner invoicing robots", sender.sent[0].Idea.Primary.Raw.Title)

	// Everything scored landed in the store, best first.
	stored, err := st.TopIdeas(context.Background(), store.TopQuery{})
	require.NoError(t, err)
	require.Len(t, stored, 3)
	assert.Equal(t, "winner invoicing robots", stored[0].Title)
	assert.True(t, stored[0].Notified)

	// Snapshot and run summary artifacts exist.
	_, err = os.Stat(filepath.Join(dataDir, "export", "ideas.json"))
	assert.NoError(t, err)
	runs, err := os.ReadDir(filepath.Join(dataDir, "runs"))
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRun_PartialSourceFailureStillFlows(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: types.SourceHackerNews, outcome: source.Outcome{
			Postings: []types.RawPosting{
				posting(types.SourceHackerNews, "idea alpha", 10),
				posting(types.SourceHackerNews, "idea beta", 10),
			},
			Partial: true,
			Err:     errors.New("rate limited after page 1"),
		}},
		&stubAdapter{name: types.SourceReddit, outcome: source.Outcome{Postings: []types.RawPosting{
			posting(types.SourceReddit, "idea gamma", 10),
		}}},
	}
	sender := &recordingSender{}
	o, _ := newTestOrchestrator(t, testPipelineConfig(t.TempDir()), adapters, backendFunc(scoreByTitle), sender)

	summary, err := o.Run(context.Background(), io.Discard)
	require.NoError(t, err)

	// Collected postings from the partially failed source still flow downstream.
	assert.Equal(t, 3, summary.TotalFetched())
	assert.Equal(t, 3, summary.Scored)
	assert.True(t, summary.Sources[types.SourceHackerNews].PartialFailure)
	assert.NotEmpty(t, summary.Sources[types.SourceHackerNews].Error)
	assert.True(t, summary.HasFailures())
}

func TestRun_AllSourcesFailedAborts(t *testing.T) {
	adapters := []source.Adapter{
		&stubAdapter{name: types.SourceHackerNews, outcome: source.Outcome{Err: errors.New("403 forbidden")}},
		&stubAdapter{name: types.SourceReddit, outcome: source.Outcome{Err: errors.New("503 unavailable")}},
	}
	o, _ := newTestOrchestrator(t, testPipelineConfig(t.TempDir()), adapters, backendFunc(scoreByTitle), &recordingSender{})

	summary, err := o.Run(context.Background(), io.Discard)
	assert.ErrorIs(t, err, ErrAllSourcesFailed)
	assert.Zero(t, summary.TotalFetched())
}

func TestRun_ExhaustedIdeasSkipped(t *testing.T) {
	p := posting(types.SourceHackerNews, "cursed idea", 10)
	adapters := []source.Adapter{
		&stubAdapter{name: types.SourceHackerNews, outcome: source.Outcome{Postings: []types.RawPosting{p}}},
	}

	var backendCalls int
	backend := backendFunc(func(ctx context.Context, prompt string, opts score.GenerateOptions) (string, error) {
		backendCalls++
		return scoreByTitle(ctx, prompt, opts)
	})

	cfg := testPipelineConfig(t.TempDir())
	o, st := newTestOrchestrator(t, cfg, adapters, backend, &recordingSender{})

	key := types.IdeaKey{Source: p.Source, URL: p.URL}
	for i := 0; i < 3; i++ {
		_, err := st.RecordScoringFailure(context.Background(), key, errors.New("parse failed"))
		require.NoError(t, err)
	}

	summary, err := o.Run(context.Background(), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ScoringSkipped)
	assert.Zero(t, summary.Scored)
	assert.Zero(t, backendCalls)
}

func TestRun_PerSourceAttribution(t *testing.T) {
	// The two invoicing titles are near-duplicates and merge; the reddit
	// copy has the lower origin score, so the hackernews posting stays
	// primary and the reddit one is merged away.
	adapters := []source.Adapter{
		&stubAdapter{name: types.SourceHackerNews, outcome: source.Outcome{Postings: []types.RawPosting{
			posting(types.SourceHackerNews, "freelancers automated invoicing platform", 50),
		}}},
		&stubAdapter{name: types.SourceReddit, outcome: source.Outcome{Postings: []types.RawPosting{
			posting(types.SourceReddit, "freelancers automated invoicing platform cheap", 10),
			posting(types.SourceReddit, "broken gizmo thing", 10),
		}}},
	}
	backend := backendFunc(func(ctx context.Context, prompt string, opts score.GenerateOptions) (string, error) {
		if strings.Contains(prompt, "broken gizmo") {
			return "no json here", nil
		}
		return scoreByTitle(ctx, prompt, opts)
	})
	o, _ := newTestOrchestrator(t, testPipelineConfig(t.TempDir()), adapters, backend, &recordingSender{})

	summary, err := o.Run(context.Background(), io.Discard)
	require.NoError(t, err)

	hn := summary.Sources[types.SourceHackerNews]
	rd := summary.Sources[types.SourceReddit]

	assert.Equal(t, 1, hn.Fetched)
	assert.Equal(t, 2, rd.Fetched)

	// The merged-away posting counts against its own source.
	assert.Equal(t, 1, rd.DeduplicatedAway)
	assert.Zero(t, hn.DeduplicatedAway)

	// Scoring outcomes attach to the idea's primary source.
	assert.Equal(t, 1, hn.Scored)
	assert.Zero(t, hn.ScoringFailed)
	assert.Equal(t, 1, rd.ScoringFailed)
	assert.Zero(t, rd.Scored)

	assert.Equal(t, 1, summary.DeduplicatedAway)
	assert.Equal(t, 1, summary.Scored)
	assert.Equal(t, 1, summary.ScoringFailed)
}

func TestRun_NotifiedMarkersUnavailableStillDelivers(t *testing.T) {
	p := posting(types.SourceHackerNews, "winner against all odds", 50)
	adapters := []source.Adapter{
		&stubAdapter{name: types.SourceHackerNews, outcome: source.Outcome{Postings: []types.RawPosting{p}}},
	}
	sender := &recordingSender{}
	o, st := newTestOrchestrator(t, testPipelineConfig(t.TempDir()), adapters, backendFunc(scoreByTitle), sender)

	// With the database unavailable the marker read fails; delivery must
	// degrade to a possible duplicate, never to silence.
	require.NoError(t, st.Close())

	summary, err := o.Run(context.Background(), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Notified)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "winner against all odds", sender.sent[0].Idea.Primary.Raw.Title)
	// The failed marker read and writes are accounted for.
	assert.Greater(t, summary.StoreErrors, 0)
}

func TestNewHTTPClient(t *testing.T) {
	assert.Equal(t, 5*time.Second, NewHTTPClient(5*time.Second).Timeout)
	assert.Equal(t, 30*time.Second, NewHTTPClient(0).Timeout)
}

func TestRun_AlreadyNotifiedExcluded(t *testing.T) {
	p := posting(types.SourceHackerNews, "winner once more", 50)
	adapters := []source.Adapter{
		&stubAdapter{name: types.SourceHackerNews, outcome: source.Outcome{Postings: []types.RawPosting{p}}},
	}
	sender := &recordingSender{}
	o, st := newTestOrchestrator(t, testPipelineConfig(t.TempDir()), adapters, backendFunc(scoreByTitle), sender)

	key := types.IdeaKey{Source: p.Source, URL: p.URL}
	require.NoError(t, st.MarkNotified(context.Background(), key, time.Now()))

	summary, err := o.Run(context.Background(), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Scored)
	assert.Zero(t, summary.Notified)
	assert.Empty(t, sender.sent)
}
