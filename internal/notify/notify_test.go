// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/idea-engine/pkg/types"
)

func scoredIdea(title string, score float64) types.ScoredIdea {
	p := types.NormalizedPosting{
		Raw: types.RawPosting{
			SourceID: title,
			Source:   types.SourceReddit,
			Title:    title,
			URL:      "https://example.com/" + title,
		},
		NormTitle: strings.ToLower(title),
	}
	return types.ScoredIdea{
		Idea: types.CanonicalIdea{Primary: p, Members: []types.NormalizedPosting{p}, Sources: []types.SourceName{p.Raw.Source}},
		Analysis: types.Analysis{
			Score:           score,
			Tags:            []string{"dev tools", "saas"},
			Summary:         "A short summary.",
			Difficulty:      types.DifficultyLow,
			MarketPotential: types.MarketLarge,
			Insight:         "Niche but real.",
		},
	}
}

func TestSelect_TopFiveAboveThreshold(t *testing.T) {
	scores := []float64{0.95, 0.9, 0.85, 0.82, 0.81, 0.79, 0.6, 0.5}
	scored := make([]types.ScoredIdea, len(scores))
	for i, s := range scores {
		scored[i] = scoredIdea("idea", s)
	}

	picked := Select(scored, types.NotifyConfig{MinScore: 0.8, MaxCount: 5})

	require.Len(t, picked, 5)
	got := make([]float64, len(picked))
	for i, p := range picked {
		got[i] = p.Analysis.Score
	}
	assert.Equal(t, []float64{0.95, 0.9, 0.85, 0.82, 0.81}, got)
}

func TestSelect_ThresholdIsStrict(t *testing.T) {
	scored := []types.ScoredIdea{scoredIdea("at", 0.8), scoredIdea("above", 0.81)}

	picked := Select(scored, types.NotifyConfig{})

	require.Len(t, picked, 1)
	assert.Equal(t, "above", picked[0].Idea.Primary.Raw.Title)
}

func TestSelect_SortsUnorderedInput(t *testing.T) {
	scored := []types.ScoredIdea{
		scoredIdea("c", 0.82),
		scoredIdea("a", 0.95),
		scoredIdea("b", 0.9),
	}

	picked := Select(scored, types.NotifyConfig{})

	require.Len(t, picked, 3)
	assert.Equal(t, "a", picked[0].Idea.Primary.Raw.Title)
	assert.Equal(t, "b", picked[1].Idea.Primary.Raw.Title)
	assert.Equal(t, "c", picked[2].Idea.Primary.Raw.Title)
}

func TestSelect_EmptyWhenNothingQualifies(t *testing.T) {
	scored := []types.ScoredIdea{scoredIdea("meh", 0.3)}
	assert.Empty(t, Select(scored, types.NotifyConfig{}))
}

func TestFormatMessage(t *testing.T) {
	msg := FormatMessage(scoredIdea("Invoice Robot", 0.92))

	assert.Contains(t, msg, "*Invoice Robot*")
	assert.Contains(t, msg, "*Score:* 92/100")
	assert.Contains(t, msg, "*Difficulty:* low")
	assert.Contains(t, msg, "*Market potential:* large")
	assert.Contains(t, msg, "[Source](https://example.com/Invoice Robot)")
	assert.Contains(t, msg, "#dev_tools #saas")
}

func TestTelegramSender_Send(t *testing.T) {
	var gotPath, gotChatID, gotMode, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotChatID = r.PostForm.Get("chat_id")
		gotMode = r.PostForm.Get("parse_mode")
		gotText = r.PostForm.Get("text")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	orig := telegramAPIBase
	telegramAPIBase = srv.URL
	defer func() { telegramAPIBase = orig }()

	sender := NewTelegramSender("123:abc", "42")
	err := sender.Send(context.Background(), scoredIdea("Invoice Robot", 0.92))

	require.NoError(t, err)
	assert.Equal(t, "/bot123:abc/sendMessage", gotPath)
	assert.Equal(t, "42", gotChatID)
	assert.Equal(t, "Markdown", gotMode)
	assert.Contains(t, gotText, "Invoice Robot")
}

func TestTelegramSender_Misconfigured(t *testing.T) {
	err := NewTelegramSender("", "").Send(context.Background(), scoredIdea("x", 0.9))
	assert.Error(t, err)
}

type senderFunc func(ctx context.Context, idea types.ScoredIdea) error

func (f senderFunc) Send(ctx context.Context, idea types.ScoredIdea) error { return f(ctx, idea) }

func TestSendAll_ContinuesPastFailures(t *testing.T) {
	sender := senderFunc(func(_ context.Context, idea types.ScoredIdea) error {
		if idea.Idea.Primary.Raw.Title == "bad" {
			return errors.New("chat not found")
		}
		return nil
	})

	ideas := []types.ScoredIdea{scoredIdea("a", 0.9), scoredIdea("bad", 0.85), scoredIdea("b", 0.82)}
	events := SendAll(context.Background(), sender, ideas, io.Discard)

	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Idea.Idea.Primary.Raw.Title)
	assert.Equal(t, "b", events[1].Idea.Idea.Primary.Raw.Title)
	assert.False(t, events[0].NotifiedAt.IsZero())
}
