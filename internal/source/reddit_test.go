// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redditPostJSON(id, title, selftext string, score int) string {
	return fmt.Sprintf(`{"data":{"id":%q,"title":%q,"selftext":%q,"permalink":"/r/test/comments/%s/","score":%d}}`,
		id, title, selftext, id, score)
}

func TestReddit_FetchFollowsAfterCursor(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("after") == "" {
			fmt.Fprintf(w, `{"data":{"after":"t3_next","children":[%s]}}`,
				redditPostJSON("a1", "An app that schedules dog walkers", "full text", 25))
			return
		}
		fmt.Fprintf(w, `{"data":{"after":"","children":[%s]}}`,
			redditPostJSON("a2", "Marketplace for used lab equipment", "", 15))
	}))
	defer ts.Close()

	old := redditAPIBase
	redditAPIBase = ts.URL
	defer func() { redditAPIBase = old }()

	cfg := testSourceConfig()
	cfg.Subreddits = []string{"SomeoneShouldMake"}

	out := NewReddit(ts.Client(), cfg).Fetch(context.Background())

	require.NoError(t, out.Err)
	require.Len(t, out.Postings, 2)
	assert.Equal(t, "a1", out.Postings[0].SourceID)
	assert.Equal(t, "https://www.reddit.com/r/test/comments/a1/", out.Postings[0].URL)
	assert.Equal(t, "full text", out.Postings[0].Body)
	assert.Equal(t, "a2", out.Postings[1].SourceID)
}

func TestReddit_SecondSubredditFailurePreservesFirst(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/r/SaaS/top.json" {
			fmt.Fprintf(w, `{"data":{"after":"","children":[%s]}}`,
				redditPostJSON("s1", "SaaS billing reconciliation tool", "", 40))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	old := redditAPIBase
	redditAPIBase = ts.URL
	defer func() { redditAPIBase = old }()

	cfg := testSourceConfig()
	cfg.Subreddits = []string{"SaaS", "startups"}

	out := NewReddit(ts.Client(), cfg).Fetch(context.Background())

	require.Error(t, out.Err)
	assert.True(t, out.Partial)
	require.Len(t, out.Postings, 1)
	assert.Equal(t, "s1", out.Postings[0].SourceID)
	assert.Contains(t, out.Err.Error(), "r/startups")
}

func TestReddit_PermanentFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	old := redditAPIBase
	redditAPIBase = ts.URL
	defer func() { redditAPIBase = old }()

	cfg := testSourceConfig()
	cfg.Subreddits = []string{"gone"}

	out := NewReddit(ts.Client(), cfg).Fetch(context.Background())

	require.Error(t, out.Err)
	assert.False(t, out.Partial)
	assert.Empty(t, out.Postings)
}
