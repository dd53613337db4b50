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

const leaderboardHTML = `<html><body>
<div data-test="post-item-1">
  <a href="/posts/inbox-zero-ai"><span data-test="post-name">Inbox Zero AI</span></a>
  <span data-test="post-tagline">Triage your email with a local model</span>
  <button data-test="vote-button">312</button>
</div>
<div data-test="post-item-2">
  <a href="/posts/tiny-crm"><span data-test="post-name">Tiny CRM</span></a>
  <span data-test="post-tagline">A CRM that fits in a spreadsheet</span>
  <button data-test="vote-button">41</button>
</div>
<div data-test="post-item-3">
  <a href="/posts/nameless"><span data-test="post-name"></span></a>
  <button data-test="vote-button">9</button>
</div>
</body></html>`

func TestProductHunt_ExtractEntries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, leaderboardHTML)
			return
		}
		fmt.Fprint(w, `<html><body></body></html>`)
	}))
	defer ts.Close()

	old := productHuntBase
	productHuntBase = ts.URL
	defer func() { productHuntBase = old }()

	out := NewProductHunt(ts.Client(), testSourceConfig()).Fetch(context.Background())

	require.NoError(t, out.Err)
	require.Len(t, out.Postings, 2)

	first := out.Postings[0]
	assert.Equal(t, "inbox-zero-ai", first.SourceID)
	assert.Equal(t, "Inbox Zero AI", first.Title)
	assert.Equal(t, "Triage your email with a local model", first.Body)
	assert.Equal(t, 312, first.OriginScore)
	assert.Equal(t, "https://www.producthunt.com/posts/inbox-zero-ai", first.URL)
}

func TestProductHunt_MinVotesFilter(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, leaderboardHTML)
			return
		}
		fmt.Fprint(w, `<html><body></body></html>`)
	}))
	defer ts.Close()

	old := productHuntBase
	productHuntBase = ts.URL
	defer func() { productHuntBase = old }()

	cfg := testSourceConfig()
	cfg.MinOriginScore = 100

	out := NewProductHunt(ts.Client(), cfg).Fetch(context.Background())

	require.NoError(t, out.Err)
	require.Len(t, out.Postings, 1)
	assert.Equal(t, "Inbox Zero AI", out.Postings[0].Title)
}

func TestProductHunt_EmptyPageStopsPagination(t *testing.T) {
	var pages []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages = append(pages, r.URL.Query().Get("page"))
		fmt.Fprint(w, `<html><body></body></html>`)
	}))
	defer ts.Close()

	old := productHuntBase
	productHuntBase = ts.URL
	defer func() { productHuntBase = old }()

	cfg := testSourceConfig()
	cfg.MaxPages = 5

	out := NewProductHunt(ts.Client(), cfg).Fetch(context.Background())

	require.NoError(t, out.Err)
	assert.Empty(t, out.Postings)
	assert.Equal(t, []string{"1"}, pages)
}

func TestParseVotes(t *testing.T) {
	assert.Equal(t, 312, parseVotes("312"))
	assert.Equal(t, 41, parseVotes("  Upvote 41  "))
	assert.Equal(t, 0, parseVotes("Upvote"))
}
