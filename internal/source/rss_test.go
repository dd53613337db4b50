// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indieHackersFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Indie Hackers</title>
  <item>
    <title>I built a waitlist tool in a weekend</title>
    <link>https://www.indiehackers.com/post/waitlist-tool</link>
    <guid>ih-1</guid>
    <description>Landing page plus referral tracking for early-stage products.</description>
  </item>
  <item>
    <title>Looking for a co-founder for a bookkeeping bot</title>
    <link>https://www.indiehackers.com/post/bookkeeping-bot</link>
    <guid>ih-2</guid>
    <description></description>
  </item>
  <item>
    <title></title>
    <link>https://www.indiehackers.com/post/untitled</link>
  </item>
</channel>
</rss>`

func TestIndieHackers_FetchParsesFeed(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, indieHackersFeedXML)
	}))
	defer ts.Close()

	cfg := testSourceConfig()
	cfg.FeedURL = ts.URL

	out := NewIndieHackers(ts.Client(), cfg).Fetch(context.Background())

	require.NoError(t, out.Err)
	require.Len(t, out.Postings, 2)

	first := out.Postings[0]
	assert.Equal(t, "ih-1", first.SourceID)
	assert.Equal(t, "I built a waitlist tool in a weekend", first.Title)
	assert.Equal(t, "https://www.indiehackers.com/post/waitlist-tool", first.URL)
	assert.Zero(t, first.OriginScore)
}

func TestIndieHackers_ServerErrorRetriesThenPartial(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	cfg := testSourceConfig()
	cfg.FeedURL = ts.URL

	out := NewIndieHackers(ts.Client(), cfg).Fetch(context.Background())

	require.Error(t, out.Err)
	assert.True(t, out.Partial)
	assert.Empty(t, out.Postings)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestIndieHackers_NotAFeedIsPermanent(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, "<html><body>not a feed</body></html>")
	}))
	defer ts.Close()

	cfg := testSourceConfig()
	cfg.FeedURL = ts.URL

	out := NewIndieHackers(ts.Client(), cfg).Fetch(context.Background())

	require.Error(t, out.Err)
	assert.False(t, out.Partial)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
