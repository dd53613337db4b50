// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/idea-engine/internal/retry"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// defaultIndieHackersFeed is the Indie Hackers posts feed.
const defaultIndieHackersFeed = "https://www.indiehackers.com/feed"

// IndieHackers consumes an RSS/Atom feed of community postings. Feeds carry
// no native popularity signal, so OriginScore stays zero and multi-source
// merges prefer the API-backed contributor as primary.
type IndieHackers struct {
	parser  *gofeed.Parser
	feedURL string
	exec    *retry.Executor
}

// NewIndieHackers wires a feed parser over the shared HTTP client.
func NewIndieHackers(client *http.Client, cfg types.SourceConfig) *IndieHackers {
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = cfg.UserAgent

	feedURL := cfg.FeedURL
	if feedURL == "" {
		feedURL = defaultIndieHackersFeed
	}

	return &IndieHackers{
		parser:  parser,
		feedURL: feedURL,
		exec:    retry.New(cfg.Retry, feedRetryable),
	}
}

// Name returns the source identifier.
func (a *IndieHackers) Name() types.SourceName { return types.SourceIndieHackers }

// Fetch parses the feed once; feeds are a single page.
func (a *IndieHackers) Fetch(ctx context.Context) Outcome {
	var feed *gofeed.Feed
	err := a.exec.Do(ctx, func(ctx context.Context) error {
		var parseErr error
		feed, parseErr = a.parser.ParseURLWithContext(a.feedURL, ctx)
		return parseErr
	})
	if err != nil {
		return outcomeFromErr(nil, err)
	}

	postings := make([]types.RawPosting, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		id := item.GUID
		if id == "" {
			id = item.Link
		}

		body := item.Description
		if body == "" {
			body = item.Content
		}

		postings = append(postings, types.RawPosting{
			SourceID:  id,
			Source:    types.SourceIndieHackers,
			Title:     item.Title,
			Body:      body,
			URL:       item.Link,
			FetchedAt: time.Now().UTC(),
		})
	}

	return Outcome{Postings: dedupeByID(postings)}
}

// feedRetryable classifies feed errors: HTTP 429 and 5xx are transient,
// other HTTP statuses permanent, parse failures permanent, transport
// failures transient.
func feedRetryable(err error) bool {
	var he gofeed.HTTPError
	if errors.As(err, &he) {
		return he.StatusCode == http.StatusTooManyRequests || he.StatusCode >= 500
	}
	var hep *gofeed.HTTPError
	if errors.As(err, &hep) {
		return hep.StatusCode == http.StatusTooManyRequests || hep.StatusCode >= 500
	}
	if errors.Is(err, gofeed.ErrFeedTypeNotDetected) {
		return false
	}
	return true
}
