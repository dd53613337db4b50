// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/idea-engine/internal/retry"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// redditAPIBase is the public Reddit listing endpoint. Declared as a var so
// tests can substitute an httptest server.
var redditAPIBase = "https://www.reddit.com"

// redditLinkBase prefixes permalinks in posting URLs.
var redditLinkBase = "https://www.reddit.com"

// defaultSubreddits are the communities read when none are configured.
var defaultSubreddits = []string{"SaaS", "microsaas", "SomeoneShouldMake", "Entrepreneur", "startups"}

// Reddit fetches top postings from a set of subreddits via the public
// listing JSON.
type Reddit struct {
	client *http.Client
	cfg    types.SourceConfig
	exec   *retry.Executor
}

// NewReddit wires an HTTP client and the per-source retry policy.
func NewReddit(client *http.Client, cfg types.SourceConfig) *Reddit {
	return &Reddit{
		client: client,
		cfg:    cfg,
		exec:   retry.New(cfg.Retry, fetchRetryable),
	}
}

// Name returns the source identifier.
func (r *Reddit) Name() types.SourceName { return types.SourceReddit }

// Fetch reads the top listing of each configured subreddit, following the
// "after" cursor up to the page bound. A failure in one subreddit aborts the
// adapter call; other sources continue independently at the pipeline level.
func (r *Reddit) Fetch(ctx context.Context) Outcome {
	subreddits := r.cfg.Subreddits
	if len(subreddits) == 0 {
		subreddits = defaultSubreddits
	}
	timeFilter := r.cfg.TimeFilter
	if timeFilter == "" {
		timeFilter = "week"
	}
	maxPages := maxPagesOrDefault(r.cfg)

	var collected []types.RawPosting
	for _, sub := range subreddits {
		after := ""
		for page := 0; page < maxPages; page++ {
			var resp redditListing
			err := r.exec.Do(ctx, func(ctx context.Context) error {
				resp = redditListing{}
				return getJSON(ctx, r.client, r.pageURL(sub, timeFilter, after), r.cfg.UserAgent, &resp)
			})
			if err != nil {
				return outcomeFromErr(dedupeByID(collected), fmt.Errorf("r/%s page %d: %w", sub, page, err))
			}

			for _, child := range resp.Data.Children {
				post := child.Data
				if post.Score < r.cfg.MinOriginScore || post.Title == "" {
					continue
				}
				collected = append(collected, post.toPosting())
			}

			after = resp.Data.After
			if after == "" {
				break
			}
		}
	}

	return Outcome{Postings: dedupeByID(collected)}
}

func (r *Reddit) pageURL(sub, timeFilter, after string) string {
	params := url.Values{
		"t":     {timeFilter},
		"limit": {"100"},
	}
	if after != "" {
		params.Set("after", after)
	}
	return fmt.Sprintf("%s/r/%s/top.json?%s", redditAPIBase, sub, params.Encode())
}

// Reddit listing JSON structures.
type redditListing struct {
	Data redditListingData `json:"data"`
}

type redditListingData struct {
	After    string        `json:"after"`
	Children []redditChild `json:"children"`
}

type redditChild struct {
	Data redditPost `json:"data"`
}

type redditPost struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	SelfText   string  `json:"selftext"`
	Permalink  string  `json:"permalink"`
	Score      int     `json:"score"`
	CreatedUTC float64 `json:"created_utc"`
}

func (p redditPost) toPosting() types.RawPosting {
	return types.RawPosting{
		SourceID:    p.ID,
		Source:      types.SourceReddit,
		Title:       p.Title,
		Body:        p.SelfText,
		URL:         redditLinkBase + p.Permalink,
		OriginScore: p.Score,
		FetchedAt:   time.Now().UTC(),
	}
}
