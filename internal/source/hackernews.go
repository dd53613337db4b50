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

// hnAPIBase is the Algolia Hacker News search endpoint. Declared as a var so
// tests can substitute an httptest server.
var hnAPIBase = "https://hn.algolia.com/api/v1/search_by_date"

// hnSections are the story tags the adapter reads. Show HN and Ask HN carry
// the product and "someone should build" postings.
var hnSections = []string{"show_hn", "ask_hn"}

// HackerNews fetches recent Show HN and Ask HN stories via the Algolia API.
type HackerNews struct {
	client *http.Client
	cfg    types.SourceConfig
	exec   *retry.Executor
}

// NewHackerNews wires an HTTP client and the per-source retry policy.
func NewHackerNews(client *http.Client, cfg types.SourceConfig) *HackerNews {
	return &HackerNews{
		client: client,
		cfg:    cfg,
		exec:   retry.New(cfg.Retry, fetchRetryable),
	}
}

// Name returns the source identifier.
func (h *HackerNews) Name() types.SourceName { return types.SourceHackerNews }

// Fetch pages through each section up to the configured page bound, dropping
// stories below the minimum point count.
func (h *HackerNews) Fetch(ctx context.Context) Outcome {
	var collected []types.RawPosting
	maxPages := maxPagesOrDefault(h.cfg)

	for _, section := range hnSections {
		for page := 0; page < maxPages; page++ {
			var resp hnSearchResponse
			err := h.exec.Do(ctx, func(ctx context.Context) error {
				resp = hnSearchResponse{}
				return getJSON(ctx, h.client, h.pageURL(section, page), h.cfg.UserAgent, &resp)
			})
			if err != nil {
				return outcomeFromErr(dedupeByID(collected), fmt.Errorf("section %s page %d: %w", section, page, err))
			}

			for _, hit := range resp.Hits {
				if hit.Points < h.cfg.MinOriginScore || hit.Title == "" {
					continue
				}
				collected = append(collected, hit.toPosting())
			}

			if page+1 >= resp.NbPages {
				break
			}
		}
	}

	return Outcome{Postings: dedupeByID(collected)}
}

func (h *HackerNews) pageURL(section string, page int) string {
	params := url.Values{
		"tags":        {section},
		"page":        {fmt.Sprintf("%d", page)},
		"hitsPerPage": {"50"},
	}
	return hnAPIBase + "?" + params.Encode()
}

// Algolia HN API JSON structures.
type hnSearchResponse struct {
	Hits    []hnHit `json:"hits"`
	NbPages int     `json:"nbPages"`
}

type hnHit struct {
	ObjectID  string `json:"objectID"`
	Title     string `json:"title"`
	URL       string `json:"url"`
	StoryText string `json:"story_text"`
	Points    int    `json:"points"`
	CreatedAt string `json:"created_at"`
}

func (h hnHit) toPosting() types.RawPosting {
	link := h.URL
	if link == "" {
		link = "https://news.ycombinator.com/item?id=" + h.ObjectID
	}
	p := types.RawPosting{
		SourceID:    h.ObjectID,
		Source:      types.SourceHackerNews,
		Title:       h.Title,
		Body:        h.StoryText,
		URL:         link,
		OriginScore: h.Points,
		FetchedAt:   time.Now().UTC(),
	}
	return p
}
