// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/idea-engine/internal/retry"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// productHuntBase is the leaderboard listing page. Declared as a var so
// tests can substitute an httptest server.
var productHuntBase = "https://www.producthunt.com/leaderboard/daily"

// ProductHunt scrapes the daily leaderboard listing page. The page has no
// stable API surface, so entries are parsed out of the rendered HTML.
type ProductHunt struct {
	client *http.Client
	cfg    types.SourceConfig
	exec   *retry.Executor
}

// NewProductHunt wires an HTTP client and the per-source retry policy.
func NewProductHunt(client *http.Client, cfg types.SourceConfig) *ProductHunt {
	return &ProductHunt{
		client: client,
		cfg:    cfg,
		exec:   retry.New(cfg.Retry, fetchRetryable),
	}
}

// Name returns the source identifier.
func (p *ProductHunt) Name() types.SourceName { return types.SourceProductHunt }

// Fetch walks the leaderboard pages up to the configured bound, dropping
// entries below the minimum vote count.
func (p *ProductHunt) Fetch(ctx context.Context) Outcome {
	var collected []types.RawPosting
	maxPages := maxPagesOrDefault(p.cfg)

	for page := 1; page <= maxPages; page++ {
		var doc *goquery.Document
		err := p.exec.Do(ctx, func(ctx context.Context) error {
			var fetchErr error
			doc, fetchErr = p.fetchDocument(ctx, fmt.Sprintf("%s?page=%d", productHuntBase, page))
			return fetchErr
		})
		if err != nil {
			return outcomeFromErr(dedupeByID(collected), fmt.Errorf("page %d: %w", page, err))
		}

		entries := p.extractEntries(doc)
		if len(entries) == 0 {
			break
		}
		collected = append(collected, entries...)
	}

	return Outcome{Postings: dedupeByID(collected)}
}

func (p *ProductHunt) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", p.cfg.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := retry.CheckStatus(resp); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &malformedError{err: err}
	}
	return doc, nil
}

// extractEntries parses leaderboard items. Each item carries a product name,
// a tagline, a vote count, and a product link.
func (p *ProductHunt) extractEntries(doc *goquery.Document) []types.RawPosting {
	var entries []types.RawPosting

	doc.Find("[data-test^=\"post-item\"]").Each(func(_ int, item *goquery.Selection) {
		name := strings.TrimSpace(item.Find("[data-test=\"post-name\"]").First().Text())
		tagline := strings.TrimSpace(item.Find("[data-test=\"post-tagline\"]").First().Text())
		votes := parseVotes(item.Find("[data-test=\"vote-button\"]").First().Text())

		link := item.Find("a[href^=\"/posts/\"]").First()
		href, _ := link.Attr("href")
		if name == "" || href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = "https://www.producthunt.com" + href
		}

		if votes < p.cfg.MinOriginScore {
			return
		}

		entries = append(entries, types.RawPosting{
			SourceID:    strings.TrimPrefix(href, "https://www.producthunt.com/posts/"),
			Source:      types.SourceProductHunt,
			Title:       name,
			Body:        tagline,
			URL:         href,
			OriginScore: votes,
			FetchedAt:   time.Now().UTC(),
		})
	})

	return entries
}

// parseVotes extracts the first integer from a vote-button label.
func parseVotes(text string) int {
	fields := strings.FieldsFunc(strings.TrimSpace(text), func(r rune) bool {
		return r < '0' || r > '9'
	})
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0
	}
	return n
}
