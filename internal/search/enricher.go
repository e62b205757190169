package search

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/util"
	"github.com/ppiankov/truthquest/internal/worker"
)

const defaultExcerptChars = 600

// PageEnricher fetches the top hits of a search and appends a page excerpt
// to their snippets. Enrichment is best effort: a page that is disallowed by
// robots.txt or fails to load keeps its original snippet.
type PageEnricher struct {
	next         Searcher
	fetcher      *PageFetcher
	robots       *util.RobotsChecker
	limiter      *worker.Limiter
	topN         int
	excerptChars int
	log          io.Writer
}

// NewPageEnricher wraps next, enriching up to topN hits per query
func NewPageEnricher(next Searcher, fetcher *PageFetcher, robots *util.RobotsChecker, limiter *worker.Limiter, topN int) *PageEnricher {
	return &PageEnricher{
		next:         next,
		fetcher:      fetcher,
		robots:       robots,
		limiter:      limiter,
		topN:         topN,
		excerptChars: defaultExcerptChars,
		log:          io.Discard,
	}
}

// SetLogOutput directs skipped-page lines to w
func (e *PageEnricher) SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	e.log = w
}

// Search implements Searcher
func (e *PageEnricher) Search(ctx context.Context, query string) ([]model.EvidenceHit, error) {
	hits, err := e.next.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	enriched := make([]model.EvidenceHit, len(hits))
	copy(enriched, hits)

	for i := 0; i < len(enriched) && i < e.topN; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		excerpt, err := e.excerpt(ctx, enriched[i].URL, query)
		if err != nil {
			_, _ = fmt.Fprintf(e.log, "  skip enrich %s: %v\n", enriched[i].URL, err)
			continue
		}
		if excerpt != "" {
			enriched[i].Snippet = strings.TrimSpace(enriched[i].Snippet + " ... " + excerpt)
		}
	}

	return enriched, nil
}

func (e *PageEnricher) excerpt(ctx context.Context, rawURL, query string) (string, error) {
	crawlDelay := e.robotsDelay(ctx, rawURL)
	if crawlDelay < 0 {
		return "", fmt.Errorf("disallowed by robots.txt")
	}

	if e.limiter != nil {
		if err := e.limiter.WaitCrawl(ctx, rawURL, crawlDelay); err != nil {
			return "", err
		}
	}

	page, err := e.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	text, err := VisibleText(strings.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("parse page: %w", err)
	}

	return bestExcerpt(text, query, e.excerptChars), nil
}

// robotsDelay returns the crawl delay, or -1 when the page is disallowed
func (e *PageEnricher) robotsDelay(ctx context.Context, rawURL string) time.Duration {
	if e.robots == nil {
		return 0
	}
	allowed, crawlDelay, err := e.robots.CanFetch(ctx, rawURL)
	if err != nil || !allowed {
		return -1
	}
	return crawlDelay
}

// bestExcerpt returns a window of text centred on the first query term found
func bestExcerpt(text, query string, max int) string {
	if len(text) <= max {
		return text
	}

	lower := strings.ToLower(text)
	start := 0
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if len(term) < 4 {
			continue
		}
		if idx := strings.Index(lower, term); idx >= 0 {
			start = idx - max/4
			break
		}
	}

	if start < 0 {
		start = 0
	}
	if start+max > len(text) {
		start = len(text) - max
	}
	// Align to rune and word boundaries
	for start > 0 && start < len(text) && text[start-1] != ' ' {
		start++
	}
	end := start + max
	if end > len(text) {
		end = len(text)
	}
	for end < len(text) && end > start && text[end] != ' ' {
		end--
	}
	return strings.TrimSpace(text[start:end])
}
