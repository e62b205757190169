package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/util"
	"github.com/ppiankov/truthquest/internal/worker"
)

const defaultBraveBaseURL = "https://api.search.brave.com"

// BraveClient queries the Brave Search web API
type BraveClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
	limiter    *worker.Limiter
}

type braveResponse struct {
	Web struct {
		Results []braveResult `json:"results"`
	} `json:"web"`
}

type braveResult struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description"`
}

// NewBraveClient creates a client from search and HTTP settings
func NewBraveClient(cfg model.SearchConfig, httpCfg model.HTTPConfig) (*BraveClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Brave Search API key is required (set BRAVE_API_KEY)")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBraveBaseURL
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	if maxResults > 20 {
		maxResults = 20 // API maximum
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}

	timeout := httpCfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	return &BraveClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		maxResults: maxResults,
		httpClient: util.NewHTTPClient(timeout, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy),
		limiter:    worker.NewLimiter(rps, cfg.BurstSize),
	}, nil
}

// Search implements Searcher
func (c *BraveClient) Search(ctx context.Context, query string) ([]model.EvidenceHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", model.ErrSearchUnavailable)
	}

	endpoint := fmt.Sprintf("%s/res/v1/web/search?q=%s&count=%s",
		c.baseURL, url.QueryEscape(query), strconv.Itoa(c.maxResults))

	if err := c.limiter.Wait(ctx, endpoint); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", model.ErrSearchUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", model.ErrSearchUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", model.ErrSearchUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: %w: Brave API returned 429", model.ErrSearchUnavailable, model.ErrRateLimited)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: Brave API error (%d): %s", model.ErrSearchUnavailable, resp.StatusCode, truncateBody(body))
	}

	var parsed braveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", model.ErrSearchUnavailable, err)
	}

	hits := make([]model.EvidenceHit, 0, len(parsed.Web.Results))
	for _, r := range parsed.Web.Results {
		if r.URL == "" {
			continue
		}
		hits = append(hits, model.EvidenceHit{
			Title:   StripTags(r.Title),
			URL:     r.URL,
			Snippet: StripTags(r.Description),
		})
	}

	return hits, nil
}

func truncateBody(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
