package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ppiankov/truthquest/internal/cache"
	"github.com/ppiankov/truthquest/internal/model"
)

// CachedSearcher memoizes successful searches by normalized query
type CachedSearcher struct {
	next  Searcher
	cache cache.Cache
	ttl   time.Duration
	log   io.Writer
}

// NewCachedSearcher wraps next. A nil cache disables caching.
func NewCachedSearcher(next Searcher, c cache.Cache, ttl time.Duration) *CachedSearcher {
	return &CachedSearcher{next: next, cache: c, ttl: ttl, log: io.Discard}
}

// SetLogOutput directs cache hit/miss lines to w
func (s *CachedSearcher) SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	s.log = w
}

// Search implements Searcher. Errors and empty results are not cached.
func (s *CachedSearcher) Search(ctx context.Context, query string) ([]model.EvidenceHit, error) {
	if s.cache == nil {
		return s.next.Search(ctx, query)
	}

	key := cache.CacheKey("search", strings.ToLower(strings.Join(strings.Fields(query), " ")))

	if data, ok := s.cache.Get(key); ok {
		var hits []model.EvidenceHit
		if err := json.Unmarshal(data, &hits); err == nil {
			_, _ = fmt.Fprintf(s.log, "  search cache hit: %q\n", query)
			return hits, nil
		}
		_ = s.cache.Delete(key)
	}

	hits, err := s.next.Search(ctx, query)
	if err != nil || len(hits) == 0 {
		return hits, err
	}

	if data, err := json.Marshal(hits); err == nil {
		if err := s.cache.Set(key, data, s.ttl); err != nil {
			_, _ = fmt.Fprintf(s.log, "  warning: search cache write failed: %v\n", err)
		}
	}

	return hits, nil
}
