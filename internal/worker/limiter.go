package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter paces outbound requests per host. The search client and the page
// enricher each hold their own, so search API quota and evidence page fetches
// never compete for the same bucket.
type Limiter struct {
	hosts map[string]*rate.Limiter
	mu    sync.Mutex
	rps   rate.Limit
	burst int
}

// NewLimiter creates a limiter allowing requestsPerSecond per host
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}
	return &Limiter{
		hosts: make(map[string]*rate.Limiter),
		rps:   rate.Limit(requestsPerSecond),
		burst: burst,
	}
}

// Wait blocks until the host of rawURL may be contacted
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	host, err := hostKey(rawURL)
	if err != nil {
		return err
	}
	return l.bucket(host).Wait(ctx)
}

// Allow reports whether a request to rawURL may go out now, consuming a token if so
func (l *Limiter) Allow(rawURL string) bool {
	host, err := hostKey(rawURL)
	if err != nil {
		return false
	}
	return l.bucket(host).Allow()
}

// WaitCrawl is Wait for page fetches. A positive crawlDelay from robots.txt
// slows the host to one request per delay for the rest of the limiter's life.
func (l *Limiter) WaitCrawl(ctx context.Context, rawURL string, crawlDelay time.Duration) error {
	host, err := hostKey(rawURL)
	if err != nil {
		return err
	}
	if crawlDelay > 0 {
		return l.slowDown(host, rate.Every(crawlDelay)).Wait(ctx)
	}
	return l.bucket(host).Wait(ctx)
}

// slowDown swaps the host's bucket for a single-token one at limit unless
// it is already at least that slow
func (l *Limiter) slowDown(host string, limit rate.Limit) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if b, ok := l.hosts[host]; ok && b.Limit() <= limit {
		return b
	}
	b := rate.NewLimiter(limit, 1)
	l.hosts[host] = b
	return b
}

// SetHostRate overrides the pace for one host
func (l *Limiter) SetHostRate(host string, requestsPerSecond float64, burst int) {
	if burst <= 0 {
		burst = l.burst
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hosts[normalizeHost(host)] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) bucket(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	b, ok := l.hosts[host]
	if !ok {
		b = rate.NewLimiter(l.rps, l.burst)
		l.hosts[host] = b
	}
	return b
}

// hostKey returns the bucket key for a URL: lowercased host without port or "www."
func hostKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if parsed.Hostname() == "" {
		return "", fmt.Errorf("no host in URL %q", rawURL)
	}
	return normalizeHost(parsed.Hostname()), nil
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(host), "www.")
}
