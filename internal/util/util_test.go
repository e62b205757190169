package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewProxyFunc(t *testing.T) {
	proxy := NewProxyFunc("http://plain:3128", "http://secure:3129", "")

	httpsReq := &http.Request{URL: &url.URL{Scheme: "https", Host: "example.com"}}
	got, err := proxy(httpsReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Host != "secure:3129" {
		t.Errorf("https request: expected secure:3129, got %s", got.Host)
	}

	httpReq := &http.Request{URL: &url.URL{Scheme: "http", Host: "example.com"}}
	got, err = proxy(httpReq)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Host != "plain:3128" {
		t.Errorf("http request: expected plain:3128, got %s", got.Host)
	}
}

func TestNewProxyFunc_NoProxyAndFallback(t *testing.T) {
	t.Setenv("HTTP_PROXY", "")
	t.Setenv("HTTPS_PROXY", "")
	t.Setenv("NO_PROXY", "")

	proxy := NewProxyFunc("http://plain:3128", "", "internal.example.com")

	got, err := proxy(&http.Request{URL: &url.URL{Scheme: "https", Host: "example.com"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.Host != "plain:3128" {
		t.Errorf("expected https to fall back to plain:3128, got %v", got)
	}

	got, err = proxy(&http.Request{URL: &url.URL{Scheme: "http", Host: "internal.example.com"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Errorf("expected no proxy for internal host, got %v", got)
	}
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient(3*time.Second, "", "", "")
	if client.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout, got %v", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok || transport.Proxy == nil {
		t.Fatalf("expected transport with proxy func, got %T", client.Transport)
	}
}

func TestRobotsChecker(t *testing.T) {
	var robotsHits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			atomic.AddInt32(&robotsHits, 1)
			_, _ = w.Write([]byte("User-agent: TruthQuest\nDisallow: /private\nCrawl-delay: 2\n\nUser-agent: *\nDisallow:\n"))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	checker := NewRobotsChecker("TruthQuest/0.1 (+https://example.com)", 5*time.Second)
	ctx := context.Background()

	allowed, delay, err := checker.CanFetch(ctx, server.URL+"/articles/1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !allowed {
		t.Error("expected /articles/1 to be allowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected crawl delay 2s, got %v", delay)
	}

	if allowed, _, _ := checker.CanFetch(ctx, server.URL+"/private/page"); allowed {
		t.Error("expected /private/page to be disallowed")
	}

	if hits := atomic.LoadInt32(&robotsHits); hits != 1 {
		t.Errorf("expected robots.txt to be fetched once, got %d", hits)
	}
}

func TestRobotsChecker_MissingRobotsAllows(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	checker := NewRobotsChecker("TruthQuest/0.1", 5*time.Second)
	if allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/anything"); err != nil || !allowed {
		t.Error("expected fetch to be allowed when robots.txt is missing")
	}
}

func TestRobotsChecker_RejectsNonHTTP(t *testing.T) {
	checker := NewRobotsChecker("TruthQuest/0.1", time.Second)
	if _, _, err := checker.CanFetch(context.Background(), "ftp://example.com/file"); err == nil {
		t.Error("expected ftp URL to be rejected")
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := map[string]string{
		"TruthQuest/0.1 (+https://x)": "TruthQuest",
		"Bot":                         "Bot",
		"":                            "",
	}
	for in, want := range tests {
		if got := NormalizeUserAgent(in); got != want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", in, got, want)
		}
	}
}
