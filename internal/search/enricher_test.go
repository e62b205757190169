package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/util"
	"github.com/ppiankov/truthquest/internal/worker"
)

func TestPageEnricher(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/robots.txt":
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /blocked\n"))
		case "/article":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html><body><p>Apollo 11 landed in 1969.</p></body></html>"))
		case "/blocked":
			t.Error("robots.txt disallowed page was fetched")
		case "/data.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF"))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	next := &countingSearcher{hits: []model.EvidenceHit{
		{Title: "Article", URL: server.URL + "/article", Snippet: "snippet one"},
		{Title: "Blocked", URL: server.URL + "/blocked", Snippet: "snippet two"},
		{Title: "PDF", URL: server.URL + "/data.pdf", Snippet: "snippet three"},
		{Title: "Beyond topN", URL: server.URL + "/article", Snippet: "snippet four"},
	}}

	enricher := NewPageEnricher(
		next,
		NewPageFetcher(5*time.Second, "TruthQuest/0.1", 1<<20, "", "", ""),
		util.NewRobotsChecker("TruthQuest/0.1", 5*time.Second),
		worker.NewLimiter(100, 10),
		3,
	)

	hits, err := enricher.Search(context.Background(), "apollo landing")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(hits) != 4 {
		t.Fatalf("expected 4 hits, got %d", len(hits))
	}

	if !strings.Contains(hits[0].Snippet, "snippet one") || !strings.Contains(hits[0].Snippet, "Apollo 11 landed in 1969.") {
		t.Errorf("expected enriched snippet, got %q", hits[0].Snippet)
	}
	if hits[1].Snippet != "snippet two" {
		t.Errorf("expected disallowed page to keep its snippet, got %q", hits[1].Snippet)
	}
	if hits[2].Snippet != "snippet three" {
		t.Errorf("expected non-HTML page to keep its snippet, got %q", hits[2].Snippet)
	}
	if hits[3].Snippet != "snippet four" {
		t.Errorf("expected hits beyond topN untouched, got %q", hits[3].Snippet)
	}

	if next.hits[0].Snippet != "snippet one" {
		t.Error("expected upstream hits not to be mutated")
	}
}

func TestPageEnricher_PropagatesSearchError(t *testing.T) {
	next := &countingSearcher{err: model.ErrSearchUnavailable}
	enricher := NewPageEnricher(next, NewPageFetcher(time.Second, "ua", 0, "", "", ""), nil, nil, 2)

	if _, err := enricher.Search(context.Background(), "q"); err == nil {
		t.Fatal("expected search error to propagate")
	}
}
