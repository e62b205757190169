package pipeline

import (
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/truthquest/internal/cache"
	"github.com/ppiankov/truthquest/internal/extract"
	"github.com/ppiankov/truthquest/internal/llm"
	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/search"
	"github.com/ppiankov/truthquest/internal/transcript"
	"github.com/ppiankov/truthquest/internal/util"
	"github.com/ppiankov/truthquest/internal/verify"
	"github.com/ppiankov/truthquest/internal/worker"
)

// NewFromConfig wires a pipeline from configuration: language model
// providers, the Brave evidence source (optionally page-enriched and
// cached), the verifier and the file transcript provider. Progress lines
// from every component go to log.
func NewFromConfig(cfg *model.Config, log io.Writer) (*Pipeline, error) {
	if log == nil {
		log = io.Discard
	}

	providers, err := llm.NewProviders(cfg.LLM, cfg.Judge, cfg.HTTP)
	if err != nil {
		return nil, err
	}

	searcher, err := newSearcher(cfg, log)
	if err != nil {
		return nil, err
	}

	verifier := verify.New(searcher, providers.Judge, verify.NewAuthorityClassifier(&cfg.Authority), verify.Options{
		MaxAttempts: cfg.Verify.MaxAttempts,
		Backoff:     cfg.Verify.Backoff,
	})
	verifier.SetLogOutput(log)

	var transcripts transcript.Provider
	if cfg.Transcripts.Dir != "" {
		transcripts = transcript.NewFileProvider(cfg.Transcripts.Dir)
	}

	p := New(extract.NewClaimExtractor(providers.Extractor, cfg.Extract.MaxChars), verifier, transcripts, Options{
		SampleMin:   cfg.Sample.Min,
		SampleMax:   cfg.Sample.Max,
		Concurrency: cfg.Concurrency.Verifiers,
	})
	p.SetLogOutput(log)
	p.SetCapabilities(providers)
	return p, nil
}

func newSearcher(cfg *model.Config, log io.Writer) (search.Searcher, error) {
	switch strings.ToLower(cfg.Search.Provider) {
	case "", "brave":
	default:
		return nil, fmt.Errorf("unknown search provider: %s (supported: brave)", cfg.Search.Provider)
	}

	brave, err := search.NewBraveClient(cfg.Search, cfg.HTTP)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var searcher search.Searcher = brave
	if cfg.Search.EnrichPages > 0 {
		enricher := search.NewPageEnricher(
			brave,
			search.NewPageFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes,
				cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
			util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
			worker.NewLimiter(2, 2),
			cfg.Search.EnrichPages,
		)
		enricher.SetLogOutput(log)
		searcher = enricher
	}

	store, err := cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	if store == nil {
		return searcher, nil
	}

	cached := search.NewCachedSearcher(searcher, store, cfg.Cache.TTL)
	cached.SetLogOutput(log)
	return cached, nil
}
