// Package verify judges individual claims against searched evidence.
package verify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ppiankov/truthquest/internal/llm"
	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/search"
)

const maxQueryLen = 400

// sleepFunc waits between attempts (injectable for tests)
var sleepFunc = func(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Options tunes a Verifier
type Options struct {
	MaxAttempts int           // Total attempts per fact for transient failures; <= 0 means 1
	Backoff     time.Duration // Delay before the second attempt, doubled each time
}

// Verifier checks one fact at a time: search, then judge. It never returns
// an error; every failure becomes an error verdict.
type Verifier struct {
	searcher  search.Searcher
	judge     llm.Provider
	authority *AuthorityClassifier
	opts      Options
	log       io.Writer
}

// New creates a verifier. A nil classifier uses the default authority lists.
func New(searcher search.Searcher, judge llm.Provider, authority *AuthorityClassifier, opts Options) *Verifier {
	if authority == nil {
		authority = NewAuthorityClassifier(nil)
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	return &Verifier{
		searcher:  searcher,
		judge:     judge,
		authority: authority,
		opts:      opts,
		log:       io.Discard,
	}
}

// SetLogOutput directs per-fact failure lines to w
func (v *Verifier) SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	v.log = w
}

// Verify returns the verdict for fact
func (v *Verifier) Verify(ctx context.Context, fact model.CandidateFact) (verdict model.Verdict) {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(v.log, "  verify panic for %q: %v\n", shorten(fact.Claim), r)
			verdict = model.ErrorVerdict(model.FailureClass(fmt.Errorf("panic: %v", r)))
		}
	}()

	var lastErr error
	for attempt := 0; attempt < v.opts.MaxAttempts; attempt++ {
		if attempt > 0 {
			backoff := v.opts.Backoff * time.Duration(1<<uint(attempt-1))
			if err := sleepFunc(ctx, backoff); err != nil {
				lastErr = err
				break
			}
		}

		result, err := v.verifyOnce(ctx, fact)
		if err == nil {
			return result
		}
		lastErr = err
		_, _ = fmt.Fprintf(v.log, "  verify attempt %d/%d failed for %q: %v\n", attempt+1, v.opts.MaxAttempts, shorten(fact.Claim), err)

		if !isRetryable(err) || ctx.Err() != nil {
			break
		}
	}

	return model.ErrorVerdict(model.FailureClass(lastErr))
}

func (v *Verifier) verifyOnce(ctx context.Context, fact model.CandidateFact) (model.Verdict, error) {
	if v.searcher == nil {
		return model.Verdict{}, fmt.Errorf("%w: no evidence source configured", model.ErrSearchUnavailable)
	}
	if v.judge == nil {
		return model.Verdict{}, fmt.Errorf("%w: no judging model configured", model.ErrCapabilityUnavailable)
	}

	hits, err := v.searcher.Search(ctx, buildQuery(fact.Claim))
	if err != nil {
		return model.Verdict{}, fmt.Errorf("search: %w", err)
	}
	if len(hits) == 0 {
		return model.Verdict{
			Label:      model.LabelInconclusive,
			Confidence: 0,
			Reasoning:  "No evidence was found for this claim.",
			Sources:    []model.Source{},
		}, nil
	}

	evidence := v.authority.Rank(hits)

	resp, err := v.judge.Complete(ctx, llm.CompletionRequest{
		System:      judgeSystemPrompt,
		Prompt:      buildJudgePrompt(fact.Claim, fact.Context, evidence),
		MaxTokens:   800,
		Temperature: 0.1,
		JSON:        true,
	})
	if err != nil {
		return model.Verdict{}, fmt.Errorf("judge: %w", err)
	}

	return parseJudgement(resp.Text, evidence)
}

type judgement struct {
	Verdict      string      `json:"verdict"`
	Confidence   json.Number `json:"confidence"`
	Reasoning    string      `json:"reasoning"`
	CitedSources []int       `json:"cited_sources"`
}

func parseJudgement(text string, evidence []RankedHit) (model.Verdict, error) {
	var j judgement
	if err := llm.ParseJSONObject(text, &j); err != nil {
		return model.Verdict{}, err
	}

	label, ok := model.ParseLabel(j.Verdict)
	if !ok || label == model.LabelError {
		return model.Verdict{}, fmt.Errorf("%w: unknown verdict %q", model.ErrMalformedResponse, j.Verdict)
	}

	reasoning := strings.TrimSpace(j.Reasoning)
	if reasoning == "" {
		return model.Verdict{}, fmt.Errorf("%w: verdict has no reasoning", model.ErrMalformedResponse)
	}

	return model.Verdict{
		Label:      label,
		Confidence: normalizeConfidence(j.Confidence),
		Reasoning:  reasoning,
		Sources:    citedSources(j.CitedSources, evidence),
	}, nil
}

// normalizeConfidence maps fractional literals in (0, 1], such as 0.85
// or 1.0, to percentages and clamps to 0-100. An integer 1 stays 1%.
func normalizeConfidence(raw json.Number) int {
	c, err := raw.Float64()
	if err != nil {
		return 0
	}
	if c > 0 && c <= 1 && strings.ContainsAny(raw.String(), ".eE") {
		c *= 100
	}
	n := int(math.Round(c))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// citedSources maps 1-based citations to hits, dropping duplicates and
// out-of-range numbers
func citedSources(cited []int, evidence []RankedHit) []model.Source {
	sources := make([]model.Source, 0, len(cited))
	seen := make(map[string]bool)
	for _, n := range cited {
		if n < 1 || n > len(evidence) {
			continue
		}
		h := evidence[n-1]
		if seen[h.URL] {
			continue
		}
		seen[h.URL] = true
		sources = append(sources, model.Source{Title: h.Title, URL: h.URL, Authority: h.Tier})
	}
	return sources
}

func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return errors.Is(err, model.ErrRateLimited) ||
		errors.Is(err, model.ErrSearchUnavailable) ||
		errors.Is(err, model.ErrCapabilityUnavailable)
}

// buildQuery forms the search query from the claim alone
func buildQuery(claim string) string {
	q := strings.Join(strings.Fields(claim), " ")
	if len(q) <= maxQueryLen {
		return q
	}
	cut := strings.LastIndex(q[:maxQueryLen], " ")
	if cut <= 0 {
		cut = runeBoundary(q, maxQueryLen)
	}
	return q[:cut]
}

func shorten(s string) string {
	if len(s) <= 60 {
		return s
	}
	return s[:runeBoundary(s, 57)] + "..."
}

// runeBoundary backs n off to the start of the rune it falls in
func runeBoundary(s string, n int) int {
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return n
}
