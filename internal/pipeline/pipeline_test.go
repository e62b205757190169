package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/transcript"
	"github.com/ppiankov/truthquest/internal/worker"
)

type stubExtractor struct {
	extraction *model.Extraction
	err        error
	calls      int
}

func (s *stubExtractor) Extract(ctx context.Context, text string) (*model.Extraction, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.extraction, nil
}

// recordingVerifier answers with a fixed verdict per claim and records calls
type recordingVerifier struct {
	mu       sync.Mutex
	verdicts map[string]model.Verdict
	seen     []string
}

func (v *recordingVerifier) Verify(ctx context.Context, fact model.CandidateFact) model.Verdict {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.seen = append(v.seen, fact.Claim)
	if verdict, ok := v.verdicts[fact.Claim]; ok {
		return verdict
	}
	return model.Verdict{Label: model.LabelSupported, Confidence: 80, Reasoning: "ok", Sources: []model.Source{}}
}

func fact(claim string) model.CandidateFact {
	return model.CandidateFact{Claim: claim, Category: model.CategoryHistorical, Verifiable: true, Entities: []string{}}
}

func newTestPipeline(extractor Extractor, verifier worker.Verifier, transcripts transcript.Provider) *Pipeline {
	p := New(extractor, verifier, transcripts, Options{SampleMin: 5, SampleMax: 7, Concurrency: 3})
	p.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }
	p.newID = func() string { return "run-1" }
	return p
}

func TestPipeline_MoonLanding(t *testing.T) {
	extractor := &stubExtractor{extraction: &model.Extraction{
		Facts: []model.CandidateFact{fact("The moon landing happened in 1969.")},
		Usage: model.Usage{PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120},
	}}
	verifier := &recordingVerifier{verdicts: map[string]model.Verdict{
		"The moon landing happened in 1969.": {
			Label:      model.LabelSupported,
			Confidence: 95,
			Reasoning:  "NASA records confirm Apollo 11 landed on July 20, 1969.",
			Sources:    []model.Source{{Title: "Apollo 11", URL: "https://www.nasa.gov/apollo11", Authority: model.TierPrimary}},
		},
	}}

	report, err := newTestPipeline(extractor, verifier, nil).Run(context.Background(), "The moon landing happened in 1969.", model.ModeSample)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Score != 100 || report.Grade != model.GradeA {
		t.Errorf("expected score 100 grade A, got %d %s", report.Score, report.Grade)
	}
	if report.Summary != (model.Summary{Supported: 1}) {
		t.Errorf("unexpected summary: %+v", report.Summary)
	}
	if report.TotalFacts != 1 || report.SampledFacts != 1 {
		t.Errorf("expected 1/1 facts, got %d/%d", report.SampledFacts, report.TotalFacts)
	}
	if report.CheckMode != model.ModeSample {
		t.Errorf("expected sample mode, got %s", report.CheckMode)
	}
	if report.ID != "run-1" {
		t.Errorf("expected stamped id, got %q", report.ID)
	}
	if report.GeneratedAt.Location() != time.UTC || report.GeneratedAt.Hour() != 11 {
		t.Errorf("expected UTC timestamp, got %v", report.GeneratedAt)
	}
	if report.Usage == nil || report.Usage.TotalTokens != 120 {
		t.Errorf("expected extraction usage, got %+v", report.Usage)
	}
	if report.CentralThesis != nil {
		t.Errorf("expected no central thesis, got %+v", report.CentralThesis)
	}
}

func TestPipeline_ErrorVerdictsDoNotFailRun(t *testing.T) {
	facts := []model.CandidateFact{fact("a"), fact("b"), fact("c"), fact("d"), fact("e")}
	extractor := &stubExtractor{extraction: &model.Extraction{Facts: facts}}
	verifier := &recordingVerifier{verdicts: map[string]model.Verdict{
		"c": model.ErrorVerdict("Evidence search is unavailable"),
	}}

	report, err := newTestPipeline(extractor, verifier, nil).Run(context.Background(), "text", model.ModeFull)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(report.VerifiedFacts) != 5 {
		t.Fatalf("expected 5 verified facts, got %d", len(report.VerifiedFacts))
	}
	for i, vf := range report.VerifiedFacts {
		if vf.Claim != facts[i].Claim {
			t.Errorf("position %d: expected %q, got %q", i, facts[i].Claim, vf.Claim)
		}
	}
	if report.VerifiedFacts[2].Verification.Label != model.LabelError {
		t.Errorf("expected error verdict at position 2, got %s", report.VerifiedFacts[2].Verification.Label)
	}
	if report.Score != 100 || report.Summary.Supported != 4 {
		t.Errorf("expected error verdict to be excluded from score, got %d %+v", report.Score, report.Summary)
	}
}

func TestPipeline_SampleModeBoundsWorkingSet(t *testing.T) {
	var facts []model.CandidateFact
	for i := 0; i < 12; i++ {
		facts = append(facts, fact(fmt.Sprintf("fact %d", i)))
	}
	extractor := &stubExtractor{extraction: &model.Extraction{Facts: facts}}
	verifier := &recordingVerifier{}

	report, err := newTestPipeline(extractor, verifier, nil).Run(context.Background(), "text", model.ModeSample)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.TotalFacts != 12 {
		t.Errorf("expected total 12, got %d", report.TotalFacts)
	}
	if report.SampledFacts < 5 || report.SampledFacts > 7 {
		t.Errorf("expected 5-7 sampled facts, got %d", report.SampledFacts)
	}
	if len(verifier.seen) != report.SampledFacts {
		t.Errorf("expected %d verifications, got %d", report.SampledFacts, len(verifier.seen))
	}
}

func TestPipeline_CentralThesis(t *testing.T) {
	t.Run("verified in the same batch", func(t *testing.T) {
		thesis := fact("Apollo 11 put humans on the moon.")
		extractor := &stubExtractor{extraction: &model.Extraction{
			Facts:         []model.CandidateFact{fact("a"), fact("b")},
			CentralThesis: &thesis,
		}}
		verifier := &recordingVerifier{verdicts: map[string]model.Verdict{
			thesis.Claim: {Label: model.LabelRefuted, Confidence: 70, Reasoning: "no", Sources: []model.Source{}},
		}}

		report, err := newTestPipeline(extractor, verifier, nil).Run(context.Background(), "text", model.ModeFull)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if len(report.VerifiedFacts) != 2 {
			t.Errorf("expected thesis to be split out, got %d facts", len(report.VerifiedFacts))
		}
		if report.CentralThesis == nil || report.CentralThesis.Verification.Label != model.LabelRefuted {
			t.Fatalf("expected refuted thesis, got %+v", report.CentralThesis)
		}
		if report.Score != 100 {
			t.Errorf("expected thesis to stay out of the score, got %d", report.Score)
		}
		if len(verifier.seen) != 3 {
			t.Errorf("expected 3 verifications, got %d", len(verifier.seen))
		}
	})

	t.Run("not verifiable", func(t *testing.T) {
		thesis := fact("Space exploration is worth it.")
		thesis.Verifiable = false
		extractor := &stubExtractor{extraction: &model.Extraction{
			Facts:         []model.CandidateFact{fact("a")},
			CentralThesis: &thesis,
		}}
		verifier := &recordingVerifier{}

		report, err := newTestPipeline(extractor, verifier, nil).Run(context.Background(), "text", model.ModeFull)
		if err != nil {
			t.Fatalf("Run failed: %v", err)
		}

		if report.CentralThesis == nil || report.CentralThesis.Verification.Label != model.LabelInconclusive {
			t.Fatalf("expected inconclusive thesis, got %+v", report.CentralThesis)
		}
		if len(verifier.seen) != 1 {
			t.Errorf("expected only the fact to be verified, got %v", verifier.seen)
		}
	})
}

func TestPipeline_ExtractionFailureIsFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "typed", err: &model.ExtractionError{Cause: model.ErrMalformedResponse}},
		{name: "plain", err: model.ErrCapabilityUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verifier := &recordingVerifier{}
			p := newTestPipeline(&stubExtractor{err: tt.err}, verifier, nil)

			report, err := p.Run(context.Background(), "text", model.ModeSample)
			if report != nil {
				t.Error("expected no report")
			}
			var extractionErr *model.ExtractionError
			if !errors.As(err, &extractionErr) {
				t.Fatalf("expected ExtractionError, got %v", err)
			}
			if !errors.Is(err, tt.err) {
				t.Errorf("expected cause to be preserved, got %v", err)
			}
			if len(verifier.seen) != 0 {
				t.Error("expected no verification after extraction failure")
			}
		})
	}
}

func TestPipeline_InvalidMode(t *testing.T) {
	extractor := &stubExtractor{extraction: &model.Extraction{}}
	_, err := newTestPipeline(extractor, &recordingVerifier{}, nil).Run(context.Background(), "text", model.Mode("everything"))
	if !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if extractor.calls != 0 {
		t.Error("expected extraction to be skipped")
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	extractor := &stubExtractor{extraction: &model.Extraction{Facts: []model.CandidateFact{fact("a"), fact("b")}}}
	report, err := newTestPipeline(extractor, &recordingVerifier{}, nil).Run(ctx, "text", model.ModeFull)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if report != nil {
		t.Error("expected partial results to be discarded")
	}
}

func TestPipeline_Analyze(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "dQw4w9WgXcQ.json"), []byte(`{"full": "The moon landing happened in 1969."}`), 0644); err != nil {
		t.Fatal(err)
	}

	extractor := &stubExtractor{extraction: &model.Extraction{Facts: []model.CandidateFact{fact("The moon landing happened in 1969.")}}}
	p := newTestPipeline(extractor, &recordingVerifier{}, transcript.NewFileProvider(dir))

	report, err := p.Analyze(context.Background(), "https://youtu.be/dQw4w9WgXcQ", model.ModeSample)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if report.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("expected video id, got %q", report.VideoID)
	}

	if _, err := p.Analyze(context.Background(), "https://vimeo.com/1", model.ModeSample); !errors.Is(err, model.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := p.Analyze(context.Background(), "aaaaaaaaaaa", model.ModeSample); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	noProvider := newTestPipeline(extractor, &recordingVerifier{}, nil)
	if _, err := noProvider.Analyze(context.Background(), "dQw4w9WgXcQ", model.ModeSample); !errors.Is(err, model.ErrTranscriptUnavailable) {
		t.Errorf("expected ErrTranscriptUnavailable, got %v", err)
	}
}

func TestPipeline_AnalyzeSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "talk.txt")
	if err := os.WriteFile(path, []byte("The moon landing happened in 1969."), 0644); err != nil {
		t.Fatal(err)
	}

	extractor := &stubExtractor{extraction: &model.Extraction{Facts: []model.CandidateFact{fact("a")}}}
	report, err := newTestPipeline(extractor, &recordingVerifier{}, nil).AnalyzeSource(context.Background(), path, model.ModeFull)
	if err != nil {
		t.Fatalf("AnalyzeSource failed: %v", err)
	}
	if report.CheckMode != model.ModeFull || len(report.VerifiedFacts) != 1 {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestNewFromConfig(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "sk-test"
	cfg.Cache.Enabled = false

	if _, err := NewFromConfig(cfg, nil); err == nil {
		t.Error("expected error without a Brave API key")
	}

	cfg.Search.APIKey = "brave-test"
	cfg.Search.EnrichPages = 2
	if _, err := NewFromConfig(cfg, nil); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Judge.Provider = "mystery"
	if _, err := NewFromConfig(cfg, nil); err == nil {
		t.Error("expected error for unknown judge provider")
	}

	cfg.Judge.Provider = ""
	cfg.Search.Provider = "bing"
	if _, err := NewFromConfig(cfg, nil); err == nil {
		t.Error("expected error for unknown search provider")
	}
}
