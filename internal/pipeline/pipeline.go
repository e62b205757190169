// Package pipeline runs a transcript through extraction, sampling,
// verification and scoring to produce a credibility report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/sample"
	"github.com/ppiankov/truthquest/internal/score"
	"github.com/ppiankov/truthquest/internal/transcript"
	"github.com/ppiankov/truthquest/internal/worker"
)

// Extractor identifies candidate facts in transcript text
type Extractor interface {
	Extract(ctx context.Context, text string) (*model.Extraction, error)
}

// Options tunes a Pipeline
type Options struct {
	SampleMin   int
	SampleMax   int
	Concurrency int // Concurrent fact verifications
}

// Pipeline orchestrates the complete analysis of one transcript
type Pipeline struct {
	extractor    Extractor
	sampler      *sample.Sampler
	orchestrator *worker.Orchestrator
	transcripts  transcript.Provider
	capabilities []capability
	log          io.Writer

	now   func() time.Time
	newID func() string
}

// New creates a pipeline. transcripts may be nil when only raw text is analyzed.
func New(extractor Extractor, verifier worker.Verifier, transcripts transcript.Provider, opts Options) *Pipeline {
	return &Pipeline{
		extractor:    extractor,
		sampler:      sample.New(opts.SampleMin, opts.SampleMax),
		orchestrator: worker.NewOrchestrator(verifier, opts.Concurrency),
		transcripts:  transcripts,
		log:          io.Discard,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// SetLogOutput directs progress lines to w
func (p *Pipeline) SetLogOutput(w io.Writer) {
	if w == nil {
		w = io.Discard
	}
	p.log = w
}

// Extract runs claim extraction only. Failures are always *model.ExtractionError.
func (p *Pipeline) Extract(ctx context.Context, text string) (*model.Extraction, error) {
	extraction, err := p.extractor.Extract(ctx, text)
	if err != nil {
		var extractionErr *model.ExtractionError
		if errors.As(err, &extractionErr) {
			return nil, err
		}
		return nil, &model.ExtractionError{Cause: err}
	}
	return extraction, nil
}

// Run analyzes transcript text and returns the scored report.
// Extraction failure and cancellation are fatal; per-fact failures are not.
func (p *Pipeline) Run(ctx context.Context, text string, mode model.Mode) (*model.Report, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: unknown check mode %q", model.ErrInvalidInput, mode)
	}

	// 1. Extract
	extraction, err := p.Extract(ctx, text)
	if err != nil {
		return nil, err
	}

	// 2. Sample
	working := p.sampler.Sample(extraction.Facts, mode)
	fmt.Fprintf(p.log, "Extracted %d facts, verifying %d (%s mode)\n", len(extraction.Facts), len(working), mode)

	// 3. Verify, with a verifiable central thesis riding in the same batch
	batch := make([]model.CandidateFact, 0, len(working)+1)
	batch = append(batch, working...)
	thesis := extraction.CentralThesis
	checkThesis := thesis != nil && thesis.Verifiable
	if checkThesis {
		batch = append(batch, *thesis)
	}

	verified, err := p.orchestrator.RunAll(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("verify facts: %w", err)
	}

	var verifiedThesis *model.VerifiedFact
	switch {
	case checkThesis:
		last := verified[len(verified)-1]
		verified = verified[:len(verified)-1]
		verifiedThesis = &last
	case thesis != nil:
		verifiedThesis = &model.VerifiedFact{
			CandidateFact: *thesis,
			Verification: model.Verdict{
				Label:     model.LabelInconclusive,
				Reasoning: "The central thesis is not independently verifiable.",
				Sources:   []model.Source{},
			},
		}
	}

	// 4. Score
	report := score.Aggregate(verified, verifiedThesis, len(extraction.Facts), mode)
	report.ID = p.newID()
	report.GeneratedAt = p.now().UTC()
	usage := extraction.Usage
	report.Usage = &usage

	fmt.Fprintf(p.log, "Score %d (%s): %d supported, %d partially true, %d refuted\n",
		report.Score, report.Grade, report.Summary.Supported, report.Summary.PartiallyTrue, report.Summary.Refuted)

	return report, nil
}

// RunTranscript analyzes a loaded transcript
func (p *Pipeline) RunTranscript(ctx context.Context, t *transcript.Transcript, mode model.Mode) (*model.Report, error) {
	report, err := p.Run(ctx, t.FullText(), mode)
	if err != nil {
		return nil, err
	}
	report.VideoID = t.VideoID
	return report, nil
}

// FetchTranscript resolves a video URL or id and fetches its transcript
func (p *Pipeline) FetchTranscript(ctx context.Context, videoRef string) (*transcript.Transcript, error) {
	videoID, err := transcript.ParseVideoID(videoRef)
	if err != nil {
		return nil, err
	}
	if p.transcripts == nil {
		return nil, fmt.Errorf("%w: no transcript provider configured", model.ErrTranscriptUnavailable)
	}

	fmt.Fprintf(p.log, "Fetching transcript for %s\n", videoID)
	t, err := p.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("fetch transcript: %w", err)
	}
	if t.VideoID == "" {
		t.VideoID = videoID
	}
	return t, nil
}

// Analyze fetches the transcript for a video reference and runs it
func (p *Pipeline) Analyze(ctx context.Context, videoRef string, mode model.Mode) (*model.Report, error) {
	t, err := p.FetchTranscript(ctx, videoRef)
	if err != nil {
		return nil, err
	}
	return p.RunTranscript(ctx, t, mode)
}

// AnalyzeSource treats source as a transcript file when one exists at that
// path and as a video reference otherwise
func (p *Pipeline) AnalyzeSource(ctx context.Context, source string, mode model.Mode) (*model.Report, error) {
	if info, err := os.Stat(source); err == nil && !info.IsDir() {
		t, err := transcript.Load(source)
		if err != nil {
			return nil, err
		}
		return p.RunTranscript(ctx, t, mode)
	}
	return p.Analyze(ctx, source, mode)
}
