package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/truthquest/internal/llm"
	"github.com/ppiankov/truthquest/internal/model"
)

// DefaultMaxChars bounds the transcript text sent to the model
const DefaultMaxChars = 60000

const truncationMarker = " [transcript truncated]"

// ClaimExtractor turns transcript text into candidate facts using a language model
type ClaimExtractor struct {
	provider  llm.Provider
	maxChars  int
	maxTokens int
}

// NewClaimExtractor creates an extractor backed by provider.
// maxChars <= 0 uses DefaultMaxChars.
func NewClaimExtractor(provider llm.Provider, maxChars int) *ClaimExtractor {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &ClaimExtractor{
		provider:  provider,
		maxChars:  maxChars,
		maxTokens: 4000,
	}
}

// rawFact mirrors the model's JSON; pointers distinguish absent fields
type rawFact struct {
	Claim      string   `json:"claim"`
	Category   string   `json:"category"`
	Context    string   `json:"context"`
	Entities   []string `json:"entities"`
	Verifiable *bool    `json:"verifiable"`
}

type rawExtraction struct {
	Facts         []rawFact `json:"facts"`
	CentralThesis *rawFact  `json:"central_thesis"`
}

// Extract identifies the factual claims in text. Any failure is returned
// as a *model.ExtractionError; nothing is retried here.
func (e *ClaimExtractor) Extract(ctx context.Context, text string) (*model.Extraction, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, &model.ExtractionError{Cause: model.ErrEmptyTranscript}
	}
	if e.provider == nil {
		return nil, &model.ExtractionError{Cause: fmt.Errorf("%w: no language model configured", model.ErrCapabilityUnavailable)}
	}

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		System:    extractionSystemPrompt,
		Prompt:    fmt.Sprintf(extractionUserPrompt, truncate(text, e.maxChars)),
		MaxTokens: e.maxTokens,
		JSON:      true,
	})
	if err != nil {
		return nil, &model.ExtractionError{Cause: err}
	}

	var raw rawExtraction
	if err := llm.ParseJSONObject(resp.Text, &raw); err != nil {
		return nil, &model.ExtractionError{Cause: err}
	}

	result := &model.Extraction{
		Facts: normalizeFacts(raw.Facts),
		Usage: resp.Usage,
	}
	if raw.CentralThesis != nil {
		if thesis, ok := normalizeFact(*raw.CentralThesis); ok {
			result.CentralThesis = &thesis
		}
	}

	return result, nil
}

// normalizeFacts validates each fact and drops empty or repeated claims
func normalizeFacts(raw []rawFact) []model.CandidateFact {
	seen := make(map[string]bool)
	facts := make([]model.CandidateFact, 0, len(raw))

	for _, r := range raw {
		fact, ok := normalizeFact(r)
		if !ok {
			continue
		}
		key := strings.ToLower(fact.Claim)
		if seen[key] {
			continue
		}
		seen[key] = true
		facts = append(facts, fact)
	}

	return facts
}

func normalizeFact(r rawFact) (model.CandidateFact, bool) {
	claim := strings.Join(strings.Fields(r.Claim), " ")
	if claim == "" {
		return model.CandidateFact{}, false
	}

	verifiable := true
	if r.Verifiable != nil {
		verifiable = *r.Verifiable
	}

	entities := make([]string, 0, len(r.Entities))
	for _, ent := range r.Entities {
		if ent = strings.TrimSpace(ent); ent != "" {
			entities = append(entities, ent)
		}
	}

	return model.CandidateFact{
		Claim:      claim,
		Category:   model.ParseCategory(r.Category),
		Verifiable: verifiable,
		Context:    strings.TrimSpace(r.Context),
		Entities:   entities,
	}, true
}

// truncate cuts text to at most max bytes without splitting a UTF-8 sequence
func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8Start(text[cut]) {
		cut--
	}
	return text[:cut] + truncationMarker
}

func utf8Start(b byte) bool {
	return b&0xC0 != 0x80
}
