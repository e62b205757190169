package llm

import (
	"errors"
	"testing"

	"github.com/ppiankov/truthquest/internal/model"
)

func TestParseJSONObject(t *testing.T) {
	type payload struct {
		Verdict string `json:"verdict"`
	}

	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{name: "plain", text: `{"verdict": "supported"}`, want: "supported"},
		{name: "fenced", text: "```json\n{\"verdict\": \"refuted\"}\n```", want: "refuted"},
		{name: "prose", text: `Here you go: {"verdict": "inconclusive"} hope it helps`, want: "inconclusive"},
		{name: "empty", text: "  ", wantErr: true},
		{name: "no object", text: "no json here", wantErr: true},
		{name: "broken", text: `{"verdict": }`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := ParseJSONObject(tt.text, &p)
			if tt.wantErr {
				if !errors.Is(err, model.ErrMalformedResponse) {
					t.Errorf("Expected ErrMalformedResponse, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p.Verdict != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, p.Verdict)
			}
		})
	}
}

func TestNewProvider(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "openai", APIKey: "k"}); err != nil {
		t.Errorf("openai: unexpected error %v", err)
	}
	if _, err := NewProvider(Config{Provider: "Claude", APIKey: "k"}); err != nil {
		t.Errorf("claude alias: unexpected error %v", err)
	}
	if _, err := NewProvider(Config{Provider: "ollama"}); err != nil {
		t.Errorf("ollama: unexpected error %v", err)
	}
	if p, err := NewProvider(Config{Provider: " local "}); err != nil || p.Name() != "ollama" {
		t.Errorf("local alias: expected ollama, got %v %v", p, err)
	}
	if _, err := NewProvider(Config{Provider: ""}); err == nil {
		t.Error("expected error for empty provider")
	}
	if _, err := NewProvider(Config{Provider: "gemini"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewProviders_JudgeFallback(t *testing.T) {
	extract := model.LLMConfig{Provider: "openai", APIKey: "k"}

	p, err := NewProviders(extract, model.LLMConfig{}, model.HTTPConfig{})
	if err != nil {
		t.Fatalf("NewProviders failed: %v", err)
	}
	if p.Judge != p.Extractor {
		t.Error("expected judge to reuse the extraction provider")
	}

	p, err = NewProviders(extract, model.LLMConfig{Provider: "ollama"}, model.HTTPConfig{})
	if err != nil {
		t.Fatalf("NewProviders failed: %v", err)
	}
	if p.Judge.Name() != "ollama" || p.Extractor.Name() != "openai" {
		t.Errorf("unexpected providers: %s / %s", p.Extractor.Name(), p.Judge.Name())
	}

	if _, err := NewProviders(extract, model.LLMConfig{Provider: "mystery"}, model.HTTPConfig{}); err == nil {
		t.Error("expected error for unknown judge provider")
	}
	if _, err := NewProviders(model.LLMConfig{}, model.LLMConfig{}, model.HTTPConfig{}); err == nil {
		t.Error("expected error without an extraction provider")
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(
		model.LLMConfig{Provider: "openai", Model: "gpt-4o", APIKey: "k", Timeout: 9, MaxTokens: 100},
		model.HTTPConfig{HTTPSProxy: "http://proxy:8080"},
	)
	if cfg.Provider != "openai" || cfg.Model != "gpt-4o" || cfg.Timeout != 9 || cfg.MaxTokens != 100 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.HTTPSProxy != "http://proxy:8080" {
		t.Errorf("expected proxy to carry over, got %q", cfg.HTTPSProxy)
	}
}
