package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/truthquest/internal/model"
)

const supportedProviders = "openai, anthropic, ollama"

// providerAliases maps accepted spellings onto canonical provider names
var providerAliases = map[string]string{
	"openai":    "openai",
	"gpt":       "openai",
	"anthropic": "anthropic",
	"claude":    "anthropic",
	"ollama":    "ollama",
	"local":     "ollama",
}

// NewProvider creates the provider named by config.Provider
func NewProvider(config Config) (Provider, error) {
	if strings.TrimSpace(config.Provider) == "" {
		return nil, fmt.Errorf("no LLM provider configured (supported: %s)", supportedProviders)
	}

	switch providerAliases[strings.ToLower(strings.TrimSpace(config.Provider))] {
	case "openai":
		return NewOpenAIProvider(config)
	case "anthropic":
		return NewAnthropicProvider(config)
	case "ollama":
		return NewOllamaProvider(config)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: %s)", config.Provider, supportedProviders)
	}
}

// Providers holds the model used to extract claims and the one that judges
// evidence. They are the same provider unless a judge is configured.
type Providers struct {
	Extractor Provider
	Judge     Provider
}

// NewProviders builds the extraction provider from extract and the judge
// from judge, falling back to the extraction provider when judge names none
func NewProviders(extract, judge model.LLMConfig, httpCfg model.HTTPConfig) (*Providers, error) {
	extractor, err := NewProvider(ConfigFromModel(extract, httpCfg))
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}

	p := &Providers{Extractor: extractor, Judge: extractor}
	if judge.Provider != "" {
		p.Judge, err = NewProvider(ConfigFromModel(judge, httpCfg))
		if err != nil {
			return nil, fmt.Errorf("judge llm: %w", err)
		}
	}
	return p, nil
}
