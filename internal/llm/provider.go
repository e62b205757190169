package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ppiankov/truthquest/internal/model"
)

// Provider defines the interface for language model providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete runs a single prompt and returns the model's reply with token usage
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains the input for one completion
type CompletionRequest struct {
	// System is the fixed instruction for the model
	System string

	// Prompt is the user-turn input
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature controls sampling; 0 uses the provider default of 0.3
	Temperature float32

	// JSON asks the provider to constrain output to a JSON object
	JSON bool
}

// CompletionResponse contains the model's reply
type CompletionResponse struct {
	Text  string
	Model string
	Usage model.Usage
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI/Anthropic
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

const defaultTemperature = 0.3

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   60,
		MaxTokens: 4000,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:   modelConfig.Provider,
		Model:      modelConfig.Model,
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Timeout:    modelConfig.Timeout,
		MaxTokens:  modelConfig.MaxTokens,
		HTTPProxy:  httpConfig.HTTPProxy,
		HTTPSProxy: httpConfig.HTTPSProxy,
		NoProxy:    httpConfig.NoProxy,
	}
}

// ParseJSONObject decodes a JSON object from model output. Models sometimes
// wrap JSON in prose or code fences, so the outermost {...} span is tried
// when the whole text does not decode.
func ParseJSONObject(text string, v interface{}) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("%w: empty response", model.ErrMalformedResponse)
	}

	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fmt.Errorf("%w: no JSON object in response", model.ErrMalformedResponse)
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("%w: %v", model.ErrMalformedResponse, err)
	}
	return nil
}

// statusError maps a non-200 API status onto the error taxonomy
func statusError(statusCode int, detail string) error {
	if statusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w: API error (%d): %s", model.ErrCapabilityUnavailable, model.ErrRateLimited, statusCode, detail)
	}
	return fmt.Errorf("%w: API error (%d): %s", model.ErrCapabilityUnavailable, statusCode, detail)
}

// Helper functions

func pickModel(requested, configured, fallback string) string {
	if requested != "" {
		return requested
	}
	if configured != "" {
		return configured
	}
	return fallback
}

func pickMaxTokens(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	if configured > 0 {
		return configured
	}
	return 1000
}

func pickTemperature(requested float32) float32 {
	if requested > 0 {
		return requested
	}
	return defaultTemperature
}
