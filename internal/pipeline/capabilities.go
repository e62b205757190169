package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/truthquest/internal/llm"
	"github.com/ppiankov/truthquest/internal/model"
)

// CapabilityStatus reports whether one language model the pipeline uses is reachable
type CapabilityStatus struct {
	Role      string `json:"role"`
	Provider  string `json:"provider"`
	Available bool   `json:"available"`
}

type capability struct {
	role     string
	provider llm.Provider
}

// SetCapabilities registers the language models checked by Capabilities
func (p *Pipeline) SetCapabilities(providers *llm.Providers) {
	p.capabilities = []capability{
		{role: "extractor", provider: providers.Extractor},
		{role: "judge", provider: providers.Judge},
	}
}

// Capabilities checks each registered language model. A provider serving
// several roles is checked once.
func (p *Pipeline) Capabilities(ctx context.Context) []CapabilityStatus {
	statuses := make([]CapabilityStatus, 0, len(p.capabilities))
	checked := make(map[llm.Provider]bool, len(p.capabilities))
	for _, c := range p.capabilities {
		ok, seen := checked[c.provider]
		if !seen {
			ok = c.provider.IsAvailable(ctx)
			checked[c.provider] = ok
		}
		statuses = append(statuses, CapabilityStatus{Role: c.role, Provider: c.provider.Name(), Available: ok})
	}
	return statuses
}

// Preflight fails with model.ErrCapabilityUnavailable when any registered
// language model is unreachable
func (p *Pipeline) Preflight(ctx context.Context) error {
	var down []string
	for _, s := range p.Capabilities(ctx) {
		if !s.Available {
			down = append(down, fmt.Sprintf("%s (%s)", s.Role, s.Provider))
		}
	}
	if len(down) > 0 {
		return fmt.Errorf("%w: %s", model.ErrCapabilityUnavailable, strings.Join(down, ", "))
	}
	return nil
}
