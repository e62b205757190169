// Package sample selects which candidate facts get verified.
package sample

import (
	"math/rand"

	"github.com/ppiankov/truthquest/internal/model"
)

// Default bounds for sample mode
const (
	DefaultMin = 5
	DefaultMax = 7
)

// Sampler picks the working set of facts for a mode
type Sampler struct {
	min  int
	max  int
	intn func(n int) int // returns a value in [0, n)
}

// New creates a sampler targeting between min and max facts in sample mode.
// Out-of-range bounds fall back to the defaults.
func New(min, max int) *Sampler {
	if min <= 0 {
		min = DefaultMin
	}
	if max < min {
		max = min
		if DefaultMax > max {
			max = DefaultMax
		}
	}
	return &Sampler{min: min, max: max, intn: rand.Intn}
}

// Sample returns the facts to verify. Full mode keeps every verifiable fact
// in order; sample mode draws a uniform random subset without replacement.
func (s *Sampler) Sample(facts []model.CandidateFact, mode model.Mode) []model.CandidateFact {
	verifiable := make([]model.CandidateFact, 0, len(facts))
	for _, f := range facts {
		if f.Verifiable {
			verifiable = append(verifiable, f)
		}
	}

	if mode == model.ModeFull || len(verifiable) <= s.min {
		return verifiable
	}

	k := s.min + s.intn(s.max-s.min+1)
	if k > len(verifiable) {
		k = len(verifiable)
	}

	// Partial Fisher-Yates: the first k slots end up a uniform k-subset
	for i := 0; i < k; i++ {
		j := i + s.intn(len(verifiable)-i)
		verifiable[i], verifiable[j] = verifiable[j], verifiable[i]
	}
	return verifiable[:k:k]
}
