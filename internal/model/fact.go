package model

import "strings"

// Category classifies the nature of a factual claim
type Category string

const (
	CategoryStatistic    Category = "statistic"    // Numbers, percentages, measurements
	CategoryHistorical   Category = "historical"   // Dates and past events
	CategoryScientific   Category = "scientific"   // Scientific or medical assertions
	CategoryBiographical Category = "biographical" // Claims about people, including quotes
	CategoryOther        Category = "other"        // Anything else
)

// ParseCategory maps a free-form category label onto a known Category.
// Unrecognized labels fall back to CategoryOther.
func ParseCategory(raw string) Category {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)

	switch s {
	case "statistic", "statistics", "statistical", "number", "numbers", "data":
		return CategoryStatistic
	case "historical", "history", "historical event", "event", "date":
		return CategoryHistorical
	case "scientific", "science", "scientific claim", "medical", "health":
		return CategoryScientific
	case "biographical", "biography", "quote", "person", "people":
		return CategoryBiographical
	default:
		return CategoryOther
	}
}

// CandidateFact is an atomic claim identified in a transcript, not yet verified
type CandidateFact struct {
	Claim      string   `json:"claim"`
	Category   Category `json:"category"`
	Verifiable bool     `json:"verifiable"`
	Context    string   `json:"context,omitempty"` // Quoted transcript snippet
	Entities   []string `json:"entities"`
}

// Usage is the token accounting reported by a language model call
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Add returns the sum of two usage records
func (u Usage) Add(other Usage) Usage {
	return Usage{
		PromptTokens:     u.PromptTokens + other.PromptTokens,
		CompletionTokens: u.CompletionTokens + other.CompletionTokens,
		TotalTokens:      u.TotalTokens + other.TotalTokens,
	}
}

// Extraction is the output of claim extraction for one transcript
type Extraction struct {
	Facts         []CandidateFact `json:"facts"`
	CentralThesis *CandidateFact  `json:"centralThesis,omitempty"`
	Usage         Usage           `json:"usage"`
}
