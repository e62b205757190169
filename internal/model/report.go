package model

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects how many facts are verified
type Mode string

const (
	ModeSample Mode = "sample" // Verify a small random subset
	ModeFull   Mode = "full"   // Verify every verifiable fact
)

// ParseMode validates a mode string. Empty input selects sample mode.
func ParseMode(raw string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(raw))) {
	case "", ModeSample:
		return ModeSample, nil
	case ModeFull:
		return ModeFull, nil
	default:
		return "", fmt.Errorf("%w: unknown check mode %q (supported: sample, full)", ErrInvalidInput, raw)
	}
}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeSample || m == ModeFull
}

// Grade is a letter grade summarizing credibility
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// Summary counts verified facts by label
type Summary struct {
	Supported     int `json:"supported"`
	PartiallyTrue int `json:"partiallyTrue"`
	Refuted       int `json:"refuted"`
}

// Report is the aggregate credibility report for one transcript
type Report struct {
	ID          string    `json:"id,omitempty"`
	VideoID     string    `json:"videoId,omitempty"`
	GeneratedAt time.Time `json:"generatedAt,omitempty"`

	Grade            Grade  `json:"grade"`
	GradeDescription string `json:"gradeDescription"`
	GradeColor       string `json:"gradeColor"`
	Score            int    `json:"score"` // 0-100

	TotalFacts   int     `json:"totalFacts"`
	SampledFacts int     `json:"sampledFacts"`
	CheckMode    Mode    `json:"checkMode"`
	Summary      Summary `json:"summary"`

	VerifiedFacts []VerifiedFact `json:"verifiedFacts"`
	CentralThesis *VerifiedFact  `json:"centralThesis,omitempty"`

	Usage *Usage `json:"usage,omitempty"` // Token accounting for the extraction step
}
