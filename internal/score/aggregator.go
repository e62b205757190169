// Package score turns verdicts into a credibility score and letter grade.
package score

import (
	"math"

	"github.com/ppiankov/truthquest/internal/model"
)

// Band is one grade band with its inclusive lower bound
type Band struct {
	Min         int
	Grade       model.Grade
	Description string
	Color       string // Presentation tag: green, blue, orange, red, gray
}

var bands = []Band{
	{Min: 90, Grade: model.GradeA, Description: "Highly Credible", Color: "green"},
	{Min: 75, Grade: model.GradeB, Description: "Mostly Credible", Color: "blue"},
	{Min: 50, Grade: model.GradeC, Description: "Mixed Credibility", Color: "orange"},
	{Min: 25, Grade: model.GradeD, Description: "Low Credibility", Color: "red"},
	{Min: 0, Grade: model.GradeF, Description: "Not Credible", Color: "red"},
}

const (
	insufficientDescription = "Insufficient Evidence"
	insufficientColor       = "gray"
)

// weight returns a label's contribution to the score; false means the label
// is left out of the average
func weight(label model.Label) (int, bool) {
	switch label {
	case model.LabelSupported:
		return 100, true
	case model.LabelPartiallyTrue:
		return 50, true
	case model.LabelRefuted:
		return 0, true
	default:
		return 0, false
	}
}

// Aggregate builds the report for a completed batch. It is deterministic:
// no clock, randomness or I/O. totalFacts below len(verified) is raised to
// len(verified).
func Aggregate(verified []model.VerifiedFact, centralThesis *model.VerifiedFact, totalFacts int, mode model.Mode) *model.Report {
	facts := make([]model.VerifiedFact, len(verified))
	copy(facts, verified)

	var summary model.Summary
	sum, weighted := 0, 0
	for _, vf := range facts {
		switch vf.Verification.Label {
		case model.LabelSupported:
			summary.Supported++
		case model.LabelPartiallyTrue:
			summary.PartiallyTrue++
		case model.LabelRefuted:
			summary.Refuted++
		}
		if w, ok := weight(vf.Verification.Label); ok {
			sum += w
			weighted++
		}
	}

	if totalFacts < len(facts) {
		totalFacts = len(facts)
	}

	report := &model.Report{
		TotalFacts:    totalFacts,
		SampledFacts:  len(facts),
		CheckMode:     mode,
		Summary:       summary,
		VerifiedFacts: facts,
	}
	if centralThesis != nil {
		thesis := *centralThesis
		report.CentralThesis = &thesis
	}

	if weighted == 0 {
		report.Score = 0
		report.Grade = model.GradeF
		report.GradeDescription = insufficientDescription
		report.GradeColor = insufficientColor
		return report
	}

	report.Score = int(math.Round(float64(sum) / float64(weighted)))
	b := GradeFor(report.Score)
	report.Grade = b.Grade
	report.GradeDescription = b.Description
	report.GradeColor = b.Color

	return report
}

// GradeFor returns the band containing score
func GradeFor(score int) Band {
	for _, b := range bands {
		if score >= b.Min {
			return b
		}
	}
	return bands[len(bands)-1]
}
