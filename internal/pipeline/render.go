package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/truthquest/internal/model"
)

// WriteJSON writes the report as indented JSON, creating parent directories
func WriteJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// WriteMarkdown writes a human-readable report
func WriteMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(RenderMarkdown(report)))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RenderMarkdown formats the report as Markdown
func RenderMarkdown(report *model.Report) string {
	var sb strings.Builder

	sb.WriteString("# Truth Quest Report\n\n")
	if report.VideoID != "" {
		fmt.Fprintf(&sb, "**Video:** https://www.youtube.com/watch?v=%s\n\n", report.VideoID)
	}
	fmt.Fprintf(&sb, "**Grade:** %s (%s)  \n", report.Grade, report.GradeDescription)
	fmt.Fprintf(&sb, "**Score:** %d/100  \n", report.Score)
	fmt.Fprintf(&sb, "**Checked:** %d of %d facts (%s mode)\n\n", report.SampledFacts, report.TotalFacts, report.CheckMode)

	fmt.Fprintf(&sb, "| Supported | Partially true | Refuted |\n|---|---|---|\n| %d | %d | %d |\n\n",
		report.Summary.Supported, report.Summary.PartiallyTrue, report.Summary.Refuted)

	if report.CentralThesis != nil {
		sb.WriteString("## Central Thesis\n\n")
		writeFactMarkdown(&sb, *report.CentralThesis)
	}

	sb.WriteString("## Verified Facts\n\n")
	if len(report.VerifiedFacts) == 0 {
		sb.WriteString("_No facts were verified._\n")
	}
	for _, f := range report.VerifiedFacts {
		writeFactMarkdown(&sb, f)
	}

	return sb.String()
}

func writeFactMarkdown(sb *strings.Builder, f model.VerifiedFact) {
	fmt.Fprintf(sb, "### %s\n\n", f.Claim)
	fmt.Fprintf(sb, "- **Verdict:** %s (confidence %d%%)\n", f.Verification.Label, f.Verification.Confidence)
	fmt.Fprintf(sb, "- **Category:** %s\n", f.Category)
	if f.Verification.Reasoning != "" {
		fmt.Fprintf(sb, "- **Reasoning:** %s\n", f.Verification.Reasoning)
	}
	for _, s := range f.Verification.Sources {
		fmt.Fprintf(sb, "  - [%s](%s) (%s)\n", s.Title, s.URL, s.Authority)
	}
	sb.WriteString("\n")
}

// PrintSummary prints a short report summary to w
func PrintSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "Grade:    %s (%s)\n", report.Grade, report.GradeDescription)
	fmt.Fprintf(w, "Score:    %d/100\n", report.Score)
	fmt.Fprintf(w, "Checked:  %d of %d facts (%s mode)\n", report.SampledFacts, report.TotalFacts, report.CheckMode)
	fmt.Fprintf(w, "Summary:  %d supported, %d partially true, %d refuted\n",
		report.Summary.Supported, report.Summary.PartiallyTrue, report.Summary.Refuted)
	fmt.Fprintf(w, "\n")

	for _, f := range report.VerifiedFacts {
		fmt.Fprintf(w, "  %s %-14s %s\n", labelMark(f.Verification.Label), f.Verification.Label, f.Claim)
	}
	if report.CentralThesis != nil {
		fmt.Fprintf(w, "\nThesis:   %s [%s]\n", report.CentralThesis.Claim, report.CentralThesis.Verification.Label)
	}
}

func labelMark(label model.Label) string {
	switch label {
	case model.LabelSupported:
		return "✓"
	case model.LabelPartiallyTrue:
		return "~"
	case model.LabelRefuted:
		return "✗"
	case model.LabelError:
		return "!"
	default:
		return "?"
	}
}
