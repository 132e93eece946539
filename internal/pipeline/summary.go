package pipeline

import (
	"context"
	"fmt"
	"strings"
)

// TemplateSummarizer renders a deterministic plain-text summary from the
// structured findings. Used when no LLM backend is configured.
type TemplateSummarizer struct{}

// Summarize implements Summarizer.
func (TemplateSummarizer) Summarize(_ context.Context, input SummaryInput) (string, error) {
	var b strings.Builder

	title := input.Title
	if title == "" {
		title = string(input.DocumentType) + " document"
	}
	fmt.Fprintf(&b, "Document Summary\n%s scored %d/100 (%s).\n\n",
		title, input.Score.OverallScore, input.Score.Rating)

	b.WriteString("Key Findings\n")
	for _, f := range input.Findings {
		state := "not addressed"
		if f.Found {
			state = fmt.Sprintf("addressed (%.1f/10)", f.RawScore)
		}
		fmt.Fprintf(&b, "- %s: %s\n", strings.ReplaceAll(f.Category, "_", " "), state)
	}
	b.WriteString("\n")

	b.WriteString("Risk Assessment\n")
	if len(input.Score.RiskFactors) == 0 {
		b.WriteString("No notable risk phrases were detected.\n")
	} else {
		for _, r := range input.Score.RiskFactors {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	b.WriteString("\n")

	b.WriteString("Recommendations\n")
	if len(input.Score.Recommendations) == 0 {
		b.WriteString("No specific follow-ups.\n")
	} else {
		for _, rec := range input.Score.Recommendations {
			fmt.Fprintf(&b, "- %s\n", rec)
		}
	}

	return b.String(), nil
}

var _ Summarizer = TemplateSummarizer{}
