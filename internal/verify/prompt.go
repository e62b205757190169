package verify

import (
	"fmt"
	"strings"
)

const judgeSystemPrompt = `You are a meticulous fact-checker. You judge a single factual claim against numbered evidence sources.

Use exactly one verdict:
- "supported": the majority of credible evidence affirms the claim
- "refuted": the majority of credible evidence contradicts the claim
- "partially_true": evidence affirms part of the claim and contradicts or fails to affirm another part
- "inconclusive": evidence is insufficient, or contradictory with no clear majority

Prefer primary sources (government, academic, official records) over secondary and tertiary ones.
Base the verdict only on the evidence provided. Cite only the sources your reasoning actually relies on.

Respond with a JSON object:
{"verdict": "...", "confidence": integer percentage 0-100, "reasoning": "two or three sentences", "cited_sources": [source numbers]}`

func buildJudgePrompt(claim, transcriptContext string, evidence []RankedHit) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Claim: %q\n", claim)
	if transcriptContext != "" {
		fmt.Fprintf(&b, "Transcript context: %q\n", transcriptContext)
	}

	b.WriteString("\nEvidence:\n")
	for i, h := range evidence {
		fmt.Fprintf(&b, "[%d] %s (%s source)\n    URL: %s\n    %s\n", i+1, h.Title, h.Tier, h.URL, h.Snippet)
	}

	return b.String()
}
