package model

import "strings"

// Label is the outcome of checking a claim against evidence
type Label string

const (
	LabelSupported     Label = "supported"      // Majority of credible evidence affirms the claim
	LabelPartiallyTrue Label = "partially_true" // Part affirmed, part contradicted or unaffirmed
	LabelRefuted       Label = "refuted"        // Majority of credible evidence contradicts the claim
	LabelInconclusive  Label = "inconclusive"   // Insufficient or evenly split evidence
	LabelError         Label = "error"          // The verification process itself failed
)

// ParseLabel normalizes a judge's verdict label. The second return value is
// false when the label is not recognized.
func ParseLabel(raw string) (Label, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)

	switch s {
	case "supported", "true", "valid", "confirmed", "accurate":
		return LabelSupported, true
	case "partially true", "partially supported", "partial", "mixed", "mostly true":
		return LabelPartiallyTrue, true
	case "refuted", "false", "rejected", "inaccurate", "debunked":
		return LabelRefuted, true
	case "inconclusive", "unverifiable", "unknown", "insufficient evidence", "unverified":
		return LabelInconclusive, true
	case "error":
		return LabelError, true
	default:
		return "", false
	}
}

// Source is a piece of evidence cited by a verdict
type Source struct {
	Title     string        `json:"title"`
	URL       string        `json:"url"`
	Authority AuthorityTier `json:"authority,omitempty"`
}

// Verdict is the result of verifying one fact
type Verdict struct {
	Label      Label    `json:"verdict"`
	Confidence int      `json:"confidence"` // 0-100
	Reasoning  string   `json:"reasoning"`
	Sources    []Source `json:"sources"`
}

// ErrorVerdict builds the verdict used when verification itself failed
func ErrorVerdict(reason string) Verdict {
	return Verdict{
		Label:      LabelError,
		Confidence: 0,
		Reasoning:  reason,
		Sources:    []Source{},
	}
}

// VerifiedFact pairs a candidate fact with its verdict
type VerifiedFact struct {
	CandidateFact
	Verification Verdict `json:"verification"`
}

// EvidenceHit is a single result returned by an evidence source
type EvidenceHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// AuthorityTier represents the classification of source authority
type AuthorityTier int

const (
	TierUnknown   AuthorityTier = 0 // Not yet classified
	TierPrimary   AuthorityTier = 1 // Government, academic, journals, official records
	TierSecondary AuthorityTier = 2 // Encyclopedias, wire services, major publishers
	TierTertiary  AuthorityTier = 3 // Blogs, forums, personal websites
)

func (t AuthorityTier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	case TierTertiary:
		return "tertiary"
	default:
		return "unknown"
	}
}

// MarshalText renders the tier by name in JSON reports
func (t AuthorityTier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText
func (t *AuthorityTier) UnmarshalText(text []byte) error {
	switch string(text) {
	case "primary":
		*t = TierPrimary
	case "secondary":
		*t = TierSecondary
	case "tertiary":
		*t = TierTertiary
	default:
		*t = TierUnknown
	}
	return nil
}
