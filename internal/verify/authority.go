package verify

import (
	"net/url"
	"sort"
	"strings"

	"github.com/ppiankov/truthquest/internal/model"
)

// AuthorityClassifier sorts evidence hosts into authority tiers
type AuthorityClassifier struct {
	domainMap map[string]model.AuthorityTier
	primary   []string
	secondary []string
}

// NewAuthorityClassifier creates a classifier; nil config uses the defaults
func NewAuthorityClassifier(config *model.AuthorityConfig) *AuthorityClassifier {
	if config == nil {
		config = &model.DefaultConfig().Authority
	}

	c := &AuthorityClassifier{
		domainMap: make(map[string]model.AuthorityTier, len(config.DomainMap)),
	}
	for host, tier := range config.DomainMap {
		c.domainMap[strings.ToLower(host)] = parseTier(tier)
	}
	for _, d := range config.PrimaryDomains {
		c.primary = append(c.primary, strings.ToLower(d))
	}
	for _, d := range config.SecondaryDomains {
		c.secondary = append(c.secondary, strings.ToLower(d))
	}
	return c
}

// Classify returns the tier of the URL's host
func (a *AuthorityClassifier) Classify(rawURL string) model.AuthorityTier {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Hostname() == "" {
		return model.TierTertiary
	}
	host := strings.ToLower(parsed.Hostname())

	if tier, ok := a.domainMap[host]; ok {
		return tier
	}
	if matchesDomain(host, a.primary) {
		return model.TierPrimary
	}
	if matchesDomain(host, a.secondary) {
		return model.TierSecondary
	}

	// Government and academic TLDs
	for _, suffix := range []string{".gov", ".edu", ".mil", ".ac.uk", ".gov.uk", ".int"} {
		if strings.HasSuffix(host, suffix) {
			return model.TierPrimary
		}
	}

	return model.TierTertiary
}

// Rank returns hits ordered primary first. Order within a tier is preserved.
func (a *AuthorityClassifier) Rank(hits []model.EvidenceHit) []RankedHit {
	ranked := make([]RankedHit, len(hits))
	for i, h := range hits {
		ranked[i] = RankedHit{EvidenceHit: h, Tier: a.Classify(h.URL)}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Tier < ranked[j].Tier
	})
	return ranked
}

// RankedHit is a search hit with its authority tier
type RankedHit struct {
	model.EvidenceHit
	Tier model.AuthorityTier
}

// matchesDomain reports whether host is one of domains or a subdomain of one
func matchesDomain(host string, domains []string) bool {
	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func parseTier(tier string) model.AuthorityTier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case "primary", "1":
		return model.TierPrimary
	case "secondary", "2":
		return model.TierSecondary
	default:
		return model.TierTertiary
	}
}
