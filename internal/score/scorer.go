package score

import (
	"net/url"
	"strings"
)

// Scorer rates how likely a search result is the official site of an
// organization. Score is pure and deterministic: the same inputs always
// produce the same value, with no I/O.
type Scorer struct{}

// NewScorer creates a new scorer.
func NewScorer() *Scorer {
	return &Scorer{}
}

// socialPlatforms host generic profile pages that are rarely an
// organization's authoritative site.
var socialPlatforms = []string{
	"facebook.com", "twitter.com", "x.com", "linkedin.com",
	"youtube.com", "wikipedia.org",
}

// genericPlatforms are blogging/code-hosting domains; a hit there is weak
// evidence at best.
var genericPlatforms = []string{
	"blogspot", "wordpress", "medium.com", "github.com",
}

var officialDomainHints = []string{".org", ".gov", "official", "www."}

var orgTitleHints = []string{"foundation", "organization", "ngo", "official", "alliance"}

// Score returns a confidence in [0,1] that candidateURL is the official
// site for orgName, given the result's page title.
func (s *Scorer) Score(orgName, title, candidateURL string) float64 {
	confidence := 0.0

	orgLower := strings.ToLower(strings.NewReplacer("_", " ", "-", " ").Replace(orgName))
	titleLower := strings.ToLower(title)
	urlLower := strings.ToLower(candidateURL)

	domain := ""
	if parsed, err := url.Parse(urlLower); err == nil {
		domain = parsed.Host
	}

	// Tokens of the org name worth matching on (short tokens are noise).
	var parts []string
	for _, p := range strings.Fields(orgLower) {
		if len(p) > 2 {
			parts = append(parts, p)
		}
	}

	domainNormalized := strings.NewReplacer("-", "", ".", "").Replace(domain)
	for _, part := range parts {
		if strings.Contains(domainNormalized, strings.ReplaceAll(part, " ", "")) {
			confidence += 0.5
			break
		}
	}

	orgNormalized := strings.NewReplacer(" ", "", "_", "").Replace(orgLower)
	if orgNormalized != "" && strings.Contains(domainNormalized, orgNormalized) {
		confidence += 0.4
	}

	for _, part := range parts {
		if strings.Contains(titleLower, part) {
			confidence += 0.3
			break
		}
	}

	// Path match, domain excluded.
	urlPath := strings.NewReplacer(domain, "", "http://", "", "https://", "").Replace(urlLower)
	pathNormalized := strings.NewReplacer("-", "", "_", "").Replace(urlPath)
	for _, part := range parts {
		if strings.Contains(pathNormalized, strings.ReplaceAll(part, " ", "")) {
			confidence += 0.2
			break
		}
	}

	for _, hint := range officialDomainHints {
		if strings.Contains(urlLower, hint) {
			confidence += 0.2
			break
		}
	}

	for _, hint := range orgTitleHints {
		if strings.Contains(titleLower, hint) {
			confidence += 0.1
			break
		}
	}

	confidence += specialCaseBoost(orgLower, domain)

	for _, platform := range socialPlatforms {
		if strings.Contains(domain, platform) {
			confidence *= 0.5
			break
		}
	}

	for _, generic := range genericPlatforms {
		if strings.Contains(domain, generic) {
			confidence *= 0.7
			break
		}
	}

	if confidence > 1.0 {
		confidence = 1.0
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// specialCaseBoost is a hand-tuned exception for one recurring
// vaccine-alliance domain pattern seen in production documents. It is
// deliberately narrow; do not generalize it into a rule.
func specialCaseBoost(orgLower, domain string) float64 {
	boost := 0.0
	if strings.Contains(orgLower, "vaccine") && strings.Contains(domain, "vaccine") {
		boost += 0.3
	}
	if strings.Contains(orgLower, "alliance") && (strings.Contains(domain, "alliance") || strings.Contains(domain, "vaccine")) {
		boost += 0.3
	}
	return boost
}
