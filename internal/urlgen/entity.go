// Package urlgen fills in URLs for claim entities that the resolver does
// not handle: people, locations, concepts. Heuristic classification picks
// an entity type, and Wikipedia serves as the default link target. Most
// generated URLs are guesses and are flagged for review.
package urlgen

import (
	"net/url"
	"strings"

	"github.com/linkedclaims/claimresolve/internal/model"
)

// entityMappings are entities seen often enough in production documents to
// pin their URLs directly. Keys are lowercase.
var entityMappings = map[string]string{
	// Organizations
	"moremilk":                       "https://en.wikipedia.org/wiki/MoreMilk",
	"bill & melinda gates foundation": "https://www.gatesfoundation.org/",
	"gates foundation":               "https://www.gatesfoundation.org/",
	"linkedtrust":                    "https://linkedtrust.us/",

	// Locations
	"kenya":         "https://en.wikipedia.org/wiki/Kenya",
	"ethiopia":      "https://en.wikipedia.org/wiki/Ethiopia",
	"maili nne":     "https://en.wikipedia.org/wiki/Maili_Nne",
	"united states": "https://en.wikipedia.org/wiki/United_States",
	"switzerland":   "https://en.wikipedia.org/wiki/Switzerland",

	// Concepts
	"iodized salt":        "https://en.wikipedia.org/wiki/Iodised_salt",
	"folic acid":          "https://en.wikipedia.org/wiki/Folic_acid",
	"vitamin a":           "https://en.wikipedia.org/wiki/Vitamin_A",
	"neural tube defects": "https://en.wikipedia.org/wiki/Neural_tube_defect",
}

var personIndicators = []string{"coletta", "daniel", "dr.", "mr.", "mrs.", "ms."}

var organizationIndicators = []string{
	"foundation", "organization", "company", "corp", "inc", "ltd",
	"university", "institute", "agency", "department", "ministry",
	"moremilk", "dairy board",
}

var locationIndicators = []string{
	"kenya", "ethiopia", "country", "city", "town", "village",
	"united states", "switzerland", "maili nne", "africa",
}

var conceptIndicators = []string{
	"salt", "acid", "vitamin", "defect", "deficiency", "fortification",
}

// fakePatterns are placeholder domains that extractors sometimes emit when
// a model invents a URL instead of admitting it has none.
var fakePatterns = []string{
	"example.com", "test.com", "placeholder.com", "fake.com",
	"dummy.com", "sample.com", "mock.com",
}

// DetectEntityType classifies an entity name by keyword heuristics. The
// context argument is reserved for smarter classification; today only the
// name is inspected.
func DetectEntityType(name, _ string) model.EntityType {
	lower := strings.ToLower(name)

	for _, ind := range personIndicators {
		if strings.Contains(lower, ind) {
			return model.EntityPerson
		}
	}
	for _, ind := range organizationIndicators {
		if strings.Contains(lower, ind) {
			return model.EntityOrganization
		}
	}
	for _, ind := range locationIndicators {
		if strings.Contains(lower, ind) {
			return model.EntityLocation
		}
	}
	for _, ind := range conceptIndicators {
		if strings.Contains(lower, ind) {
			return model.EntityConcept
		}
	}
	return model.EntityUnknown
}

// WikipediaURL builds the English Wikipedia article URL for a name.
func WikipediaURL(name string) string {
	clean := strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return "https://en.wikipedia.org/wiki/" + url.PathEscape(clean)
}

// GenerateURL produces a URL for an entity. guessed is true when the URL
// came from a heuristic rather than the curated table and should be
// reviewed before publication.
func GenerateURL(name, context string) (generated string, guessed bool, typ model.EntityType) {
	lower := strings.ToLower(strings.TrimSpace(name))

	if u, ok := entityMappings[lower]; ok {
		return u, false, DetectEntityType(name, context)
	}
	for known, u := range entityMappings {
		if strings.Contains(lower, known) || strings.Contains(known, lower) {
			return u, false, DetectEntityType(name, context)
		}
	}

	// Every type falls back to Wikipedia; what differs is only how much
	// we trust it, and that is the reviewer's call.
	return WikipediaURL(name), true, DetectEntityType(name, context)
}

// IsRealURL reports whether a URL is free of known placeholder domains.
func IsRealURL(raw string) bool {
	lower := strings.ToLower(raw)
	for _, pattern := range fakePatterns {
		if strings.Contains(lower, pattern) {
			return false
		}
	}
	return true
}

// EntityFromURL recovers an entity name from a URL so a placeholder can be
// regenerated. Fragment URLs like "doc.url#subject-Entity_Name" carry the
// name after the first hyphen.
func EntityFromURL(raw string) string {
	if i := strings.LastIndex(raw, "#"); i >= 0 {
		fragment := raw[i+1:]
		if j := strings.Index(fragment, "-"); j >= 0 {
			return strings.ReplaceAll(fragment[j+1:], "_", " ")
		}
	}

	parts := strings.Split(raw, "/")
	last := parts[len(parts)-1]
	if last == "" {
		return "Unknown Entity"
	}
	return strings.NewReplacer("_", " ", "-", " ").Replace(last)
}

// Suggestions returns up to five alternative URLs for an entity, Wikipedia
// first, to offer a reviewer alongside a rejected guess.
func Suggestions(name string, typ model.EntityType) []string {
	out := []string{WikipediaURL(name)}

	switch typ {
	case model.EntityOrganization:
		clean := strings.ToLower(name)
		clean = strings.ReplaceAll(clean, " ", "")
		clean = strings.ReplaceAll(clean, "&", "and")
		out = append(out,
			"https://www."+clean+".org",
			"https://www."+clean+".com",
			"https://"+clean+".org",
		)
	case model.EntityLocation:
		lower := strings.ToLower(name)
		if strings.Contains(lower, "kenya") {
			out = append(out, "https://www.kenya.go.ke")
		} else if strings.Contains(lower, "ethiopia") {
			out = append(out, "https://www.ethiopia.gov.et")
		}
	}

	seen := make(map[string]bool, len(out))
	var unique []string
	for _, u := range out {
		if seen[u] {
			continue
		}
		seen[u] = true
		unique = append(unique, u)
	}
	if len(unique) > 5 {
		unique = unique[:5]
	}
	return unique
}
