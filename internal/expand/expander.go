// Package expand turns short or abbreviated organization names into the
// fuller forms a web search can actually find.
package expand

import (
	"fmt"
	"regexp"
	"strings"
)

// knownExpansions maps lowercase short names to the full names they usually
// stand for in impact-report documents.
var knownExpansions = map[string][]string{
	"global fund": {
		"Global Fund to Fight AIDS Tuberculosis and Malaria",
		"Global Fund to Fight AIDS",
		"The Global Fund",
	},
	"gavi": {
		"GAVI the Vaccine Alliance",
		"GAVI Alliance",
		"Gavi Vaccine Alliance",
	},
	"amurt": {
		"AMURT Ananda Marga Universal Relief Team",
		"Ananda Marga Universal Relief Team",
	},
	"leap": {
		"LEAP Livelihood Enhancement Action Plan",
		"Livelihood Enhancement Action Plan",
	},
	"moremilk": {
		"MoreMilk dairy program",
		"MoreMilk Kenya",
		"MoreMilk CGIAR",
	},
	"who": {
		"World Health Organization",
		"WHO World Health Organization",
	},
	"unicef": {
		"UNICEF United Nations Children Fund",
		"United Nations Children Fund",
	},
}

// maxContextExpansion guards against a greedy regex capture swallowing half
// a paragraph.
const maxContextExpansion = 100

// Expander produces ranked full-name variants for an organization name.
type Expander struct{}

// NewExpander creates a new expander.
func NewExpander() *Expander {
	return &Expander{}
}

// Expand returns candidate full names for orgName, best-first. The
// normalized input name is always the first element, so callers can fall
// back to it when nothing better is known. docContext, when non-empty, is
// scanned for an inline expansion such as "Gavi, the Vaccine Alliance".
func (e *Expander) Expand(orgName, docContext string) []string {
	baseName := strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(orgName))
	names := []string{baseName}

	orgLower := strings.ToLower(baseName)
	for key, variants := range knownExpansions {
		if strings.Contains(orgLower, key) || strings.Contains(key, orgLower) {
			names = append(names, variants...)
		}
	}

	if docContext != "" {
		if found := expandFromContext(baseName, docContext); found != "" {
			names = append(names, found)
		}
	}

	return dedupe(names)
}

// expandFromContext looks for "<name>, <continuation>" in the document text,
// where the continuation runs to a sentence terminator or a ", which"/
// ", that" clause. Returns "" when no usable expansion is present.
func expandFromContext(baseName, docContext string) string {
	pattern := fmt.Sprintf(`(?i)%s[,\s]+([^.!?]*?)(?:\.|!|\?|,\s+which|,\s+that|$)`,
		regexp.QuoteMeta(strings.ToLower(baseName)))
	re, err := regexp.Compile(pattern)
	if err != nil {
		return ""
	}

	match := re.FindStringSubmatch(strings.ToLower(docContext))
	if len(match) < 2 {
		return ""
	}

	expanded := strings.Trim(strings.TrimSpace(match[1]), ",")
	expanded = strings.TrimSpace(expanded)
	if len(expanded) <= len(baseName) || len(expanded) >= maxContextExpansion {
		return ""
	}

	return titleCase(expanded)
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// dedupe removes duplicates while preserving first-seen order.
func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		key := strings.ToLower(n)
		if !seen[key] {
			seen[key] = true
			out = append(out, n)
		}
	}
	return out
}
