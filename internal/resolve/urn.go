package resolve

import "strings"

// OrgNameFromURN extracts the entity name from a local URN. Program URNs
// carry the searchable name as their first segment, with the location
// after it. Anything that is not a local URN is returned unchanged so bare
// names flow through.
func OrgNameFromURN(urn string) string {
	switch {
	case strings.HasPrefix(urn, "urn:local:org:"):
		return strings.TrimPrefix(urn, "urn:local:org:")
	case strings.HasPrefix(urn, "urn:local:program:"):
		rest := strings.TrimPrefix(urn, "urn:local:program:")
		if i := strings.Index(rest, ":"); i >= 0 {
			return rest[:i]
		}
		return rest
	}
	return urn
}

// NormalizeOrgName produces the canonical lookup key for an organization:
// lowercased, with runs of spaces and hyphens collapsed to underscores.
func NormalizeOrgName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.ReplaceAll(s, "-", " ")
	fields := strings.Fields(s)
	return strings.Join(fields, "_")
}
