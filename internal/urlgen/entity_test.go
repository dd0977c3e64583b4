package urlgen

import (
	"testing"

	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/model"
)

func TestDetectEntityType(t *testing.T) {
	tests := []struct {
		name string
		want model.EntityType
	}{
		{"Dr. Coletta Wanjohi", model.EntityPerson},
		{"Gates Foundation", model.EntityOrganization},
		{"Kenya Dairy Board", model.EntityOrganization}, // org indicators win over location
		{"Kenya", model.EntityLocation},
		{"Maili Nne", model.EntityLocation},
		{"Iodized Salt", model.EntityConcept},
		{"Folic Acid", model.EntityConcept},
		{"Mysterious Thing", model.EntityUnknown},
	}
	for _, tt := range tests {
		if got := DetectEntityType(tt.name, ""); got != tt.want {
			t.Errorf("DetectEntityType(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func TestWikipediaURL(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Kenya", "https://en.wikipedia.org/wiki/Kenya"},
		{"Maili Nne", "https://en.wikipedia.org/wiki/Maili_Nne"},
		{"  Neural tube defect ", "https://en.wikipedia.org/wiki/Neural_tube_defect"},
	}
	for _, tt := range tests {
		if got := WikipediaURL(tt.name); got != tt.want {
			t.Errorf("WikipediaURL(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestGenerateURL_CuratedEntries(t *testing.T) {
	u, guessed, typ := GenerateURL("Gates Foundation", "")
	if u != "https://www.gatesfoundation.org/" {
		t.Fatalf("url = %q", u)
	}
	if guessed {
		t.Fatal("curated entry flagged as guessed")
	}
	if typ != model.EntityOrganization {
		t.Fatalf("type = %s", typ)
	}

	// Partial matches hit the table too.
	u, guessed, _ = GenerateURL("The Gates Foundation global health program", "")
	if u != "https://www.gatesfoundation.org/" || guessed {
		t.Fatalf("partial match: url = %q, guessed = %v", u, guessed)
	}
}

func TestGenerateURL_FallbackIsGuessed(t *testing.T) {
	u, guessed, typ := GenerateURL("Obscure Collective", "")
	if u != "https://en.wikipedia.org/wiki/Obscure_Collective" {
		t.Fatalf("url = %q", u)
	}
	if !guessed {
		t.Fatal("heuristic URL not flagged as guessed")
	}
	if typ != model.EntityUnknown {
		t.Fatalf("type = %s", typ)
	}
}

func TestIsRealURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.unicef.org", true},
		{"https://example.com/org", false},
		{"https://sub.TEST.com/page", false},
		{"https://mock.com", false},
		{"https://www.gatesfoundation.org/", true},
	}
	for _, tt := range tests {
		if got := IsRealURL(tt.url); got != tt.want {
			t.Errorf("IsRealURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestEntityFromURL(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://doc.example.com/report.pdf#subject-Global_Fund", "Global Fund"},
		{"https://example.com/wiki/Folic_acid", "Folic acid"},
		{"https://example.com/kenya-dairy-board", "kenya dairy board"},
	}
	for _, tt := range tests {
		if got := EntityFromURL(tt.url); got != tt.want {
			t.Errorf("EntityFromURL(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSuggestions(t *testing.T) {
	got := Suggestions("Acme Relief", model.EntityOrganization)
	if len(got) > 5 {
		t.Fatalf("got %d suggestions, want at most 5", len(got))
	}
	if got[0] != "https://en.wikipedia.org/wiki/Acme_Relief" {
		t.Fatalf("first suggestion = %q, want Wikipedia", got[0])
	}
	want := map[string]bool{
		"https://www.acmerelief.org": true,
		"https://www.acmerelief.com": true,
		"https://acmerelief.org":     true,
	}
	for _, u := range got[1:] {
		if !want[u] {
			t.Errorf("unexpected suggestion %q", u)
		}
	}

	loc := Suggestions("Kenya", model.EntityLocation)
	found := false
	for _, u := range loc {
		if u == "https://www.kenya.go.ke" {
			found = true
		}
	}
	if !found {
		t.Fatal("Kenya suggestions missing government site")
	}
}

func TestImprover_BareNames(t *testing.T) {
	imp := NewImprover(zap.NewNop())
	claim := &model.ResolvedClaim{
		RawClaim: model.RawClaim{
			Subject:   "Obscure Collective",
			Predicate: "impact",
			Object:    "Kenya",
		},
	}

	imp.Improve(claim, "")

	if claim.Subject != "https://en.wikipedia.org/wiki/Obscure_Collective" {
		t.Fatalf("Subject = %q", claim.Subject)
	}
	if claim.SubjectSuggested != claim.Subject {
		t.Fatal("SubjectSuggested not recorded")
	}
	if claim.Object != "https://en.wikipedia.org/wiki/Kenya" {
		t.Fatalf("Object = %q", claim.Object)
	}
	if claim.ObjectEntityType != model.EntityLocation {
		t.Fatalf("ObjectEntityType = %s", claim.ObjectEntityType)
	}
	if !claim.NeedsVerification {
		t.Fatal("heuristic subject did not flag claim for verification")
	}
}

func TestImprover_PlaceholderURL(t *testing.T) {
	imp := NewImprover(zap.NewNop())
	claim := &model.ResolvedClaim{
		RawClaim: model.RawClaim{
			Subject: "https://example.com/report#subject-Folic_Acid",
		},
	}

	imp.Improve(claim, "")

	if claim.Subject != "https://en.wikipedia.org/wiki/Folic_acid" {
		t.Fatalf("Subject = %q, want curated folic acid URL", claim.Subject)
	}
	if claim.NeedsVerification {
		t.Fatal("curated replacement should not need verification")
	}
}

func TestImprover_URNLeftAlone(t *testing.T) {
	imp := NewImprover(zap.NewNop())
	claim := &model.ResolvedClaim{
		RawClaim: model.RawClaim{
			Subject: "urn:local:org:MoreMilk",
			Object:  "urn:local:person:Coletta_Kemboi:Maili_Nne_Kenya",
		},
	}

	imp.Improve(claim, "")

	if claim.Subject != "urn:local:org:MoreMilk" {
		t.Fatalf("Subject rewritten to %q", claim.Subject)
	}
	if claim.Object != "urn:local:person:Coletta_Kemboi:Maili_Nne_Kenya" {
		t.Fatalf("Object rewritten to %q", claim.Object)
	}
}

func TestImprover_RealURLUntouched(t *testing.T) {
	imp := NewImprover(zap.NewNop())
	claim := &model.ResolvedClaim{
		RawClaim: model.RawClaim{
			Subject: "https://www.unicef.org",
		},
	}

	imp.Improve(claim, "")

	if claim.Subject != "https://www.unicef.org" {
		t.Fatalf("Subject rewritten to %q", claim.Subject)
	}
	if claim.SubjectSuggested != "" || claim.NeedsVerification {
		t.Fatal("real URL should leave no suggestion or verification flag")
	}
}
