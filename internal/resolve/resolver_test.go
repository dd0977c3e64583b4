package resolve

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/cache"
	"github.com/linkedclaims/claimresolve/internal/model"
	"github.com/linkedclaims/claimresolve/internal/search"
	"github.com/linkedclaims/claimresolve/internal/verify"
)

type fakeSearcher struct {
	results []search.Result
	calls   int
}

func (f *fakeSearcher) Search(_ context.Context, _ string) []search.Result {
	f.calls++
	return f.results
}

func newTestResolver(t *testing.T, searcher Searcher, store verify.OrganizationStore) (*Resolver, *verify.Manager) {
	t.Helper()
	cfg := model.DefaultConfig()
	mgr := verify.NewManager(store, zap.NewNop())
	c := cache.NewMemoryCache(cfg.Cache.TTL, time.Minute)
	return NewResolver(cfg, searcher, mgr, store, c, zap.NewNop()), mgr
}

func TestOrgNameFromURN(t *testing.T) {
	tests := []struct {
		urn  string
		want string
	}{
		{"urn:local:org:Global Fund", "Global Fund"},
		{"urn:local:program:UNICEF:Education Initiative", "UNICEF"},
		{"urn:local:program:AMURT", "AMURT"},
		{"Global Fund", "Global Fund"},
		{"https://www.who.int", "https://www.who.int"},
	}
	for _, tt := range tests {
		if got := OrgNameFromURN(tt.urn); got != tt.want {
			t.Errorf("OrgNameFromURN(%q) = %q, want %q", tt.urn, got, tt.want)
		}
	}
}

func TestNormalizeOrgName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Global Fund", "global_fund"},
		{"  The   Global-Fund ", "the_global_fund"},
		{"WHO", "who"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeOrgName(tt.in); got != tt.want {
			t.Errorf("NormalizeOrgName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve_KnownOrgSkipsSearch(t *testing.T) {
	searcher := &fakeSearcher{}
	r, _ := newTestResolver(t, searcher, nil)

	res := r.Resolve(context.Background(), "UNICEF", "")
	if res.URL != "https://www.unicef.org" {
		t.Fatalf("URL = %q", res.URL)
	}
	if res.Source != SourceKnownOrg {
		t.Fatalf("Source = %q, want %q", res.Source, SourceKnownOrg)
	}
	if searcher.calls != 0 {
		t.Fatalf("search called %d times for a known organization", searcher.calls)
	}
}

func TestResolve_DurableStoreFirst(t *testing.T) {
	store, err := verify.NewFileStore(filepath.Join(t.TempDir(), "orgs.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Add("acme_relief", "https://www.acmerelief.org", "reviewer", ""); err != nil {
		t.Fatal(err)
	}

	searcher := &fakeSearcher{}
	r, _ := newTestResolver(t, searcher, store)

	res := r.Resolve(context.Background(), "Acme Relief", "")
	if res.URL != "https://www.acmerelief.org" || res.Source != SourceStore {
		t.Fatalf("got %+v, want store hit", res)
	}
	if searcher.calls != 0 {
		t.Fatal("search called despite durable store hit")
	}
}

func TestResolve_SessionApproval(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Acme Relief", URL: "https://www.acmerelief.org"},
	}}
	r, mgr := newTestResolver(t, searcher, nil)

	// First pass surfaces candidates for review.
	first := r.Resolve(context.Background(), "Acme Relief", "")
	if first.URL != "" || !first.NeedsVerification {
		t.Fatalf("first resolution = %+v, want pending verification", first)
	}
	if len(first.Candidates) == 0 {
		t.Fatal("no candidates registered")
	}

	if !mgr.Approve(first.Candidates[0].ID, "reviewer") {
		t.Fatal("Approve failed")
	}
	r.Invalidate("Acme Relief")

	second := r.Resolve(context.Background(), "Acme Relief", "")
	if second.URL != "https://www.acmerelief.org" {
		t.Fatalf("URL after approval = %q", second.URL)
	}
	if second.Source != SourceSession {
		t.Fatalf("Source = %q, want %q", second.Source, SourceSession)
	}
}

func TestResolve_AutoAcceptKnownPattern(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Gavi, the Vaccine Alliance", URL: "https://www.gavi.org"},
	}}
	r, _ := newTestResolver(t, searcher, nil)

	res := r.Resolve(context.Background(), "GAVI", "")
	if res.URL != "https://www.gavi.org" {
		t.Fatalf("URL = %q, want auto-accepted gavi.org", res.URL)
	}
	if res.Source != SourceSearch {
		t.Fatalf("Source = %q", res.Source)
	}
	if res.Confidence < 0.95 {
		t.Fatalf("Confidence = %v, want >= 0.95", res.Confidence)
	}
}

func TestResolve_UnknownOrgNeedsVerificationEvenWhenConfident(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Acme Relief", URL: "https://www.acmerelief.org"},
	}}
	r, mgr := newTestResolver(t, searcher, nil)

	res := r.Resolve(context.Background(), "Acme Relief", "")
	if res.URL != "" {
		t.Fatalf("URL = %q, want empty for unreviewed organization", res.URL)
	}
	if !res.NeedsVerification {
		t.Fatal("NeedsVerification = false")
	}
	if pending := mgr.Pending(0); len(pending) != 1 {
		t.Fatalf("Pending = %d organizations, want 1", len(pending))
	}
}

func TestResolve_NegativeResultCached(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Unrelated blog", URL: "https://randomblog.blogspot.com"},
	}}
	r, _ := newTestResolver(t, searcher, nil)

	first := r.Resolve(context.Background(), "Obscure Collective", "")
	if first.URL != "" || first.NeedsVerification {
		t.Fatalf("first resolution = %+v, want nothing credible", first)
	}
	callsAfterFirst := searcher.calls
	if callsAfterFirst == 0 {
		t.Fatal("search was never attempted")
	}

	second := r.Resolve(context.Background(), "Obscure Collective", "")
	if second.Source != SourceCache {
		t.Fatalf("second Source = %q, want cache", second.Source)
	}
	if searcher.calls != callsAfterFirst {
		t.Fatal("search repeated despite cached miss")
	}
}

func TestResolve_CacheHitKeepsCandidates(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Acme Relief", URL: "https://www.acmerelief.org"},
	}}
	r, _ := newTestResolver(t, searcher, nil)

	first := r.Resolve(context.Background(), "Acme Relief", "")
	if len(first.Candidates) != 1 || !first.NeedsVerification {
		t.Fatalf("first resolution = %+v, want one candidate pending review", first)
	}
	calls := searcher.calls

	second := r.Resolve(context.Background(), "Acme Relief", "")
	if second.Source != SourceCache {
		t.Fatalf("second Source = %q, want cache", second.Source)
	}
	if searcher.calls != calls {
		t.Fatal("search repeated despite cached result")
	}
	if len(second.Candidates) != len(first.Candidates) {
		t.Fatalf("cached Candidates = %d, want %d", len(second.Candidates), len(first.Candidates))
	}
	if second.Candidates[0].URL != first.Candidates[0].URL {
		t.Fatalf("cached candidate URL = %q, want %q",
			second.Candidates[0].URL, first.Candidates[0].URL)
	}
	if second.NeedsVerification != first.NeedsVerification {
		t.Fatalf("cached NeedsVerification = %v, want %v",
			second.NeedsVerification, first.NeedsVerification)
	}
	if second.Confidence != first.Confidence {
		t.Fatalf("cached Confidence = %v, want %v", second.Confidence, first.Confidence)
	}
}

func TestResolve_CandidatesRankedBeforeTruncation(t *testing.T) {
	// Weak results arrive first; the cap must keep the strongest ones.
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Acme on Wikipedia", URL: "https://en.wikipedia.org/wiki/Acme_Relief"},
		{Title: "Acme Relief Blog", URL: "https://acmerelief.wordpress.com"},
		{Title: "Acme Relief", URL: "https://www.acmerelief.org"},
	}}

	cfg := model.DefaultConfig()
	cfg.Resolver.MaxCandidates = 2
	mgr := verify.NewManager(nil, zap.NewNop())
	c := cache.NewMemoryCache(cfg.Cache.TTL, time.Minute)
	r := NewResolver(cfg, searcher, mgr, nil, c, zap.NewNop())

	res := r.Resolve(context.Background(), "Acme Relief", "")
	if len(res.Candidates) != 2 {
		t.Fatalf("Candidates = %d, want 2", len(res.Candidates))
	}
	if res.Candidates[0].URL != "https://www.acmerelief.org" {
		t.Fatalf("top candidate = %q, want the official site", res.Candidates[0].URL)
	}
	if res.Candidates[0].Confidence < res.Candidates[1].Confidence {
		t.Fatalf("candidates out of order: %.2f before %.2f",
			res.Candidates[0].Confidence, res.Candidates[1].Confidence)
	}
}

func TestBuildQueries(t *testing.T) {
	tests := []struct {
		name       string
		expansions []string
		want       []string
	}{
		{
			name:       "plain name",
			expansions: []string{"Acme Relief"},
			want:       []string{"Acme Relief official website", "Acme Relief organization"},
		},
		{
			name:       "fund variant",
			expansions: []string{"Global Fund"},
			want: []string{
				"Global Fund official website",
				"Global Fund organization",
				"Global Fund foundation",
			},
		},
		{
			name:       "program variant",
			expansions: []string{"Health Initiative"},
			want: []string{
				"Health Initiative official website",
				"Health Initiative organization",
				"Health Initiative program",
			},
		},
		{
			name:       "duplicates collapse",
			expansions: []string{"WHO", "WHO"},
			want:       []string{"WHO official website", "WHO organization"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildQueries(tt.expansions)
			if len(got) != len(tt.want) {
				t.Fatalf("buildQueries(%v) = %v, want %v", tt.expansions, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("query[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResolve_CachesSuccess(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Gavi, the Vaccine Alliance", URL: "https://www.gavi.org"},
	}}
	r, _ := newTestResolver(t, searcher, nil)

	r.Resolve(context.Background(), "GAVI", "")
	calls := searcher.calls

	res := r.Resolve(context.Background(), "GAVI", "")
	if res.Source != SourceCache {
		t.Fatalf("Source = %q, want cache", res.Source)
	}
	if res.URL != "https://www.gavi.org" {
		t.Fatalf("cached URL = %q", res.URL)
	}
	if searcher.calls != calls {
		t.Fatal("search repeated despite cached success")
	}
}

func TestResolve_MaxQueriesBound(t *testing.T) {
	searcher := &fakeSearcher{}
	r, _ := newTestResolver(t, searcher, nil)

	// Context expansion plus the dictionary can produce many variants;
	// only MaxQueries of them may reach the network.
	r.Resolve(context.Background(), "GAVI", "GAVI, which works on vaccine access worldwide.")
	if searcher.calls > model.DefaultConfig().Resolver.MaxQueries {
		t.Fatalf("search called %d times, want at most %d",
			searcher.calls, model.DefaultConfig().Resolver.MaxQueries)
	}
}

func TestStats(t *testing.T) {
	searcher := &fakeSearcher{results: []search.Result{
		{Title: "Gavi, the Vaccine Alliance", URL: "https://www.gavi.org"},
	}}
	r, _ := newTestResolver(t, searcher, nil)

	r.Resolve(context.Background(), "UNICEF", "") // known org
	r.Resolve(context.Background(), "GAVI", "")   // search success
	r.Resolve(context.Background(), "GAVI", "")   // cache hit

	stats := r.Stats()
	if stats.KnownOrgs != len(staticKnownOrgs) {
		t.Fatalf("KnownOrgs = %d", stats.KnownOrgs)
	}
	if stats.SuccessfulResolutions != 3 {
		t.Fatalf("SuccessfulResolutions = %d, want 3", stats.SuccessfulResolutions)
	}
	if stats.SuccessRate != 1.0 {
		t.Fatalf("SuccessRate = %v, want 1.0", stats.SuccessRate)
	}
	if stats.CacheHitRatio <= 0 {
		t.Fatalf("CacheHitRatio = %v, want > 0", stats.CacheHitRatio)
	}
}
