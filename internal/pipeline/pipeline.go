// Package pipeline wires extraction, URL resolution, and verification into
// the end-to-end claim flow.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/cache"
	"github.com/linkedclaims/claimresolve/internal/extract"
	"github.com/linkedclaims/claimresolve/internal/model"
	"github.com/linkedclaims/claimresolve/internal/resolve"
	"github.com/linkedclaims/claimresolve/internal/search"
	"github.com/linkedclaims/claimresolve/internal/urlgen"
	"github.com/linkedclaims/claimresolve/internal/validate"
	"github.com/linkedclaims/claimresolve/internal/verify"
)

const pageSnippetLen = 500

// Pipeline orchestrates the claim resolution flow: URN subjects go through
// organization resolution, bare names and placeholder URLs through URL
// generation, and everything that found no real URL falls back to a
// fragment of the source document.
type Pipeline struct {
	resolver  *resolve.Resolver
	manager   *verify.Manager
	improver  *urlgen.Improver
	checker   *validate.LinkChecker // nil unless link checking is enabled
	extractor extract.Extractor     // nil unless an API key is configured
	config    *model.Config
	logger    *zap.Logger
}

// NewPipeline builds a pipeline from configuration. The extractor is
// optional: without an API key the pipeline can still resolve claims
// produced elsewhere.
func NewPipeline(cfg *model.Config, logger *zap.Logger) (*Pipeline, error) {
	var store verify.OrganizationStore
	if cfg.Store.Path != "" {
		fileStore, err := verify.NewFileStore(cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open organization store: %w", err)
		}
		store = fileStore
	}

	var resolutionCache cache.Cache
	if cfg.Cache.Enabled {
		if cfg.Cache.Dir != "" {
			resolutionCache = cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
		} else {
			resolutionCache = cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
		}
	}

	var manager *verify.Manager
	if cfg.Store.CandidatesPath != "" {
		m, err := verify.NewPersistentManager(store, cfg.Store.CandidatesPath, logger)
		if err != nil {
			return nil, fmt.Errorf("load verification queue: %w", err)
		}
		manager = m
	} else {
		manager = verify.NewManager(store, logger)
	}
	provider := search.NewProvider(cfg, logger)
	resolver := resolve.NewResolver(cfg, provider, manager, store, resolutionCache, logger)

	var checker *validate.LinkChecker
	if cfg.LinkCheck.Enabled {
		checker = validate.NewLinkChecker(cfg, logger)
	}

	var extractor extract.Extractor
	if cfg.Extractor.APIKey != "" {
		e, err := extract.NewOpenAIExtractor(cfg.Extractor)
		if err != nil {
			return nil, fmt.Errorf("create extractor: %w", err)
		}
		extractor = e
	}

	return &Pipeline{
		resolver:  resolver,
		manager:   manager,
		improver:  urlgen.NewImprover(logger),
		checker:   checker,
		extractor: extractor,
		config:    cfg,
		logger:    logger,
	}, nil
}

// ResolveClaims resolves URLs for a batch of raw claims. docContext is
// surrounding document text used for abbreviation expansion; documentURL
// is the source document's public URL, used for person and population
// objects and as the last-resort subject fallback.
func (p *Pipeline) ResolveClaims(ctx context.Context, claims []model.RawClaim, docContext, documentURL string) []model.ResolvedClaim {
	out := make([]model.ResolvedClaim, 0, len(claims))
	for _, raw := range claims {
		resolved := model.ResolvedClaim{RawClaim: raw, Status: model.ClaimStatusDraft}
		p.resolveSubject(ctx, &resolved, docContext)
		p.resolveObject(ctx, &resolved, docContext, documentURL)
		p.improver.Improve(&resolved, docContext)
		applyDocumentFallback(&resolved, documentURL)
		out = append(out, resolved)
	}
	return out
}

// ExtractAndResolve runs the extractor over document pages and resolves
// the resulting claims. Authentication failures abort the document.
func (p *Pipeline) ExtractAndResolve(ctx context.Context, pages []extract.Page, documentURL string) ([]model.ResolvedClaim, error) {
	if p.extractor == nil {
		return nil, fmt.Errorf("extract: %w", extract.ErrAuthentication)
	}

	pageClaims, err := extract.ExtractPages(ctx, p.extractor, pages, p.config.Extractor.MinTextLength, p.logger)
	if err != nil {
		return nil, err
	}

	var out []model.ResolvedClaim
	for _, pc := range pageClaims {
		resolved := p.ResolveClaims(ctx, pc.Claims, pc.Page.Text, documentURL)
		snippet := pc.Page.Text
		if len(snippet) > pageSnippetLen {
			snippet = snippet[:pageSnippetLen]
		}
		for i := range resolved {
			resolved[i].PageNumber = pc.Page.Number
			resolved[i].PageSnippet = snippet
		}
		out = append(out, resolved...)
	}

	p.logger.Info("document processed",
		zap.Int("pages", len(pages)), zap.Int("claims", len(out)))
	return out, nil
}

func (p *Pipeline) resolveSubject(ctx context.Context, claim *model.ResolvedClaim, docContext string) {
	if !isOrganizationURN(claim.Subject) {
		return
	}

	orgName := resolve.OrgNameFromURN(claim.Subject)
	res := p.resolver.Resolve(ctx, orgName, docContext)

	if res.URL != "" {
		claim.Subject = res.URL
		claim.SubjectVerified = true
		claim.SubjectConfidence = res.Confidence
		p.logger.Info("resolved subject",
			zap.String("organization", orgName), zap.String("url", res.URL))
		return
	}

	claim.SubjectVerified = false
	claim.NeedsVerification = true
	claim.SubjectCandidates = p.candidateViews(orgName, res.Candidates)
	claim.SubjectDisplayName = displayNameFor(orgName)
	claim.SubjectConfidence = res.Confidence
}

func (p *Pipeline) resolveObject(ctx context.Context, claim *model.ResolvedClaim, docContext, documentURL string) {
	obj := claim.Object
	switch {
	case isOrganizationURN(obj):
		orgName := resolve.OrgNameFromURN(obj)
		res := p.resolver.Resolve(ctx, orgName, docContext)
		if res.URL != "" {
			claim.Object = res.URL
			claim.ObjectVerified = true
			claim.ObjectConfidence = res.Confidence
			return
		}
		claim.ObjectVerified = false
		claim.NeedsVerification = true
		claim.ObjectCandidates = p.candidateViews(orgName, res.Candidates)
		claim.ObjectDisplayName = displayNameFor(orgName)
		claim.ObjectConfidence = res.Confidence

	case isPersonOrPopulationURN(obj):
		// People and populations never get searched for; the document
		// that mentions them is their reference.
		if documentURL != "" {
			p.logger.Info("using document URL for object",
				zap.String("object", obj), zap.String("url", documentURL))
			claim.Object = documentURL
			claim.ObjectURLSource = "document"
		}
	}
}

// candidateViews prefers the verification queue's view of an organization,
// which carries candidate ids a reviewer can act on, and falls back to the
// resolution's own candidates.
func (p *Pipeline) candidateViews(orgName string, fromResolution []model.URLCandidate) []model.CandidateView {
	key := resolve.NormalizeOrgName(orgName)
	for _, org := range p.manager.Pending(0) {
		if org.Organization == key {
			return org.Candidates
		}
	}

	views := make([]model.CandidateView, 0, len(fromResolution))
	for _, c := range fromResolution {
		views = append(views, model.CandidateView{
			CandidateID: c.ID,
			URL:         c.URL,
			Title:       c.Title,
			Confidence:  c.Confidence,
			Status:      string(c.Status),
		})
	}
	return views
}

// applyDocumentFallback anchors any still-unresolved subject or object to a
// fragment of the source document so every published claim has a
// dereferenceable URI.
func applyDocumentFallback(claim *model.ResolvedClaim, documentURL string) {
	if documentURL == "" {
		return
	}
	if claim.Subject != "" && !isHTTPURL(claim.Subject) {
		claim.Subject = documentURL + "#subject-" + truncate(claim.Subject, 50)
	}
	if claim.Object != "" && !isHTTPURL(claim.Object) {
		claim.Object = documentURL + "#object-" + truncate(claim.Object, 50)
	}
}

// PendingVerifications lists organizations awaiting review.
func (p *Pipeline) PendingVerifications(limit int) []model.PendingOrganization {
	return p.manager.Pending(limit)
}

// Approve accepts a candidate URL and invalidates the cached resolution so
// the next lookup sees the approval.
func (p *Pipeline) Approve(candidateID, userID string) bool {
	cand, ok := p.manager.Candidate(candidateID)
	if !ok {
		return false
	}
	if !p.manager.Approve(candidateID, userID) {
		return false
	}
	p.resolver.Invalidate(cand.Organization)
	return true
}

// Reject marks a candidate URL as wrong.
func (p *Pipeline) Reject(candidateID, reason, userID string) bool {
	return p.manager.Reject(candidateID, reason, userID)
}

// SuggestURL registers a user-suggested URL as a high-confidence candidate.
// Suggestions still go through review; they are not auto-approved.
func (p *Pipeline) SuggestURL(orgName, suggestedURL, userID string) ([]model.URLCandidate, error) {
	if orgName == "" || suggestedURL == "" {
		return nil, fmt.Errorf("organization and url are required")
	}
	if !isHTTPURL(suggestedURL) {
		return nil, fmt.Errorf("invalid URL %q", suggestedURL)
	}

	key := resolve.NormalizeOrgName(orgName)
	added := p.manager.AddCandidates(key, []verify.Candidate{{
		Title:      "User suggested by " + userID,
		URL:        suggestedURL,
		Confidence: 0.95,
	}})
	return added, nil
}

// CheckCandidates annotates pending candidates that do not respond to an
// accessibility probe. No-op unless link checking is enabled.
func (p *Pipeline) CheckCandidates(ctx context.Context, candidates []model.URLCandidate) {
	if p.checker == nil {
		return
	}
	p.checker.Check(ctx, candidates)
}

// VerificationStats reports candidate lifecycle counts.
func (p *Pipeline) VerificationStats() model.VerificationStats {
	return p.manager.Stats()
}

// ResolutionStats reports resolver counters.
func (p *Pipeline) ResolutionStats() model.ResolutionStats {
	return p.resolver.Stats()
}

func isOrganizationURN(s string) bool {
	return strings.HasPrefix(s, "urn:local:org:") || strings.HasPrefix(s, "urn:local:program:")
}

func isPersonOrPopulationURN(s string) bool {
	return strings.HasPrefix(s, "urn:local:person:") || strings.HasPrefix(s, "urn:local:population:")
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

func displayNameFor(orgName string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(orgName))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
