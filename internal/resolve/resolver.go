// Package resolve maps organization names to their official URLs. A
// resolution consults, in order: the durable verified store, approvals from
// the current session, the result cache, a small static allowlist, and
// finally live web search. Search results are scored and handed to the
// verification queue; only high-confidence matches for well-known
// organizations skip human review.
package resolve

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/cache"
	"github.com/linkedclaims/claimresolve/internal/expand"
	"github.com/linkedclaims/claimresolve/internal/model"
	"github.com/linkedclaims/claimresolve/internal/score"
	"github.com/linkedclaims/claimresolve/internal/search"
	"github.com/linkedclaims/claimresolve/internal/verify"
)

// staticKnownOrgs are organizations whose official URLs are stable enough
// to hardcode. Keys are normalized names.
var staticKnownOrgs = map[string]string{
	"unicef":           "https://www.unicef.org",
	"who":              "https://www.who.int",
	"world_bank":       "https://www.worldbank.org",
	"gates_foundation": "https://www.gatesfoundation.org",
}

// knownPatterns marks organizations familiar enough that a near-perfect
// confidence score may be trusted without human review.
var knownPatterns = []string{"gavi", "who", "unicef", "world_bank"}

// Resolution sources, reported so callers can tell a hardcoded hit from a
// fresh search.
const (
	SourceStore    = "verified_store"
	SourceSession  = "session_approval"
	SourceCache    = "cache"
	SourceKnownOrg = "known_org"
	SourceSearch   = "search"
)

// Searcher is the slice of the search provider the resolver needs.
type Searcher interface {
	Search(ctx context.Context, query string) []search.Result
}

// Verifier is the slice of the verification manager the resolver needs.
type Verifier interface {
	AddCandidates(orgKey string, found []verify.Candidate) []model.URLCandidate
	VerifiedURL(orgKey string) string
}

// Resolution is the outcome of one Resolve call. URL is empty when no
// candidate cleared the auto-accept bar; candidates at or above the
// surface threshold are then queued for review instead.
type Resolution struct {
	URL               string
	Source            string
	Confidence        float64
	Candidates        []model.URLCandidate
	NeedsVerification bool
}

// cacheEntry is the JSON shape stored per organization: the best URL (or
// none) plus the full candidate list and the review outcome, so a cache hit
// reproduces the original resolution exactly. Failed attempts are cached
// too, so a name that found nothing is not re-searched on every claim that
// mentions it.
type cacheEntry struct {
	URL               string               `json:"url"`
	Resolved          bool                 `json:"resolved"`
	Score             float64              `json:"score,omitempty"`
	Candidates        []model.URLCandidate `json:"candidates,omitempty"`
	NeedsVerification bool                 `json:"needs_verification,omitempty"`
}

// Resolver performs organization URL resolution. Safe for concurrent use.
type Resolver struct {
	cfg      model.ResolverConfig
	cacheTTL model.CacheConfig
	searcher Searcher
	expander *expand.Expander
	scorer   *score.Scorer
	verifier Verifier
	store    verify.OrganizationStore // may be nil
	cache    cache.Cache              // may be nil
	logger   *zap.Logger

	mu          sync.Mutex
	attempts    int
	resolutions int
	cacheHits   int
	cacheWrites int
}

// NewResolver wires a resolver. store and c may be nil when the durable
// tier or caching is disabled.
func NewResolver(cfg *model.Config, searcher Searcher, verifier Verifier, store verify.OrganizationStore, c cache.Cache, logger *zap.Logger) *Resolver {
	return &Resolver{
		cfg:      cfg.Resolver,
		cacheTTL: cfg.Cache,
		searcher: searcher,
		expander: expand.NewExpander(),
		scorer:   score.NewScorer(),
		verifier: verifier,
		store:    store,
		cache:    c,
		logger:   logger,
	}
}

// Resolve finds the official URL for orgName. docContext, when non-empty,
// is surrounding document text used to expand abbreviations into better
// search queries.
func (r *Resolver) Resolve(ctx context.Context, orgName, docContext string) Resolution {
	key := NormalizeOrgName(orgName)
	if key == "" {
		return Resolution{}
	}

	r.mu.Lock()
	r.attempts++
	r.mu.Unlock()

	if r.store != nil {
		if url := r.store.VerifiedURL(key); url != "" {
			r.recordSuccess()
			return Resolution{URL: url, Source: SourceStore, Confidence: 1.0}
		}
	}

	if url := r.verifier.VerifiedURL(key); url != "" {
		r.recordSuccess()
		return Resolution{URL: url, Source: SourceSession, Confidence: 1.0}
	}

	if entry, ok := r.cachedEntry(key); ok {
		r.mu.Lock()
		r.cacheHits++
		r.mu.Unlock()
		if entry.Resolved {
			r.recordSuccess()
			return Resolution{
				URL:        entry.URL,
				Source:     SourceCache,
				Confidence: entry.Score,
				Candidates: entry.Candidates,
			}
		}
		// Cached miss: the last search either came up empty or left
		// candidates waiting for review. Either way, no re-search.
		return Resolution{
			Source:            SourceCache,
			Confidence:        entry.Score,
			Candidates:        entry.Candidates,
			NeedsVerification: entry.NeedsVerification,
		}
	}

	if url, ok := staticKnownOrgs[key]; ok {
		r.recordSuccess()
		r.storeEntry(key, cacheEntry{URL: url, Resolved: true, Score: 1.0})
		return Resolution{URL: url, Source: SourceKnownOrg, Confidence: 1.0}
	}

	return r.resolveViaSearch(ctx, orgName, key, docContext)
}

// buildQueries turns name expansions into search query strings. Each
// expansion yields an "official website" and an "organization" variant,
// plus type-specific variants for names that look like funds or programs.
// Order preserved, duplicates dropped.
func buildQueries(expansions []string) []string {
	var queries []string
	seen := map[string]bool{}
	add := func(q string) {
		if !seen[q] {
			seen[q] = true
			queries = append(queries, q)
		}
	}
	for _, name := range expansions {
		add(name + " official website")
		add(name + " organization")
		lower := strings.ToLower(name)
		if strings.Contains(lower, "fund") || strings.Contains(lower, "foundation") {
			add(name + " foundation")
		}
		if strings.Contains(lower, "program") || strings.Contains(lower, "initiative") {
			add(name + " program")
		}
	}
	return queries
}

func (r *Resolver) resolveViaSearch(ctx context.Context, orgName, key, docContext string) Resolution {
	queries := buildQueries(r.expander.Expand(orgName, docContext))
	if len(queries) > r.cfg.MaxQueries {
		queries = queries[:r.cfg.MaxQueries]
	}

	type scored struct {
		result search.Result
		conf   float64
	}
	var best scored
	seen := map[string]bool{}
	var found []verify.Candidate

	for _, q := range queries {
		for _, res := range r.searcher.Search(ctx, q) {
			if res.URL == "" || seen[res.URL] {
				continue
			}
			seen[res.URL] = true
			conf := r.scorer.Score(orgName, res.Title, res.URL)
			if conf < r.cfg.CandidateFloor {
				continue
			}
			found = append(found, verify.Candidate{Title: res.Title, URL: res.URL, Confidence: conf})
			if conf > best.conf {
				best = scored{result: res, conf: conf}
			}
		}
		if best.conf >= r.cfg.AutoAcceptThreshold {
			break
		}
	}

	// Rank before truncating so the cap never discards a stronger
	// candidate in favor of a weaker one found earlier.
	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Confidence > found[j].Confidence
	})
	if len(found) > r.cfg.MaxCandidates {
		found = found[:r.cfg.MaxCandidates]
	}

	var candidates []model.URLCandidate
	if len(found) > 0 {
		candidates = r.verifier.AddCandidates(key, found)
	}

	if best.conf >= r.cfg.AutoAcceptThreshold && isKnownPattern(key) {
		r.logger.Info("auto-accepting high-confidence URL",
			zap.String("organization", key),
			zap.String("url", best.result.URL),
			zap.Float64("confidence", best.conf))
		r.recordSuccess()
		r.storeEntry(key, cacheEntry{
			URL:        best.result.URL,
			Resolved:   true,
			Score:      best.conf,
			Candidates: candidates,
		})
		return Resolution{
			URL:        best.result.URL,
			Source:     SourceSearch,
			Confidence: best.conf,
			Candidates: candidates,
		}
	}

	needsVerification := best.conf >= r.cfg.SurfaceThreshold
	r.storeEntry(key, cacheEntry{
		Resolved:          false,
		Score:             best.conf,
		Candidates:        candidates,
		NeedsVerification: needsVerification,
	})

	if needsVerification {
		r.logger.Info("URL needs verification",
			zap.String("organization", key),
			zap.Float64("best_confidence", best.conf),
			zap.Int("candidates", len(candidates)))
		return Resolution{
			Source:            SourceSearch,
			Confidence:        best.conf,
			Candidates:        candidates,
			NeedsVerification: true,
		}
	}

	r.logger.Debug("no credible URL found",
		zap.String("organization", key), zap.Float64("best_confidence", best.conf))
	return Resolution{Source: SourceSearch, Confidence: best.conf, Candidates: candidates}
}

// Invalidate drops any cached result for orgName. Called after an approval
// so the next resolution reads the verified tier instead of a stale miss.
func (r *Resolver) Invalidate(orgName string) {
	if r.cache == nil {
		return
	}
	key := NormalizeOrgName(orgName)
	if err := r.cache.Delete(cache.Key(key)); err != nil {
		r.logger.Warn("cache invalidation failed", zap.String("organization", key), zap.Error(err))
	}
}

// Stats reports resolution counters.
func (r *Resolver) Stats() model.ResolutionStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	known := len(staticKnownOrgs)
	if r.store != nil {
		known += r.store.Len()
	}
	stats := model.ResolutionStats{
		KnownOrgs:             known,
		CachedSearches:        r.cacheWrites,
		SuccessfulResolutions: r.resolutions,
	}
	if r.attempts > 0 {
		stats.SuccessRate = float64(r.resolutions) / float64(r.attempts)
		stats.CacheHitRatio = float64(r.cacheHits) / float64(r.attempts)
	}
	return stats
}

func (r *Resolver) recordSuccess() {
	r.mu.Lock()
	r.resolutions++
	r.mu.Unlock()
}

func (r *Resolver) cachedEntry(key string) (cacheEntry, bool) {
	if r.cache == nil || !r.cacheTTL.Enabled {
		return cacheEntry{}, false
	}
	data, ok := r.cache.Get(cache.Key(key))
	if !ok {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		r.logger.Warn("corrupt cache entry", zap.String("organization", key), zap.Error(err))
		return cacheEntry{}, false
	}
	return entry, true
}

func (r *Resolver) storeEntry(key string, entry cacheEntry) {
	if r.cache == nil || !r.cacheTTL.Enabled {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := r.cache.Set(cache.Key(key), data, r.cacheTTL.TTL); err != nil {
		r.logger.Warn("cache write failed", zap.String("organization", key), zap.Error(err))
		return
	}
	r.mu.Lock()
	r.cacheWrites++
	r.mu.Unlock()
}

func isKnownPattern(key string) bool {
	for _, p := range knownPatterns {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}
