// Package search finds candidate URLs for organization names using a
// structured search API with an HTML-scraping fallback. Failures never
// propagate past Search: a broken tier degrades to zero results.
package search

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/linkedclaims/claimresolve/internal/model"
	"github.com/linkedclaims/claimresolve/internal/util"
)

const (
	defaultAPIBaseURL    = "https://api.duckduckgo.com"
	defaultScrapeBaseURL = "https://html.duckduckgo.com"
)

// Result is one search hit: a page title and its URL.
type Result struct {
	Title string
	URL   string
}

// Provider queries the search tiers. All outbound requests, regardless of
// tier, share one rate limiter so the provider-wide minimum delay holds even
// under concurrent resolution.
type Provider struct {
	httpClient    *http.Client
	limiter       *rate.Limiter
	robots        *util.RobotsChecker
	logger        *zap.Logger
	userAgent     string
	maxResults    int
	scrapeEnabled bool
	respectRobots bool

	apiBaseURL    string
	scrapeBaseURL string
}

// NewProvider creates a search provider from configuration.
func NewProvider(cfg *model.Config, logger *zap.Logger) *Provider {
	delay := cfg.Search.Delay
	if delay <= 0 {
		delay = time.Second
	}
	maxResults := cfg.Search.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	return &Provider{
		httpClient: &http.Client{
			Timeout: cfg.HTTP.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
			},
		},
		limiter:       rate.NewLimiter(rate.Every(delay), 1),
		robots:        util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout),
		logger:        logger,
		userAgent:     cfg.HTTP.UserAgent,
		maxResults:    maxResults,
		scrapeEnabled: cfg.Search.ScrapeFallback,
		respectRobots: cfg.Search.RespectRobots,
		apiBaseURL:    defaultAPIBaseURL,
		scrapeBaseURL: defaultScrapeBaseURL,
	}
}

// Search returns candidate (title, URL) results for the query, best-effort.
// The primary structured tier is tried first; if it yields nothing, the
// HTML-scrape fallback runs. Both tiers honor the shared rate limit.
func (p *Provider) Search(ctx context.Context, query string) []Result {
	results, err := p.searchInstantAnswer(ctx, query)
	if err != nil {
		p.logger.Warn("instant-answer search failed",
			zap.String("query", query), zap.Error(err))
	}
	if len(results) > 0 {
		p.logger.Debug("instant-answer search results",
			zap.String("query", query), zap.Int("count", len(results)))
		return results
	}

	if !p.scrapeEnabled {
		return nil
	}

	results, err = p.searchViaScraping(ctx, query)
	if err != nil {
		p.logger.Warn("scrape-fallback search failed",
			zap.String("query", query), zap.Error(err))
		return nil
	}
	p.logger.Debug("scrape-fallback search results",
		zap.String("query", query), zap.Int("count", len(results)))
	return results
}

// wait blocks until the global inter-search delay has elapsed.
func (p *Provider) wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
