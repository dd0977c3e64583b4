// Package validate checks whether candidate URLs actually respond. The
// check is advisory: an unreachable site is annotated for the reviewer,
// never auto-rejected, since official sites go down and come back.
package validate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/model"
	"github.com/linkedclaims/claimresolve/internal/util"
)

const checkMaxRetries = 3

// checkSleepFunc is the sleep between retries (injectable for tests).
var checkSleepFunc = time.Sleep

// LinkChecker probes candidate URLs with HEAD requests, concurrently.
type LinkChecker struct {
	httpClient *http.Client
	limiter    *util.DomainLimiter
	maxWorkers int
	userAgent  string
	logger     *zap.Logger
}

// NewLinkChecker builds a checker from config.
func NewLinkChecker(cfg *model.Config, logger *zap.Logger) *LinkChecker {
	workers := cfg.LinkCheck.Workers
	if workers <= 0 {
		workers = 5
	}

	return &LinkChecker{
		httpClient: &http.Client{
			Timeout: cfg.LinkCheck.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter:    util.NewDomainLimiter(2, 2),
		maxWorkers: workers,
		userAgent:  cfg.HTTP.UserAgent,
		logger:     logger,
	}
}

// Check probes every candidate URL and sets Inaccessible on those that do
// not answer. Candidates are modified in place.
func (c *LinkChecker) Check(ctx context.Context, candidates []model.URLCandidate) {
	if len(candidates) == 0 {
		return
	}

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, c.maxWorkers)

	for i := range candidates {
		wg.Add(1)
		go func(cand *model.URLCandidate) {
			defer wg.Done()

			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}:
			}
			defer func() { <-semaphore }()

			accessible := c.checkSingleWithRetry(ctx, cand.URL)
			cand.Inaccessible = !accessible
			if !accessible {
				c.logger.Warn("candidate URL unreachable",
					zap.String("organization", cand.Organization),
					zap.String("url", cand.URL))
			}
		}(&candidates[i])
	}

	wg.Wait()
}

func (c *LinkChecker) checkSingle(ctx context.Context, rawURL string) (statusCode int, err error) {
	if err := c.limiter.Wait(ctx, rawURL); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode, nil
}

// checkSingleWithRetry retries transient failures with exponential backoff.
func (c *LinkChecker) checkSingleWithRetry(ctx context.Context, rawURL string) bool {
	for attempt := 0; attempt < checkMaxRetries; attempt++ {
		status, err := c.checkSingle(ctx, rawURL)
		if err == nil && status >= 200 && status < 400 {
			return true
		}
		if !isRetryable(status, err) {
			return false
		}
		if attempt < checkMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			checkSleepFunc(backoff)
		}
	}
	return false
}

func isRetryable(status int, err error) bool {
	if status >= 500 && status < 600 {
		return true
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	if err != nil {
		s := strings.ToLower(err.Error())
		return strings.Contains(s, "timeout") ||
			strings.Contains(s, "connection refused") ||
			strings.Contains(s, "connection reset")
	}
	return false
}
