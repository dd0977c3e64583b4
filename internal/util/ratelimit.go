package util

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// DomainLimiter rate-limits outbound requests per target domain, so
// probing many candidates does not hammer any single host.
type DomainLimiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewDomainLimiter creates a limiter allowing requestsPerSecond per domain.
func NewDomainLimiter(requestsPerSecond float64, burst int) *DomainLimiter {
	if burst <= 0 {
		burst = 5
	}
	return &DomainLimiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until a request to rawURL's domain is allowed.
func (l *DomainLimiter) Wait(ctx context.Context, rawURL string) error {
	domain, err := extractDomain(rawURL)
	if err != nil {
		return err
	}
	return l.limiter(domain).Wait(ctx)
}

func (l *DomainLimiter) limiter(domain string) *rate.Limiter {
	l.mu.RLock()
	lim, ok := l.limiters[domain]
	l.mu.RUnlock()
	if ok {
		return lim
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters[domain]; ok {
		return lim
	}
	lim = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[domain] = lim
	return lim
}

func extractDomain(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", fmt.Errorf("no host in URL %q", rawURL)
	}
	return host, nil
}
