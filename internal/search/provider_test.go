package search

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/model"
)

func newTestProvider(t *testing.T, apiURL, scrapeURL string) *Provider {
	t.Helper()
	cfg := model.DefaultConfig()
	cfg.Search.Delay = 5 * time.Millisecond
	cfg.Search.RespectRobots = false
	cfg.HTTP.Timeout = 5 * time.Second

	p := NewProvider(cfg, zap.NewNop())
	if apiURL != "" {
		p.apiBaseURL = apiURL
	}
	if scrapeURL != "" {
		p.scrapeBaseURL = scrapeURL
	}
	return p
}

func TestProvider_Search_InstantAnswer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("format"); got != "json" {
			t.Errorf("expected format=json, got %q", got)
		}
		_, _ = w.Write([]byte(`{
			"AbstractText": "UNICEF works in over 190 countries",
			"AbstractURL": "https://www.unicef.org",
			"RelatedTopics": [
				{"Text": "UNICEF UK", "FirstURL": "https://www.unicef.org.uk"}
			],
			"Infobox": {"content": [
				{"data_type": "string", "label": "Website", "value": "Official site https://www.unicef.org/about"}
			]}
		}`))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, "")
	results := p.Search(context.Background(), "unicef official website")

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d: %v", len(results), results)
	}
	if results[0].URL != "https://www.unicef.org" {
		t.Errorf("first result URL = %q, want abstract URL", results[0].URL)
	}
	if results[2].URL != "https://www.unicef.org/about" {
		t.Errorf("infobox URL = %q, want embedded URL extracted by regex", results[2].URL)
	}
}

func TestProvider_Search_ScrapeFallback(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`)) // no instant answer
	}))
	defer api.Close()

	scrape := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
			<a href="/l/?uddg=https%3A%2F%2Fwww.theglobalfund.org%2F">The Global Fund</a>
			<a href="https://duckduckgo.com/settings">settings</a>
			<a href="https://example.org/page">Example</a>
			<a href="mailto:someone@example.com">mail</a>
			<a href="#top">top</a>
		</body></html>`))
	}))
	defer scrape.Close()

	p := newTestProvider(t, api.URL, scrape.URL)
	results := p.Search(context.Background(), "global fund")

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %v", len(results), results)
	}
	if results[0].URL != "https://www.theglobalfund.org/" {
		t.Errorf("redirect-wrapped URL not unwrapped: %q", results[0].URL)
	}
	if results[0].Title != "Search result from www.theglobalfund.org" {
		t.Errorf("synthesized title = %q", results[0].Title)
	}
	if results[1].URL != "https://example.org/page" {
		t.Errorf("bare href not kept: %q", results[1].URL)
	}
}

func TestProvider_Search_NeverRaises(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed JSON",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json at all"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			p := newTestProvider(t, server.URL, server.URL)
			results := p.Search(context.Background(), "anything")
			if results != nil && len(results) != 0 {
				t.Errorf("degraded search returned results: %v", results)
			}
		})
	}
}

func TestProvider_Search_RateLimitShared(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"AbstractURL": "https://example.org", "AbstractText": "x"}`))
	}))
	defer server.Close()

	p := newTestProvider(t, server.URL, "")

	start := time.Now()
	p.Search(context.Background(), "first")
	p.Search(context.Background(), "second")
	p.Search(context.Background(), "third")
	elapsed := time.Since(start)

	// Three searches through a 5ms-interval limiter need at least two waits.
	if elapsed < 10*time.Millisecond {
		t.Errorf("three searches finished in %v; global delay not enforced", elapsed)
	}
}

func TestProvider_Search_ContextCancelled(t *testing.T) {
	p := newTestProvider(t, "http://127.0.0.1:0", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if results := p.Search(ctx, "query"); len(results) != 0 {
		t.Errorf("cancelled search returned results: %v", results)
	}
}
