package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// searchViaScraping fetches the search engine's HTML results page and pulls
// URLs out of its anchors. Used only when the structured tier comes back
// empty.
func (p *Provider) searchViaScraping(ctx context.Context, query string) ([]Result, error) {
	endpoint := fmt.Sprintf("%s/html/?q=%s", p.scrapeBaseURL, url.QueryEscape(query))

	if p.respectRobots && !p.robots.IsAllowed(ctx, endpoint) {
		return nil, fmt.Errorf("robots.txt disallows %s", endpoint)
	}

	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scrape request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2_000_000))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	hrefs := collectHrefs(doc)

	seen := make(map[string]bool)
	var results []Result
	for _, href := range hrefs {
		resolved := unwrapResultURL(href)
		if resolved == "" || seen[resolved] {
			continue
		}
		parsed, err := url.Parse(resolved)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			continue
		}
		if strings.Contains(parsed.Host, "duckduckgo.com") {
			continue
		}

		seen[resolved] = true
		results = append(results, Result{
			// The results page has no reliable titles; synthesize one.
			Title: fmt.Sprintf("Search result from %s", parsed.Host),
			URL:   resolved,
		})
		if len(results) >= p.maxResults {
			break
		}
	}

	return results, nil
}

// collectHrefs walks the document and returns every anchor href in order.
func collectHrefs(doc *html.Node) []string {
	var hrefs []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			for _, attr := range n.Attr {
				if attr.Key == "href" && attr.Val != "" {
					hrefs = append(hrefs, strings.TrimSpace(attr.Val))
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return hrefs
}

// unwrapResultURL turns a results-page href into the target URL. The engine
// wraps result links in a redirect of the form /l/?uddg=<escaped-url>; bare
// absolute links pass through unchanged. Returns "" for anything else.
func unwrapResultURL(href string) string {
	if strings.HasPrefix(href, "/l/?") || strings.HasPrefix(href, "//duckduckgo.com/l/?") {
		idx := strings.Index(href, "?")
		values, err := url.ParseQuery(href[idx+1:])
		if err != nil {
			return ""
		}
		return values.Get("uddg")
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return ""
}
