package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
)

// instantAnswer is the subset of the DuckDuckGo Instant Answer response the
// provider reads. Fields the API mixes text and links into are scanned with
// a URL regex rather than trusted as structured data.
type instantAnswer struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
	Infobox struct {
		Content []struct {
			DataType string `json:"data_type"`
			Label    string `json:"label"`
			Value    any    `json:"value"`
		} `json:"content"`
	} `json:"Infobox"`
}

var embeddedURLPattern = regexp.MustCompile(`https?://[^\s<>"]+`)

// searchInstantAnswer queries the structured instant-answer API.
func (p *Provider) searchInstantAnswer(ctx context.Context, query string) ([]Result, error) {
	if err := p.wait(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		p.apiBaseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instant-answer request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2_000_000))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, fmt.Errorf("decode instant answer: %w", err)
	}

	var results []Result

	if answer.AbstractURL != "" {
		title := answer.AbstractText
		if title == "" {
			title = "Official site"
		}
		results = append(results, Result{Title: title, URL: answer.AbstractURL})
	}

	for _, topic := range answer.RelatedTopics {
		if topic.FirstURL != "" {
			title := topic.Text
			if title == "" {
				title = "Related"
			}
			results = append(results, Result{Title: title, URL: topic.FirstURL})
		}
	}

	for _, item := range answer.Infobox.Content {
		value, ok := item.Value.(string)
		if !ok || item.DataType != "string" {
			continue
		}
		if match := embeddedURLPattern.FindString(value); match != "" {
			label := item.Label
			if label == "" {
				label = "Website"
			}
			results = append(results, Result{Title: label, URL: match})
		}
	}

	if len(results) > p.maxResults {
		results = results[:p.maxResults]
	}
	return results, nil
}
