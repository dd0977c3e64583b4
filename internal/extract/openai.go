package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/linkedclaims/claimresolve/internal/model"
)

// extractionSystemPrompt constrains the model to URN placeholders. Letting
// the model emit URLs directly produced invented Wikipedia links in
// production; generation happens in a later pass instead.
const extractionSystemPrompt = `You extract organizational impact claims from document text.

CRITICAL CONSTRAINT: subjects and objects use URN format ONLY. Never output an https:// URL anywhere. A later pass converts URNs to real URLs.

SUBJECT FORMAT: urn:local:org:Name or urn:local:program:Name:Location
OBJECT FORMAT: urn:local:person:Name:Location or urn:local:population:group:location

Extract from documents about organizations helping individuals or populations. Include testimonial attribution in statements. Look for multiple organizations in the same document.

SCHEMA (one object per claim):
{
  "subject": "urn:local:org:OrganizationName",
  "claim": "impact",
  "object": "urn:local:person:PersonName:Location",
  "statement": "Organization helped person achieve outcomes. Person testified about results.",
  "testimonial_source": "Person Name, Document Name",
  "howKnown": "DOCUMENT"
}

URN EXAMPLES:
- "subject": "urn:local:org:MoreMilk"
- "subject": "urn:local:program:LEAP:Odisha_India"
- "object": "urn:local:person:Coletta_Kemboi:Maili_Nne_Kenya"
- "object": "urn:local:population:dairy_farmers:Kenya"

Output: a JSON array of claim objects, nothing else.`

// OpenAIExtractor implements Extractor against the OpenAI chat API or any
// compatible endpoint.
type OpenAIExtractor struct {
	client *openai.Client
	cfg    model.ExtractorConfig
}

// NewOpenAIExtractor creates an extractor. The API key is required; there
// is no anonymous tier to fall back to.
func NewOpenAIExtractor(cfg model.ExtractorConfig) (*OpenAIExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("create extractor: %w", ErrAuthentication)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIExtractor{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    cfg,
	}, nil
}

func (e *OpenAIExtractor) Name() string {
	return "openai"
}

// ExtractClaims sends text to the model and parses the returned JSON
// array. Authentication failures wrap ErrAuthentication.
func (e *OpenAIExtractor) ExtractClaims(ctx context.Context, text string) ([]model.RawClaim, error) {
	chatModel := e.cfg.Model
	if chatModel == "" {
		chatModel = openai.GPT4oMini
	}
	maxTokens := e.cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2000
	}
	timeout := time.Duration(e.cfg.Timeout) * time.Second
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		MaxTokens:   maxTokens,
		Temperature: 0.2,
	}

	resp, err := e.client.CreateChatCompletion(ctxWithTimeout, req)
	if err != nil {
		if isAuthError(err) {
			return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from %s", chatModel)
	}

	return parseClaims(resp.Choices[0].Message.Content)
}

// parseClaims decodes the model output, tolerating markdown code fences
// around the JSON array.
func parseClaims(content string) ([]model.RawClaim, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	// Some models wrap the array in prose; take the outermost brackets.
	if !strings.HasPrefix(trimmed, "[") {
		start := strings.Index(trimmed, "[")
		end := strings.LastIndex(trimmed, "]")
		if start < 0 || end < start {
			return nil, fmt.Errorf("no JSON array in model output")
		}
		trimmed = trimmed[start : end+1]
	}

	var claims []model.RawClaim
	if err := json.Unmarshal([]byte(trimmed), &claims); err != nil {
		return nil, fmt.Errorf("parse claims JSON: %w", err)
	}
	return claims, nil
}

func isAuthError(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusUnauthorized
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "401") || strings.Contains(msg, "authentication") || strings.Contains(msg, "api key")
}
