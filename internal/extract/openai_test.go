package extract

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/linkedclaims/claimresolve/internal/model"
)

func chatResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:     "chatcmpl-123",
		Object: "chat.completion",
		Model:  "gpt-4o-mini",
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}},
		},
	}
}

func newTestExtractor(t *testing.T, baseURL string) *OpenAIExtractor {
	t.Helper()
	cfg := model.DefaultConfig().Extractor
	cfg.APIKey = "test-key"
	cfg.BaseURL = baseURL
	e, err := NewOpenAIExtractor(cfg)
	if err != nil {
		t.Fatalf("NewOpenAIExtractor: %v", err)
	}
	return e
}

func TestOpenAIExtractor_ExtractClaims(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Authorization = %s", r.Header.Get("Authorization"))
		}
		content := `[{"subject":"urn:local:org:MoreMilk","claim":"impact","object":"urn:local:person:Coletta_Kemboi:Maili_Nne_Kenya","statement":"MoreMilk training helped Coletta Kemboi double her dairy income.","howKnown":"DOCUMENT"}]`
		_ = json.NewEncoder(w).Encode(chatResponse(content))
	}))
	defer server.Close()

	e := newTestExtractor(t, server.URL)
	claims, err := e.ExtractClaims(context.Background(), "MoreMilk trained dairy farmers in Kenya...")
	if err != nil {
		t.Fatalf("ExtractClaims: %v", err)
	}
	if len(claims) != 1 {
		t.Fatalf("got %d claims, want 1", len(claims))
	}
	if claims[0].Subject != "urn:local:org:MoreMilk" {
		t.Errorf("Subject = %q", claims[0].Subject)
	}
	if claims[0].Predicate != "impact" {
		t.Errorf("Predicate = %q", claims[0].Predicate)
	}
}

func TestOpenAIExtractor_AuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`))
	}))
	defer server.Close()

	e := newTestExtractor(t, server.URL)
	_, err := e.ExtractClaims(context.Background(), "some document text")
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestNewOpenAIExtractor_MissingKey(t *testing.T) {
	cfg := model.DefaultConfig().Extractor
	cfg.APIKey = ""
	if _, err := NewOpenAIExtractor(cfg); !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
}

func TestParseClaims(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{
			name:    "bare array",
			content: `[{"subject":"urn:local:org:A","claim":"impact","statement":"s"}]`,
			want:    1,
		},
		{
			name:    "fenced array",
			content: "```json\n[{\"subject\":\"urn:local:org:A\",\"claim\":\"impact\",\"statement\":\"s\"}]\n```",
			want:    1,
		},
		{
			name:    "array wrapped in prose",
			content: "Here are the claims:\n[{\"subject\":\"urn:local:org:A\",\"claim\":\"impact\",\"statement\":\"s\"}]\nDone.",
			want:    1,
		},
		{
			name:    "empty array",
			content: `[]`,
			want:    0,
		},
		{
			name:    "no array at all",
			content: "I could not find any claims.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := parseClaims(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseClaims: %v", err)
			}
			if len(claims) != tt.want {
				t.Fatalf("got %d claims, want %d", len(claims), tt.want)
			}
		})
	}
}

type scriptedExtractor struct {
	responses map[string][]model.RawClaim
	errs      map[string]error
	calls     int
}

func (s *scriptedExtractor) Name() string { return "scripted" }

func (s *scriptedExtractor) ExtractClaims(_ context.Context, text string) ([]model.RawClaim, error) {
	s.calls++
	if err, ok := s.errs[text]; ok {
		return nil, err
	}
	return s.responses[text], nil
}

func TestExtractPages_SkipsShortAndFailedPages(t *testing.T) {
	claim := model.RawClaim{Subject: "urn:local:org:A", Predicate: "impact", Statement: "s"}
	ex := &scriptedExtractor{
		responses: map[string][]model.RawClaim{
			"this page is long enough to be processed by the extractor today": {claim},
		},
		errs: map[string]error{
			"this other page is also long enough but the api call fails here": errors.New("rate limited"),
		},
	}

	pages := []Page{
		{Number: 1, Text: "too short"},
		{Number: 2, Text: "this page is long enough to be processed by the extractor today"},
		{Number: 3, Text: "this other page is also long enough but the api call fails here"},
	}

	out, err := ExtractPages(context.Background(), ex, pages, 50, zap.NewNop())
	if err != nil {
		t.Fatalf("ExtractPages: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d page results, want 1", len(out))
	}
	if out[0].Page.Number != 2 {
		t.Fatalf("page = %d, want 2", out[0].Page.Number)
	}
	if ex.calls != 2 {
		t.Fatalf("extractor called %d times, want 2 (short page skipped)", ex.calls)
	}
}

func TestExtractPages_AuthFailureAborts(t *testing.T) {
	ex := &scriptedExtractor{
		errs: map[string]error{
			"the first long page triggers an authentication failure right away": ErrAuthentication,
		},
	}
	pages := []Page{
		{Number: 1, Text: "the first long page triggers an authentication failure right away"},
		{Number: 2, Text: "a second long page that must never reach the extractor at all ok"},
	}

	_, err := ExtractPages(context.Background(), ex, pages, 50, zap.NewNop())
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("err = %v, want ErrAuthentication", err)
	}
	if ex.calls != 1 {
		t.Fatalf("extractor called %d times after auth failure, want 1", ex.calls)
	}
}

func TestCleanText(t *testing.T) {
	got := CleanText("  MoreMilk \n\n trained \t farmers  ")
	if got != "MoreMilk trained farmers" {
		t.Fatalf("CleanText = %q", got)
	}
}
