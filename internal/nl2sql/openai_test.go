package nl2sql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
)

func TestOpenAITranslatorReturnsContentVerbatim(t *testing.T) {
	const content = "```sql\nSELECT Name FROM Artist LIMIT 10;\n```\n"
	var gotPrompt, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var body struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.Messages) == 1 {
			gotPrompt = body.Messages[0].Content
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": content}}},
		})
	}))
	defer srv.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{BaseURL: srv.URL + "/", APIKey: "k1", Model: "m1"})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}
	result, err := translator.Translate(context.Background(), "Question: Name 10 artists\nSQL Query:")
	if err != nil {
		t.Fatalf("Translate() error = %v", err)
	}
	if result.SQL != content {
		t.Fatalf("SQL = %q, want verbatim %q", result.SQL, content)
	}
	if result.Model != "m1" || result.Provider != ProviderOpenAICompatible {
		t.Fatalf("result = %#v", result)
	}
	if gotPrompt != "Question: Name 10 artists\nSQL Query:" {
		t.Fatalf("prompt = %q", gotPrompt)
	}
	if gotAuth != "Bearer k1" {
		t.Fatalf("Authorization = %q", gotAuth)
	}
}

func TestOpenAITranslatorStatusErrorIsGenerationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	translator, err := NewOpenAITranslator(OpenAIConfig{BaseURL: srv.URL, APIKey: "k1"})
	if err != nil {
		t.Fatalf("NewOpenAITranslator() error = %v", err)
	}
	_, err = translator.Translate(context.Background(), "p")
	if !apperr.Is(err, apperr.KindGeneration) {
		t.Fatalf("Translate() error = %v, want generation error", err)
	}
}

func TestOpenAITranslatorEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	translator, _ := NewOpenAITranslator(OpenAIConfig{BaseURL: srv.URL, APIKey: "k1"})
	if _, err := translator.Translate(context.Background(), "p"); !apperr.Is(err, apperr.KindGeneration) {
		t.Fatalf("Translate() error = %v, want generation error", err)
	}
}

func TestNewOpenAITranslatorValidation(t *testing.T) {
	if _, err := NewOpenAITranslator(OpenAIConfig{APIKey: "k"}); !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("missing base URL error = %v", err)
	}
	if _, err := NewOpenAITranslator(OpenAIConfig{BaseURL: "http://x"}); !apperr.Is(err, apperr.KindConfiguration) {
		t.Fatalf("missing api key error = %v", err)
	}
}
