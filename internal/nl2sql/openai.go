package nl2sql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
)

const ProviderOpenAICompatible = "openai-compatible"

type OpenAIConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// OpenAITranslator talks to any /v1/chat/completions endpoint directly.
type OpenAITranslator struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
}

func NewOpenAITranslator(cfg OpenAIConfig) (*OpenAITranslator, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, apperr.Configuration("base URL is required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, apperr.Configuration("api key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &OpenAITranslator{
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
	}, nil
}

func (t *OpenAITranslator) Translate(ctx context.Context, prompt string) (Result, error) {
	body, err := json.Marshal(buildOpenAIPayload(t.model, t.temperature, prompt))
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindGeneration, "marshal chat payload", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindGeneration, "build chat request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindGeneration, "request chat completion", err)
	}
	defer func() { _ = resp.Body.Close() }()

	rawRespBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindGeneration, "read chat response body", err)
	}
	if resp.StatusCode >= 400 {
		return Result{}, apperr.New(apperr.KindGeneration, fmt.Sprintf("chat completion failed status=%d body=%s", resp.StatusCode, string(rawRespBody)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(rawRespBody, &parsed); err != nil {
		return Result{}, apperr.Wrap(apperr.KindGeneration, "decode chat completion response", err)
	}
	if len(parsed.Choices) == 0 {
		return Result{}, apperr.New(apperr.KindGeneration, "empty chat completion choices")
	}

	return Result{
		SQL:      parsed.Choices[0].Message.Content,
		Provider: ProviderOpenAICompatible,
		Model:    t.model,
	}, nil
}

func buildOpenAIPayload(model string, temperature float64, prompt string) map[string]any {
	return map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"temperature": temperature,
	}
}
