package nl2sql

import (
	"context"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/mistral"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
)

const (
	ProviderMistral   = "mistral"
	ProviderOpenAI    = "openai"
	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
)

// LangChainTranslator sends the prompt as a single human message through a
// langchaingo model.
type LangChainTranslator struct {
	llm         llms.Model
	provider    string
	model       string
	temperature float64
}

func NewLangChainTranslator(cfg Config) (*LangChainTranslator, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	modelName := strings.TrimSpace(cfg.Model)
	baseURL := strings.TrimSpace(cfg.BaseURL)

	var (
		model llms.Model
		err   error
	)
	switch provider {
	case ProviderMistral:
		opts := []mistral.Option{}
		if cfg.APIKey != "" {
			opts = append(opts, mistral.WithAPIKey(cfg.APIKey))
		}
		if modelName != "" {
			opts = append(opts, mistral.WithModel(modelName))
		}
		model, err = mistral.New(opts...)
	case ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, apperr.Configuration("OpenAI API key required")
		}
		opts := []openai.Option{openai.WithToken(cfg.APIKey)}
		if modelName != "" {
			opts = append(opts, openai.WithModel(modelName))
		}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		model, err = openai.New(opts...)
	case ProviderOllama:
		opts := []ollama.Option{ollama.WithModel(modelName)}
		if baseURL != "" {
			opts = append(opts, ollama.WithServerURL(baseURL))
		}
		model, err = ollama.New(opts...)
	case ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, apperr.Configuration("Anthropic API key required")
		}
		opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey)}
		if modelName != "" {
			opts = append(opts, anthropic.WithModel(modelName))
		}
		model, err = anthropic.New(opts...)
	default:
		return nil, apperr.Configuration("unsupported LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindConfiguration, "create "+provider+" model", err)
	}
	return NewLangChainTranslatorWithModel(model, provider, modelName, cfg.Temperature), nil
}

func NewLangChainTranslatorWithModel(model llms.Model, provider, modelName string, temperature float64) *LangChainTranslator {
	return &LangChainTranslator{llm: model, provider: provider, model: modelName, temperature: temperature}
}

func (t *LangChainTranslator) Translate(ctx context.Context, prompt string) (Result, error) {
	response, err := llms.GenerateFromSinglePrompt(ctx, t.llm, prompt, llms.WithTemperature(t.temperature))
	if err != nil {
		return Result{}, apperr.Wrap(apperr.KindGeneration, "generate sql", err)
	}
	return Result{SQL: response, Provider: t.provider, Model: t.model}, nil
}
