package nl2sql

import (
	"strings"
	"time"

	"github.com/ectormgl/SQLTranslator/internal/apperr"
)

type Config struct {
	Provider    string
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

func New(cfg Config) (Translator, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderOpenAICompatible:
		return NewOpenAITranslator(OpenAIConfig{
			BaseURL:     cfg.BaseURL,
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		})
	case ProviderMistral, ProviderOpenAI, ProviderOllama, ProviderAnthropic:
		return NewLangChainTranslator(cfg)
	default:
		return nil, apperr.Configuration("unsupported LLM provider: %q", cfg.Provider)
	}
}
