package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"go-gemini/internal/config"
)

// ServiceName returns the name shown to users in error answers for a provider.
func ServiceName(provider string) string {
	switch provider {
	case config.ProviderOllama:
		return "Ollama"
	default:
		return "Gemini AI"
	}
}

// NewFromConfig builds the configured provider wrapped in a guarded Client.
func NewFromConfig(ctx context.Context, cfg config.LLMConfig, logger zerolog.Logger) (*Client, error) {
	var (
		gen Generator
		err error
	)
	switch cfg.Provider {
	case config.ProviderGemini, "":
		gen, err = NewGeminiProvider(ctx, cfg.APIKey, cfg.Model, logger)
	case config.ProviderOllama:
		gen, err = NewOllamaProvider(cfg.Ollama.Host, cfg.Model, logger)
	default:
		return nil, fmt.Errorf("unknown llm provider: %s (supported: gemini, ollama)", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	var breaker *CircuitBreaker
	if cfg.Breaker.Enabled {
		breaker = NewCircuitBreaker(cfg.Breaker.FailureThreshold, cfg.Breaker.OpenTimeout, logger)
	}
	return NewClient(gen, breaker, cfg.Timeout, logger), nil
}
