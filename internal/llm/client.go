// Package llm provides model provider clients, rate limiting, and the
// provider fallback chain used by the analysis engine.
package llm

import (
	"context"
	"time"
)

// Client defines the interface for a single LLM provider endpoint.
// Generate issues exactly one request; retry policy lives with the caller so
// invocation and policy can be tested independently.
type Client interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProviderConfig holds the configuration for one provider in the chain.
type ProviderConfig struct {
	// Name selects the provider implementation: gemini, ollama, or openai.
	Name string
	// Model is the provider-specific model identifier.
	Model string
	// APIKey authenticates hosted providers. Ollama does not use one.
	APIKey string
	// BaseURL overrides the provider's default endpoint. Required for ollama.
	BaseURL string
	// Timeout bounds a single request. Local models get a longer default.
	Timeout time.Duration
	// Generation parameters.
	Temperature float64
	TopP        float64
	TopK        int
	MaxTokens   int
}

const (
	defaultHostedTimeout = 30 * time.Second
	defaultLocalTimeout  = 120 * time.Second
	defaultTemperature   = 0.4
	defaultTopP          = 0.95
	defaultTopK          = 40
	defaultMaxTokens     = 2048
)

// withDefaults fills in unset generation parameters.
func (c ProviderConfig) withDefaults(timeout time.Duration) ProviderConfig {
	if c.Timeout <= 0 {
		c.Timeout = timeout
	}
	if c.Temperature == 0 {
		c.Temperature = defaultTemperature
	}
	if c.TopP == 0 {
		c.TopP = defaultTopP
	}
	if c.TopK == 0 {
		c.TopK = defaultTopK
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = defaultMaxTokens
	}
	return c
}
