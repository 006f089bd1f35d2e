package llm

import (
	"fmt"
	"strings"
)

// NewClient creates a provider client based on the provided configuration.
func NewClient(cfg ProviderConfig) (Client, error) {
	switch strings.ToLower(cfg.Name) {
	case "gemini":
		return newGeminiClient(cfg)
	case "ollama":
		return newOllamaClient(cfg)
	case "openai":
		return newOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Name)
	}
}

// Configured reports whether the provider has the configuration it needs to
// be attempted at all. Unconfigured providers are skipped by the chain
// rather than attempted and failed.
func Configured(cfg ProviderConfig) bool {
	switch strings.ToLower(cfg.Name) {
	case "gemini", "openai":
		return cfg.APIKey != ""
	case "ollama":
		return cfg.BaseURL != ""
	default:
		return false
	}
}
