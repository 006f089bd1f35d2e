package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/viper"

	"github.com/lumenfin/pulse/internal/analysis"
	"github.com/lumenfin/pulse/internal/common"
	"github.com/lumenfin/pulse/internal/config"
	"github.com/lumenfin/pulse/internal/llm"
	"github.com/lumenfin/pulse/internal/service"
	"github.com/lumenfin/pulse/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/pulse/pulse.db"
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	// Initialize storage
	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	// Run migrations
	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// providerSettings mirrors one entry under llm.providers in the config
// file.
type providerSettings struct {
	Name           string  `mapstructure:"name"`
	Model          string  `mapstructure:"model"`
	APIKey         string  `mapstructure:"api_key"`
	BaseURL        string  `mapstructure:"base_url"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Temperature    float64 `mapstructure:"temperature"`
	TopP           float64 `mapstructure:"top_p"`
	TopK           int     `mapstructure:"top_k"`
	MaxTokens      int     `mapstructure:"max_tokens"`
}

// providerConfigs reads the provider chain from config. Without explicit
// configuration the standard chain order applies, with credentials pulled
// from well-known keys so PULSE_LLM_GEMINI_API_KEY style env vars work.
func providerConfigs() ([]llm.ProviderConfig, error) {
	if viper.IsSet("llm.providers") {
		var settings []providerSettings
		if err := viper.UnmarshalKey("llm.providers", &settings); err != nil {
			return nil, fmt.Errorf("failed to parse llm.providers: %w", err)
		}

		configs := make([]llm.ProviderConfig, 0, len(settings))
		for _, s := range settings {
			configs = append(configs, llm.ProviderConfig{
				Name:        s.Name,
				Model:       s.Model,
				APIKey:      s.APIKey,
				BaseURL:     s.BaseURL,
				Timeout:     time.Duration(s.TimeoutSeconds) * time.Second,
				Temperature: s.Temperature,
				TopP:        s.TopP,
				TopK:        s.TopK,
				MaxTokens:   s.MaxTokens,
			})
		}
		return configs, nil
	}

	// Default chain: gemini, then ollama, then openai. Providers without
	// credentials get skipped when the chain is built.
	return []llm.ProviderConfig{
		{
			Name:   "gemini",
			Model:  viper.GetString("llm.gemini.model"),
			APIKey: viper.GetString("llm.gemini.api_key"),
		},
		{
			Name:    "ollama",
			Model:   viper.GetString("llm.ollama.model"),
			BaseURL: viper.GetString("llm.ollama.base_url"),
		},
		{
			Name:   "openai",
			Model:  viper.GetString("llm.openai.model"),
			APIKey: viper.GetString("llm.openai.api_key"),
		},
	}, nil
}

// buildEngine wires the analysis pipeline from configuration: rate
// limiter, provider fallback chain, and the engine itself.
func buildEngine(store service.Storage, logger *slog.Logger) (*analysis.Engine, error) {
	configs, err := providerConfigs()
	if err != nil {
		return nil, err
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  viper.GetInt("llm.retry.max_attempts"),
		InitialDelay: viper.GetDuration("llm.retry.initial_delay"),
		MaxDelay:     viper.GetDuration("llm.retry.max_delay"),
		Multiplier:   viper.GetFloat64("llm.retry.multiplier"),
	}

	chain, err := llm.NewFallbackChain(configs, retryOpts, logger)
	switch {
	case errors.Is(err, common.ErrMissingConfig):
		// No credentials anywhere; analysis still works via the offline
		// path, so run with an empty chain instead of failing.
		logger.Warn("no AI providers configured, analysis will use offline computation")
		chain = llm.NewFallbackChainFromClients(nil, retryOpts, logger)
	case err != nil:
		return nil, fmt.Errorf("failed to build provider chain: %w", err)
	default:
		logger.Info("provider chain ready", "providers", chain.Providers())
	}

	limiter := llm.NewRateLimiter(viper.GetInt("llm.requests_per_minute"), time.Minute)

	requireContent := true
	if viper.IsSet("analysis.require_content") {
		requireContent = viper.GetBool("analysis.require_content")
	}

	return analysis.NewEngine(analysis.Deps{
		Storage:        store,
		Generator:      chain,
		Limiter:        limiter,
		Logger:         logger,
		RequireContent: requireContent,
	}), nil
}
