package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lumenfin/pulse/internal/common"
	"github.com/lumenfin/pulse/internal/service"
)

// FallbackChain tries an ordered list of providers until one produces text.
// Each provider gets its own fresh retry budget; one provider's failure
// state never affects the next.
type FallbackChain struct {
	logger    *slog.Logger
	clients   []Client
	retryOpts service.RetryOptions
}

// NewFallbackChain builds a chain from the configured providers, preserving
// order. Providers missing required configuration are skipped with a warning
// instead of being constructed and failed.
func NewFallbackChain(configs []ProviderConfig, retryOpts service.RetryOptions, logger *slog.Logger) (*FallbackChain, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var clients []Client
	for _, cfg := range configs {
		if !Configured(cfg) {
			logger.Warn("skipping unconfigured provider", "provider", cfg.Name)
			continue
		}
		client, err := NewClient(cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s client: %w", cfg.Name, err)
		}
		clients = append(clients, client)
	}

	if len(clients) == 0 {
		return nil, fmt.Errorf("%w: no providers configured", common.ErrMissingConfig)
	}

	return &FallbackChain{
		clients:   clients,
		retryOpts: retryOpts,
		logger:    logger,
	}, nil
}

// NewFallbackChainFromClients builds a chain over already-constructed clients.
func NewFallbackChainFromClients(clients []Client, retryOpts service.RetryOptions, logger *slog.Logger) *FallbackChain {
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackChain{
		clients:   clients,
		retryOpts: retryOpts,
		logger:    logger,
	}
}

// Providers returns the names of the providers in attempt order.
func (f *FallbackChain) Providers() []string {
	names := make([]string, len(f.clients))
	for i, c := range f.clients {
		names[i] = c.Name()
	}
	return names
}

// Generate tries each provider strictly in order, retrying retryable
// failures per provider, and returns the first successful response text.
// Fails only with ErrAllProvidersExhausted once every provider has failed.
func (f *FallbackChain) Generate(ctx context.Context, prompt string) (string, error) {
	if len(f.clients) == 0 {
		return "", fmt.Errorf("%w: empty provider chain", ErrAllProvidersExhausted)
	}

	var lastErr error
	for _, client := range f.clients {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		var text string
		err := common.WithRetry(ctx, func() error {
			out, genErr := client.Generate(ctx, prompt)
			if genErr != nil {
				f.logger.Warn("model call attempt failed",
					"provider", client.Name(),
					"error", genErr)
				return &common.RetryableError{Err: genErr, Retryable: IsRetryable(genErr)}
			}
			text = out
			return nil
		}, f.retryOpts)

		if err == nil {
			f.logger.Info("model call succeeded", "provider", client.Name())
			return text, nil
		}

		f.logger.Warn("provider exhausted, advancing to next",
			"provider", client.Name(),
			"error", err)
		lastErr = err
	}

	return "", fmt.Errorf("%w: last error: %v", ErrAllProvidersExhausted, lastErr)
}
