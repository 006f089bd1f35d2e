package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfin/pulse/internal/service"
)

// stubClient scripts one provider's responses for chain tests.
type stubClient struct {
	name     string
	response string
	errs     []error
	calls    int
}

func (s *stubClient) Name() string { return s.name }

func (s *stubClient) Generate(_ context.Context, _ string) (string, error) {
	s.calls++
	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		if err != nil {
			return "", err
		}
	}
	return s.response, nil
}

func chainRetryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestFallbackChain(t *testing.T) {
	ctx := context.Background()

	t.Run("first provider success", func(t *testing.T) {
		first := &stubClient{name: "gemini", response: "{}"}
		second := &stubClient{name: "ollama", response: "{}"}
		chain := NewFallbackChainFromClients([]Client{first, second}, chainRetryOptions(), nil)

		text, err := chain.Generate(ctx, "prompt")
		require.NoError(t, err)
		assert.Equal(t, "{}", text)
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 0, second.calls, "later providers must not be touched")
	})

	t.Run("retryable failures consume the full budget before advancing", func(t *testing.T) {
		first := &stubClient{
			name: "gemini",
			errs: []error{
				&HTTPError{StatusCode: http.StatusServiceUnavailable},
				&HTTPError{StatusCode: http.StatusServiceUnavailable},
				&HTTPError{StatusCode: http.StatusServiceUnavailable},
			},
		}
		second := &stubClient{name: "ollama", response: "fallback text"}
		chain := NewFallbackChainFromClients([]Client{first, second}, chainRetryOptions(), nil)

		text, err := chain.Generate(ctx, "prompt")
		require.NoError(t, err)
		assert.Equal(t, "fallback text", text)
		assert.Equal(t, 3, first.calls, "retryable failures get exactly MaxAttempts")
		assert.Equal(t, 1, second.calls)
	})

	t.Run("non-retryable failure advances after one attempt", func(t *testing.T) {
		first := &stubClient{
			name: "gemini",
			errs: []error{&ContentBlockedError{Reason: "SAFETY"}},
		}
		second := &stubClient{name: "ollama", response: "ok"}
		chain := NewFallbackChainFromClients([]Client{first, second}, chainRetryOptions(), nil)

		text, err := chain.Generate(ctx, "prompt")
		require.NoError(t, err)
		assert.Equal(t, "ok", text)
		assert.Equal(t, 1, first.calls, "blocked content must not be retried")
	})

	t.Run("transient then success within one provider", func(t *testing.T) {
		first := &stubClient{
			name:     "gemini",
			response: "recovered",
			errs:     []error{&NetworkError{Err: errors.New("connection reset")}, nil},
		}
		chain := NewFallbackChainFromClients([]Client{first}, chainRetryOptions(), nil)

		text, err := chain.Generate(ctx, "prompt")
		require.NoError(t, err)
		assert.Equal(t, "recovered", text)
		assert.Equal(t, 2, first.calls)
	})

	t.Run("all providers exhausted", func(t *testing.T) {
		first := &stubClient{
			name: "gemini",
			errs: []error{&ContentBlockedError{Reason: "SAFETY"}},
		}
		second := &stubClient{
			name: "ollama",
			errs: []error{
				&NetworkError{Err: errors.New("refused")},
				&NetworkError{Err: errors.New("refused")},
				&NetworkError{Err: errors.New("refused")},
			},
		}
		chain := NewFallbackChainFromClients([]Client{first, second}, chainRetryOptions(), nil)

		_, err := chain.Generate(ctx, "prompt")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrAllProvidersExhausted)
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 3, second.calls)
	})

	t.Run("empty chain", func(t *testing.T) {
		chain := NewFallbackChainFromClients(nil, chainRetryOptions(), nil)

		_, err := chain.Generate(ctx, "prompt")
		assert.ErrorIs(t, err, ErrAllProvidersExhausted)
	})

	t.Run("cancelled context stops the chain", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(context.Background())
		cancel()

		first := &stubClient{name: "gemini", response: "never"}
		chain := NewFallbackChainFromClients([]Client{first}, chainRetryOptions(), nil)

		_, err := chain.Generate(cancelled, "prompt")
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, first.calls)
	})
}

func TestNewFallbackChain(t *testing.T) {
	t.Run("skips unconfigured providers", func(t *testing.T) {
		chain, err := NewFallbackChain([]ProviderConfig{
			{Name: "gemini"}, // no API key
			{Name: "ollama", BaseURL: "http://localhost:11434"},
			{Name: "openai", APIKey: "sk-test"},
		}, chainRetryOptions(), nil)

		require.NoError(t, err)
		assert.Equal(t, []string{"ollama", "openai"}, chain.Providers())
	})

	t.Run("errors when nothing is configured", func(t *testing.T) {
		_, err := NewFallbackChain([]ProviderConfig{
			{Name: "gemini"},
			{Name: "ollama"},
		}, chainRetryOptions(), nil)

		assert.Error(t, err)
	})

	t.Run("rejects unknown provider names", func(t *testing.T) {
		_, err := NewFallbackChain([]ProviderConfig{
			{Name: "mystery", APIKey: "key"},
		}, chainRetryOptions(), nil)

		assert.Error(t, err)
	})
}
