package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Failure taxonomy for model calls. Retry decisions are made on this closed
// set via IsRetryable; nothing inspects error strings.
var (
	// ErrTimeout indicates a request was aborted after its deadline.
	ErrTimeout = errors.New("model request timed out")
	// ErrAllProvidersExhausted indicates every provider in the chain failed.
	ErrAllProvidersExhausted = errors.New("all providers exhausted")
)

// RateLimitError indicates the local admission gate rejected the call.
// Not retryable: waiting a few seconds will not drain the window.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry after %s", e.RetryAfter)
}

// HTTPError indicates a non-2xx response from a provider.
type HTTPError struct {
	Body       string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.StatusCode, e.Body)
}

// retryable reports whether the status class can self-resolve by waiting.
func (e *HTTPError) retryable() bool {
	return e.StatusCode >= 500 ||
		e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout
}

// ContentBlockedError indicates the provider's safety filter rejected the
// prompt, or the response envelope carried no usable text. Not retryable:
// the same prompt will be blocked again.
type ContentBlockedError struct {
	Reason string
}

func (e *ContentBlockedError) Error() string {
	return fmt.Sprintf("content blocked by provider: %s", e.Reason)
}

// NetworkError indicates a transport-level failure before any HTTP status
// was received.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsRetryable classifies a model-call failure for the retry orchestrator.
func IsRetryable(err error) bool {
	var rateErr *RateLimitError
	if errors.As(err, &rateErr) {
		return false
	}
	var blockedErr *ContentBlockedError
	if errors.As(err, &blockedErr) {
		return false
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.retryable()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, ErrTimeout)
}

// classifyTransportError maps an http.Client error to the taxonomy.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return &NetworkError{Err: err}
}
