package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{
			name:      "rate limit is not retryable",
			err:       &RateLimitError{RetryAfter: 10 * time.Second},
			retryable: false,
		},
		{
			name:      "content blocked is not retryable",
			err:       &ContentBlockedError{Reason: "SAFETY"},
			retryable: false,
		},
		{
			name:      "server error is retryable",
			err:       &HTTPError{StatusCode: http.StatusInternalServerError},
			retryable: true,
		},
		{
			name:      "bad gateway is retryable",
			err:       &HTTPError{StatusCode: http.StatusBadGateway},
			retryable: true,
		},
		{
			name:      "provider rate limit is retryable",
			err:       &HTTPError{StatusCode: http.StatusTooManyRequests},
			retryable: true,
		},
		{
			name:      "request timeout status is retryable",
			err:       &HTTPError{StatusCode: http.StatusRequestTimeout},
			retryable: true,
		},
		{
			name:      "bad request is not retryable",
			err:       &HTTPError{StatusCode: http.StatusBadRequest},
			retryable: false,
		},
		{
			name:      "unauthorized is not retryable",
			err:       &HTTPError{StatusCode: http.StatusUnauthorized},
			retryable: false,
		},
		{
			name:      "network error is retryable",
			err:       &NetworkError{Err: errors.New("connection refused")},
			retryable: true,
		},
		{
			name:      "timeout is retryable",
			err:       ErrTimeout,
			retryable: true,
		},
		{
			name:      "wrapped timeout is retryable",
			err:       fmt.Errorf("%w: deadline exceeded", ErrTimeout),
			retryable: true,
		},
		{
			name:      "unknown error is not retryable",
			err:       errors.New("something else"),
			retryable: false,
		},
		{
			name:      "nil is not retryable",
			err:       nil,
			retryable: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryable(tt.err))
		})
	}
}

func TestClassifyTransportError(t *testing.T) {
	t.Run("deadline exceeded maps to timeout", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
		defer cancel()
		<-ctx.Done()

		err := classifyTransportError(ctx, fmt.Errorf("request: %w", context.DeadlineExceeded))
		assert.ErrorIs(t, err, ErrTimeout)
	})

	t.Run("other transport failures map to network error", func(t *testing.T) {
		err := classifyTransportError(context.Background(), errors.New("connection reset"))

		var netErr *NetworkError
		assert.ErrorAs(t, err, &netErr)
	})
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&RateLimitError{RetryAfter: 5 * time.Second}).Error(), "5s")
	assert.Contains(t, (&HTTPError{StatusCode: 503, Body: "overloaded"}).Error(), "503")
	assert.Contains(t, (&ContentBlockedError{Reason: "SAFETY"}).Error(), "SAFETY")

	inner := errors.New("dial tcp: refused")
	netErr := &NetworkError{Err: inner}
	assert.ErrorIs(t, netErr, inner)
}
