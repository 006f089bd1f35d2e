package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenfin/pulse/internal/service"
)

func fastRetryOptions() service.RetryOptions {
	return service.RetryOptions{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetry(t *testing.T) {
	t.Run("succeeds first attempt", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return nil
		}, fastRetryOptions())

		require.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return &RetryableError{Err: errors.New("transient"), Retryable: true}
			}
			return nil
		}, fastRetryOptions())

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausts attempts on persistent failure", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: errors.New("still broken"), Retryable: true}
		}, fastRetryOptions())

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable error stops immediately", func(t *testing.T) {
		sentinel := errors.New("bad request")
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: sentinel, Retryable: false}
		}, fastRetryOptions())

		require.Error(t, err)
		assert.ErrorIs(t, err, sentinel)
		assert.NotErrorIs(t, err, ErrMaxRetries)
		assert.Equal(t, 1, calls)
	})

	t.Run("plain errors are retried", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return errors.New("unclassified")
		}, fastRetryOptions())

		require.Error(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("context cancellation aborts backoff", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		opts := fastRetryOptions()
		opts.InitialDelay = time.Minute

		done := make(chan error, 1)
		go func() {
			done <- WithRetry(ctx, func() error {
				return &RetryableError{Err: errors.New("transient"), Retryable: true}
			}, opts)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(5 * time.Second):
			t.Fatal("WithRetry did not honor context cancellation")
		}
	})

	t.Run("applies defaults for zero options", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 2 {
				return &RetryableError{Err: errors.New("transient"), Retryable: true}
			}
			return nil
		}, service.RetryOptions{InitialDelay: time.Millisecond})

		require.NoError(t, err)
		assert.Equal(t, 2, calls)
	})
}

func TestRetryableError(t *testing.T) {
	inner := errors.New("boom")
	err := &RetryableError{Err: inner, Retryable: true}

	assert.Equal(t, "boom", err.Error())
	assert.ErrorIs(t, err, inner)
}
