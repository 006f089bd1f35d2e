package llm

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window admission gate in front of outbound model
// calls. Calls exceeding the quota are rejected, not queued; the caller is
// expected to degrade rather than wait.
type RateLimiter struct {
	now         func() time.Time
	calls       []time.Time
	window      time.Duration
	maxRequests int
	mu          sync.Mutex
}

// NewRateLimiter creates a rate limiter allowing maxRequests per window.
func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	if maxRequests <= 0 {
		maxRequests = 45
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
	}
}

// CheckAndRecord admits the call and records its timestamp, or returns a
// RateLimitError carrying the time until the oldest recorded call ages out.
// Pruning and recording happen under one lock hold so overlapping callers
// never observe a partially updated window.
func (r *RateLimiter) CheckAndRecord() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	cutoff := now.Add(-r.window)

	kept := r.calls[:0]
	for _, t := range r.calls {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	r.calls = kept

	if len(r.calls) >= r.maxRequests {
		retryAfter := r.calls[0].Add(r.window).Sub(now)
		if retryAfter < 0 {
			retryAfter = 0
		}
		return &RateLimitError{RetryAfter: retryAfter}
	}

	r.calls = append(r.calls, now)
	return nil
}

// Remaining reports how many calls are currently admissible.
func (r *RateLimiter) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.window)
	active := 0
	for _, t := range r.calls {
		if t.After(cutoff) {
			active++
		}
	}
	if active >= r.maxRequests {
		return 0
	}
	return r.maxRequests - active
}
