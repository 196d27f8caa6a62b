package remote

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// Default request budget when the server doesn't send rate limit headers
const (
	defaultLimit       = 600
	defaultWindow      = time.Minute
	defaultMinInterval = 100 * time.Millisecond
)

// RateLimiter tracks the remote request budget. The server reports it through
// X-RateLimit-Limit, X-RateLimit-Remaining and X-RateLimit-Reset (unix seconds).
type RateLimiter struct {
	mu sync.Mutex

	limit     int
	remaining int
	resetsAt  time.Time

	minInterval time.Duration
	lastRequest time.Time

	now func() time.Time
}

// NewRateLimiter creates a rate limiter with the default budget
func NewRateLimiter() *RateLimiter {
	return newRateLimiter(defaultMinInterval, time.Now)
}

func newRateLimiter(minInterval time.Duration, now func() time.Time) *RateLimiter {
	return &RateLimiter{
		limit:       defaultLimit,
		remaining:   defaultLimit,
		resetsAt:    now().Add(defaultWindow),
		minInterval: minInterval,
		now:         now,
	}
}

// Wait blocks until a request can be made without exceeding the budget
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.now().After(r.resetsAt) {
		r.remaining = r.limit
		r.resetsAt = r.now().Add(defaultWindow)
	}

	if r.remaining <= 0 {
		if err := r.sleep(ctx, r.resetsAt.Sub(r.now())); err != nil {
			return err
		}
		r.remaining = r.limit
		r.resetsAt = r.now().Add(defaultWindow)
	}

	if elapsed := r.now().Sub(r.lastRequest); elapsed < r.minInterval {
		if err := r.sleep(ctx, r.minInterval-elapsed); err != nil {
			return err
		}
	}

	r.remaining--
	r.lastRequest = r.now()
	return nil
}

// sleep releases the lock while waiting. Caller must hold r.mu.
func (r *RateLimiter) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	r.mu.Unlock()
	defer r.mu.Lock()

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// UpdateFromHeaders updates the budget from response headers
func (r *RateLimiter) UpdateFromHeaders(h http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit, err := strconv.Atoi(h.Get("X-RateLimit-Limit")); err == nil && limit > 0 {
		r.limit = limit
	}
	if remaining, err := strconv.Atoi(h.Get("X-RateLimit-Remaining")); err == nil && remaining >= 0 {
		r.remaining = remaining
	}
	if reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64); err == nil && reset > 0 {
		r.resetsAt = time.Unix(reset, 0)
	}
}

// Status returns the remaining budget and when it resets
func (r *RateLimiter) Status() (remaining int, resetsAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remaining, r.resetsAt
}
