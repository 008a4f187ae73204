package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/livepeer/reframe-media/errors"
	"github.com/livepeer/reframe-media/metrics"
)

// RateLimiter is a fixed-size sliding-window limiter keyed by client
// identity (remote address, by default). Each key tracks only the request
// timestamps within the current window, so admission is O(1) amortized and
// memory is bounded by max requests per key.
//
// Ported from the Python reference's deque-based sliding window
// (apps/api/app/rate_limit.py): Allow trims timestamps older than the
// window before checking length against max.
type RateLimiter struct {
	window time.Duration
	max    int

	mu   sync.Mutex
	hits map[string][]time.Time
}

func NewRateLimiter(window time.Duration, max int) *RateLimiter {
	return &RateLimiter{window: window, max: max, hits: make(map[string][]time.Time)}
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.AllowAt(key, time.Now())
}

func (rl *RateLimiter) AllowAt(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := now.Add(-rl.window)
	times := rl.hits[key]
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) >= rl.max {
		rl.hits[key] = kept
		return false
	}

	rl.hits[key] = append(kept, now)
	return true
}

// Enforce wraps a handler, rejecting requests once the caller's key exceeds
// the configured rate.
func (rl *RateLimiter) Enforce(keyFunc func(*http.Request) string, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		key := keyFunc(r)
		if !rl.Allow(key) {
			metrics.Metrics.RateLimitedRequestCount.Inc()
			errors.WriteHTTPRateLimited(w, "rate limit exceeded")
			return
		}
		next(w, r, ps)
	}
}

// ClientIP extracts the caller's remote address, stripping any port suffix.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host := r.RemoteAddr
	for i := len(host) - 1; i >= 0; i-- {
		if host[i] == ':' {
			return host[:i]
		}
	}
	return host
}
