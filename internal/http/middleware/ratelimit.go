// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a lightweight, in-memory, fixed-window rate limiter
// with per-identity windows and opportunistic garbage collection. It is
// designed for simplicity, low overhead, and predictable behavior in a
// single-process deployment (e.g., a container or dev setup).
//
// Features:
//   - Per-key fixed counting windows (capacity requests per window)
//   - Pluggable identity function (user ID or client IP)
//   - Best-effort cleanup of expired windows to bound memory
//   - Retry-After plus a JSON body carrying the seconds until the window resets
//   - Seamless bypass for idempotent replays (when paired with IdempotencyValidator)
//
// Notes:
//   - This limiter is process-local. For horizontally scaled deployments,
//     prefer a distributed limiter (e.g., Redis-backed) to enforce global limits.
//   - The limiter is intended for edge-level abuse control and cost protection;
//     it is not an authorization mechanism.
package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// keyFunc selects the identity used to key a rate-limit window.
//
// Implementations should return a stable string for the duration of a request
// (e.g., "user:<id>" or "ip:<addr>"). The returned key is used to look up the
// corresponding counting window.
type keyFunc func(*gin.Context) string

// KeyByClientOrIP returns a keyFunc that prefers an explicit client identity
// (from the Gin context under "clientID", typically set by an upstream
// middleware or reverse proxy header) and falls back to the client IP address.
//
// The resulting keys are prefixed to avoid collisions between client and IP
// namespaces (e.g., "client:widget-7" vs "ip:203.0.113.7").
func KeyByClientOrIP() keyFunc {
	return func(c *gin.Context) string {
		if v, ok := c.Get("clientID"); ok {
			if s, ok := v.(string); ok && s != "" {
				return "client:" + s
			}
		}
		return "ip:" + c.ClientIP()
	}
}

// window holds one client's request count and the instant its window opened.
type window struct {
	count   int
	started time.Time
}

// RateLimiter implements a per-key fixed-window rate limiter.
//
// Each key gets an independent window: the first request opens it, subsequent
// requests increment the count, and once the window's age exceeds the
// configured duration the next request opens a fresh one. Requests beyond
// capacity inside a live window are rejected with 429 and told how long to
// wait.
//
// Windows are created on demand and stored in an internal map guarded by a
// mutex. Expired windows are evicted via opportunistic cleanup during lookups
// to keep memory usage bounded.
//
// This type is safe for concurrent use.
type RateLimiter struct {
	capacity int
	interval time.Duration
	keyFn    keyFunc

	mu      sync.Mutex
	windows map[string]*window

	cleanupN uint64
	nowFn    func() time.Time
}

// NewRateLimiter constructs a RateLimiter allowing capacity requests per
// interval, keyed by keyFn.
//
//   - capacity: requests admitted per window; values <= 0 are coerced to 1.
//   - interval: window length; values <= 0 are coerced to one minute.
//   - keyFn:    function that maps a request to a window identity.
//
// The returned limiter is ready to be installed as middleware via Handler().
func NewRateLimiter(capacity int, interval time.Duration, keyFn keyFunc) *RateLimiter {
	if capacity <= 0 {
		capacity = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &RateLimiter{
		capacity: capacity,
		interval: interval,
		keyFn:    keyFn,
		windows:  make(map[string]*window),
		nowFn:    time.Now,
	}
}

// take records one request against key's window and reports whether it is
// admitted. When rejected, retryIn is the time until the window resets.
// It also performs opportunistic GC of expired windows after ~5000 lookups.
//
// IMPORTANT: Run GC *before* touching the requested window so an expired
// entry can be evicted even when it's the one being fetched.
func (rl *RateLimiter) take(key string) (allowed bool, retryIn time.Duration) {
	now := rl.nowFn()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Opportunistic cleanup after a threshold of lookups, then reset the counter.
	rl.cleanupN++
	if rl.cleanupN >= 5000 {
		for k, w := range rl.windows {
			if now.Sub(w.started) >= rl.interval {
				delete(rl.windows, k)
			}
		}
		rl.cleanupN = 0
	}

	w, ok := rl.windows[key]
	if !ok || now.Sub(w.started) >= rl.interval {
		rl.windows[key] = &window{count: 1, started: now}
		return true, 0
	}

	if w.count < rl.capacity {
		w.count++
		return true, 0
	}
	return false, w.started.Add(rl.interval).Sub(now)
}

// IsRateBypass reports whether IdempotencyValidator marked this request for
// rate-limit bypass (i.e., it is a replay of a previously completed request).
//
// When true, Handler() will skip limiting so replays are served without
// consuming window capacity.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass) // set by IdempotencyValidator
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// Handler returns a Gin middleware that enforces per-key fixed-window limits.
//
// Behavior:
//   - If IsRateBypass(c) is true (idempotent replay), limiting is skipped.
//   - Otherwise, the request is counted against the key's current window. If
//     the window has capacity the request proceeds; if not, a 429 response is
//     returned with a Retry-After header and a JSON body reporting the
//     seconds until the window resets.
//
// The middleware emits:
//
//	HTTP/1.1 429 Too Many Requests
//	Retry-After: <seconds>
//	{
//	  "error":   "Too many requests. Please try again later.",
//	  "resetIn": <seconds>
//	}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		allowed, retryIn := rl.take(rl.keyFn(c))
		if allowed {
			c.Next()
			return
		}

		// Ceiling, so clients never retry a moment too early.
		secs := int((retryIn + time.Second - 1) / time.Second)
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "Too many requests. Please try again later.",
			"resetIn": secs,
		})
	}
}
