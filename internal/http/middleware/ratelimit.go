// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file holds the rate-limit middleware and its in-process backend, a
// per-key token bucket on golang.org/x/time/rate. RedisLimiter satisfies the
// same Limiter interface when several replicas must share one budget.
package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type keyFunc func(*gin.Context) string

// Limiter decides whether one more request for key may proceed now.
type Limiter interface {
	Allow(ctx context.Context, key string) bool
	// Backend names the implementation in metrics.
	Backend() string
}

// KeyByUserOrIP keys buckets by caller ("user:<id>") and falls back to the
// client address ("ip:<addr>") for anonymous requests.
func KeyByUserOrIP() keyFunc {
	return func(c *gin.Context) string {
		if uid := UserID(c); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key in memory. Buckets idle for
// longer than idleTTL are swept at most once per idleTTL.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn keyFunc

	mu        sync.Mutex
	buckets   map[string]*bucket
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter refills rps tokens per second up to burst (at least 1).
func NewRateLimiter(rps float64, burst int, keyFn keyFunc) *RateLimiter {
	return &RateLimiter{
		rps:     rate.Limit(rps),
		burst:   max(burst, 1),
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		idleTTL: 10 * time.Minute,
		now:     time.Now,
	}
}

func (rl *RateLimiter) bucketFor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		for k, b := range rl.buckets {
			if now.Sub(b.lastSeen) >= rl.idleTTL {
				delete(rl.buckets, k)
			}
		}
		rl.lastSweep = now
	}

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rl.rps, rl.burst)}
		rl.buckets[key] = b
	}
	b.lastSeen = now
	return b.lim
}

// Allow implements Limiter.
func (rl *RateLimiter) Allow(_ context.Context, key string) bool {
	return rl.bucketFor(key).AllowN(rl.now(), 1)
}

// Backend implements Limiter.
func (rl *RateLimiter) Backend() string { return "memory" }

// Handler installs the limiter keyed by its own keyFn.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return RateLimit(rl, rl.keyFn)
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay, which does not consume a token.
func IsRateBypass(c *gin.Context) bool {
	b, _ := c.Value(ctxKeyRateBypass).(bool)
	return b
}

// RateLimit enforces lim for every request not flagged as a replay. Rejected
// requests get 429, Retry-After: 1 and the standard error envelope.
func RateLimit(lim Limiter, keyFn keyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) || lim.Allow(c.Request.Context(), keyFn(c)) {
			c.Next()
			return
		}

		rateLimited.WithLabelValues(lim.Backend()).Inc()
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id": requestID(c),
			"code":       "rate_limited",
			"message":    "rate limit exceeded",
		})
	}
}
