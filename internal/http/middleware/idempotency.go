// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements Idempotency-Key handling for message sends. The
// middleware validates the header, computes the request's scope (for sends:
// channel plus counterpart), and asks a lookup whether (user, scope, key)
// already produced a stored message. Handlers then serve the replay.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header carrying the client's key.
const HeaderIdempotencyKey = "Idempotency-Key"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass"
)

var defaultIdemPattern = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)

// GetIdempotencyKey returns the validated key stashed by IdempotencyValidator.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// GetIdempotencyScope returns the scope computed for the current request.
func GetIdempotencyScope(c *gin.Context) string {
	v, _ := c.Get(ctxKeyIdemScope)
	s, _ := v.(string)
	return s
}

// IsReplay reports whether the lookup found a stored result for this request.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// ScopeFunc derives the idempotency scope of a request. It may read the body
// through c.ShouldBindBodyWith so the handler can bind it again.
type ScopeFunc func(c *gin.Context) string

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters; nil means ^[A-Za-z0-9._~\-:]+$.
	Pattern *regexp.Regexp
	// Scope derives the request scope. Nil uses the ":id" path parameter.
	Scope ScopeFunc
}

// IdempotencyLookup reports whether a still-valid result exists for
// (userID, scope, key). TTL is enforced by the implementation. Errors are
// treated as a miss.
type IdempotencyLookup func(ctx context.Context, userID, scope, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates Idempotency-Key when present.
//
//   - no header: no-op
//   - malformed header: 400 bad_idempotency_key
//   - lookup hit for an identified caller: marks replay and rate bypass
//
// Anonymous callers never replay; their key is still validated and stashed.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = defaultIdemPattern
	}
	scopeFn := opts.Scope
	if scopeFn == nil {
		scopeFn = func(c *gin.Context) string { return c.Param("id") }
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		scope := scopeFn(c)
		c.Set(ctxKeyIdemKey, key)
		c.Set(ctxKeyIdemScope, scope)

		if uid := UserID(c); lookup != nil && uid != "" {
			exists, err := lookup(c.Request.Context(), uid, scope, key, time.Now().UTC())
			if err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("idempotency lookup failed")
			}
			if exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
