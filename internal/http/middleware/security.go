// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// SecurityHeaders hardens JSON responses. No CSP is sent since the API never
// serves HTML (swagger assets aside, which carry their own policy).
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	EnableHSTS   bool          // only when TLS terminates in front of every hop
	HSTSMaxAge   time.Duration // defaults to 180 days
	NoStore      bool          // Cache-Control: no-store and friends
	EnablePolicy bool          // Permissions-Policy and cross-domain policy
}

// exposedHeaders are response headers browser clients need to read.
var exposedHeaders = []string{requestIDHeader, "ETag", "Idempotency-Replayed"}

// SecurityHeaders returns a middleware that sets nosniff, frame denial and
// no-referrer on every response, plus the optional headers enabled in opt.
// HSTS is only emitted for HTTPS requests, directly or via X-Forwarded-Proto.
func SecurityHeaders(opt SecurityOptions) gin.HandlerFunc {
	maxAge := int(opt.HSTSMaxAge.Seconds())
	if maxAge <= 0 {
		maxAge = int((180 * 24 * time.Hour).Seconds())
	}
	hsts := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains; preload"

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opt.EnablePolicy {
			// The app reads location natively; the API never needs it in a browser.
			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
		}
		if opt.NoStore {
			h.Set("Cache-Control", "no-store")
			h.Set("Pragma", "no-cache")
			h.Set("Expires", "0")
		}
		if opt.EnableHSTS && isHTTPS(c.Request) {
			h.Set("Strict-Transport-Security", hsts)
		}
		if h.Get(requestIDHeader) != "" {
			exposeHeaders(h, exposedHeaders...)
		}

		c.Next()
	}
}

// exposeHeaders appends names to Access-Control-Expose-Headers, skipping any
// already listed.
func exposeHeaders(h http.Header, names ...string) {
	const key = "Access-Control-Expose-Headers"
	cur := h.Get(key)
	for _, n := range names {
		if strings.Contains(strings.ToLower(cur), strings.ToLower(n)) {
			continue
		}
		if cur == "" {
			cur = n
		} else {
			cur += ", " + n
		}
	}
	h.Set(key, cur)
}

func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}
