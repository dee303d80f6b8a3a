// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// RedactingLogger is the production access logger. It never logs bodies,
// masks credential headers and scrubs identifiers and rider coordinates out
// of query strings and header values before anything reaches the log sink.
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/ghostgear-presence/internal/observability"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders lists extra header names (case-insensitive) whose values are
// replaced with "[REDACTED]" on top of Authorization, Cookie and Set-Cookie.
type RedactOptions struct {
	MaskHeaders []string
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-5][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	// Digits only so it cannot eat the hex groups of an id.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
	geoRE   = regexp.MustCompile(`(?i)\b(lat|latitude|lon|lng|longitude)=[-+]?\d+(?:\.\d+)?`)
)

// redact scrubs s. Coordinates and ids go first; phone is the loosest pattern.
func redact(s string) string {
	if s == "" {
		return s
	}
	out := geoRE.ReplaceAllString(s, "$1=[REDACTED:geo]")
	out = uuidRE.ReplaceAllString(out, "[REDACTED:id]")
	out = emailRE.ReplaceAllString(out, "[REDACTED:email]")
	out = phoneRE.ReplaceAllString(out, "[REDACTED:phone]")
	return out
}

// RedactingLogger returns a Gin middleware that logs each request with
// sensitive values scrubbed. Like Logger it attaches a request-scoped logger
// (request_id, method, path) for handlers and services.
//
// Gin errors are not logged here since their text may carry raw input.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := map[string]struct{}{
		"authorization": {},
		"cookie":        {},
		"set-cookie":    {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		safeQuery := redact(c.Request.URL.RawQuery)

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(strings.Join(vv, ", "))
		}

		scoped := observability.WithTrace(c.Request.Context(), log.With().
			Str("request_id", requestID(c)).
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Logger())
		attachLogger(c, &scoped)

		c.Next()

		status := c.Writer.Status()
		eventFor(&scoped, status, false).
			Str("user", redact(UserID(c))).
			Str("query", safeQuery).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
