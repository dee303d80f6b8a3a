// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// Every access logger stores its request-scoped zerolog.Logger twice: under
// the "logger" Gin key for handlers (LoggerFrom) and on the request context
// so services log through zerolog.Ctx(ctx) without importing gin.
//
// Order used by the router:
//  1. RequestID()
//  2. RedactingLogger() or, with LOG_REDACT=false, Logger()
//  3. Recovery()
//  4. Identity()
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/ghostgear-presence/internal/observability"
)

const (
	requestIDKey    = "requestID"
	requestIDHeader = "X-Request-ID"
	loggerKey       = "logger"

	maxQueryLogLength = 2048
)

// RequestID echoes an incoming X-Request-ID or mints a UUIDv4 and keeps it
// under the "requestID" Gin key.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Writer.Header().Set(requestIDHeader, rid)
		c.Next()
	}
}

// Logger is the verbose access log for local work. Unlike RedactingLogger it
// records the raw query, client address and user agent.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		scoped := observability.WithTrace(c.Request.Context(), log.With().
			Str("request_id", requestID(c)).
			Str("method", c.Request.Method).
			Str("path", routePath(c)).
			Logger())
		attachLogger(c, &scoped)

		c.Next()

		status := c.Writer.Status()
		ev := eventFor(&scoped, status, len(c.Errors) > 0).
			Str("user_id", UserID(c)).
			Str("remote_ip", c.ClientIP()).
			Str("user_agent", c.Request.UserAgent()).
			Str("query", truncate(c.Request.URL.RawQuery, maxQueryLogLength)).
			Int64("bytes_in", c.Request.ContentLength).
			Int("bytes_out", c.Writer.Size()).
			Int("status", status).
			Dur("latency", time.Since(start))
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Msg("http_request")
	}
}

// Recovery turns a panic into a JSON 500 with the request id. If the body
// was already written only the status is forced.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			rid := requestID(c)
			LoggerFrom(c).Error().
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Str("request_id", rid).
				Msg("panic recovered")

			if c.Writer.Written() {
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Header(requestIDHeader, rid)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"request_id": rid,
				"code":       "internal_error",
				"message":    "internal server error",
			})
		}()
		c.Next()
	}
}

// LoggerFrom returns the request-scoped logger, or the global one when no
// access logger ran.
func LoggerFrom(c *gin.Context) *zerolog.Logger {
	if v, ok := c.Get(loggerKey); ok {
		if lg, ok := v.(*zerolog.Logger); ok {
			return lg
		}
	}
	l := log.With().Logger()
	return &l
}

func attachLogger(c *gin.Context, l *zerolog.Logger) {
	c.Set(loggerKey, l)
	c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
}

// eventFor picks the level: error for 5xx or recorded gin errors, warn for
// 4xx, info otherwise.
func eventFor(l *zerolog.Logger, status int, hasErrors bool) *zerolog.Event {
	switch {
	case hasErrors || status >= 500:
		return l.Error()
	case status >= 400:
		return l.Warn()
	default:
		return l.Info()
	}
}

// routePath prefers the matched route pattern so ids stay out of the path
// label; unmatched requests fall back to the raw path.
func routePath(c *gin.Context) string {
	if p := c.FullPath(); p != "" {
		return p
	}
	return c.Request.URL.Path
}

func requestID(c *gin.Context) string {
	if v, ok := c.Get(requestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	if rid := c.Writer.Header().Get(requestIDHeader); rid != "" {
		return rid
	}
	return c.GetHeader(requestIDHeader)
}

// truncate caps s at max bytes. max <= 0 disables it.
func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
