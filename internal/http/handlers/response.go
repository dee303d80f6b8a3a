// Package handlers provides HTTP handler implementations for the public API.
//
// This file defines the response helpers shared by every endpoint: the error
// envelope, fail/ok/noContent, and failFor, which maps the service error
// taxonomy onto HTTP statuses.
//
// Telemetry endpoints (heartbeat, online count, unread count) never fail on a
// store outage: they answer 200 with "degraded": true and a fallback value.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ghostgear-presence/internal/http/middleware"
	"github.com/tbourn/ghostgear-presence/internal/services"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"not_found"`
	// Human-readable message (safe to show to users)
	Message string `json:"message" example:"user not found"`
}

// fail aborts with the error envelope. 5xx responses are logged with the
// request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Message:   msg,
	})
}

// Fail is the exported variant of fail() for the router's fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// failFor maps a service error to a response. writeCode is used for store
// failures so clients can tell which write did not happen.
//
//	*ValidationError  -> 400 validation_failed
//	ErrUserNotFound   -> 404 not_found
//	ErrSettingNotFound-> 404 not_found
//	ErrForbidden      -> 403 forbidden
//	*DataAccessError  -> 503 writeCode
//	anything else     -> 500 internal_error
func failFor(c *gin.Context, err error, writeCode string) {
	var (
		ve *services.ValidationError
		de *services.DataAccessError
	)
	switch {
	case errors.As(err, &ve):
		fail(c, http.StatusBadRequest, ErrCodeValidation, ve.Error())
	case errors.Is(err, services.ErrUserNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "user not found")
	case errors.Is(err, services.ErrSettingNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "setting not found")
	case errors.Is(err, services.ErrForbidden):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "master access required")
	case errors.As(err, &de):
		_ = c.Error(err)
		fail(c, http.StatusServiceUnavailable, writeCode, "storage unavailable")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
	}
}

// requireCaller returns the resolved caller or answers 401.
func requireCaller(c *gin.Context) (string, bool) {
	uid := middleware.UserID(c)
	if uid == "" {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "caller identity required")
		return "", false
	}
	return uid, true
}

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
