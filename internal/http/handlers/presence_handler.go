// Presence HTTP handlers.
//
//   - POST /presence/heartbeat   (record a heartbeat, fail-open)
//   - GET  /presence/online      (online count, override first)
//   - GET  /presence/users/{id}  (derived presence for one rider)
package handlers

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ghostgear-presence/internal/http/middleware"
)

// HeartbeatRequest is the optional heartbeat body. UserID may be omitted when
// the caller is identified and is refused when tokens are enforced. Each
// coordinate is range-checked and stored on its own; an omitted one keeps
// its previous value.
type HeartbeatRequest struct {
	UserID    string   `json:"user_id,omitempty" example:"rider-42"`
	Latitude  *float64 `json:"latitude,omitempty" example:"41.0082"`
	Longitude *float64 `json:"longitude,omitempty" example:"28.9784"`
}

// HeartbeatResponse acknowledges a heartbeat. Success is false and Degraded
// true when the store could not be written; clients simply retry next tick.
type HeartbeatResponse struct {
	Success  bool `json:"success"`
	Degraded bool `json:"degraded"`
}

// OnlineCountResponse is the current number of online riders.
type OnlineCountResponse struct {
	Count    int64  `json:"count" example:"17"`
	Source   string `json:"source" example:"computed" enums:"override,computed"`
	Degraded bool   `json:"degraded"`
}

// Heartbeat godoc
// @ID          heartbeat
// @Summary     Record a presence heartbeat
// @Description Increments usage minutes and stamps the last heartbeat. Store outages answer 200 with degraded=true.
// @Tags        Presence
// @Accept      json
// @Produce     json
// @Param       X-User-ID  header  string                     false  "Caller id (dev mode)"
// @Param       body       body    handlers.HeartbeatRequest  false  "Heartbeat payload"
// @Success     200  {object}  handlers.HeartbeatResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Invalid user or coordinates"
// @Failure     401  {object}  handlers.ErrorResponse  "Anonymous caller while tokens are enforced"
// @Failure     403  {object}  handlers.ErrorResponse  "Heartbeat for another user"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown user"
// @Router      /presence/heartbeat [post]
func (h *Handlers) Heartbeat(c *gin.Context) {
	var req HeartbeatRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid heartbeat body")
		return
	}

	uid := middleware.UserID(c)
	bodyUID := strings.TrimSpace(req.UserID)
	switch {
	case uid == "" && middleware.AuthEnforced(c):
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
		return
	case uid == "":
		uid = bodyUID
	case bodyUID != "" && bodyUID != uid:
		fail(c, http.StatusForbidden, ErrCodeForbidden, "cannot send heartbeats for another user")
		return
	}

	out, err := h.presence.RecordHeartbeat(c.Request.Context(), uid, req.Latitude, req.Longitude)
	if err != nil {
		failFor(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, HeartbeatResponse{Success: out.Value, Degraded: out.Degraded})
}

// OnlineCount godoc
// @ID          onlineCount
// @Summary     Count online riders
// @Description Returns the manual override when set, otherwise riders with a heartbeat inside the online window.
// @Tags        Presence
// @Produce     json
// @Success     200  {object}  handlers.OnlineCountResponse
// @Router      /presence/online [get]
func (h *Handlers) OnlineCount(c *gin.Context) {
	out := h.presence.OnlineCount(c.Request.Context())
	ok(c, http.StatusOK, OnlineCountResponse{
		Count:    out.Value.Count,
		Source:   out.Value.Source,
		Degraded: out.Degraded,
	})
}

// UserPresence godoc
// @ID          userPresence
// @Summary     Presence of one rider
// @Tags        Presence
// @Produce     json
// @Param       id   path  string  true  "User id"
// @Success     200  {object}  services.UserPresence
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown user"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /presence/users/{id} [get]
func (h *Handlers) UserPresence(c *gin.Context) {
	p, err := h.presence.Presence(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFor(c, err, ErrCodeInternal)
		return
	}
	ok(c, http.StatusOK, p)
}
