// Unread activity HTTP handlers.
//
//   - GET  /messages/unread?channel=   (badge count, fail-open)
//   - POST /messages/read              (bulk mark-read for a scope)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/http/middleware"
)

// UnreadCountResponse is the badge count for one channel.
type UnreadCountResponse struct {
	Channel  string `json:"channel" example:"support"`
	Count    int64  `json:"count" example:"3"`
	Degraded bool   `json:"degraded"`
}

// MarkReadRequest selects the messages to mark read. Empty sender fields
// match any sender.
type MarkReadRequest struct {
	Channel    string `json:"channel" binding:"required" example:"private"`
	SenderID   string `json:"sender_id,omitempty" example:"rider-7"`
	SenderRole string `json:"sender_role,omitempty" example:"expert" enums:"user,expert"`
}

// MarkReadResponse reports how many messages changed state.
type MarkReadResponse struct {
	Marked int64 `json:"marked" example:"2"`
}

// UnreadCount godoc
// @ID          unreadCount
// @Summary     Unread messages for the caller
// @Description Counts unread messages on a channel within the unread window. Anonymous callers and the community channel get 0.
// @Tags        Activity
// @Produce     json
// @Param       channel  query  string  true  "Channel"  Enums(private, support, community)
// @Success     200  {object}  handlers.UnreadCountResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Unknown channel"
// @Router      /messages/unread [get]
func (h *Handlers) UnreadCount(c *gin.Context) {
	ch := domain.Channel(c.Query("channel"))
	out, err := h.activity.UnreadCount(c.Request.Context(), middleware.UserID(c), ch)
	if err != nil {
		failFor(c, err, ErrCodeInternal)
		return
	}
	parsed, _ := domain.ParseChannel(string(ch))
	ok(c, http.StatusOK, UnreadCountResponse{Channel: string(parsed), Count: out.Value, Degraded: out.Degraded})
}

// MarkRead godoc
// @ID          markRead
// @Summary     Mark messages read
// @Description Flips every unread message in the caller's inbox matching the scope. Repeating the call is a no-op.
// @Tags        Activity
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.MarkReadRequest  true  "Scope"
// @Success     200  {object}  handlers.MarkReadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad scope"
// @Failure     401  {object}  handlers.ErrorResponse  "Anonymous caller"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /messages/read [post]
func (h *Handlers) MarkRead(c *gin.Context) {
	uid, authed := requireCaller(c)
	if !authed {
		return
	}
	var req MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "channel required")
		return
	}

	n, err := h.activity.MarkRead(c.Request.Context(), uid, domain.ReadScope{
		Channel:    domain.Channel(req.Channel),
		SenderID:   req.SenderID,
		SenderRole: req.SenderRole,
	})
	if err != nil {
		failFor(c, err, ErrCodeReadFailed)
		return
	}
	ok(c, http.StatusOK, MarkReadResponse{Marked: n})
}
