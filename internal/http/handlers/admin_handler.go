// Admin HTTP handlers. Every route here sits behind RequireMaster.
//
//   - GET    /admin/users/unread              (riders sorted by unread support messages)
//   - PUT    /admin/presence/override         (pin the online count)
//   - DELETE /admin/presence/override         (back to the computed count)
//   - POST   /admin/support/{id}/messages     (expert reply)
//   - POST   /admin/support/{id}/read         (mark a rider's messages read)
//   - POST   /admin/support/{id}/end          (close the support chat)
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/http/middleware"
	"github.com/tbourn/ghostgear-presence/internal/services"
	"github.com/tbourn/ghostgear-presence/internal/utils"
)

// UsersUnreadResponse is the admin inbox overview.
type UsersUnreadResponse struct {
	Users []services.UserUnread `json:"users"`
	// Degraded is true when at least one per-user count fell back to 0.
	Degraded bool `json:"degraded"`
}

// OnlineOverrideRequest pins the online count.
type OnlineOverrideRequest struct {
	Count *int64 `json:"count" binding:"required" example:"120"`
}

// RequireMaster rejects anonymous callers with 401 and non-master callers
// with 403.
func (h *Handlers) RequireMaster(c *gin.Context) {
	uid, authed := requireCaller(c)
	if !authed {
		return
	}
	if err := h.admin.RequireMaster(c.Request.Context(), uid); err != nil {
		failFor(c, err, ErrCodeInternal)
		return
	}
	c.Next()
}

// UsersWithUnread godoc
// @ID          adminUsersUnread
// @Summary     Riders by unread support messages
// @Description Lists every rider with presence and the number of their support messages not yet read by an expert, highest first.
// @Tags        Admin
// @Produce     json
// @Param       limit  query  int  false  "Return at most this many riders (0 = all)"  minimum(0)
// @Success     200  {object}  handlers.UsersUnreadResponse
// @Failure     401  {object}  handlers.ErrorResponse  "Anonymous caller"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a master user"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /admin/users/unread [get]
func (h *Handlers) UsersWithUnread(c *gin.Context) {
	rows, err := h.admin.UsersWithUnread(c.Request.Context())
	if err != nil {
		failFor(c, err, ErrCodeListFailed)
		return
	}
	rows = utils.Head(rows, utils.ParseLimit(c.Query("limit"), 0))

	resp := UsersUnreadResponse{Users: rows}
	if resp.Users == nil {
		resp.Users = []services.UserUnread{}
	}
	for _, r := range rows {
		if r.Degraded {
			resp.Degraded = true
			break
		}
	}
	ok(c, http.StatusOK, resp)
}

// SetOnlineOverride godoc
// @ID          adminSetOnlineOverride
// @Summary     Pin the online count
// @Tags        Admin
// @Accept      json
// @Param       body  body  handlers.OnlineOverrideRequest  true  "Override"
// @Success     204  "Updated"
// @Failure     400  {object}  handlers.ErrorResponse  "Negative or missing count"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a master user"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /admin/presence/override [put]
func (h *Handlers) SetOnlineOverride(c *gin.Context) {
	var req OnlineOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "count required")
		return
	}
	if err := h.admin.SetOnlineOverride(c.Request.Context(), *req.Count); err != nil {
		failFor(c, err, ErrCodeSettingsFailed)
		return
	}
	noContent(c)
}

// ClearOnlineOverride godoc
// @ID          adminClearOnlineOverride
// @Summary     Remove the online count override
// @Tags        Admin
// @Success     204  "Cleared"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a master user"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /admin/presence/override [delete]
func (h *Handlers) ClearOnlineOverride(c *gin.Context) {
	if err := h.admin.ClearOnlineOverride(c.Request.Context()); err != nil {
		failFor(c, err, ErrCodeSettingsFailed)
		return
	}
	noContent(c)
}

// ExpertReply godoc
// @ID          adminExpertReply
// @Summary     Reply into a rider's support thread
// @Tags        Admin
// @Accept      json
// @Produce     json
// @Param       id               path    string                       true   "Rider id"
// @Param       Idempotency-Key  header  string                       false  "Idempotency key for safe retries"
// @Param       body             body    handlers.ExpertReplyRequest  true   "Reply"
// @Success     201  {object}  handlers.MessageResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown rider"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /admin/support/{id}/messages [post]
func (h *Handlers) ExpertReply(c *gin.Context) {
	var req ExpertReplyRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content required")
		return
	}
	expert := middleware.UserID(c)
	h.send(c, expert, services.SendInput{
		SenderID:    expert,
		Channel:     domain.ChannelSupport,
		RecipientID: c.Param("id"),
		Content:     req.Content,
		AsExpert:    true,
	})
}

// MarkSupportRead godoc
// @ID          adminMarkSupportRead
// @Summary     Mark a rider's support messages read
// @Tags        Admin
// @Produce     json
// @Param       id  path  string  true  "Rider id"
// @Success     200  {object}  handlers.MarkReadResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /admin/support/{id}/read [post]
func (h *Handlers) MarkSupportRead(c *gin.Context) {
	n, err := h.admin.MarkThreadRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		failFor(c, err, ErrCodeReadFailed)
		return
	}
	ok(c, http.StatusOK, MarkReadResponse{Marked: n})
}

// EndSupportChat godoc
// @ID          adminEndSupportChat
// @Summary     Close a rider's support chat
// @Description Deactivates the thread and appends a closing notice. The next rider message reopens it with a greeting.
// @Tags        Admin
// @Param       id  path  string  true  "Rider id"
// @Success     204  "Closed"
// @Failure     404  {object}  handlers.ErrorResponse  "Unknown rider"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /admin/support/{id}/end [post]
func (h *Handlers) EndSupportChat(c *gin.Context) {
	if err := h.msgs.EndSupportChat(c.Request.Context(), c.Param("id")); err != nil {
		failFor(c, err, ErrCodeSendFailed)
		return
	}
	noContent(c)
}
