// Message HTTP handlers.
//
//   - POST /messages                 (send on private, support or community)
//   - GET  /messages?channel=&peer=  (thread listing, ETag on support)
//
// Idempotency:
// When the client supplies an Idempotency-Key and a send with the same key
// and scope (channel plus recipient) already succeeded, the stored message
// is returned with `Idempotency-Replayed: true` instead of sending again.
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/http/middleware"
	"github.com/tbourn/ghostgear-presence/internal/services"
)

//
// DTOs
//

// SendMessageRequest is the JSON payload for sending a message.
type SendMessageRequest struct {
	Channel     string `json:"channel" binding:"required" example:"private" enums:"private,support,community"`
	RecipientID string `json:"recipient_id,omitempty" example:"rider-7"`
	Content     string `json:"content" binding:"required" example:"Anyone riding to Sile on Sunday?"`
}

// ExpertReplyRequest is the payload for an expert reply into a support thread.
type ExpertReplyRequest struct {
	Content string `json:"content" binding:"required" example:"Check the chain tension first."`
}

// MessageResponse wraps a single message.
type MessageResponse struct {
	Message *domain.Message `json:"message"`
}

// ThreadResponse is a thread listing, oldest message first.
type ThreadResponse struct {
	Channel  string           `json:"channel" example:"support"`
	Messages []domain.Message `json:"messages"`
}

// IdempotencyScope derives the replay scope of a send for the idempotency
// middleware. Expert replies are scoped to the thread in the path; user sends
// read channel and recipient from the cached body so the handler can bind it
// again. Other routes are scoped by their route pattern.
func IdempotencyScope(c *gin.Context) string {
	if id := c.Param("id"); id != "" {
		return services.SendScope(domain.ChannelSupport, strings.TrimSpace(id))
	}
	if c.Request.Method == http.MethodPost && strings.HasSuffix(c.FullPath(), "/messages") {
		var req SendMessageRequest
		_ = c.ShouldBindBodyWith(&req, binding.JSON)
		ch, _ := domain.ParseChannel(req.Channel)
		return services.SendScope(ch, strings.TrimSpace(req.RecipientID))
	}
	return c.FullPath()
}

// SendMessage godoc
// @ID          sendMessage
// @Summary     Send a message
// @Description Sends on the private, support or community channel. A first support message opens the thread with an automatic greeting.
// @Description Supports idempotency via the Idempotency-Key header (same key and recipient → same message).
// @Tags        Messages
// @Accept      json
// @Produce     json
// @Param       Idempotency-Key  header  string                       false  "Idempotency key for safe retries"
// @Param       body             body    handlers.SendMessageRequest  true   "Message"
// @Success     201  {object}  handlers.MessageResponse  "Sent"
// @Success     200  {object}  handlers.MessageResponse  "Replayed"
// @Failure     400  {object}  handlers.ErrorResponse    "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse    "Anonymous caller"
// @Failure     404  {object}  handlers.ErrorResponse    "Unknown sender or recipient"
// @Failure     503  {object}  handlers.ErrorResponse    "Storage unavailable"
// @Router      /messages [post]
func (h *Handlers) SendMessage(c *gin.Context) {
	uid, authed := requireCaller(c)
	if !authed {
		return
	}
	var req SendMessageRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "channel and content required")
		return
	}
	ch, known := domain.ParseChannel(req.Channel)
	if !known {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "channel: unknown channel")
		return
	}

	h.send(c, uid, services.SendInput{
		SenderID:    uid,
		Channel:     ch,
		RecipientID: strings.TrimSpace(req.RecipientID),
		Content:     req.Content,
	})
}

// send replays or performs a send and records the idempotency key.
func (h *Handlers) send(c *gin.Context, uid string, in services.SendInput) {
	ctx := c.Request.Context()
	key, _ := middleware.GetIdempotencyKey(c)
	scope := middleware.GetIdempotencyScope(c)
	if scope == "" {
		scope = services.SendScope(in.Channel, in.RecipientID)
	}

	if key != "" && middleware.IsReplay(c) {
		if prev, found := h.msgs.Replay(ctx, uid, scope, key); found {
			c.Header("Idempotency-Replayed", "true")
			ok(c, http.StatusOK, MessageResponse{Message: prev})
			return
		}
	}

	m, err := h.msgs.Send(ctx, in)
	if err != nil {
		failFor(c, err, ErrCodeSendFailed)
		return
	}
	if key != "" {
		h.msgs.Remember(ctx, uid, scope, key, m)
	}
	ok(c, http.StatusCreated, MessageResponse{Message: m})
}

// ListThread godoc
// @ID          listThread
// @Summary     List a message thread
// @Description private: conversation with peer over the last 24h (peer's messages are marked read).
// @Description support: the caller's support thread, with a weak ETag for conditional GETs.
// @Description community: the latest broadcast messages.
// @Tags        Messages
// @Produce     json
// @Param       channel        query   string  true   "Channel"  Enums(private, support, community)
// @Param       peer           query   string  false  "Peer id (private only)"
// @Param       If-None-Match  header  string  false  "ETag from a previous support listing"
// @Success     200  {object}  handlers.ThreadResponse
// @Success     304  "Not modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Anonymous caller"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage unavailable"
// @Router      /messages [get]
func (h *Handlers) ListThread(c *gin.Context) {
	ctx := c.Request.Context()
	ch, known := domain.ParseChannel(c.Query("channel"))
	if !known {
		fail(c, http.StatusBadRequest, ErrCodeValidation, "channel: unknown channel")
		return
	}
	uid := middleware.UserID(c)
	if uid == "" && ch != domain.ChannelCommunity {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "caller identity required")
		return
	}

	// ETag pre-check (best effort). Private listings mutate read state, so
	// only the support thread is conditional.
	if ch == domain.ChannelSupport {
		if count, read, newest, err := h.msgs.SupportThreadStats(ctx, uid); err == nil {
			var ts int64
			if newest != nil {
				ts = newest.UnixMilli()
			}
			etag := fmt.Sprintf(`W/"support:%s:%d:%d:%d"`, uid, count, read, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	items, err := h.msgs.Thread(ctx, uid, ch, c.Query("peer"))
	if err != nil {
		failFor(c, err, ErrCodeListFailed)
		return
	}
	if items == nil {
		items = []domain.Message{}
	}
	ok(c, http.StatusOK, ThreadResponse{Channel: string(ch), Messages: items})
}
