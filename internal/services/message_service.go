// Package services – MessageService
//
// This file implements MessageService, which owns message sends and thread
// listings across the private, support, and community channels.
//
// Content is trimmed and normalized to NFC before length checks so that
// visually identical input counts the same regardless of how the client
// composed it. Sends are content writes: store failures are returned as
// *DataAccessError.
//
// Observability: public methods are OpenTelemetry-instrumented with the
// user and channel on the span.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/repo"
	"github.com/tbourn/ghostgear-presence/internal/sysutil"
)

// Default support-thread notices.
const (
	DefaultSupportGreeting = "Hello! An expert will be with you shortly."
	DefaultSupportClosing  = "This support chat has been closed by an expert."
	defaultMaxContentRunes = 2000
)

// SendInput describes a message to send.
type SendInput struct {
	SenderID    string
	Channel     domain.Channel
	RecipientID string // peer for private; thread owner for expert replies on support
	Content     string
	AsExpert    bool // support only: reply into RecipientID's thread as an expert
}

// MessageService coordinates message persistence and thread reads.
type MessageService struct {
	DB              *gorm.DB
	MaxContentRunes int
	PrivateWindow   time.Duration // DefaultUnreadWindow when zero
	CommunityLimit  int           // DefaultCommunityLimit when zero
	SupportGreeting string
	SupportClosing  string
	IdempotencyTTL  time.Duration // DefaultIdempotencyTTL when zero
	Now             Clock
}

// Send validates and persists a message.
//
// Channel rules:
//   - private: RecipientID is required, must differ from the sender, and must exist.
//   - support: a user message lands in the sender's own thread. When the thread
//     is not active, an expert greeting (already read) is appended and the
//     thread is activated in the same transaction. With AsExpert the message
//     lands unread in RecipientID's thread.
//   - community: broadcast, no owner.
func (s *MessageService) Send(ctx context.Context, in SendInput) (*domain.Message, error) {
	ctx, span := otel.Tracer("services/MessageService").Start(ctx, "Send",
		trace.WithAttributes(
			attribute.String("user.id", in.SenderID),
			attribute.String("channel", string(in.Channel)),
		),
	)
	defer span.End()

	sender := strings.TrimSpace(in.SenderID)
	if sender == "" {
		return nil, invalid("sender_id", "required")
	}
	ch, ok := domain.ParseChannel(string(in.Channel))
	if !ok {
		return nil, invalid("channel", "unknown channel")
	}
	content, err := s.normalizeContent(in.Content)
	if err != nil {
		return nil, err
	}
	recipient := strings.TrimSpace(in.RecipientID)
	now := s.Now.now()

	msg := &domain.Message{
		Channel:    string(ch),
		SenderID:   sender,
		SenderRole: domain.RoleUser,
		Content:    content,
		CreatedAt:  now,
	}

	switch ch {
	case domain.ChannelPrivate:
		if recipient == "" {
			return nil, invalid("recipient_id", "required for private messages")
		}
		if recipient == sender {
			return nil, invalid("recipient_id", "cannot message yourself")
		}
		if err := s.requireUser(ctx, recipient); err != nil {
			return nil, err
		}
		msg.OwnerID = recipient
		if err := repo.CreateMessage(ctx, s.DB, msg); err != nil {
			span.RecordError(err)
			return nil, dataAccess("create message", err)
		}
		return msg, nil

	case domain.ChannelSupport:
		if in.AsExpert {
			if recipient == "" {
				return nil, invalid("recipient_id", "required for expert replies")
			}
			if err := s.requireUser(ctx, recipient); err != nil {
				return nil, err
			}
			msg.OwnerID = recipient
			msg.SenderRole = domain.RoleExpert
			if err := repo.CreateMessage(ctx, s.DB, msg); err != nil {
				span.RecordError(err)
				return nil, dataAccess("create message", err)
			}
			return msg, nil
		}
		msg.OwnerID = sender
		if err := s.sendSupport(ctx, msg); err != nil {
			span.RecordError(err)
			return nil, err
		}
		return msg, nil

	default:
		if err := repo.CreateMessage(ctx, s.DB, msg); err != nil {
			span.RecordError(err)
			return nil, dataAccess("create message", err)
		}
		return msg, nil
	}
}

// sendSupport stores a user's support message and opens the thread when it
// is inactive.
func (s *MessageService) sendSupport(ctx context.Context, msg *domain.Message) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u, err := repo.GetUser(ctx, tx, msg.OwnerID)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return dataAccess("get user", err)
		}
		if err := repo.CreateMessage(ctx, tx, msg); err != nil {
			return dataAccess("create message", err)
		}
		if u.ChatActive {
			return nil
		}
		greeting := &domain.Message{
			Channel:    string(domain.ChannelSupport),
			OwnerID:    msg.OwnerID,
			SenderID:   domain.RoleExpert,
			SenderRole: domain.RoleExpert,
			Content:    sysutil.FirstNonEmpty(s.SupportGreeting, DefaultSupportGreeting),
			IsRead:     true,
			CreatedAt:  msg.CreatedAt.Add(time.Millisecond),
		}
		if err := repo.CreateMessage(ctx, tx, greeting); err != nil {
			return dataAccess("create greeting", err)
		}
		return dataAccess("activate support chat", repo.SetChatActive(ctx, tx, msg.OwnerID, true))
	})
}

// Thread lists messages for userID on channel.
//
//   - private: the conversation with peerID within the private window, oldest
//     first; the peer's messages to userID are marked read first.
//   - support: userID's support thread, oldest first.
//   - community: the latest CommunityLimit messages, oldest first.
func (s *MessageService) Thread(ctx context.Context, userID string, channel domain.Channel, peerID string) ([]domain.Message, error) {
	ctx, span := otel.Tracer("services/MessageService").Start(ctx, "Thread",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("channel", string(channel)),
		),
	)
	defer span.End()

	ch, ok := domain.ParseChannel(string(channel))
	if !ok {
		return nil, invalid("channel", "unknown channel")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" && ch != domain.ChannelCommunity {
		return nil, invalid("user_id", "required")
	}

	var (
		out []domain.Message
		err error
	)
	switch ch {
	case domain.ChannelPrivate:
		peerID = strings.TrimSpace(peerID)
		if peerID == "" {
			return nil, invalid("peer", "required for private threads")
		}
		scope := domain.ReadScope{Channel: domain.ChannelPrivate, SenderID: peerID}
		if _, err := repo.MarkRead(ctx, s.DB, userID, scope); err != nil {
			span.RecordError(err)
			return nil, dataAccess("mark read", err)
		}
		since := s.Now.now().Add(-orDefault(s.PrivateWindow, DefaultUnreadWindow))
		out, err = repo.ListConversation(ctx, s.DB, userID, peerID, since)
	case domain.ChannelSupport:
		out, err = repo.ListSupportThread(ctx, s.DB, userID)
	default:
		limit := s.CommunityLimit
		if limit <= 0 {
			limit = DefaultCommunityLimit
		}
		out, err = repo.ListCommunity(ctx, s.DB, limit)
	}
	if err != nil {
		span.RecordError(err)
		return nil, dataAccess("list messages", err)
	}
	span.SetAttributes(attribute.Int("messages.count", len(out)))
	return out, nil
}

// EndSupportChat deactivates userID's support thread and appends a closing
// notice that is already read.
func (s *MessageService) EndSupportChat(ctx context.Context, userID string) error {
	ctx, span := otel.Tracer("services/MessageService").Start(ctx, "EndSupportChat",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return invalid("user_id", "required")
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := repo.SetChatActive(ctx, tx, userID, false)
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return dataAccess("deactivate support chat", err)
		}
		notice := &domain.Message{
			Channel:    string(domain.ChannelSupport),
			OwnerID:    userID,
			SenderID:   domain.RoleExpert,
			SenderRole: domain.RoleExpert,
			Content:    sysutil.FirstNonEmpty(s.SupportClosing, DefaultSupportClosing),
			IsRead:     true,
			CreatedAt:  s.Now.now(),
		}
		return dataAccess("create closing notice", repo.CreateMessage(ctx, tx, notice))
	})
}

// SupportThreadStats exposes thread metadata for conditional GETs.
func (s *MessageService) SupportThreadStats(ctx context.Context, userID string) (count, read int64, newest *time.Time, err error) {
	count, read, newest, err = repo.SupportThreadStats(ctx, s.DB, userID)
	if err != nil {
		return 0, 0, nil, dataAccess("support thread stats", err)
	}
	return count, read, newest, nil
}

func (s *MessageService) normalizeContent(raw string) (string, error) {
	content := norm.NFC.String(strings.TrimSpace(raw))
	if content == "" {
		return "", invalid("content", "required")
	}
	max := s.MaxContentRunes
	if max <= 0 {
		max = defaultMaxContentRunes
	}
	if utf8.RuneCountInString(content) > max {
		return "", invalid("content", "too long")
	}
	return content, nil
}

func (s *MessageService) requireUser(ctx context.Context, id string) error {
	_, err := repo.GetUser(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return dataAccess("get user", err)
}
