// Package services – ActivityService
//
// ActivityService answers unread counters and flips read flags. Counting is a
// telemetry path and fails open to zero; MarkRead is a write the client acts
// on and returns errors.
package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/repo"
)

// ActivityService reads and updates per-user read state.
type ActivityService struct {
	DB     *gorm.DB
	Window time.Duration // unread window; DefaultUnreadWindow when zero
	Now    Clock
}

// UnreadCount counts unread messages addressed to userID on channel within
// the unread window. On the support channel only expert replies count.
//
// An empty userID yields 0. The community channel carries no read state and
// always yields 0. An unknown channel is a *ValidationError.
func (s *ActivityService) UnreadCount(ctx context.Context, userID string, channel domain.Channel) (Outcome[int64], error) {
	ctx, span := otel.Tracer("services/ActivityService").Start(ctx, "UnreadCount",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("channel", string(channel)),
		),
	)
	defer span.End()

	ch, ok := domain.ParseChannel(string(channel))
	if !ok {
		return Outcome[int64]{}, invalid("channel", "unknown channel")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" || !ch.Tracked() {
		return healthy[int64](0), nil
	}

	since := s.Now.now().Add(-orDefault(s.Window, DefaultUnreadWindow))
	f := repo.UnreadFilter{OwnerID: userID, Channel: ch, Since: &since}
	if ch == domain.ChannelSupport {
		f.SenderRole = domain.RoleExpert
	}

	n, err := repo.CountUnread(ctx, s.DB, f)
	if err != nil {
		span.RecordError(err)
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Str("channel", string(ch)).Msg("unread count unavailable")
		return degraded[int64](0, "unread_count", dataAccess("count unread", err)), nil
	}
	return healthy(n), nil
}

// MarkRead marks every unread message in userID's inbox that matches scope as
// read and returns how many changed. Repeating the call changes nothing.
func (s *ActivityService) MarkRead(ctx context.Context, userID string, scope domain.ReadScope) (int64, error) {
	ctx, span := otel.Tracer("services/ActivityService").Start(ctx, "MarkRead",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("channel", string(scope.Channel)),
		),
	)
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, invalid("user_id", "required")
	}
	ch, ok := domain.ParseChannel(string(scope.Channel))
	if !ok || !ch.Tracked() {
		return 0, invalid("channel", "channel has no read state")
	}
	scope.Channel = ch
	if scope.SenderRole != "" && scope.SenderRole != domain.RoleUser && scope.SenderRole != domain.RoleExpert {
		return 0, invalid("sender_role", "must be user or expert")
	}

	n, err := repo.MarkRead(ctx, s.DB, userID, scope)
	if err != nil {
		span.RecordError(err)
		return 0, dataAccess("mark read", err)
	}
	span.SetAttributes(attribute.Int64("messages.marked", n))
	return n, nil
}
