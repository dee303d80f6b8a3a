// Package services – AdminService
//
// AdminService backs the master-only views. UsersWithUnread lists every user
// and then issues one unread count per user concurrently. The counts are
// independent statements with no enclosing transaction, so the result is a
// best-effort snapshot: messages arriving mid-listing may or may not be
// reflected for a given user.
package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/repo"
)

const defaultAdminFanout = 8

// UserUnread is one row of the admin user listing.
type UserUnread struct {
	ID            string     `json:"id"`
	DisplayName   string     `json:"display_name"`
	Online        bool       `json:"online"`
	LastHeartbeat *time.Time `json:"last_heartbeat"`
	UsageMinutes  int64      `json:"usage_minutes"`
	ChatActive    bool       `json:"chat_active"`
	Unread        int64      `json:"unread"`
	Degraded      bool       `json:"degraded,omitempty"`
}

// AdminService implements master-only operations.
type AdminService struct {
	DB           *gorm.DB
	Settings     *SettingsService
	OnlineWindow time.Duration // DefaultOnlineWindow when zero
	Fanout       int           // max concurrent unread counts; 8 when zero
	Now          Clock
}

// UsersWithUnread returns every user with the number of unread support
// messages they have sent (all time), sorted by unread descending. Ties keep
// the newest-first user order.
//
// A failing per-user count reports 0 for that user with Degraded set; only a
// failure to list users is returned as an error.
func (s *AdminService) UsersWithUnread(ctx context.Context) ([]UserUnread, error) {
	ctx, span := otel.Tracer("services/AdminService").Start(ctx, "UsersWithUnread")
	defer span.End()

	users, err := repo.ListUsers(ctx, s.DB)
	if err != nil {
		span.RecordError(err)
		return nil, dataAccess("list users", err)
	}

	now := s.Now.now()
	window := orDefault(s.OnlineWindow, DefaultOnlineWindow)
	out := make([]UserUnread, len(users))

	fanout := s.Fanout
	if fanout <= 0 {
		fanout = defaultAdminFanout
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fanout)
	for i := range users {
		i, u := i, users[i]
		out[i] = UserUnread{
			ID:            u.ID,
			DisplayName:   u.DisplayName,
			Online:        IsOnline(u.LastHeartbeat, now, window),
			LastHeartbeat: u.LastHeartbeat,
			UsageMinutes:  u.UsageMinutes,
			ChatActive:    u.ChatActive,
		}
		g.Go(func() error {
			n, err := repo.CountUnread(gctx, s.DB, repo.UnreadFilter{
				OwnerID:    u.ID,
				Channel:    domain.ChannelSupport,
				SenderRole: domain.RoleUser,
			})
			if err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", u.ID).Msg("admin unread count unavailable")
				fallbacksTotal.WithLabelValues("admin_unread").Inc()
				out[i].Degraded = true
				return nil
			}
			out[i].Unread = n
			return nil
		})
	}
	_ = g.Wait()

	sort.SliceStable(out, func(a, b int) bool { return out[a].Unread > out[b].Unread })
	span.SetAttributes(attribute.Int("users.count", len(out)))
	return out, nil
}

// MarkThreadRead marks the user-authored messages in userID's support thread
// as read, as when an expert opens the thread.
func (s *AdminService) MarkThreadRead(ctx context.Context, userID string) (int64, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return 0, invalid("user_id", "required")
	}
	n, err := repo.MarkRead(ctx, s.DB, userID, domain.ReadScope{
		Channel:    domain.ChannelSupport,
		SenderRole: domain.RoleUser,
	})
	if err != nil {
		return 0, dataAccess("mark thread read", err)
	}
	return n, nil
}

// SetOnlineOverride pins the reported online count to n.
func (s *AdminService) SetOnlineOverride(ctx context.Context, n int64) error {
	if n < 0 {
		return invalid("count", "must be >= 0")
	}
	return s.Settings.Set(ctx, domain.SettingManualOnlineCount, strconv.FormatInt(n, 10))
}

// ClearOnlineOverride returns the online count to the computed value.
func (s *AdminService) ClearOnlineOverride(ctx context.Context) error {
	return s.Settings.Delete(ctx, domain.SettingManualOnlineCount)
}

// RequireMaster returns ErrForbidden unless userID holds the master role.
func (s *AdminService) RequireMaster(ctx context.Context, userID string) error {
	ok, err := (&UserService{DB: s.DB}).IsMaster(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}
