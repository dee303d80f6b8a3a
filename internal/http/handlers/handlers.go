// Package handlers holds the Gin handlers for the presence and activity API.
//
// Handlers are transport-thin: they bind and check input, resolve the caller
// through middleware.UserID, delegate to the services below, and translate
// results and errors into the JSON envelopes defined in response.go.
package handlers

import (
	"context"
	"time"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/services"
)

//
// Service contracts (context-aware)
//

// PresenceService records heartbeats and derives online state.
type PresenceService interface {
	RecordHeartbeat(ctx context.Context, userID string, lat, lon *float64) (services.Outcome[bool], error)
	OnlineCount(ctx context.Context) services.Outcome[services.OnlineCount]
	Presence(ctx context.Context, userID string) (*services.UserPresence, error)
}

// ActivityService counts and clears unread messages.
type ActivityService interface {
	UnreadCount(ctx context.Context, userID string, channel domain.Channel) (services.Outcome[int64], error)
	MarkRead(ctx context.Context, userID string, scope domain.ReadScope) (int64, error)
}

// MessageService sends messages, lists threads and replays idempotent sends.
type MessageService interface {
	Send(ctx context.Context, in services.SendInput) (*domain.Message, error)
	Thread(ctx context.Context, userID string, channel domain.Channel, peerID string) ([]domain.Message, error)
	SupportThreadStats(ctx context.Context, userID string) (count, read int64, newest *time.Time, err error)
	EndSupportChat(ctx context.Context, userID string) error
	Replay(ctx context.Context, userID, scope, key string) (*domain.Message, bool)
	Remember(ctx context.Context, userID, scope, key string, msg *domain.Message)
}

// SettingsService reads and writes key/value settings and notification flags.
type SettingsService interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	NotificationsEnabled(ctx context.Context) (bool, error)
	SetNotificationsEnabled(ctx context.Context, enabled bool) error
	SetUserNotifications(ctx context.Context, userID string, enabled bool) error
}

// UserService registers rider profiles.
type UserService interface {
	Register(ctx context.Context, userID, displayName string) (*domain.User, error)
}

// AdminService backs the master-only endpoints.
type AdminService interface {
	UsersWithUnread(ctx context.Context) ([]services.UserUnread, error)
	MarkThreadRead(ctx context.Context, userID string) (int64, error)
	SetOnlineOverride(ctx context.Context, n int64) error
	ClearOnlineOverride(ctx context.Context) error
	RequireMaster(ctx context.Context, userID string) error
}

// Deps bundles the services a Handlers needs.
type Deps struct {
	Presence PresenceService
	Activity ActivityService
	Messages MessageService
	Settings SettingsService
	Users    UserService
	Admin    AdminService
}

// Handlers groups every HTTP endpoint of the API.
type Handlers struct {
	presence PresenceService
	activity ActivityService
	msgs     MessageService
	settings SettingsService
	users    UserService
	admin    AdminService
}

// New constructs Handlers bound to d.
func New(d Deps) *Handlers {
	return &Handlers{
		presence: d.Presence,
		activity: d.Activity,
		msgs:     d.Messages,
		settings: d.Settings,
		users:    d.Users,
		admin:    d.Admin,
	}
}
