// Package services – PresenceService
//
// This file implements PresenceService, which owns the heartbeat write and the
// online-count read. Presence is never stored: a user is online when their
// last heartbeat is strictly newer than now - OnlineWindow. An operator-set
// override, when present, replaces the computed count outright.
//
// Both operations are telemetry paths and fail open: store failures produce a
// degraded Outcome with a documented fallback value instead of an error.
package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/repo"
)

// Sources reported by OnlineCount.
const (
	SourceOverride = "override"
	SourceComputed = "computed"
)

// OverrideSource supplies the manual online-count override. ok is false when
// no override is configured.
type OverrideSource interface {
	ManualOnlineCount(ctx context.Context) (value string, ok bool, err error)
}

// OnlineCount is the answer to "how many riders are online".
type OnlineCount struct {
	Count  int64  `json:"count"`
	Source string `json:"source"`
}

// UserPresence is the derived presence of a single user.
type UserPresence struct {
	UserID        string     `json:"user_id"`
	Online        bool       `json:"online"`
	LastHeartbeat *time.Time `json:"last_heartbeat"`
	UsageMinutes  int64      `json:"usage_minutes"`
}

// PresenceService records heartbeats and derives online status.
type PresenceService struct {
	DB       *gorm.DB
	Override OverrideSource // optional
	Window   time.Duration  // online window; DefaultOnlineWindow when zero
	Now      Clock
}

// RecordHeartbeat bumps the user's usage counter, stamps the heartbeat time,
// and updates the position when coordinates are given.
//
// Errors:
//   - *ValidationError for an empty userID or out-of-range coordinates.
//   - ErrUserNotFound when no such user exists.
//
// Store failures are not errors: the Outcome is degraded with Value=false.
func (s *PresenceService) RecordHeartbeat(ctx context.Context, userID string, lat, lon *float64) (Outcome[bool], error) {
	ctx, span := otel.Tracer("services/PresenceService").Start(ctx, "RecordHeartbeat",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Outcome[bool]{}, invalid("user_id", "required")
	}
	if lat != nil && (*lat < -90 || *lat > 90) {
		return Outcome[bool]{}, invalid("latitude", "must be within [-90, 90]")
	}
	if lon != nil && (*lon < -180 || *lon > 180) {
		return Outcome[bool]{}, invalid("longitude", "must be within [-180, 180]")
	}

	err := repo.RecordHeartbeat(ctx, s.DB, userID, s.Now.now(), lat, lon)
	switch {
	case err == nil:
		heartbeatsTotal.Inc()
		return healthy(true), nil
	case errors.Is(err, repo.ErrNotFound):
		return Outcome[bool]{}, ErrUserNotFound
	default:
		span.RecordError(err)
		zerolog.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("heartbeat not recorded")
		return degraded(false, "heartbeat", dataAccess("record heartbeat", err)), nil
	}
}

// OnlineCount returns the override when one is set and parses as a
// non-negative integer, otherwise the number of users seen within the window.
// Failures yield {0, computed} with Degraded set.
func (s *PresenceService) OnlineCount(ctx context.Context) Outcome[OnlineCount] {
	ctx, span := otel.Tracer("services/PresenceService").Start(ctx, "OnlineCount")
	defer span.End()

	lg := zerolog.Ctx(ctx)
	var overrideErr error
	if s.Override != nil {
		raw, ok, err := s.Override.ManualOnlineCount(ctx)
		switch {
		case err != nil:
			overrideErr = dataAccess("read online override", err)
			lg.Warn().Err(err).Msg("online override lookup failed; using computed count")
		case ok && strings.TrimSpace(raw) != "":
			n, perr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if perr == nil && n >= 0 {
				span.SetAttributes(attribute.String("online.source", SourceOverride))
				return healthy(OnlineCount{Count: n, Source: SourceOverride})
			}
			lg.Warn().Str("value", raw).Msg("ignoring unparsable online override")
		}
	}

	cutoff := s.Now.now().Add(-orDefault(s.Window, DefaultOnlineWindow))
	n, err := repo.CountOnlineSince(ctx, s.DB, cutoff)
	if err != nil {
		span.RecordError(err)
		lg.Warn().Err(err).Msg("online count unavailable")
		return degraded(OnlineCount{Source: SourceComputed}, "online_count", dataAccess("count online", err))
	}
	span.SetAttributes(attribute.String("online.source", SourceComputed), attribute.Int64("online.count", n))
	out := healthy(OnlineCount{Count: n, Source: SourceComputed})
	if overrideErr != nil {
		out = degraded(out.Value, "online_override", overrideErr)
	}
	return out
}

// Presence derives the online flag for one user.
func (s *PresenceService) Presence(ctx context.Context, userID string) (*UserPresence, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalid("user_id", "required")
	}
	u, err := repo.GetUser(ctx, s.DB, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, dataAccess("get user", err)
	}
	return &UserPresence{
		UserID:        u.ID,
		Online:        IsOnline(u.LastHeartbeat, s.Now.now(), orDefault(s.Window, DefaultOnlineWindow)),
		LastHeartbeat: u.LastHeartbeat,
		UsageMinutes:  u.UsageMinutes,
	}, nil
}

// IsOnline reports whether a heartbeat at last is within window of now.
// A nil heartbeat is offline; a heartbeat exactly window old is offline.
func IsOnline(last *time.Time, now time.Time, window time.Duration) bool {
	if last == nil {
		return false
	}
	return last.After(now.Add(-window))
}
