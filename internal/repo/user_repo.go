// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model,
// including the heartbeat write and the online-window count.
//
// Every function issues exactly one statement. Concurrent heartbeats for the
// same user rely on the store's single-statement atomicity: the usage counter
// is additive, the timestamp is last-write-wins.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/ghostgear-presence/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// UpsertUser inserts a user or, if the id already exists, refreshes its
// display name. Role and presence columns are never touched here.
func UpsertUser(ctx context.Context, db *gorm.DB, id, displayName string) (*domain.User, error) {
	u := &domain.User{
		ID:                   id,
		DisplayName:          displayName,
		NotificationsEnabled: true,
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "updated_at"}),
	}).Create(u).Error
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetUser fetches a single user by id, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// RecordHeartbeat bumps usage_minutes by one, stamps last_heartbeat with now,
// and coalesces latitude/longitude: nil coordinates keep the stored values.
//
// Returns ErrNotFound when no row matched id.
func RecordHeartbeat(ctx context.Context, db *gorm.DB, id string, now time.Time, lat, lon *float64) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"usage_minutes":  gorm.Expr("COALESCE(usage_minutes, 0) + 1"),
			"last_heartbeat": now,
			"latitude":       gorm.Expr("COALESCE(?, latitude)", lat),
			"longitude":      gorm.Expr("COALESCE(?, longitude)", lon),
			"updated_at":     now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountOnlineSince counts users whose last heartbeat is strictly after cutoff.
func CountOnlineSince(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("last_heartbeat > ?", cutoff).
		Count(&n).Error
	return n, err
}

// ListUsers returns every user, newest first.
func ListUsers(ctx context.Context, db *gorm.DB) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).Order("created_at desc, id asc").Find(&out).Error
	return out, err
}

// SetUserNotifications updates the per-user notification toggle.
// Returns ErrNotFound when no row matched id.
func SetUserNotifications(ctx context.Context, db *gorm.DB, id string, enabled bool) error {
	return updateUserColumn(ctx, db, id, "notifications_enabled", enabled)
}

// SetChatActive flips the support-session flag.
// Returns ErrNotFound when no row matched id.
func SetChatActive(ctx context.Context, db *gorm.DB, id string, active bool) error {
	return updateUserColumn(ctx, db, id, "chat_active", active)
}

func updateUserColumn(ctx context.Context, db *gorm.DB, id, column string, value any) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Update(column, value)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
