// Package services – SettingsService
//
// SettingsService manages the generic key/value settings table and the
// per-user notification toggle. Settings changes are content writes: store
// failures surface as *DataAccessError.
package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/repo"
)

var settingKeyRe = regexp.MustCompile(`^[a-z0-9_.-]{1,64}$`)

const maxSettingValueLen = 4096

// SettingsService reads and writes settings rows.
type SettingsService struct {
	DB *gorm.DB
}

// Get returns the value stored under key. ok is false when unset.
func (s *SettingsService) Get(ctx context.Context, key string) (value string, ok bool, err error) {
	key, err = normalizeKey(key)
	if err != nil {
		return "", false, err
	}
	row, err := repo.GetSetting(ctx, s.DB, key)
	if errors.Is(err, repo.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, dataAccess("get setting", err)
	}
	return row.Value, true, nil
}

// Set upserts value under key.
func (s *SettingsService) Set(ctx context.Context, key, value string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if len(value) > maxSettingValueLen {
		return invalid("value", "too long")
	}
	return dataAccess("upsert setting", repo.UpsertSetting(ctx, s.DB, key, value))
}

// Delete removes key. Deleting an unset key succeeds.
func (s *SettingsService) Delete(ctx context.Context, key string) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	return dataAccess("delete setting", repo.DeleteSetting(ctx, s.DB, key))
}

// NotificationsEnabled reports the global notification flag. It is true unless
// explicitly stored as a false-y value.
func (s *SettingsService) NotificationsEnabled(ctx context.Context) (bool, error) {
	v, ok, err := s.Get(ctx, domain.SettingNotificationsEnabled)
	if err != nil || !ok {
		return true, err
	}
	b, perr := strconv.ParseBool(strings.TrimSpace(v))
	if perr != nil {
		return true, nil
	}
	return b, nil
}

// SetNotificationsEnabled stores the global notification flag.
func (s *SettingsService) SetNotificationsEnabled(ctx context.Context, enabled bool) error {
	return s.Set(ctx, domain.SettingNotificationsEnabled, strconv.FormatBool(enabled))
}

// SetUserNotifications updates a single user's notification toggle.
func (s *SettingsService) SetUserNotifications(ctx context.Context, userID string, enabled bool) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return invalid("user_id", "required")
	}
	err := repo.SetUserNotifications(ctx, s.DB, userID, enabled)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrUserNotFound
	}
	return dataAccess("set user notifications", err)
}

// SettingsOverride reads the manual online-count override from the settings
// table. It satisfies OverrideSource.
type SettingsOverride struct {
	Settings *SettingsService
}

// ManualOnlineCount implements OverrideSource.
func (o SettingsOverride) ManualOnlineCount(ctx context.Context) (string, bool, error) {
	return o.Settings.Get(ctx, domain.SettingManualOnlineCount)
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if !settingKeyRe.MatchString(key) {
		return "", invalid("key", "must match [a-z0-9_.-]{1,64}")
	}
	return key, nil
}
