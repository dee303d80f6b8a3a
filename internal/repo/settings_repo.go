// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the key/value Setting store.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/ghostgear-presence/internal/domain"
)

// GetSetting returns the row for key, or ErrNotFound.
func GetSetting(ctx context.Context, db *gorm.DB, key string) (*domain.Setting, error) {
	var s domain.Setting
	err := db.WithContext(ctx).Where("key = ?", key).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertSetting writes value under key (INSERT ... ON CONFLICT(key) DO UPDATE).
func UpsertSetting(ctx context.Context, db *gorm.DB, key, value string) error {
	row := &domain.Setting{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(row).Error
}

// DeleteSetting removes key. Deleting a missing key is not an error.
func DeleteSetting(ctx context.Context, db *gorm.DB, key string) error {
	return db.WithContext(ctx).Where("key = ?", key).Delete(&domain.Setting{}).Error
}
