// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (ETag generation) on thread listings.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/domain"
)

// SupportThreadStats returns the number of messages in ownerID's support
// thread, how many of them are read, and the newest CreatedAt (nil when the
// thread is empty). The read count is part of the result so that a MarkRead
// invalidates cached listings.
func SupportThreadStats(ctx context.Context, db *gorm.DB, ownerID string) (count, read int64, newest *time.Time, err error) {
	q := func() *gorm.DB {
		return db.WithContext(ctx).
			Model(&domain.Message{}).
			Where("channel = ? AND owner_id = ?", string(domain.ChannelSupport), ownerID)
	}

	if err = q().Count(&count).Error; err != nil {
		return 0, 0, nil, err
	}
	if count == 0 {
		return 0, 0, nil, nil
	}
	if err = q().Where("is_read = ?", true).Count(&read).Error; err != nil {
		return 0, 0, nil, err
	}

	// Latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q().Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, nil, err
	}
	return count, read, &row.CreatedAt, nil
}
