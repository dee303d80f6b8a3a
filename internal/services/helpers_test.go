package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/ghostgear-presence/internal/domain"
	"github.com/tbourn/ghostgear-presence/internal/repo"
)

// ---------- test helpers ----------

// newSvcDB opens a private in-memory database with the full schema.
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newBareDB(t)
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newBareDB opens an in-memory database with no tables, so every statement fails.
func newBareDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	if _, err := repo.UpsertUser(context.Background(), db, id, id); err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func seedMaster(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	seedUser(t, db, id)
	if err := db.Model(&domain.User{}).Where("id = ?", id).Update("is_master", true).Error; err != nil {
		t.Fatalf("promote %s: %v", id, err)
	}
}

// fixedClock returns a Clock pinned to *at; moving *at moves the clock.
func fixedClock(at *time.Time) Clock {
	return func() time.Time { return *at }
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
