// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message
// model: inserts, unread counting, bulk read-marking, thread listings, and
// retention deletes.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/ghostgear-presence/internal/domain"
)

// UnreadFilter narrows an unread count. OwnerID and Channel are required;
// the remaining fields are optional (zero value means "any").
type UnreadFilter struct {
	OwnerID    string
	Channel    domain.Channel
	SenderID   string
	SenderRole string
	Since      *time.Time
}

// CreateMessage inserts m. An empty ID is filled with a UUID and a zero
// CreatedAt with the current UTC time.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(m).Error
}

// GetMessage loads a message by id or returns ErrNotFound.
func GetMessage(ctx context.Context, db *gorm.DB, id string) (*domain.Message, error) {
	var m domain.Message
	if err := db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// CountUnread counts unread messages matching f.
func CountUnread(ctx context.Context, db *gorm.DB, f UnreadFilter) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("owner_id = ? AND channel = ? AND is_read = ?", f.OwnerID, string(f.Channel), false)
	if f.SenderID != "" {
		q = q.Where("sender_id = ?", f.SenderID)
	}
	if f.SenderRole != "" {
		q = q.Where("sender_role = ?", f.SenderRole)
	}
	if f.Since != nil {
		q = q.Where("created_at > ?", *f.Since)
	}
	var n int64
	err := q.Count(&n).Error
	return n, err
}

// MarkRead flips every unread message in ownerID's inbox matching scope to
// read in a single UPDATE and returns the number of rows changed. Re-running
// it is a no-op.
func MarkRead(ctx context.Context, db *gorm.DB, ownerID string, scope domain.ReadScope) (int64, error) {
	q := db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("owner_id = ? AND channel = ? AND is_read = ?", ownerID, string(scope.Channel), false)
	if scope.SenderID != "" {
		q = q.Where("sender_id = ?", scope.SenderID)
	}
	if scope.SenderRole != "" {
		q = q.Where("sender_role = ?", scope.SenderRole)
	}
	res := q.Update("is_read", true)
	return res.RowsAffected, res.Error
}

// ListConversation returns private messages exchanged between a and b after
// since, oldest first.
func ListConversation(ctx context.Context, db *gorm.DB, a, b string, since time.Time) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("channel = ?", string(domain.ChannelPrivate)).
		Where("(sender_id = ? AND owner_id = ?) OR (sender_id = ? AND owner_id = ?)", a, b, b, a).
		Where("created_at > ?", since).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListSupportThread returns the support thread owned by ownerID, oldest first.
func ListSupportThread(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Message, error) {
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("channel = ? AND owner_id = ?", string(domain.ChannelSupport), ownerID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// ListCommunity returns the latest limit community messages, oldest first.
func ListCommunity(ctx context.Context, db *gorm.DB, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []domain.Message
	err := db.WithContext(ctx).
		Where("channel = ?", string(domain.ChannelCommunity)).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DeletePrivateBefore removes private messages created at or before cutoff
// and returns how many rows were deleted.
func DeletePrivateBefore(ctx context.Context, db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.WithContext(ctx).
		Where("channel = ? AND created_at <= ?", string(domain.ChannelPrivate), cutoff).
		Delete(&domain.Message{})
	return res.RowsAffected, res.Error
}
