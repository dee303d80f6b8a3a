package domain

import "time"

// Idempotency maps a client-supplied Idempotency-Key to the message a send
// produced. Uniqueness is per (user_id, scope, key); scope is the channel
// plus its target, so a client may reuse a key in another conversation.
type Idempotency struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:varchar(64);not null;uniqueIndex:ux_user_scope_key,priority:1"`
	Scope     string    `gorm:"type:varchar(96);not null;uniqueIndex:ux_user_scope_key,priority:2"`
	Key       string    `gorm:"type:varchar(128);not null;uniqueIndex:ux_user_scope_key,priority:3"`
	MessageID string    `gorm:"type:char(36);not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"not null;index"`
}

func (Idempotency) TableName() string { return "idempotency" }

// Live reports whether the record can still be replayed at now.
func (r Idempotency) Live(now time.Time) bool { return now.Before(r.ExpiresAt) }
