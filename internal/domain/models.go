// Package domain defines the persistence models for users, messages, and
// settings. These types are mapped with GORM and form the core data layer
// of the presence and activity backend.
package domain

import (
	"time"
)

// User is a rider account as seen by the presence tracker. Presence itself is
// never stored: "online" is derived at read time from LastHeartbeat.
//
// Fields:
//   - ID: stable identifier issued by the identity provider.
//   - DisplayName: human-readable name shown in admin listings.
//   - LastHeartbeat: time of the most recent heartbeat (nil until the first one).
//   - UsageMinutes: cumulative heartbeat counter; only ever incremented.
//   - Latitude / Longitude: last reported position (nil when never reported).
//   - NotificationsEnabled: per-user push notification toggle.
//   - IsMaster: admin role flag.
//   - ChatActive: whether the support thread currently has an open session.
type User struct {
	ID                   string     `json:"id"                    gorm:"type:varchar(64);primaryKey"`
	DisplayName          string     `json:"display_name"          gorm:"type:varchar(255);not null;default:''"`
	LastHeartbeat        *time.Time `json:"last_heartbeat"        gorm:"index"`
	UsageMinutes         int64      `json:"usage_minutes"         gorm:"not null;default:0"`
	Latitude             *float64   `json:"latitude,omitempty"`
	Longitude            *float64   `json:"longitude,omitempty"`
	NotificationsEnabled bool       `json:"notifications_enabled" gorm:"not null;default:true"`
	IsMaster             bool       `json:"is_master"             gorm:"not null;default:false"`
	ChatActive           bool       `json:"chat_active"           gorm:"not null;default:false"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Message is a single message on one of the channels. OwnerID is the user
// whose inbox or thread the message belongs to: the receiver for private
// messages, the thread owner for support messages, and empty for community
// broadcasts.
//
// IsRead only ever transitions false -> true.
type Message struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey"`
	Channel    string    `json:"channel"     gorm:"type:varchar(16);not null;index:idx_msg_owner_unread,priority:2;check:channel IN ('private','support','community')"`
	OwnerID    string    `json:"owner_id"    gorm:"type:varchar(64);not null;default:'';index:idx_msg_owner_unread,priority:1"`
	SenderID   string    `json:"sender_id"   gorm:"type:varchar(64);not null;index"`
	SenderRole string    `json:"sender_role" gorm:"type:varchar(16);not null;check:sender_role IN ('user','expert')"`
	Content    string    `json:"content"     gorm:"type:text;not null"`
	IsRead     bool      `json:"is_read"     gorm:"not null;default:false;index:idx_msg_owner_unread,priority:3"`
	CreatedAt  time.Time `json:"created_at"  gorm:"index"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "messages" }

// Setting is a generic key/value override row. Writes are upserts by key.
type Setting struct {
	Key       string    `json:"key"        gorm:"type:varchar(64);primaryKey"`
	Value     string    `json:"value"      gorm:"type:text;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Setting.
func (Setting) TableName() string { return "settings" }
