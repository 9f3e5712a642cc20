package models

import "time"

// ActivityLog records user-facing events (login, profile_update, buy, ...)
// for the account activity feed. Entries are append-only and are removed
// together with their user.
type ActivityLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	ActivityType string    `gorm:"size:50;not null" json:"activity_type"`
	Details      string    `json:"details,omitempty"`
	CreatedAt    time.Time `json:"timestamp"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}
