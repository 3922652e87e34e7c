package domain

import "time"

// User is created lazily on first contact with the bot and never deleted.
type User struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	TelegramID       int64      `gorm:"uniqueIndex;not null" json:"telegram_id"`
	FirstName        string     `gorm:"size:128" json:"first_name,omitempty"`
	LastName         string     `gorm:"size:128" json:"last_name,omitempty"`
	Username         string     `gorm:"size:128" json:"username,omitempty"`
	AvailableCredits int        `gorm:"not null;default:0" json:"available_credits"`
	FreeCreditsAt    *time.Time `json:"free_credits_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
