package model

import "time"

// User owns tasks and commit records. Authentication flows live elsewhere;
// this record exists for ownership scoping and reminder routing.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	Name         string `json:"name"`
	// Optional Telegram chat that schedule reminders are delivered to.
	TelegramChatID int64     `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
