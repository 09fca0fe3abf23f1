package models

import "time"

// Token holds the single live refresh token for a user. Logins and refreshes
// overwrite the row (upsert on user_id) rather than appending, so at most one
// refresh token is valid per user at any time.
type Token struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint      `gorm:"uniqueIndex;not null"`
	RefreshToken string    `gorm:"size:1024;not null"`
	ExpiresAt    time.Time `gorm:"index;not null"`
}
