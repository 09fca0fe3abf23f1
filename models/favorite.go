package models

import "time"

// Favorite links a user to a recipe they bookmarked. The composite unique
// index makes the insert itself the duplicate check: a second add for the
// same pair fails with a unique-constraint error.
type Favorite struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_recipe"`
	RecipeID  uint `gorm:"not null;uniqueIndex:idx_user_recipe"`
}
