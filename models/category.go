package models

import "time"

// Category is an independent browsing tag. Recipes reference a category by
// name only; existence is not enforced at recipe write time.
type Category struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Name      string    `gorm:"size:128;uniqueIndex;not null" json:"category_name"`
	ImageURL  string    `gorm:"size:512;not null" json:"category_image"`
}
