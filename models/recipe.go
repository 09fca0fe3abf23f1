package models

import (
	"time"

	"gorm.io/datatypes"
)

// Recipe is a published recipe document. Username is a denormalized copy of
// the owner's username taken at creation time; ownership checks always use
// the numeric UserID foreign key.
type Recipe struct {
	ID               uint                        `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time                   `json:"createdAt"`
	UpdatedAt        time.Time                   `json:"updatedAt"`
	Title            string                      `gorm:"size:255;not null" json:"title"`
	Description      string                      `gorm:"type:text;not null" json:"description"`
	Category         string                      `gorm:"size:128;not null;index" json:"categories"`
	Ingredients      datatypes.JSONSlice[string] `json:"ingredients"`
	PreparationSteps datatypes.JSONSlice[string] `json:"preparation_steps"`
	SourceURL        string                      `gorm:"size:512" json:"source_url,omitempty"`
	ImageKey         string                      `gorm:"size:512" json:"-"`
	ImageURL         string                      `gorm:"size:512" json:"image_url"`
	UserID           uint                        `gorm:"index;not null" json:"userId"`
	Username         string                      `gorm:"size:255;not null;index" json:"username"`
}
