package models

import (
	"time"

	"gorm.io/datatypes"
)

// DefaultProfilePic is assigned to newly registered users until they upload
// their own picture.
const DefaultProfilePic = "https://e7.pngegg.com/pngimages/84/165/png-clipart-united-states-avatar-organization-information-user-avatar-service-computer-wallpaper-thumbnail.png"

// User represents an account holder. Permissions is an ordered list of role
// names; the first entry is the user's primary role ("user" by default).
// Username and email uniqueness is case-insensitive, enforced by functional
// unique indexes created during migration (see db.go).
type User struct {
	ID          uint                        `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
	Username    string                      `gorm:"size:255;not null" json:"username"`
	Email       string                      `gorm:"size:255;not null" json:"email"`
	Password    []byte                      `gorm:"not null" json:"-"`
	Permissions datatypes.JSONSlice[string] `gorm:"not null" json:"permissions"`
	Verified    bool                        `gorm:"default:false;not null" json:"verified"`
	Blocked     bool                        `gorm:"default:false;not null" json:"blocked"`
	ProfilePic  string                      `gorm:"size:512" json:"profilePic"`

	// Confirmation and reset tokens are opaque one-shot values; an expired
	// unverified account must be reissued a token before verification can
	// succeed.
	ConfirmationToken     string     `gorm:"size:64;index" json:"-"`
	ConfirmationExpiresAt *time.Time `json:"-"`
	ResetToken            string     `gorm:"size:64;index" json:"-"`
	ResetExpiresAt        *time.Time `json:"-"`

	// Favorites is populated by handlers from the favorites table; it is not
	// a column.
	Favorites []uint `gorm:"-" json:"favorites"`
}

// PrimaryRole returns the first permission entry, falling back to "user".
func (u *User) PrimaryRole() string {
	if len(u.Permissions) == 0 {
		return "user"
	}
	return u.Permissions[0]
}
