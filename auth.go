package main

import (
	"context"
	"regexp"
	"strings"

	"recipehub/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Password policy carried over from the original frontend contract: at least
// 8 characters, one uppercase letter, one digit, one special character.
var (
	passwordUpperRE   = regexp.MustCompile(`[A-Z]`)
	passwordDigitRE   = regexp.MustCompile(`\d`)
	passwordSpecialRE = regexp.MustCompile(`[@$!%*?&]`)
)

func validatePassword(password string) error {
	if len(password) < 8 ||
		!passwordUpperRE.MatchString(password) ||
		!passwordDigitRE.MatchString(password) ||
		!passwordSpecialRE.MatchString(password) {
		return &ValidationError{Message: "Password must contain at least 8 characters, 1 uppercase letter, 1 number, and 1 special character"}
	}
	return nil
}

func hashPassword(password string) ([]byte, error) {
	return bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
}

func checkPassword(hash []byte, password string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}

// findUserByUsername looks a user up case-insensitively; comparison folds
// case to match the store-layer uniqueness rule.
func (a *app) findUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).
		Where("lower(username) = lower(?)", strings.TrimSpace(username)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *app) findUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := a.db.WithContext(ctx).
		Where("lower(email) = lower(?)", strings.TrimSpace(email)).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// userExists reports whether a username or email is already taken,
// case-insensitively.
func (a *app) userExists(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := a.db.WithContext(ctx).Model(&models.User{}).
		Where("lower(username) = lower(?) OR lower(email) = lower(?)", username, email).
		Count(&count).Error
	return count > 0, err
}

// favoriteIDs loads the user's favorite recipe ids. The slice is never nil
// so an empty set serializes as [] rather than null.
func (a *app) favoriteIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids := []uint{}
	err := a.db.WithContext(ctx).Model(&models.Favorite{}).
		Where("user_id = ?", userID).
		Order("recipe_id").
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// isUniqueConstraintError detects duplicate-key failures so optimistic
// inserts can report conflicts after a racing write.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if err == gorm.ErrDuplicatedKey {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint") || strings.Contains(s, "already exists")
}
