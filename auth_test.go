package main

import (
	"errors"
	"testing"

	"recipehub/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	valid := []string{"Passw0rd!", "Choco&Cake1", "A1@aaaaa"}
	for _, p := range valid {
		assert.NoError(t, validatePassword(p), "password %q", p)
	}

	invalid := []string{
		"short1!",    // too short
		"password1!", // no uppercase
		"Password!!", // no digit
		"Password11", // no special char
		"",
	}
	for _, p := range invalid {
		assert.Error(t, validatePassword(p), "password %q", p)
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := hashPassword("Passw0rd!")
	require.NoError(t, err)
	assert.True(t, checkPassword(hash, "Passw0rd!"))
	assert.False(t, checkPassword(hash, "passw0rd!"))
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.True(t, isUniqueConstraintError(errors.New(`pq: duplicate key value violates unique constraint "idx_users_username_lower"`)))
	assert.True(t, isUniqueConstraintError(errors.New("ERROR: relation already exists")))
	assert.False(t, isUniqueConstraintError(errors.New("connection refused")))
	assert.False(t, isUniqueConstraintError(nil))
}

func TestIsSelfOrAdmin(t *testing.T) {
	plain := &models.User{ID: 3, Permissions: []string{"user"}}
	admin := &models.User{ID: 9, Permissions: []string{"admin", "chef", "user"}}

	assert.True(t, isSelfOrAdmin(plain, 3))
	assert.False(t, isSelfOrAdmin(plain, 4))
	assert.True(t, isSelfOrAdmin(admin, 4))
}

func TestPrimaryRoleDefaultsToUser(t *testing.T) {
	assert.Equal(t, "user", (&models.User{}).PrimaryRole())
	assert.Equal(t, "chef", (&models.User{Permissions: []string{"chef", "user"}}).PrimaryRole())
}
