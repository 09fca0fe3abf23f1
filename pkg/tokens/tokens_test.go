package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(accessTTL, renewWithin time.Duration) *Service {
	return NewService(Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     accessTTL,
		RefreshTTL:    6 * time.Hour,
		RenewWithin:   renewWithin,
	})
}

var testIdentity = Identity{UserID: 7, Username: "marta", Favorites: []uint{3, 12}}

func TestIssueAndVerify(t *testing.T) {
	svc := newTestService(5*time.Minute, 2*time.Minute)

	access, refresh, err := svc.Issue(testIdentity)
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	claims, err := svc.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, claims.Identity())

	rclaims, err := svc.VerifyRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, testIdentity.UserID, rclaims.UserID)
}

func TestVerifySecretsAreNotInterchangeable(t *testing.T) {
	svc := newTestService(5*time.Minute, 2*time.Minute)
	access, refresh, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = svc.VerifyRefresh(access)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyAccessExpired(t *testing.T) {
	svc := newTestService(-time.Second, 0)
	access, err := svc.IssueAccess(testIdentity)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrExpired)
}

func TestVerifyExpiredTokenSurfacesClaims(t *testing.T) {
	// Expiry is checked after the signature, so an expired token still
	// identifies its user; callers rely on this to clean up stored refresh
	// records for exactly that user.
	svc := NewService(Config{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     -time.Second,
		RefreshTTL:    -time.Second,
	})
	access, refresh, err := svc.Issue(testIdentity)
	require.NoError(t, err)

	claims, err := svc.VerifyAccess(access)
	assert.ErrorIs(t, err, ErrExpired)
	require.NotNil(t, claims)
	assert.Equal(t, testIdentity.UserID, claims.UserID)

	claims, err = svc.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrExpired)
	require.NotNil(t, claims)
	assert.Equal(t, testIdentity.UserID, claims.UserID)
}

func TestVerifyAccessMissingAndGarbage(t *testing.T) {
	svc := newTestService(5*time.Minute, 2*time.Minute)

	_, err := svc.VerifyAccess("")
	assert.ErrorIs(t, err, ErrMissing)

	_, err = svc.VerifyAccess("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestVerifyAccessTamperedSignature(t *testing.T) {
	svc := newTestService(5*time.Minute, 2*time.Minute)
	other := NewService(Config{AccessSecret: "other", RefreshSecret: "other", AccessTTL: 5 * time.Minute, RefreshTTL: time.Hour})

	forged, err := other.IssueAccess(testIdentity)
	require.NoError(t, err)

	_, err = svc.VerifyAccess(forged)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRefreshAboveThresholdReturnsSameToken(t *testing.T) {
	// Remaining lifetime (5m) is well above the threshold (2m): no rotation.
	svc := newTestService(5*time.Minute, 2*time.Minute)
	access, err := svc.IssueAccess(testIdentity)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		token, remaining, renewed, err := svc.Refresh(access, testIdentity)
		require.NoError(t, err)
		assert.False(t, renewed)
		assert.Equal(t, access, token)
		assert.Greater(t, remaining, 2*time.Minute)
	}
}

func TestRefreshUnderThresholdMintsNewToken(t *testing.T) {
	// Access TTL below the threshold: every refresh mints a fresh token with
	// a full validity window.
	svc := newTestService(time.Minute, 2*time.Minute)
	access, err := svc.IssueAccess(testIdentity)
	require.NoError(t, err)

	token, expiresIn, renewed, err := svc.Refresh(access, testIdentity)
	require.NoError(t, err)
	assert.True(t, renewed)
	assert.NotEqual(t, access, token)
	assert.Equal(t, time.Minute, expiresIn)

	claims, err := svc.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, testIdentity, claims.Identity())
}

func TestRefreshExpiredAccessMintsNewToken(t *testing.T) {
	svc := newTestService(5*time.Minute, 2*time.Minute)
	expired, err := newTestService(-time.Second, 0).IssueAccess(testIdentity)
	require.NoError(t, err)

	// An already-expired token is under any threshold; a new one is minted
	// from the refresh identity without touching the dead token.
	_, _, renewed, err := svc.Refresh(expired, testIdentity)
	require.NoError(t, err)
	assert.True(t, renewed)
}

func TestRefreshAboveThresholdButForgedFails(t *testing.T) {
	svc := newTestService(5*time.Minute, 2*time.Minute)
	forged, err := NewService(Config{AccessSecret: "other", AccessTTL: 5 * time.Minute}).IssueAccess(testIdentity)
	require.NoError(t, err)

	// Long remaining lifetime means the token is revalidated, which catches
	// the bad signature.
	_, _, _, err = svc.Refresh(forged, testIdentity)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestRefreshMissingAccess(t *testing.T) {
	svc := newTestService(5*time.Minute, 2*time.Minute)
	_, _, _, err := svc.Refresh("", testIdentity)
	assert.ErrorIs(t, err, ErrMissing)
}
