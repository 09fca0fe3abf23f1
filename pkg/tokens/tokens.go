// Package tokens issues and verifies the access/refresh token pair used by
// the authentication flow. Access tokens are short-lived and stateless:
// they are only ever validated cryptographically. Refresh tokens are
// long-lived; the caller persists the current one per user and must compare
// a presented refresh token against that authority copy after signature
// verification.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissing = errors.New("token not provided")
	ErrExpired = errors.New("token expired")
	ErrInvalid = errors.New("token invalid")
)

// Identity is the claim payload carried by both token kinds.
type Identity struct {
	UserID    uint
	Username  string
	Favorites []uint
}

// Claims is the JWT claim set for access and refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID    uint   `json:"userId"`
	Username  string `json:"username"`
	Favorites []uint `json:"favorites,omitempty"`
}

// Identity extracts the identity payload from parsed claims.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Username: c.Username, Favorites: c.Favorites}
}

// Config carries signing secrets and validity windows. Separate secrets for
// the two token kinds mean a leaked access secret cannot forge refresh
// tokens.
type Config struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	// RenewWithin is the renewal threshold: an access token with more
	// remaining lifetime than this is returned unchanged by Refresh.
	RenewWithin time.Duration
}

// Service signs and verifies token pairs with symmetric HMAC.
type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// AccessTTL returns the configured access token validity window.
func (s *Service) AccessTTL() time.Duration { return s.cfg.AccessTTL }

// RefreshTTL returns the configured refresh token validity window.
func (s *Service) RefreshTTL() time.Duration { return s.cfg.RefreshTTL }

// Issue mints a fresh access/refresh pair for the identity. The caller is
// responsible for persisting the refresh token as the user's authority copy,
// overwriting any prior record.
func (s *Service) Issue(id Identity) (access, refresh string, err error) {
	access, err = s.IssueAccess(id)
	if err != nil {
		return "", "", err
	}
	refresh, err = s.sign(id, []byte(s.cfg.RefreshSecret), s.cfg.RefreshTTL)
	if err != nil {
		return "", "", fmt.Errorf("sign refresh token: %w", err)
	}
	return access, refresh, nil
}

// IssueAccess mints only a new access token, used during refresh rotation.
func (s *Service) IssueAccess(id Identity) (string, error) {
	token, err := s.sign(id, []byte(s.cfg.AccessSecret), s.cfg.AccessTTL)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

func (s *Service) sign(id Identity, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    id.UserID,
		Username:  id.Username,
		Favorites: id.Favorites,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// VerifyAccess checks signature and expiry of an access token. It never
// consults a store and has no side effects. On ErrExpired the parsed
// claims are returned alongside the error.
func (s *Service) VerifyAccess(token string) (*Claims, error) {
	return verify(token, []byte(s.cfg.AccessSecret))
}

// VerifyRefresh checks signature and expiry of a refresh token. The caller
// must additionally confirm the presented string matches the stored refresh
// token for the user; a mismatch means the token was superseded by a later
// login. On ErrExpired the parsed claims are returned alongside the error.
func (s *Service) VerifyRefresh(token string) (*Claims, error) {
	return verify(token, []byte(s.cfg.RefreshSecret))
}

func verify(tokenString string, secret []byte) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrMissing
	}
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			// The signature was checked before the expiry claim, so the
			// claims are authentic; callers use them to identify whose
			// token lapsed.
			return claims, ErrExpired
		}
		return nil, ErrInvalid
	}
	if !token.Valid {
		return nil, ErrInvalid
	}
	return claims, nil
}

// Refresh implements transparent access-token rotation. The expiry claim of
// the presented access token is decoded without signature verification; if
// its remaining lifetime exceeds the renewal threshold the token is
// revalidated and returned unchanged, otherwise a new access token is minted
// for the identity taken from the already-verified refresh token.
func (s *Service) Refresh(access string, id Identity) (token string, expiresIn time.Duration, renewed bool, err error) {
	if access == "" {
		return "", 0, false, ErrMissing
	}
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, claims); err != nil {
		return "", 0, false, ErrInvalid
	}
	if claims.ExpiresAt == nil {
		return "", 0, false, ErrInvalid
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining > s.cfg.RenewWithin {
		// Still comfortably valid: verify for real and hand it back.
		if _, err := s.VerifyAccess(access); err != nil {
			return "", 0, false, err
		}
		return access, remaining, false, nil
	}
	fresh, err := s.IssueAccess(id)
	if err != nil {
		return "", 0, false, err
	}
	return fresh, s.cfg.AccessTTL, true, nil
}
