package main

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"recipehub/models"

	"recipehub/pkg/permissions"
	"recipehub/pkg/tokens"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	refreshCookie = "refreshToken"
	ctxUserKey    = "currentUser"
	bearerPrefix  = "Bearer "
)

// setRefreshCookie installs the refresh token as a secure cross-site cookie.
func (a *app) setRefreshCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookie, token, int(ttl.Seconds()), "/", "", true, true)
}

func (a *app) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(refreshCookie, "", -1, "/", "", true, true)
}

// invalidateRefresh deletes the stored refresh token and clears the cookie.
// Called on any refresh verification failure so a permanently-dead token
// cannot cause retry storms; the client must re-authenticate.
func (a *app) invalidateRefresh(c *gin.Context, userID uint) {
	if userID != 0 {
		if err := a.db.WithContext(c.Request.Context()).
			Where("user_id = ?", userID).
			Delete(&models.Token{}).Error; err != nil {
			a.log.Warn("failed to delete refresh token record", "userId", userID, "error", err)
		}
	}
	a.clearRefreshCookie(c)
}

// authToken authenticates a request from its refresh cookie plus access
// token header. The refresh token is verified cryptographically and then
// compared against the stored authority copy; a mismatch means it was
// superseded by a later login. The access token is checked statelessly.
func (a *app) authToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		presented, err := c.Cookie(refreshCookie)
		if err != nil || presented == "" {
			a.respondError(c, &AuthenticationError{Message: "Refresh token expired or not provided"})
			return
		}

		claims, err := a.tokens.VerifyRefresh(presented)
		if err != nil {
			// An expired refresh token carries signature-verified claims, so
			// the dead stored record can be removed for that user. A forged
			// token identifies nobody; only the cookie is cleared.
			if errors.Is(err, tokens.ErrExpired) && claims != nil {
				a.invalidateRefresh(c, claims.UserID)
			} else {
				a.clearRefreshCookie(c)
			}
			a.respondError(c, &AuthenticationError{Message: "Invalid token"})
			return
		}

		ctx := c.Request.Context()
		var user models.User
		if err := a.db.WithContext(ctx).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				a.respondError(c, &AuthenticationError{Message: "User not found"})
			} else {
				a.respondError(c, err)
			}
			return
		}

		// The stored record is the authority copy: at most one refresh token
		// is live per user, so a mismatch or absent row means this token was
		// superseded.
		var rt models.Token
		err = a.db.WithContext(ctx).Where("user_id = ?", user.ID).First(&rt).Error
		if err != nil || rt.RefreshToken != presented || time.Now().After(rt.ExpiresAt) {
			a.invalidateRefresh(c, user.ID)
			a.respondError(c, &AuthenticationError{Message: "Invalid token"})
			return
		}

		access := bearerToken(c)
		if access == "" {
			a.respondError(c, &AuthenticationError{Message: "Access denied"})
			return
		}
		accessClaims, err := a.tokens.VerifyAccess(access)
		if err != nil {
			switch {
			case errors.Is(err, tokens.ErrExpired):
				// An expired access token is still an authenticated caller
				// for the refresh endpoint itself; everywhere else it is
				// rejected by requireFreshAccess below. Its claims are
				// signature-verified and must still name this user.
				if accessClaims == nil || accessClaims.UserID != user.ID {
					a.respondError(c, &AuthenticationError{Message: "Invalid token"})
					return
				}
				c.Set("accessExpired", true)
			default:
				a.respondError(c, &AuthenticationError{Message: "Invalid token"})
				return
			}
		} else if accessClaims.UserID != user.ID {
			a.respondError(c, &AuthenticationError{Message: "Invalid token"})
			return
		}

		c.Set(ctxUserKey, &user)
		c.Next()
	}
}

// requireFreshAccess rejects requests whose access token is expired. The
// token refresh route is the only protected route that tolerates an expired
// access token (that is what it is for).
func (a *app) requireFreshAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool("accessExpired") {
			a.respondError(c, &AuthenticationError{Message: "Access token expired"})
			return
		}
		c.Next()
	}
}

// requirePermission gates a route on the role table: the authenticated
// user's primary role must grant the required capability. Ownership of
// specific resources is checked separately by handlers.
func (a *app) requirePermission(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			a.respondError(c, &AuthenticationError{Message: "Invalid token"})
			return
		}
		if !permissions.Allowed(user.PrimaryRole(), required) {
			a.respondError(c, &AuthorizationError{Message: "Unauthorized"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, bearerPrefix) {
		return ""
	}
	return strings.TrimSpace(h[len(bearerPrefix):])
}
