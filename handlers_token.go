package main

import (
	"errors"
	"net/http"

	"recipehub/pkg/tokens"

	"github.com/gin-gonic/gin"
)

// refreshTokenHandler rotates the access token. The heavy lifting — the
// renewal-threshold decision and minting — lives in the token service; this
// handler only assembles the identity claim from the authenticated user and
// shapes the response the frontend expects.
func (a *app) refreshTokenHandler(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		a.respondError(c, &AuthenticationError{Message: "Invalid token"})
		return
	}

	favorites, err := a.favoriteIDs(c.Request.Context(), user.ID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	identity := tokens.Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Favorites: favorites,
	}

	access, expiresIn, renewed, err := a.tokens.Refresh(bearerToken(c), identity)
	if err != nil {
		switch {
		case errors.Is(err, tokens.ErrMissing):
			a.respondError(c, &AuthenticationError{Message: "Access token not provided"})
		default:
			a.respondError(c, &AuthenticationError{Message: "Invalid Token"})
		}
		return
	}
	if renewed {
		a.log.Debug("access token renewed", "userId", user.ID)
	}

	c.JSON(http.StatusOK, gin.H{
		"accessToken": access,
		"expiresIn":   int(expiresIn.Seconds()),
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"favorites":   favorites,
		"profilePic":  user.ProfilePic,
		"permissions": user.Permissions,
	})
}
