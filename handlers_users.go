package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"recipehub/models"
	"recipehub/pkg/permissions"
	"recipehub/pkg/realtime"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func paramID(c *gin.Context, name string) (uint, error) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || v == 0 {
		return 0, &ValidationError{Message: "invalid " + name}
	}
	return uint(v), nil
}

// isSelfOrAdmin gates per-account routes: users act on their own account,
// admins on anyone's.
func isSelfOrAdmin(user *models.User, targetID uint) bool {
	if user.ID == targetID {
		return true
	}
	return permissions.Allowed(user.PrimaryRole(), permissions.RoleAdmin)
}

func (a *app) loadUser(c *gin.Context, id uint) (*models.User, bool) {
	var user models.User
	if err := a.db.WithContext(c.Request.Context()).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.respondError(c, &NotFoundError{Resource: "User"})
		} else {
			a.respondError(c, err)
		}
		return nil, false
	}
	return &user, true
}

func (a *app) getUserHandler(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	if !isSelfOrAdmin(currentUser(c), id) {
		a.respondError(c, &AuthorizationError{Message: "You do not have access to this account!"})
		return
	}
	user, ok := a.loadUser(c, id)
	if !ok {
		return
	}
	if user.Favorites, err = a.favoriteIDs(c.Request.Context(), user.ID); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *app) listUsersHandler(c *gin.Context) {
	ctx := c.Request.Context()
	var users []models.User
	if err := a.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		a.respondError(c, err)
		return
	}

	// One pass over the favorites table instead of a query per user.
	var favs []models.Favorite
	if err := a.db.WithContext(ctx).Order("recipe_id").Find(&favs).Error; err != nil {
		a.respondError(c, err)
		return
	}
	byUser := make(map[uint][]uint, len(users))
	for _, f := range favs {
		byUser[f.UserID] = append(byUser[f.UserID], f.RecipeID)
	}
	for i := range users {
		users[i].Favorites = byUser[users[i].ID]
		if users[i].Favorites == nil {
			users[i].Favorites = []uint{}
		}
	}
	c.JSON(http.StatusOK, users)
}

func (a *app) updateUserHandler(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	requester := currentUser(c)
	if !isSelfOrAdmin(requester, id) {
		a.respondError(c, &AuthorizationError{Message: "You do not have access to this account!"})
		return
	}
	user, ok := a.loadUser(c, id)
	if !ok {
		return
	}

	var req struct {
		Username   string `json:"username"`
		Email      string `json:"email"`
		ProfilePic string `json:"profilePic"`
		// Current password, required as re-authentication when present in
		// the request. The password itself is changed via the dedicated
		// password route.
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, &ValidationError{Message: "invalid request body"})
		return
	}
	if req.Password != "" && !checkPassword(user.Password, req.Password) {
		a.respondError(c, &AuthenticationError{Message: "Invalid password"})
		return
	}

	updates := map[string]interface{}{}
	if v := strings.TrimSpace(req.Username); v != "" && v != user.Username {
		updates["username"] = v
	}
	if v := strings.TrimSpace(req.Email); v != "" && v != user.Email {
		updates["email"] = v
	}
	if req.ProfilePic != "" {
		updates["profile_pic"] = req.ProfilePic
	}
	if len(updates) > 0 {
		if err := a.db.WithContext(c.Request.Context()).Model(user).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				a.respondError(c, &ConflictError{Message: "Username or email already exists"})
				return
			}
			a.respondError(c, err)
			return
		}
	}

	a.hub.Broadcast(realtime.Event{Event: realtime.EventUserUpdated, UserID: user.ID})
	if user.Favorites, err = a.favoriteIDs(c.Request.Context(), user.ID); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *app) updatePasswordHandler(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	requester := currentUser(c)
	if requester.ID != id {
		a.respondError(c, &AuthorizationError{Message: "You do not have access to this account!"})
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OldPassword == "" || req.NewPassword == "" {
		a.respondError(c, errMissingFields("oldPassword", "newPassword"))
		return
	}
	if !checkPassword(requester.Password, req.OldPassword) {
		a.respondError(c, &AuthenticationError{Message: "Invalid old password!"})
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		a.respondError(c, err)
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := a.db.WithContext(c.Request.Context()).Model(requester).Update("password", hash).Error; err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

func (a *app) blockUserHandler(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	user, ok := a.loadUser(c, id)
	if !ok {
		return
	}
	if err := a.db.WithContext(c.Request.Context()).Model(user).Update("blocked", true).Error; err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (a *app) deleteUserHandler(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	user, ok := a.loadUser(c, id)
	if !ok {
		return
	}

	// Cascade the token record and favorites so no dangling rows survive.
	err = a.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&models.Token{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		return tx.Delete(user).Error
	})
	if err != nil {
		a.respondError(c, err)
		return
	}

	a.hub.Broadcast(realtime.Event{Event: realtime.EventUserDeleted, UserID: id})
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// --- favorites ---

func (a *app) favoritesTarget(c *gin.Context) (userID, recipeID uint, ok bool) {
	userID, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return 0, 0, false
	}
	recipeID, err = paramID(c, "recipeId")
	if err != nil {
		a.respondError(c, err)
		return 0, 0, false
	}
	if !isSelfOrAdmin(currentUser(c), userID) {
		a.respondError(c, &AuthorizationError{Message: "You do not have access to this account!"})
		return 0, 0, false
	}
	return userID, recipeID, true
}

// addFavoriteHandler rejects duplicates distinctly: the unique index makes
// the insert itself the atomic membership check.
func (a *app) addFavoriteHandler(c *gin.Context) {
	userID, recipeID, ok := a.favoritesTarget(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	fav := models.Favorite{UserID: userID, RecipeID: recipeID}
	if err := a.db.WithContext(ctx).Create(&fav).Error; err != nil {
		if isUniqueConstraintError(err) {
			a.respondError(c, &ConflictError{Message: "Recipe already in favorites"})
			return
		}
		a.respondError(c, err)
		return
	}

	favorites, err := a.favoriteIDs(ctx, userID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe added to favorites", "favorites": favorites})
}

// removeFavoriteHandler is idempotent: removing an absent id already
// satisfies the post-condition.
func (a *app) removeFavoriteHandler(c *gin.Context) {
	userID, recipeID, ok := a.favoritesTarget(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	err := a.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&models.Favorite{}).Error
	if err != nil {
		a.respondError(c, err)
		return
	}

	favorites, err := a.favoriteIDs(ctx, userID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe removed from favorites", "favorites": favorites})
}

// listFavoritesHandler resolves favorite ids against the recipe collection;
// references to deleted recipes drop out of the join.
func (a *app) listFavoritesHandler(c *gin.Context) {
	userID, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	if !isSelfOrAdmin(currentUser(c), userID) {
		a.respondError(c, &AuthorizationError{Message: "You do not have access to this account!"})
		return
	}

	var recipes []models.Recipe
	err = a.db.WithContext(c.Request.Context()).
		Joins("JOIN favorites ON favorites.recipe_id = recipes.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at desc").
		Find(&recipes).Error
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}
