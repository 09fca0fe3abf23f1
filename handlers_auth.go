package main

import (
	"net/http"
	"strings"
	"time"

	"recipehub/models"
	"recipehub/pkg/tokens"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	confirmationTTL = 24 * time.Hour
	resetTTL        = time.Hour
)

func (a *app) registerHandler(c *gin.Context) {
	var req struct {
		Username        string `json:"username"`
		Email           string `json:"email"`
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, &ValidationError{Message: "invalid request body"})
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	var missing []string
	if req.Username == "" {
		missing = append(missing, "username")
	}
	if req.Email == "" {
		missing = append(missing, "email")
	}
	if req.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		a.respondError(c, errMissingFields(missing...))
		return
	}

	ctx := c.Request.Context()
	taken, err := a.userExists(ctx, req.Username, req.Email)
	if err != nil {
		a.respondError(c, err)
		return
	}
	if taken {
		a.respondError(c, &ConflictError{Message: "Username or email already exists"})
		return
	}
	if req.Password != req.ConfirmPassword {
		a.respondError(c, &ValidationError{Message: "Passwords do not match"})
		return
	}
	if err := validatePassword(req.Password); err != nil {
		a.respondError(c, err)
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}
	token := uuid.NewString()
	expires := time.Now().Add(confirmationTTL)
	user := models.User{
		Username:              req.Username,
		Email:                 req.Email,
		Password:              hash,
		Permissions:           []string{"user"},
		ProfilePic:            models.DefaultProfilePic,
		ConfirmationToken:     token,
		ConfirmationExpiresAt: &expires,
	}
	if err := a.db.WithContext(ctx).Create(&user).Error; err != nil {
		if isUniqueConstraintError(err) { // race after the optimistic check
			a.respondError(c, &ConflictError{Message: "Username or email already exists"})
			return
		}
		a.respondError(c, err)
		return
	}

	link := a.cfg.PublicBaseURL + "/authentication/verify/" + token
	if err := a.mail.SendConfirmation(user.Email, user.Username, link); err != nil {
		// The account exists; the resend endpoint recovers once mail is back.
		a.respondError(c, &DependencyError{Message: "Could not send confirmation email", Err: err})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":           "Registration successful, please check your email to confirm your account",
		"confirmationToken": token,
	})
}

func (a *app) verifyHandler(c *gin.Context) {
	token := c.Param("token")

	var user models.User
	err := a.db.WithContext(c.Request.Context()).
		Where("confirmation_token = ?", token).
		First(&user).Error
	if err != nil {
		a.respondError(c, &NotFoundError{Resource: "Confirmation token"})
		return
	}
	if user.ConfirmationExpiresAt == nil || time.Now().After(*user.ConfirmationExpiresAt) {
		a.respondError(c, &ValidationError{Message: "Confirmation link expired, please request a new one"})
		return
	}

	updates := map[string]interface{}{
		"verified":                true,
		"confirmation_token":      "",
		"confirmation_expires_at": nil,
	}
	if err := a.db.WithContext(c.Request.Context()).Model(&user).Updates(updates).Error; err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account verified successfully"})
}

func (a *app) resendConfirmationHandler(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		a.respondError(c, errMissingFields("email"))
		return
	}

	ctx := c.Request.Context()
	user, err := a.findUserByEmail(ctx, req.Email)
	if err != nil {
		a.respondError(c, &NotFoundError{Resource: "User"})
		return
	}
	if user.Verified {
		a.respondError(c, &ConflictError{Message: "Account already verified"})
		return
	}

	token := uuid.NewString()
	expires := time.Now().Add(confirmationTTL)
	updates := map[string]interface{}{
		"confirmation_token":      token,
		"confirmation_expires_at": expires,
	}
	if err := a.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		a.respondError(c, err)
		return
	}

	link := a.cfg.PublicBaseURL + "/authentication/verify/" + token
	if err := a.mail.SendConfirmation(user.Email, user.Username, link); err != nil {
		a.respondError(c, &DependencyError{Message: "Could not send confirmation email", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Confirmation email sent"})
}

func (a *app) loginHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		a.respondError(c, &ValidationError{Message: "Please provide both username and password"})
		return
	}

	ctx := c.Request.Context()
	user, err := a.findUserByUsername(ctx, req.Username)
	if err != nil || !checkPassword(user.Password, req.Password) {
		a.respondError(c, &AuthenticationError{Message: "Wrong credentials!"})
		return
	}
	if !user.Verified {
		a.respondError(c, &AuthenticationError{Message: "Account not verified, please check your email"})
		return
	}
	if user.Blocked {
		a.respondError(c, &AuthorizationError{Message: "Account is blocked"})
		return
	}

	favorites, err := a.favoriteIDs(ctx, user.ID)
	if err != nil {
		a.respondError(c, err)
		return
	}
	access, refresh, err := a.tokens.Issue(tokens.Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Favorites: favorites,
	})
	if err != nil {
		a.respondError(c, err)
		return
	}

	// One live refresh token per user: the upsert overwrites any prior
	// record, invalidating earlier sessions.
	rt := models.Token{
		UserID:       user.ID,
		RefreshToken: refresh,
		ExpiresAt:    time.Now().Add(a.tokens.RefreshTTL()),
	}
	err = a.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"refresh_token", "expires_at", "updated_at"}),
	}).Create(&rt).Error
	if err != nil {
		a.respondError(c, err)
		return
	}

	a.setRefreshCookie(c, refresh, a.tokens.RefreshTTL())
	c.JSON(http.StatusOK, gin.H{
		"message":     "Login successful",
		"accessToken": access,
		"expiresIn":   int(a.tokens.AccessTTL().Seconds()),
		"id":          user.ID,
		"username":    user.Username,
		"email":       user.Email,
		"favorites":   favorites,
		"profilePic":  user.ProfilePic,
		"permissions": user.Permissions,
	})
}

func (a *app) requestPasswordResetHandler(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Email) == "" {
		a.respondError(c, errMissingFields("email"))
		return
	}

	ctx := c.Request.Context()
	user, err := a.findUserByEmail(ctx, req.Email)
	if err != nil {
		a.respondError(c, &NotFoundError{Resource: "User"})
		return
	}

	token := uuid.NewString()
	expires := time.Now().Add(resetTTL)
	updates := map[string]interface{}{
		"reset_token":      token,
		"reset_expires_at": expires,
	}
	if err := a.db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		a.respondError(c, err)
		return
	}

	link := a.cfg.PublicBaseURL + "/authentication/resetpassword/" + token
	if err := a.mail.SendPasswordReset(user.Email, user.Username, link); err != nil {
		a.respondError(c, &DependencyError{Message: "Could not send reset email", Err: err})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset email sent"})
}

func (a *app) resetPasswordHandler(c *gin.Context) {
	token := c.Param("token")
	var req struct {
		Password        string `json:"password"`
		ConfirmPassword string `json:"confirmPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Password == "" {
		a.respondError(c, errMissingFields("password"))
		return
	}
	if req.Password != req.ConfirmPassword {
		a.respondError(c, &ValidationError{Message: "Passwords do not match"})
		return
	}
	if err := validatePassword(req.Password); err != nil {
		a.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	var user models.User
	err := a.db.WithContext(ctx).Where("reset_token = ?", token).First(&user).Error
	if err != nil {
		a.respondError(c, &ValidationError{Message: "Reset link invalid or expired"})
		return
	}
	if user.ResetExpiresAt == nil || time.Now().After(*user.ResetExpiresAt) {
		a.respondError(c, &ValidationError{Message: "Reset link invalid or expired"})
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		a.respondError(c, err)
		return
	}
	updates := map[string]interface{}{
		"password":         hash,
		"reset_token":      "",
		"reset_expires_at": nil,
	}
	err = a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}
		// Invalidate the live session; a changed password forces re-login.
		return tx.Where("user_id = ?", user.ID).Delete(&models.Token{}).Error
	})
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}
