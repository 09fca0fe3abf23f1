package main

import (
	"github.com/gin-gonic/gin"

	"recipehub/pkg/permissions"
)

func (a *app) setupRoutes(r *gin.Engine) {
	r.GET("/ws", gin.WrapF(a.hub.Serve))

	auth := r.Group("/authentication")
	{
		auth.POST("/register", a.registerHandler)
		auth.GET("/verify/:token", a.verifyHandler)
		auth.POST("/resend-confirmation", a.resendConfirmationHandler)
		auth.POST("/login", a.loginHandler)
		auth.POST("/resetpassword", a.requestPasswordResetHandler)
		auth.POST("/resetpassword/:token", a.resetPasswordHandler)
	}

	token := r.Group("/token", a.authToken())
	{
		token.POST("/refresh-token", a.refreshTokenHandler)
	}

	users := r.Group("/users", a.authToken(), a.requireFreshAccess())
	{
		users.GET("", a.requirePermission(permissions.RoleAdmin), a.listUsersHandler)
		users.GET("/:id", a.requirePermission(permissions.RoleUser), a.getUserHandler)
		users.PUT("/:id", a.requirePermission(permissions.RoleUser), a.updateUserHandler)
		users.PUT("/:id/password", a.requirePermission(permissions.RoleUser), a.updatePasswordHandler)
		users.PATCH("/:id/block", a.requirePermission(permissions.RoleAdmin), a.blockUserHandler)
		users.DELETE("/:id", a.requirePermission(permissions.RoleAdmin), a.deleteUserHandler)

		users.GET("/:id/favorites", a.requirePermission(permissions.RoleUser), a.listFavoritesHandler)
		users.PUT("/:id/favorites/:recipeId", a.requirePermission(permissions.RoleUser), a.addFavoriteHandler)
		users.DELETE("/:id/favorites/:recipeId", a.requirePermission(permissions.RoleUser), a.removeFavoriteHandler)
	}

	recipes := r.Group("/recipes")
	{
		recipes.GET("", a.listRecipesHandler)
		recipes.GET("/search", a.searchRecipesHandler)
		recipes.GET("/:id", a.getRecipeHandler)

		writes := recipes.Group("", a.authToken(), a.requireFreshAccess(), a.requirePermission(permissions.RoleChef))
		{
			writes.POST("", a.createRecipeHandler)
			writes.PUT("/:id", a.updateRecipeHandler)
			writes.DELETE("/:id", a.deleteRecipeHandler)
		}
	}

	categories := r.Group("/categories")
	{
		categories.GET("", a.listCategoriesHandler)
		categories.POST("", a.authToken(), a.requireFreshAccess(), a.requirePermission(permissions.RoleAdmin), a.createCategoryHandler)
	}
}
