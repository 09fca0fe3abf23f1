package main

import (
	"net/http"
	"strings"

	"recipehub/models"

	"github.com/gin-gonic/gin"
)

func (a *app) listCategoriesHandler(c *gin.Context) {
	var cats []models.Category
	if err := a.db.WithContext(c.Request.Context()).Order("name").Find(&cats).Error; err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cats)
}

func (a *app) createCategoryHandler(c *gin.Context) {
	var req struct {
		Name     string `json:"category_name"`
		ImageURL string `json:"category_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		a.respondError(c, &ValidationError{Message: "invalid request body"})
		return
	}
	var missing []string
	if strings.TrimSpace(req.Name) == "" {
		missing = append(missing, "category_name")
	}
	if strings.TrimSpace(req.ImageURL) == "" {
		missing = append(missing, "category_image")
	}
	if len(missing) > 0 {
		a.respondError(c, errMissingFields(missing...))
		return
	}

	cat := models.Category{Name: strings.TrimSpace(req.Name), ImageURL: strings.TrimSpace(req.ImageURL)}
	if err := a.db.WithContext(c.Request.Context()).Create(&cat).Error; err != nil {
		if isUniqueConstraintError(err) {
			a.respondError(c, &ConflictError{Message: "Category already exists"})
			return
		}
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}
