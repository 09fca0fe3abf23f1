package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"recipehub/pkg/images"

	"github.com/gin-gonic/gin"
)

// formList reads an array-valued multipart field. Both repeated keys and a
// single JSON-encoded array are accepted, since frontends send either.
func formList(c *gin.Context, key string) []string {
	values := c.PostFormArray(key)
	if len(values) == 1 && strings.HasPrefix(strings.TrimSpace(values[0]), "[") {
		var parsed []string
		if err := json.Unmarshal([]byte(values[0]), &parsed); err == nil {
			values = parsed
		}
	}
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func recipeInputFromForm(c *gin.Context) RecipeInput {
	return RecipeInput{
		Title:            strings.TrimSpace(c.PostForm("title")),
		Description:      strings.TrimSpace(c.PostForm("description")),
		Category:         strings.TrimSpace(c.PostForm("categories")),
		Ingredients:      formList(c, "ingredients"),
		PreparationSteps: formList(c, "preparation_steps"),
		SourceURL:        strings.TrimSpace(c.PostForm("source_url")),
	}
}

// formImage extracts and normalizes the uploaded image, when present.
func (a *app) formImage(c *gin.Context) (*ImageUpload, error) {
	header, err := c.FormFile("image")
	if err != nil {
		return nil, nil // no image in the request
	}
	f, err := header.Open()
	if err != nil {
		return nil, &ValidationError{Message: "could not read uploaded image"}
	}
	defer f.Close()

	normalized, err := images.Normalize(f)
	if err != nil {
		if errors.Is(err, images.ErrNotImage) {
			return nil, &ValidationError{Message: "Uploaded file is not a supported image"}
		}
		return nil, err
	}
	return &ImageUpload{
		Reader:      normalized.Reader(),
		Size:        normalized.Size(),
		ContentType: normalized.ContentType,
	}, nil
}

func (a *app) searchRecipesHandler(c *gin.Context) {
	recipes, err := a.rec.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (a *app) listRecipesHandler(c *gin.Context) {
	recipes, err := a.rec.List(c.Request.Context(), c.Query("user"), c.Query("cat"))
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

func (a *app) getRecipeHandler(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	rec, err := a.rec.Get(c.Request.Context(), id)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (a *app) createRecipeHandler(c *gin.Context) {
	img, err := a.formImage(c)
	if err != nil {
		a.respondError(c, err)
		return
	}
	rec, err := a.rec.Create(c.Request.Context(), currentUser(c), recipeInputFromForm(c), img)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (a *app) updateRecipeHandler(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	img, err := a.formImage(c)
	if err != nil {
		a.respondError(c, err)
		return
	}
	rec, err := a.rec.Update(c.Request.Context(), currentUser(c), id, recipeInputFromForm(c), img)
	if err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (a *app) deleteRecipeHandler(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		a.respondError(c, err)
		return
	}
	if err := a.rec.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		a.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted"})
}
