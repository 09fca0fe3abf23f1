package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"recipehub/models"
	"recipehub/pkg/permissions"

	"github.com/google/uuid"
)

// RecipeStore is the persistence surface the coordinator mutates.
type RecipeStore interface {
	Get(ctx context.Context, id uint) (*models.Recipe, error)
	Create(ctx context.Context, r *models.Recipe) error
	Save(ctx context.Context, r *models.Recipe) error
	Delete(ctx context.Context, id uint) error
	Search(ctx context.Context, q string, limit int) ([]models.Recipe, error)
	List(ctx context.Context, username, category string) ([]models.Recipe, error)
}

// ObjectStore is the object-storage surface for recipe images.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

// ImageUpload is a processed image ready to store.
type ImageUpload struct {
	Reader      io.Reader
	Size        int64
	ContentType string
}

// RecipeInput carries the textual fields of a create or update request.
type RecipeInput struct {
	Title            string
	Description      string
	Category         string
	Ingredients      []string
	PreparationSteps []string
	SourceURL        string
}

// missing returns the wire names of required fields that are empty, so a
// validation failure can itemize exactly what to fix.
func (in RecipeInput) missing() []string {
	var fields []string
	if in.Title == "" {
		fields = append(fields, "title")
	}
	if in.Description == "" {
		fields = append(fields, "description")
	}
	if in.Category == "" {
		fields = append(fields, "categories")
	}
	if len(in.Ingredients) == 0 {
		fields = append(fields, "ingredients")
	}
	if len(in.PreparationSteps) == 0 {
		fields = append(fields, "preparation_steps")
	}
	return fields
}

// searchLimit caps substring search results to bound response size.
const searchLimit = 40

// Coordinator enforces recipe ownership and keeps the persisted image asset
// consistent with the record across create, update, and delete. The record
// write is authoritative; cleanup of superseded objects is best-effort.
type Coordinator struct {
	recipes RecipeStore
	objects ObjectStore
	log     *slog.Logger
}

func NewCoordinator(recipes RecipeStore, objects ObjectStore, log *slog.Logger) *Coordinator {
	return &Coordinator{recipes: recipes, objects: objects, log: log}
}

func imageKey() string {
	return "recipes/" + uuid.NewString() + ".jpg"
}

// Create validates required fields, stores the image, then the record. A
// record-create failure deletes the just-uploaded object so no referenced
// asset goes missing; the reverse ordering could leave a recipe pointing at
// nothing.
func (co *Coordinator) Create(ctx context.Context, owner *models.User, in RecipeInput, img *ImageUpload) (*models.Recipe, error) {
	if img == nil {
		return nil, &ValidationError{Message: "Please upload an image for your Recipe"}
	}
	if fields := in.missing(); len(fields) > 0 {
		return nil, errMissingFields(fields...)
	}

	key := imageKey()
	url, err := co.objects.Upload(ctx, key, img.Reader, img.Size, img.ContentType)
	if err != nil {
		return nil, &DependencyError{Message: "failed to store recipe image", Err: err}
	}

	rec := &models.Recipe{
		Title:            in.Title,
		Description:      in.Description,
		Category:         in.Category,
		Ingredients:      in.Ingredients,
		PreparationSteps: in.PreparationSteps,
		SourceURL:        in.SourceURL,
		ImageKey:         key,
		ImageURL:         url,
		UserID:           owner.ID,
		Username:         owner.Username,
	}
	if err := co.recipes.Create(ctx, rec); err != nil {
		if delErr := co.objects.Delete(ctx, key); delErr != nil {
			co.log.Warn("orphaned image after failed recipe create", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	return rec, nil
}

// Update applies the changed fields after an ownership check. When a new
// image is supplied the new object is uploaded and referenced first; the
// superseded object is deleted only after the record is durably updated.
// A failed cleanup leaves at worst an orphaned unreferenced object, which is
// logged and never rolls back the update.
func (co *Coordinator) Update(ctx context.Context, requester *models.User, id uint, in RecipeInput, img *ImageUpload) (*models.Recipe, error) {
	rec, err := co.recipes.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.UserID != requester.ID {
		return nil, &AuthorizationError{Message: "You cannot edit this recipe!"}
	}

	if in.Title != "" {
		rec.Title = in.Title
	}
	if in.Description != "" {
		rec.Description = in.Description
	}
	if in.Category != "" {
		rec.Category = in.Category
	}
	if len(in.Ingredients) > 0 {
		rec.Ingredients = in.Ingredients
	}
	if len(in.PreparationSteps) > 0 {
		rec.PreparationSteps = in.PreparationSteps
	}
	if in.SourceURL != "" {
		rec.SourceURL = in.SourceURL
	}

	oldKey := ""
	if img != nil {
		key := imageKey()
		url, err := co.objects.Upload(ctx, key, img.Reader, img.Size, img.ContentType)
		if err != nil {
			return nil, &DependencyError{Message: "failed to store recipe image", Err: err}
		}
		oldKey = rec.ImageKey
		rec.ImageKey = key
		rec.ImageURL = url
	}

	if err := co.recipes.Save(ctx, rec); err != nil {
		if img != nil {
			if delErr := co.objects.Delete(ctx, rec.ImageKey); delErr != nil {
				co.log.Warn("orphaned image after failed recipe update", "key", rec.ImageKey, "error", delErr)
			}
		}
		return nil, fmt.Errorf("update recipe: %w", err)
	}

	if oldKey != "" && oldKey != rec.ImageKey {
		if err := co.objects.Delete(ctx, oldKey); err != nil {
			co.log.Warn("failed to delete superseded recipe image", "key", oldKey, "error", err)
		}
	}
	return rec, nil
}

// Delete removes the record for its owner or an admin, then best-effort
// deletes the image object.
func (co *Coordinator) Delete(ctx context.Context, requester *models.User, id uint) error {
	rec, err := co.recipes.Get(ctx, id)
	if err != nil {
		return err
	}
	if rec.UserID != requester.ID && !permissions.Allowed(requester.PrimaryRole(), permissions.RoleAdmin) {
		return &AuthorizationError{Message: "You cannot delete this recipe!"}
	}
	if err := co.recipes.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if rec.ImageKey != "" {
		if err := co.objects.Delete(ctx, rec.ImageKey); err != nil {
			co.log.Warn("failed to delete image of removed recipe", "key", rec.ImageKey, "error", err)
		}
	}
	return nil
}

// Get loads a single recipe; reads need no authorization.
func (co *Coordinator) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	return co.recipes.Get(ctx, id)
}

// Search performs a case-insensitive substring match on titles, capped at
// searchLimit entries.
func (co *Coordinator) Search(ctx context.Context, q string) ([]models.Recipe, error) {
	return co.recipes.Search(ctx, q, searchLimit)
}

// List returns recipes filtered by owner username or category; username wins
// when both are given, and an empty filter lists everything.
func (co *Coordinator) List(ctx context.Context, username, category string) ([]models.Recipe, error) {
	return co.recipes.List(ctx, username, category)
}
