package main

import (
	"context"
	"errors"
	"fmt"

	"recipehub/models"

	"gorm.io/gorm"
)

// gormRecipes is the gorm-backed RecipeStore. Not-found is translated to a
// typed NotFoundError here so callers never see gorm sentinels.
type gormRecipes struct {
	db *gorm.DB
}

func newGormRecipes(db *gorm.DB) *gormRecipes {
	return &gormRecipes{db: db}
}

func (s *gormRecipes) Get(ctx context.Context, id uint) (*models.Recipe, error) {
	var rec models.Recipe
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Recipe"}
		}
		return nil, fmt.Errorf("load recipe %d: %w", id, err)
	}
	return &rec, nil
}

func (s *gormRecipes) Create(ctx context.Context, r *models.Recipe) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *gormRecipes) Save(ctx context.Context, r *models.Recipe) error {
	return s.db.WithContext(ctx).Save(r).Error
}

func (s *gormRecipes) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Recipe{}, id).Error
}

func (s *gormRecipes) Search(ctx context.Context, q string, limit int) ([]models.Recipe, error) {
	var recipes []models.Recipe
	err := s.db.WithContext(ctx).
		Where("title ILIKE ?", "%"+q+"%").
		Limit(limit).
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return recipes, nil
}

func (s *gormRecipes) List(ctx context.Context, username, category string) ([]models.Recipe, error) {
	q := s.db.WithContext(ctx).Model(&models.Recipe{})
	switch {
	case username != "":
		q = q.Where("username = ?", username)
	case category != "":
		q = q.Where("category = ?", category)
	}
	var recipes []models.Recipe
	if err := q.Order("created_at desc").Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}
