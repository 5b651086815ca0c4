package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RecipeRepository struct {
	db *gorm.DB
}

// Upsert inserts the recipe unless a row with the same recipe id exists.
// Existing metadata is left untouched.
func (r *RecipeRepository) Upsert(ctx context.Context, recipe Recipe) error {
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "recipe_id"}}, DoNothing: true}).
		Create(&recipe).Error
	if err != nil {
		return fmt.Errorf("upsert recipe %d: %w", recipe.RecipeID, err)
	}
	return nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, recipeID int64) (*Recipe, error) {
	var recipe Recipe
	err := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find recipe %d: %w", recipeID, err)
	}
	return &recipe, nil
}
