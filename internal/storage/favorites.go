package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FavoriteRepository struct {
	db *gorm.DB
}

// Create records a favorite for a cached recipe. The recipe row must already
// exist. It reports false when the recipe was already a favorite.
func (r *FavoriteRepository) Create(ctx context.Context, recipeID int64) (bool, error) {
	fav := Favorite{RecipeID: recipeID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "recipe_id"}}, DoNothing: true}).
		Create(&fav)
	if res.Error != nil {
		return false, fmt.Errorf("insert favorite %d: %w", recipeID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// List returns every favorite joined with its cached metadata, newest first.
func (r *FavoriteRepository) List(ctx context.Context) ([]FavoriteRecipe, error) {
	favorites := []FavoriteRecipe{}
	err := r.db.WithContext(ctx).
		Table("favorites").
		Select("recipes.recipe_id, recipes.title, recipes.image_url, favorites.created_at AS favorited_at").
		Joins("INNER JOIN recipes ON recipes.recipe_id = favorites.recipe_id").
		Order("favorites.created_at DESC, favorites.id DESC").
		Scan(&favorites).Error
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}

// Delete removes the favorite relation only; the cached recipe stays.
func (r *FavoriteRepository) Delete(ctx context.Context, recipeID int64) (bool, error) {
	res := r.db.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(&Favorite{})
	if res.Error != nil {
		return false, fmt.Errorf("delete favorite %d: %w", recipeID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *FavoriteRepository) Exists(ctx context.Context, recipeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Favorite{}).Where("recipe_id = ?", recipeID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count favorite %d: %w", recipeID, err)
	}
	return count > 0, nil
}
