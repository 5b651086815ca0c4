// Package favorites records favorited recipes together with the cached
// recipe metadata they point at.
package favorites

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"recipebox/internal/storage"
)

var ErrInvalidRecipe = errors.New("recipe id and title are required")

type Service struct {
	store  *storage.Store
	logger logrus.FieldLogger
}

func NewService(store *storage.Store, logger logrus.FieldLogger) *Service {
	return &Service{store: store, logger: logger}
}

// Add caches the recipe metadata if it is not cached yet and records the
// favorite. Adding the same recipe twice leaves a single favorite.
func (s *Service) Add(ctx context.Context, recipe storage.Recipe) error {
	if recipe.RecipeID <= 0 || recipe.Title == "" {
		return ErrInvalidRecipe
	}

	var created bool
	err := s.store.Transaction(ctx, func(tx *storage.Store) error {
		if err := tx.Recipes.Upsert(ctx, recipe); err != nil {
			return err
		}
		var err error
		created, err = tx.Favorites.Create(ctx, recipe.RecipeID)
		return err
	})
	if err != nil {
		return fmt.Errorf("add favorite: %w", err)
	}

	s.logger.WithFields(logrus.Fields{"recipe_id": recipe.RecipeID, "created": created}).Info("Favorite added")
	return nil
}

func (s *Service) List(ctx context.Context) ([]storage.FavoriteRecipe, error) {
	return s.store.Favorites.List(ctx)
}

// Remove drops the favorite relation. Removing a recipe that is not a
// favorite is not an error.
func (s *Service) Remove(ctx context.Context, recipeID int64) error {
	removed, err := s.store.Favorites.Delete(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	s.logger.WithFields(logrus.Fields{"recipe_id": recipeID, "removed": removed}).Info("Favorite removed")
	return nil
}
