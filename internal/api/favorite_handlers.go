package api

import (
	"errors"
	"net/http"
	"strings"

	"recipebox/internal/favorites"
	"recipebox/internal/storage"
)

func (api *API) ListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := api.favorites.List(r.Context())
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "Error fetching favorites", err)
		return
	}
	writeJSON(w, http.StatusOK, favoritesResponse{Success: true, Favorites: favs})
}

func (api *API) AddFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		api.fail(w, r, http.StatusBadRequest, "Invalid recipe id", err)
		return
	}
	body, err := readFavorite(w, r)
	if err != nil {
		api.fail(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	err = api.favorites.Add(r.Context(), storage.Recipe{
		RecipeID: id,
		Title:    strings.TrimSpace(body.Title),
		ImageURL: body.Image,
	})
	if errors.Is(err, favorites.ErrInvalidRecipe) {
		api.fail(w, r, http.StatusBadRequest, "Recipe title is required", err)
		return
	}
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "Error adding to favorites", err)
		return
	}

	api.metrics.FavoritesAdded.Inc()
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Added to favorites"})
}

func (api *API) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		api.fail(w, r, http.StatusBadRequest, "Invalid recipe id", err)
		return
	}
	if err := api.favorites.Remove(r.Context(), id); err != nil {
		api.fail(w, r, http.StatusInternalServerError, "Error removing favorite", err)
		return
	}

	api.metrics.FavoritesRemoved.Inc()
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Removed from favorites"})
}
