package api

import (
	"errors"
	"net/http"
	"strings"

	"recipebox/internal/spoonacular"
)

func (api *API) Search(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		api.fail(w, r, http.StatusBadRequest, "Search query is required", nil)
		return
	}

	results, err := api.recipes.Search(r.Context(), q)
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "Error fetching recipes. Please try again later.", err)
		return
	}

	resp := searchResponse{Success: true, Results: results}
	if len(results) == 0 {
		resp.Results = []spoonacular.RecipeSummary{}
		resp.Message = "No recipes found. Try a different search."
	}
	writeJSON(w, http.StatusOK, resp)
}

func (api *API) RecipeDetail(w http.ResponseWriter, r *http.Request) {
	id, err := recipeID(r)
	if err != nil {
		api.fail(w, r, http.StatusBadRequest, "Invalid recipe id", err)
		return
	}

	recipe, err := api.recipes.Detail(r.Context(), id)
	if errors.Is(err, spoonacular.ErrRecipeNotFound) {
		api.fail(w, r, http.StatusNotFound, "Recipe not found", err)
		return
	}
	if err != nil {
		api.fail(w, r, http.StatusInternalServerError, "Error fetching recipe details", err)
		return
	}
	writeJSON(w, http.StatusOK, recipeResponse{Success: true, Recipe: recipe})
}
