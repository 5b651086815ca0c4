package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"recipebox/internal/auth"
	"recipebox/internal/spoonacular"
	"recipebox/internal/storage"
)

const maxBodyBytes = 1 << 20

const msgSomethingWrong = "Something went wrong."

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type authStatusResponse struct {
	Success       bool            `json:"success"`
	Authenticated bool            `json:"authenticated"`
	User          *auth.Principal `json:"user,omitempty"`
}

type loginResponse struct {
	Success bool            `json:"success"`
	User    *auth.Principal `json:"user,omitempty"`
	Message string          `json:"message,omitempty"`
}

type searchResponse struct {
	Success bool                        `json:"success"`
	Results []spoonacular.RecipeSummary `json:"results"`
	Message string                      `json:"message,omitempty"`
}

type recipeResponse struct {
	Success bool                      `json:"success"`
	Recipe  *spoonacular.RecipeDetail `json:"recipe"`
}

type favoritesResponse struct {
	Success   bool                     `json:"success"`
	Favorites []storage.FavoriteRecipe `json:"favorites"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type favoriteRequest struct {
	Title string `json:"title"`
	Image string `json:"image"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// fail logs the failure and answers with {success:false, message}.
func (api *API) fail(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	entry := api.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"status": status,
	})
	if p, ok := auth.PrincipalFromContext(r.Context()); ok {
		entry = entry.WithField("user_id", p.ID)
	}
	if err != nil {
		entry = entry.WithError(err)
	}
	if status >= http.StatusInternalServerError {
		entry.Error(message)
	} else {
		entry.Warn(message)
	}
	writeJSON(w, status, response{Success: false, Message: message})
}

// decodeBody reads a JSON body, or a urlencoded form when the client sends
// one, into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, fromForm func(get func(string) string)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("parse form: %w", err)
		}
		fromForm(r.PostForm.Get)
		return nil
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func readCredentials(w http.ResponseWriter, r *http.Request) (credentials, error) {
	var c credentials
	err := decodeBody(w, r, &c, func(get func(string) string) {
		c.Username = get("username")
		c.Password = get("password")
	})
	return c, err
}

func readFavorite(w http.ResponseWriter, r *http.Request) (favoriteRequest, error) {
	var f favoriteRequest
	err := decodeBody(w, r, &f, func(get func(string) string) {
		f.Title = get("title")
		f.Image = get("image")
	})
	return f, err
}

var errInvalidID = errors.New("recipe id must be a positive integer")

func recipeID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}
