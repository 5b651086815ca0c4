// Package api serves the recipebox JSON API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"recipebox/internal/auth"
	"recipebox/internal/spoonacular"
	"recipebox/internal/storage"
)

type Authenticator interface {
	Register(ctx context.Context, username, password string) (auth.Principal, error)
	Login(ctx context.Context, username, password string) (auth.Principal, error)
}

type Sessions interface {
	Begin(w http.ResponseWriter, r *http.Request, p auth.Principal) error
	Current(r *http.Request) (auth.Principal, bool, error)
	End(w http.ResponseWriter, r *http.Request) error
}

type RecipeProvider interface {
	Search(ctx context.Context, query string) ([]spoonacular.RecipeSummary, error)
	Detail(ctx context.Context, id int64) (*spoonacular.RecipeDetail, error)
}

type Favorites interface {
	Add(ctx context.Context, recipe storage.Recipe) error
	List(ctx context.Context) ([]storage.FavoriteRecipe, error)
	Remove(ctx context.Context, recipeID int64) error
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators of the API.
type Deps struct {
	Auth      Authenticator
	Sessions  Sessions
	Recipes   RecipeProvider
	Favorites Favorites
	DB        Pinger
	Metrics   *Metrics
	Logger    logrus.FieldLogger
}

// Options tune the outer HTTP surface.
type Options struct {
	CORSOrigins []string
	StaticDir   string
}

type API struct {
	auth      Authenticator
	sessions  Sessions
	recipes   RecipeProvider
	favorites Favorites
	db        Pinger
	metrics   *Metrics
	logger    logrus.FieldLogger
}

func New(d Deps) *API {
	if d.Metrics == nil {
		d.Metrics = InitMetrics()
	}
	return &API{
		auth:      d.Auth,
		sessions:  d.Sessions,
		recipes:   d.Recipes,
		favorites: d.Favorites,
		db:        d.DB,
		metrics:   d.Metrics,
		logger:    d.Logger,
	}
}

// Handler builds the router with every route and the outer middleware.
func (api *API) Handler(opts Options) http.Handler {
	r := mux.NewRouter()
	r.Use(api.logRequests)

	r.Handle("/metrics", api.metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", api.Health).Methods(http.MethodGet)
	r.HandleFunc("/api", api.notFound)

	s := r.PathPrefix("/api/").Subrouter()
	s.Use(api.loadSession)
	s.HandleFunc("/auth/status", api.AuthStatus).Methods(http.MethodGet)
	s.HandleFunc("/register", api.Register).Methods(http.MethodPost)
	s.HandleFunc("/login", api.Login).Methods(http.MethodPost)
	s.HandleFunc("/logout", api.Logout).Methods(http.MethodPost)
	s.HandleFunc("/search", api.Search).Methods(http.MethodGet)
	s.HandleFunc("/recipe/{id}", api.RecipeDetail).Methods(http.MethodGet)
	s.Handle("/favorites", api.requireSession(api.ListFavorites)).Methods(http.MethodGet)
	s.Handle("/favorite/{id}", api.requireSession(api.AddFavorite)).Methods(http.MethodPost)
	s.Handle("/favorites/{id}", api.requireSession(api.RemoveFavorite)).Methods(http.MethodDelete)
	s.PathPrefix("/").HandlerFunc(api.notFound)

	if opts.StaticDir != "" {
		r.PathPrefix("/").Handler(spaHandler{staticPath: opts.StaticDir, indexPath: "index.html"})
	}
	r.NotFoundHandler = http.HandlerFunc(api.notFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(api.methodNotAllowed)

	var h http.Handler = r
	if len(opts.CORSOrigins) > 0 {
		h = handlers.CORS(
			handlers.AllowedOrigins(opts.CORSOrigins),
			handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
			handlers.AllowedHeaders([]string{"Content-Type"}),
			handlers.AllowCredentials(),
		)(h)
	}
	h = handlers.CompressHandler(h)
	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(api.logger),
		handlers.PrintRecoveryStack(true),
	)(h)
}

// Health reports whether the database answers.
func (api *API) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := api.db.Ping(ctx); err != nil {
		api.fail(w, r, http.StatusServiceUnavailable, "Database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Message: "ok"})
}

func (api *API) notFound(w http.ResponseWriter, r *http.Request) {
	api.fail(w, r, http.StatusNotFound, "Not found", nil)
}

func (api *API) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	api.fail(w, r, http.StatusMethodNotAllowed, "Method not allowed", nil)
}
