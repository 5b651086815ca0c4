package api

import (
	"net/http"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"recipebox/internal/auth"
)

const slowRequest = 2 * time.Second

// loadSession attaches the session's principal, if any, to the request context.
func (api *API) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok, err := api.sessions.Current(r)
		if err != nil {
			api.logger.WithError(err).Error("Failed to load session")
		}
		if ok {
			r = r.WithContext(auth.WithPrincipal(r.Context(), p))
		}
		next.ServeHTTP(w, r)
	})
}

// requireSession answers 401 when the request carries no live session.
func (api *API) requireSession(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
			api.fail(w, r, http.StatusUnauthorized, "Not authenticated", nil)
			return
		}
		next(w, r)
	})
}

func (api *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		path := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}
		api.metrics.observeRequest(path, r.Method, m.Code, m.Duration)

		entry := api.logger.WithFields(logrus.Fields{
			"method":    r.Method,
			"path":      r.URL.Path,
			"status":    m.Code,
			"duration":  m.Duration,
			"remote_ip": r.RemoteAddr,
		})
		if m.Duration > slowRequest {
			entry.Warn("Slow request detected")
		} else {
			entry.Info("Request completed")
		}
	})
}
