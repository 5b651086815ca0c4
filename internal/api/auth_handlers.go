package api

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"recipebox/internal/auth"
)

const msgRegisterFailed = "Username already taken or error occurred."

func (api *API) Register(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(w, r)
	if err != nil {
		api.fail(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := api.auth.Register(r.Context(), creds.Username, creds.Password)
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		api.fail(w, r, http.StatusBadRequest, "Username and password are required.", err)
		return
	case errors.Is(err, auth.ErrUsernameTaken):
		api.fail(w, r, http.StatusBadRequest, msgRegisterFailed, err)
		return
	case err != nil:
		api.fail(w, r, http.StatusInternalServerError, msgRegisterFailed, err)
		return
	}

	api.metrics.Registrations.Inc()
	api.logger.WithFields(logrus.Fields{"user_id": p.ID, "username": p.Username}).Info("User registered")
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Registration successful"})
}

func (api *API) Login(w http.ResponseWriter, r *http.Request) {
	creds, err := readCredentials(w, r)
	if err != nil {
		api.fail(w, r, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := api.auth.Login(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		api.metrics.observeLogin("failure")
		api.fail(w, r, http.StatusUnauthorized, "Invalid username or password.", err)
		return
	}
	if err != nil {
		api.metrics.observeLogin("error")
		api.fail(w, r, http.StatusInternalServerError, msgSomethingWrong, err)
		return
	}

	if err := api.sessions.Begin(w, r, p); err != nil {
		api.metrics.observeLogin("error")
		api.fail(w, r, http.StatusInternalServerError, msgSomethingWrong, err)
		return
	}

	api.metrics.observeLogin("success")
	writeJSON(w, http.StatusOK, loginResponse{Success: true, User: &p})
}

// Logout succeeds whether or not the request carried a session.
func (api *API) Logout(w http.ResponseWriter, r *http.Request) {
	if err := api.sessions.End(w, r); err != nil {
		api.fail(w, r, http.StatusInternalServerError, msgSomethingWrong, err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true})
}

func (api *API) AuthStatus(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, authStatusResponse{Success: true, Authenticated: false})
		return
	}
	writeJSON(w, http.StatusOK, authStatusResponse{Success: true, Authenticated: true, User: &p})
}
