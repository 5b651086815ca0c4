package session

import (
	"net/http"

	"recipebox/internal/auth"
)

const CookieName = "recipebox_session"

const (
	keyUserID   = "userId"
	keyUsername = "username"
)

// Manager maps the session cookie to an auth.Principal.
type Manager struct {
	store *Store
	name  string
}

func NewManager(store *Store) *Manager {
	return &Manager{store: store, name: CookieName}
}

// Begin starts a session for p under a fresh id, discarding any previous one.
func (m *Manager) Begin(w http.ResponseWriter, r *http.Request, p auth.Principal) error {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return err
	}
	if sess.ID != "" {
		if err := m.store.repo.Delete(r.Context(), sess.ID); err != nil {
			return err
		}
		sess.ID = ""
	}
	sess.Values = map[interface{}]interface{}{
		keyUserID:   p.ID,
		keyUsername: p.Username,
	}
	sess.Options.MaxAge = m.store.Options.MaxAge
	return sess.Save(r, w)
}

// Current returns the principal of the request's session, if it has one.
func (m *Manager) Current(r *http.Request) (auth.Principal, bool, error) {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return auth.Principal{}, false, err
	}
	id, ok := sess.Values[keyUserID].(uint)
	if !ok || id == 0 {
		return auth.Principal{}, false, nil
	}
	username, _ := sess.Values[keyUsername].(string)
	return auth.Principal{ID: id, Username: username}, true, nil
}

// End destroys the request's session and expires its cookie.
func (m *Manager) End(w http.ResponseWriter, r *http.Request) error {
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		return err
	}
	sess.Values = map[interface{}]interface{}{}
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
