// Package session keeps login sessions server-side. The browser only holds a
// signed, opaque session id; the values live in the sessions table.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"recipebox/internal/storage"
)

// Repository persists encoded session rows.
type Repository interface {
	Find(ctx context.Context, id string, now time.Time) (*storage.Session, error)
	Save(ctx context.Context, sess *storage.Session) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Store is a sessions.Store backed by a Repository.
type Store struct {
	Codecs  []securecookie.Codec
	Options *sessions.Options

	repo   Repository
	logger logrus.FieldLogger
	now    func() time.Time
}

var _ sessions.Store = (*Store)(nil)

// NewStore returns a store whose cookies are HTTP-only, SameSite=Lax and live
// for maxAge. keyPairs are handed to securecookie.CodecsFromPairs.
func NewStore(repo Repository, maxAge time.Duration, secure bool, logger logrus.FieldLogger, keyPairs ...[]byte) *Store {
	s := &Store{
		Codecs: securecookie.CodecsFromPairs(keyPairs...),
		Options: &sessions.Options{
			Path:     "/",
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		},
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
	s.MaxAge(int(maxAge / time.Second))
	return s
}

// MaxAge sets the cookie and codec lifetime in seconds.
func (s *Store) MaxAge(age int) {
	s.Options.MaxAge = age
	for _, codec := range s.Codecs {
		if sc, ok := codec.(*securecookie.SecureCookie); ok {
			sc.MaxAge(age)
		}
	}
}

// Get returns the session cached in the request registry, loading it on first use.
func (s *Store) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. A missing, tampered or
// expired cookie yields a fresh session and no error.
func (s *Store) New(r *http.Request, name string) (*sessions.Session, error) {
	sess := sessions.NewSession(s, name)
	opts := *s.Options
	sess.Options = &opts
	sess.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return sess, nil
	}
	if err := securecookie.DecodeMulti(name, cookie.Value, &sess.ID, s.Codecs...); err != nil {
		s.logger.WithError(err).Debug("Ignoring undecodable session cookie")
		sess.ID = ""
		return sess, nil
	}

	row, err := s.repo.Find(r.Context(), sess.ID, s.now())
	if errors.Is(err, storage.ErrNotFound) {
		sess.ID = ""
		return sess, nil
	}
	if err != nil {
		return sess, fmt.Errorf("load session: %w", err)
	}
	if err := securecookie.DecodeMulti(name, row.Data, &sess.Values, s.Codecs...); err != nil {
		s.logger.WithError(err).Warn("Discarding undecodable session data")
		sess.ID = ""
		return sess, nil
	}

	sess.IsNew = false
	return sess, nil
}

// Save writes the session row and the id cookie. A negative MaxAge deletes
// the row and expires the cookie.
func (s *Store) Save(r *http.Request, w http.ResponseWriter, sess *sessions.Session) error {
	ctx := r.Context()

	if sess.Options.MaxAge < 0 {
		if sess.ID != "" {
			if err := s.repo.Delete(ctx, sess.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(sess.Name(), "", sess.Options))
		return nil
	}

	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}

	data, err := securecookie.EncodeMulti(sess.Name(), sess.Values, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session values: %w", err)
	}
	row := &storage.Session{
		ID:        sess.ID,
		Data:      data,
		ExpiresAt: s.now().Add(time.Duration(sess.Options.MaxAge) * time.Second),
	}
	if err := s.repo.Save(ctx, row); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(sess.Name(), sess.ID, s.Codecs...)
	if err != nil {
		return fmt.Errorf("encode session id: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(sess.Name(), encoded, sess.Options))
	return nil
}

// Cleanup deletes every expired session row.
func (s *Store) Cleanup(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

// Sweep runs Cleanup every interval until ctx is done.
func (s *Store) Sweep(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := s.Cleanup(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				s.logger.WithError(err).Error("Failed to delete expired sessions")
				continue
			}
			if n > 0 {
				s.logger.WithField("count", n).Info("Deleted expired sessions")
			}
		}
	}
}
