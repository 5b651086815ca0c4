// Package auth registers users and verifies their credentials.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"recipebox/internal/storage"
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserStore is the persistence the service needs.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*storage.User, error)
	FindByUsername(ctx context.Context, username string) (*storage.User, error)
}

type Service struct {
	users     UserStore
	cost      int
	dummyHash string
	logger    logrus.FieldLogger
}

// NewService builds a Service hashing with the given bcrypt cost. A cost of
// zero selects bcrypt.DefaultCost.
func NewService(users UserStore, cost int, logger logrus.FieldLogger) (*Service, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	// Compared against when the username is unknown so both login failures
	// do the same amount of work.
	dummy, err := HashPassword("recipebox-dummy-password", cost)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &Service{users: users, cost: cost, dummyHash: dummy, logger: logger}, nil
}

// Register creates an account and returns its principal.
func (s *Service) Register(ctx context.Context, username, password string) (Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Principal{}, ErrMissingCredentials
	}

	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return Principal{}, ErrUsernameTaken
	} else if !errors.Is(err, storage.ErrNotFound) {
		return Principal{}, fmt.Errorf("check existing user: %w", err)
	}

	hash, err := HashPassword(password, s.cost)
	if err != nil {
		return Principal{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, hash)
	if errors.Is(err, storage.ErrUsernameTaken) {
		return Principal{}, ErrUsernameTaken
	}
	if err != nil {
		return Principal{}, err
	}

	s.logger.WithFields(logrus.Fields{"user_id": user.ID, "username": user.Username}).Info("User registered successfully")
	return Principal{ID: user.ID, Username: user.Username}, nil
}

// Login verifies the credentials. Unknown usernames and wrong passwords both
// yield ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, username, password string) (Principal, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Principal{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		CheckPasswordHash(password, s.dummyHash)
		s.logger.WithField("username", username).Warn("Login for unknown user")
		return Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return Principal{}, fmt.Errorf("find user: %w", err)
	}

	if !CheckPasswordHash(password, user.PasswordHash) {
		s.logger.WithField("username", username).Warn("Invalid password attempt")
		return Principal{}, ErrInvalidCredentials
	}

	s.logger.WithField("username", username).Info("User logged in successfully")
	return Principal{ID: user.ID, Username: user.Username}, nil
}
