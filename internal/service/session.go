// Package service holds operations that run outside the action pipeline:
// signing in and bootstrapping the first account.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/balcao/balcao/internal/metrics"
	"github.com/balcao/balcao/internal/model"
	"github.com/balcao/balcao/internal/store"
)

// ErrInvalidCredentials is returned for every failed sign-in, whatever the cause.
var ErrInvalidCredentials = errors.New("invalid email or password")

// Passwords hashes and verifies user passwords.
type Passwords interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// TokenIssuer signs access tokens.
type TokenIssuer interface {
	Issue(subject string, role model.Role) (string, time.Time, error)
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string         `json:"token"`
	ExpiresAt time.Time      `json:"expiresAt"`
	User      model.UserView `json:"user"`
}

// Sessions signs users in.
type Sessions struct {
	users     store.Store[model.User]
	passwords Passwords
	issuer    TokenIssuer
	metrics   metrics.Recorder
	logger    *slog.Logger
	dummyHash string
}

// NewSessions creates a Sessions service.
func NewSessions(users store.Store[model.User], passwords Passwords, issuer TokenIssuer, recorder metrics.Recorder, logger *slog.Logger) (*Sessions, error) {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}

	// Verified against when the e-mail is unknown, so both paths cost the same.
	dummy, err := passwords.Hash("balcao-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &Sessions{
		users:     users,
		passwords: passwords,
		issuer:    issuer,
		metrics:   recorder,
		logger:    logger.With("component", "sessions"),
		dummyHash: dummy,
	}, nil
}

// Login checks the password of the user with email and issues a token
// carrying the user's id and role.
func (s *Sessions) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.metrics.IncLogin(metrics.OutcomeInvalid)
		return Session{}, ErrInvalidCredentials
	}

	u, found, err := findUserByEmail(ctx, s.users, email)
	if err != nil {
		return Session{}, fmt.Errorf("find user: %w", err)
	}

	encoded := s.dummyHash
	if found {
		encoded = u.PasswordHash
	}
	ok, err := s.passwords.Verify(password, encoded)
	if err != nil && found {
		s.logger.WarnContext(ctx, "stored password hash is unreadable", "user_id", u.ID, "error", err)
	}
	if !found || err != nil || !ok {
		s.metrics.IncLogin(metrics.OutcomeInvalid)
		return Session{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.issuer.Issue(u.ID, u.Role)
	if err != nil {
		return Session{}, fmt.Errorf("issue token: %w", err)
	}

	s.metrics.IncLogin(metrics.OutcomeOK)
	s.logger.InfoContext(ctx, "user signed in", "user_id", u.ID, "role", u.Role.String())

	return Session{Token: token, ExpiresAt: expiresAt, User: u.View()}, nil
}

func findUserByEmail(ctx context.Context, users store.Store[model.User], email string) (model.User, bool, error) {
	all, err := users.List(ctx)
	if err != nil {
		return model.User{}, false, err
	}
	for _, u := range all {
		if strings.EqualFold(u.Email, email) {
			return u, true, nil
		}
	}
	return model.User{}, false, nil
}
