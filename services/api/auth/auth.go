// Package auth implements account registration, password login and bearer-token
// sessions for the tree inventory API.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/02loveslollipop/arbor-inventory/services/api/db"
)

var (
	// ErrMissingCredentials is returned when username or password is blank.
	ErrMissingCredentials = errors.New("username and password are required")
	// ErrInvalidCredentials hides whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// UserStore is the subset of db.Store the service needs.
type UserStore interface {
	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUser(ctx context.Context, username string) (*db.User, error)
}

// Service issues opaque tokens that live until revoked or the process exits.
type Service struct {
	users UserStore
	cost  int

	mu     sync.RWMutex
	tokens map[string]string // token -> username
}

// NewService builds a Service. cost is the bcrypt work factor; values below
// bcrypt.MinCost fall back to bcrypt.DefaultCost.
func NewService(users UserStore, cost int) *Service {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Service{
		users:  users,
		cost:   cost,
		tokens: make(map[string]string),
	}
}

// Register creates an account. db.ErrDuplicateUser is passed through.
func (s *Service) Register(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ErrMissingCredentials
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return err
	}
	_, err = s.users.CreateUser(ctx, username, string(hash))
	return err
}

// Login checks the password and returns a fresh bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrMissingCredentials
	}
	user, err := s.users.GetUser(ctx, username)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = user.Username
	s.mu.Unlock()
	return token, nil
}

// Authenticate resolves a token to its username.
func (s *Service) Authenticate(token string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	username, ok := s.tokens[token]
	return username, ok
}

// Revoke forgets a token. Unknown tokens are ignored.
func (s *Service) Revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}
