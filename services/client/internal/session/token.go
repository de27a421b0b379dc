// Package session keeps the bearer token across runs of the client.
package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// TokenStore holds at most one token and mirrors it to a file. Not safe for
// concurrent use; the client touches it from one goroutine.
type TokenStore struct {
	path  string
	token string
}

// Load reads the token persisted at path. A missing file means logged out.
// An empty path keeps the token in memory only.
func Load(path string) (*TokenStore, error) {
	s := &TokenStore{path: path}
	if path == "" {
		return s, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token: %w", err)
	}
	s.token = strings.TrimSpace(string(raw))
	return s, nil
}

// Token returns the held token, "" when logged out.
func (s *TokenStore) Token() string {
	return s.token
}

// LoggedIn reports whether a token is held.
func (s *TokenStore) LoggedIn() bool {
	return s.token != ""
}

// Set replaces the token and persists it with owner-only permissions.
func (s *TokenStore) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("empty token")
	}
	if s.path != "" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
		if err := os.WriteFile(s.path, []byte(token+"\n"), 0o600); err != nil {
			return fmt.Errorf("write token: %w", err)
		}
	}
	s.token = token
	return nil
}

// Clear forgets the token and removes the persisted copy.
func (s *TokenStore) Clear() error {
	s.token = ""
	if s.path == "" {
		return nil
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token: %w", err)
	}
	return nil
}
