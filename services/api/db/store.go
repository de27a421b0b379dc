package db

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned by mutations that target a missing record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateCustomID reports a custom_id collision.
	ErrDuplicateCustomID = errors.New("custom_id already exists")
	// ErrDuplicateUser reports a username collision.
	ErrDuplicateUser = errors.New("username already exists")
)

// Tree is one catalogued tree. Optional numerics stay nil when unknown.
type Tree struct {
	ID              int64    `json:"id"`
	CustomID        string   `json:"custom_id"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	Species         string   `json:"species"`
	Condition       string   `json:"condition"`
	Comments        string   `json:"comments"`
	Actions         string   `json:"actions"`
	Height          string   `json:"height"`
	TrunkDiameterCM *float64 `json:"trunk_diameter_cm"`
	CrownDiameterM  *float64 `json:"crown_diameter_m"`
	Age             string   `json:"age"`
	Location        string   `json:"location"`
	CPC             string   `json:"cpc"`
	NextCheck       *string  `json:"next_check"`
}

// TreeFilter scopes ListTrees. Empty fields match everything.
type TreeFilter struct {
	City    string
	Address string
}

// User is a registered account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Store is the persistence contract shared by the postgres, sqlite and memory backends.
type Store interface {
	ListCities(ctx context.Context) ([]string, error)
	ListStreets(ctx context.Context, city string) ([]string, error)
	ListTrees(ctx context.Context, f TreeFilter) ([]Tree, error)
	// GetTree and GetTreeByCustomID return (nil, nil) when nothing matches.
	GetTree(ctx context.Context, id int64) (*Tree, error)
	GetTreeByCustomID(ctx context.Context, customID string) (*Tree, error)
	CreateTree(ctx context.Context, t Tree) (int64, error)
	UpdateTree(ctx context.Context, t Tree) error
	DeleteTree(ctx context.Context, id int64) error

	CreateUser(ctx context.Context, username, passwordHash string) (int64, error)
	GetUser(ctx context.Context, username string) (*User, error)

	Close()
}

// Matches reports whether t passes f: city is a case-insensitive equality, address a
// case-insensitive substring.
func (f TreeFilter) Matches(t Tree) bool {
	if f.City != "" && !strings.EqualFold(t.City, f.City) {
		return false
	}
	if f.Address != "" && !strings.Contains(strings.ToLower(t.Address), strings.ToLower(f.Address)) {
		return false
	}
	return true
}

// distinctSorted drops empty values and duplicates and sorts the rest.
func distinctSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
