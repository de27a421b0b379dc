// Package testutil hosts the reference API in-process so client packages can be
// exercised end to end.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/02loveslollipop/arbor-inventory/services/api/config"
	"github.com/02loveslollipop/arbor-inventory/services/api/db"
	httpserver "github.com/02loveslollipop/arbor-inventory/services/api/http"
)

// Backend is a running reference API over an in-memory store.
type Backend struct {
	URL    string
	Store  *db.MemoryStore
	Server *httptest.Server
}

// NewBackend starts a backend for the duration of the test.
func NewBackend(t testing.TB, requireAuth bool) *Backend {
	t.Helper()
	store := db.NewMemory()
	api := httpserver.New(config.Config{RequireAuth: requireAuth}, store, nil, httpserver.WithBcryptCost(bcrypt.MinCost))
	srv := httptest.NewServer(api.Engine())
	t.Cleanup(srv.Close)
	return &Backend{URL: srv.URL, Store: store, Server: srv}
}

// Token registers username and logs it in, returning the bearer token.
func (b *Backend) Token(t testing.TB, username, password string) string {
	t.Helper()
	creds := map[string]string{"username": username, "password": password}
	if code := b.post(t, "/register", creds, nil); code != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, code)
	}
	var out struct {
		Token string `json:"token"`
	}
	if code := b.post(t, "/login", creds, &out); code != http.StatusOK {
		t.Fatalf("login %s: status %d", username, code)
	}
	return out.Token
}

func (b *Backend) post(t testing.TB, path string, body, out any) int {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	resp, err := b.Server.Client().Post(b.URL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post %s: %v", path, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
	}
	return resp.StatusCode
}

// Seed stores trees directly, bypassing HTTP. It returns their ids in order.
func (b *Backend) Seed(t testing.TB, trees ...db.Tree) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(trees))
	for _, tree := range trees {
		id, err := b.Store.CreateTree(context.Background(), tree)
		if err != nil {
			t.Fatalf("seed %s: %v", tree.CustomID, err)
		}
		ids = append(ids, id)
	}
	return ids
}
