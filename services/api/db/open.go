package db

import (
	"context"
	"fmt"
	"strings"
)

// Open picks a Store implementation from the URL scheme:
// postgres:// or postgresql:// (pgx), sqlite://<path> (embedded), memory://.
func Open(ctx context.Context, databaseURL string) (Store, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return NewPostgres(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		path := strings.TrimPrefix(databaseURL, "sqlite://")
		if path == "" {
			path = ":memory:"
		}
		return NewSQLite(ctx, path)
	case databaseURL == "memory://":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unsupported DATABASE_URL scheme: %q", databaseURL)
	}
}
