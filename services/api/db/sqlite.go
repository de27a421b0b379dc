package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps the catalogue in an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path. ":memory:" gives a private
// in-process database.
func NewSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// every connection to :memory: would see its own empty database
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{db: conn}
	if err := s.migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() {
	if s.db != nil {
		_ = s.db.Close()
	}
}

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS trees (
        id                INTEGER PRIMARY KEY AUTOINCREMENT,
        custom_id         TEXT NOT NULL UNIQUE,
        latitude          REAL,
        longitude         REAL,
        address           TEXT NOT NULL DEFAULT '',
        city              TEXT NOT NULL,
        species           TEXT NOT NULL,
        condition         TEXT NOT NULL,
        comments          TEXT NOT NULL DEFAULT '',
        actions           TEXT NOT NULL DEFAULT '',
        height            TEXT NOT NULL DEFAULT '',
        trunk_diameter_cm REAL,
        crown_diameter_m  REAL,
        age               TEXT NOT NULL DEFAULT '',
        location          TEXT NOT NULL DEFAULT '',
        cpc               TEXT NOT NULL DEFAULT '',
        next_check        TEXT
    )`,
	`CREATE TABLE IF NOT EXISTS users (
        id            INTEGER PRIMARY KEY AUTOINCREMENT,
        username      TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        role          TEXT NOT NULL DEFAULT 'user',
        created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
    )`,
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for _, stmt := range sqliteSchema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const treeColumnsSQLite = `id, custom_id, latitude, longitude, address, city, species, condition,
    comments, actions, height, trunk_diameter_cm, crown_diameter_m, age, location, cpc, next_check`

// ListCities returns every distinct city in ascending order.
func (s *SQLiteStore) ListCities(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, `SELECT DISTINCT city FROM trees ORDER BY city`)
}

// ListStreets returns the distinct addresses recorded for a city. SQLite's lower()
// folds ASCII only, so the city comparison runs in Go.
func (s *SQLiteStore) ListStreets(ctx context.Context, city string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT city, address FROM trees WHERE address <> ''`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var streets []string
	for rows.Next() {
		var c, address string
		if err := rows.Scan(&c, &address); err != nil {
			return nil, err
		}
		if strings.EqualFold(c, city) {
			streets = append(streets, address)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return distinctSorted(streets), nil
}

func (s *SQLiteStore) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// ListTrees returns trees matching the filter ordered by id. The filter is applied
// with TreeFilter.Matches for the same Unicode case folding as the other stores.
func (s *SQLiteStore) ListTrees(ctx context.Context, f TreeFilter) ([]Tree, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+treeColumnsSQLite+" FROM trees ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trees := make([]Tree, 0)
	for rows.Next() {
		t, err := scanTree(rows)
		if err != nil {
			return nil, err
		}
		if f.Matches(t) {
			trees = append(trees, t)
		}
	}
	return trees, rows.Err()
}

// GetTree returns a tree by primary key.
func (s *SQLiteStore) GetTree(ctx context.Context, id int64) (*Tree, error) {
	return s.getOne(ctx, "SELECT "+treeColumnsSQLite+" FROM trees WHERE id = ?", id)
}

// GetTreeByCustomID returns a tree by its user-assigned identifier.
func (s *SQLiteStore) GetTreeByCustomID(ctx context.Context, customID string) (*Tree, error) {
	return s.getOne(ctx, "SELECT "+treeColumnsSQLite+" FROM trees WHERE custom_id = ?", customID)
}

func (s *SQLiteStore) getOne(ctx context.Context, query string, arg any) (*Tree, error) {
	t, err := scanTree(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTree inserts a tree and returns its new id.
func (s *SQLiteStore) CreateTree(ctx context.Context, t Tree) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
        INSERT INTO trees (custom_id, latitude, longitude, address, city, species, condition,
            comments, actions, height, trunk_diameter_cm, crown_diameter_m, age, location, cpc, next_check)
        VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		t.CustomID, t.Latitude, t.Longitude, t.Address, t.City, t.Species, t.Condition,
		t.Comments, t.Actions, t.Height, t.TrunkDiameterCM, t.CrownDiameterM, t.Age,
		t.Location, t.CPC, t.NextCheck,
	)
	if err != nil {
		return 0, translateSQLiteError(err, ErrDuplicateCustomID)
	}
	return res.LastInsertId()
}

// UpdateTree overwrites every column of the tree with t.ID.
func (s *SQLiteStore) UpdateTree(ctx context.Context, t Tree) error {
	res, err := s.db.ExecContext(ctx, `
        UPDATE trees
        SET custom_id = ?, latitude = ?, longitude = ?, address = ?, city = ?, species = ?,
            condition = ?, comments = ?, actions = ?, height = ?, trunk_diameter_cm = ?,
            crown_diameter_m = ?, age = ?, location = ?, cpc = ?, next_check = ?
        WHERE id = ?`,
		t.CustomID, t.Latitude, t.Longitude, t.Address, t.City, t.Species, t.Condition,
		t.Comments, t.Actions, t.Height, t.TrunkDiameterCM, t.CrownDiameterM, t.Age,
		t.Location, t.CPC, t.NextCheck, t.ID,
	)
	if err != nil {
		return translateSQLiteError(err, ErrDuplicateCustomID)
	}
	return requireAffected(res)
}

// DeleteTree removes a tree by id.
func (s *SQLiteStore) DeleteTree(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trees WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// CreateUser stores a new account with an already hashed password.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`, username, passwordHash)
	if err != nil {
		return 0, translateSQLiteError(err, ErrDuplicateUser)
	}
	return res.LastInsertId()
}

// GetUser looks up an account by username; (nil, nil) when missing.
func (s *SQLiteStore) GetUser(ctx context.Context, username string) (*User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = ?`, username)
	var (
		u       User
		created string
	)
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.CreatedAt = parseSQLiteTime(created)
	return &u, nil
}

// parseSQLiteTime accepts both CURRENT_TIMESTAMP text and the driver's RFC 3339 form.
func parseSQLiteTime(v string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func translateSQLiteError(err error, duplicate error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return duplicate
	}
	return err
}
