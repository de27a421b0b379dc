package db

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore wraps database access helpers over a pgx pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a store backed by a pgx pool and makes sure the schema exists.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the pool resources.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS trees (
        id                BIGSERIAL PRIMARY KEY,
        custom_id         TEXT NOT NULL UNIQUE,
        latitude          DOUBLE PRECISION,
        longitude         DOUBLE PRECISION,
        address           TEXT NOT NULL DEFAULT '',
        city              TEXT NOT NULL,
        species           TEXT NOT NULL,
        condition         TEXT NOT NULL,
        comments          TEXT NOT NULL DEFAULT '',
        actions           TEXT NOT NULL DEFAULT '',
        height            TEXT NOT NULL DEFAULT '',
        trunk_diameter_cm DOUBLE PRECISION,
        crown_diameter_m  DOUBLE PRECISION,
        age               TEXT NOT NULL DEFAULT '',
        location          TEXT NOT NULL DEFAULT '',
        cpc               TEXT NOT NULL DEFAULT '',
        next_check        DATE
    )`,
	`CREATE INDEX IF NOT EXISTS trees_city_idx ON trees (lower(city))`,
	`CREATE TABLE IF NOT EXISTS users (
        id            BIGSERIAL PRIMARY KEY,
        username      TEXT NOT NULL UNIQUE,
        password_hash TEXT NOT NULL,
        role          TEXT NOT NULL DEFAULT 'user',
        created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
    )`,
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, stmt := range postgresSchema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

const treeColumnsPG = `id, custom_id, latitude, longitude, address, city, species, condition,
    comments, actions, height, trunk_diameter_cm, crown_diameter_m, age, location, cpc,
    to_char(next_check, 'YYYY-MM-DD')`

const listCitiesSQL = `
    SELECT DISTINCT city
    FROM trees
    ORDER BY city
`

// ListCities returns every distinct city in ascending order.
func (s *PostgresStore) ListCities(ctx context.Context) ([]string, error) {
	return s.queryStrings(ctx, listCitiesSQL)
}

const listStreetsSQL = `
    SELECT DISTINCT address
    FROM trees
    WHERE lower(city) = lower($1) AND address <> ''
    ORDER BY address
`

// ListStreets returns the distinct addresses recorded for a city.
func (s *PostgresStore) ListStreets(ctx context.Context, city string) ([]string, error) {
	return s.queryStrings(ctx, listStreetsSQL, city)
}

func (s *PostgresStore) queryStrings(ctx context.Context, sql string, args ...any) ([]string, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
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

// ListTrees returns trees matching the filter ordered by id.
func (s *PostgresStore) ListTrees(ctx context.Context, f TreeFilter) ([]Tree, error) {
	args := []any{}
	clause := ""
	if f.City != "" {
		args = append(args, f.City)
		clause += " AND lower(city) = lower($" + strconv.Itoa(len(args)) + ")"
	}
	if f.Address != "" {
		args = append(args, f.Address)
		clause += " AND position(lower($" + strconv.Itoa(len(args)) + ") in lower(address)) > 0"
	}

	sql := "SELECT " + treeColumnsPG + " FROM trees WHERE true" + clause + " ORDER BY id"

	rows, err := s.pool.Query(ctx, sql, args...)
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
		trees = append(trees, t)
	}
	return trees, rows.Err()
}

// GetTree returns a tree by primary key.
func (s *PostgresStore) GetTree(ctx context.Context, id int64) (*Tree, error) {
	return s.getOne(ctx, "SELECT "+treeColumnsPG+" FROM trees WHERE id = $1", id)
}

// GetTreeByCustomID returns a tree by its user-assigned identifier.
func (s *PostgresStore) GetTreeByCustomID(ctx context.Context, customID string) (*Tree, error) {
	return s.getOne(ctx, "SELECT "+treeColumnsPG+" FROM trees WHERE custom_id = $1", customID)
}

func (s *PostgresStore) getOne(ctx context.Context, sql string, arg any) (*Tree, error) {
	t, err := scanTree(s.pool.QueryRow(ctx, sql, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const insertTreeSQL = `
    INSERT INTO trees (custom_id, latitude, longitude, address, city, species, condition,
        comments, actions, height, trunk_diameter_cm, crown_diameter_m, age, location, cpc, next_check)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16::date)
    RETURNING id
`

// CreateTree inserts a tree and returns its new id.
func (s *PostgresStore) CreateTree(ctx context.Context, t Tree) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, insertTreeSQL,
		t.CustomID, t.Latitude, t.Longitude, t.Address, t.City, t.Species, t.Condition,
		t.Comments, t.Actions, t.Height, t.TrunkDiameterCM, t.CrownDiameterM, t.Age,
		t.Location, t.CPC, t.NextCheck,
	).Scan(&id)
	if err != nil {
		return 0, translatePgError(err, ErrDuplicateCustomID)
	}
	return id, nil
}

const updateTreeSQL = `
    UPDATE trees
    SET custom_id = $2, latitude = $3, longitude = $4, address = $5, city = $6,
        species = $7, condition = $8, comments = $9, actions = $10, height = $11,
        trunk_diameter_cm = $12, crown_diameter_m = $13, age = $14, location = $15,
        cpc = $16, next_check = $17::date
    WHERE id = $1
`

// UpdateTree overwrites every column of the tree with t.ID.
func (s *PostgresStore) UpdateTree(ctx context.Context, t Tree) error {
	tag, err := s.pool.Exec(ctx, updateTreeSQL,
		t.ID, t.CustomID, t.Latitude, t.Longitude, t.Address, t.City, t.Species, t.Condition,
		t.Comments, t.Actions, t.Height, t.TrunkDiameterCM, t.CrownDiameterM, t.Age,
		t.Location, t.CPC, t.NextCheck,
	)
	if err != nil {
		return translatePgError(err, ErrDuplicateCustomID)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTree removes a tree by id.
func (s *PostgresStore) DeleteTree(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateUser stores a new account with an already hashed password.
func (s *PostgresStore) CreateUser(ctx context.Context, username, passwordHash string) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1, $2) RETURNING id`,
		username, passwordHash,
	).Scan(&id)
	if err != nil {
		return 0, translatePgError(err, ErrDuplicateUser)
	}
	return id, nil
}

// GetUser looks up an account by username; (nil, nil) when missing.
func (s *PostgresStore) GetUser(ctx context.Context, username string) (*User, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`,
		username,
	)
	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

func translatePgError(err error, duplicate error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return duplicate
	}
	return err
}

// rowScanner is satisfied by pgx.Row, pgx.Rows and *sql.Row(s).
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTree(row rowScanner) (Tree, error) {
	var t Tree
	err := row.Scan(
		&t.ID,
		&t.CustomID,
		&t.Latitude,
		&t.Longitude,
		&t.Address,
		&t.City,
		&t.Species,
		&t.Condition,
		&t.Comments,
		&t.Actions,
		&t.Height,
		&t.TrunkDiameterCM,
		&t.CrownDiameterM,
		&t.Age,
		&t.Location,
		&t.CPC,
		&t.NextCheck,
	)
	return t, err
}
