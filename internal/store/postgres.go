package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/placelist-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by PostgresStore, small enough
// for pgxmock to satisfy in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresWithPool wraps an existing pool; used by tests.
func NewPostgresWithPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS resolution_cache (
	cache_key  TEXT PRIMARY KEY,
	result     JSONB NOT NULL,
	resolved   BOOLEAN NOT NULL DEFAULT FALSE,
	has_photos BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_resolution_cache_photoless
	ON resolution_cache(resolved, has_photos)`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetResolution(ctx context.Context, key string) (*model.ResolutionResult, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT result FROM resolution_cache WHERE cache_key = $1`, key,
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get resolution %s", key)
	}

	var result model.ResolutionResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, eris.Wrapf(err, "postgres: unmarshal resolution %s", key)
	}
	return &result, nil
}

func (s *PostgresStore) PutResolution(ctx context.Context, key string, result *model.ResolutionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal resolution")
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO resolution_cache (cache_key, result, resolved, has_photos, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (cache_key) DO UPDATE SET
			result = EXCLUDED.result,
			resolved = EXCLUDED.resolved,
			has_photos = EXCLUDED.has_photos,
			updated_at = now()`,
		key, raw, result.Resolved(), len(result.PhotoReferences) > 0,
	)
	return eris.Wrapf(err, "postgres: put resolution %s", key)
}

func (s *PostgresStore) UpdatePhotoRefs(ctx context.Context, key string, photoRefs []string) error {
	result, err := s.GetResolution(ctx, key)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	result.PhotoReferences = photoRefs
	return s.PutResolution(ctx, key, result)
}

func (s *PostgresStore) ListPhotoless(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, `
		SELECT cache_key, result FROM resolution_cache
		WHERE resolved AND NOT has_photos
		ORDER BY updated_at ASC LIMIT $1`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list photoless")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var key string
		var raw []byte
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, eris.Wrap(err, "postgres: scan photoless")
		}
		var result model.ResolutionResult
		if err := json.Unmarshal(raw, &result); err != nil {
			return nil, eris.Wrapf(err, "postgres: unmarshal photoless %s", key)
		}
		entries = append(entries, Entry{Key: key, Result: &result})
	}
	return entries, eris.Wrap(rows.Err(), "postgres: iterate photoless")
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE resolved),
		       COUNT(*) FILTER (WHERE resolved AND NOT has_photos)
		FROM resolution_cache`,
	).Scan(&st.Total, &st.Resolved, &st.MissingPhotos)
	return st, eris.Wrap(err, "postgres: stats")
}
