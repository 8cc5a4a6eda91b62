package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/placelist-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS resolution_cache (
	cache_key  TEXT PRIMARY KEY,
	result     TEXT NOT NULL,
	resolved   INTEGER NOT NULL DEFAULT 0,
	has_photos INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_resolution_cache_photoless
	ON resolution_cache(resolved, has_photos);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetResolution(ctx context.Context, key string) (*model.ResolutionResult, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT result FROM resolution_cache WHERE cache_key = ?`, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get resolution %s", key)
	}

	var result model.ResolutionResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, eris.Wrapf(err, "sqlite: unmarshal resolution %s", key)
	}
	return &result, nil
}

func (s *SQLiteStore) PutResolution(ctx context.Context, key string, result *model.ResolutionResult) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal resolution")
	}

	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO resolution_cache (cache_key, result, resolved, has_photos, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			result = excluded.result,
			resolved = excluded.resolved,
			has_photos = excluded.has_photos,
			updated_at = excluded.updated_at`,
		key, string(raw), boolInt(result.Resolved()), boolInt(len(result.PhotoReferences) > 0), now, now,
	)
	return eris.Wrapf(err, "sqlite: put resolution %s", key)
}

func (s *SQLiteStore) UpdatePhotoRefs(ctx context.Context, key string, photoRefs []string) error {
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

func (s *SQLiteStore) ListPhotoless(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT cache_key, result FROM resolution_cache
		WHERE resolved = 1 AND has_photos = 0
		ORDER BY updated_at ASC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list photoless")
	}
	defer rows.Close() //nolint:errcheck

	var entries []Entry
	for rows.Next() {
		var key, raw string
		if err := rows.Scan(&key, &raw); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan photoless")
		}
		var result model.ResolutionResult
		if err := json.Unmarshal([]byte(raw), &result); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal photoless %s", key)
		}
		entries = append(entries, Entry{Key: key, Result: &result})
	}
	return entries, eris.Wrap(rows.Err(), "sqlite: iterate photoless")
}

func (s *SQLiteStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(resolved), 0),
		       COALESCE(SUM(CASE WHEN resolved = 1 AND has_photos = 0 THEN 1 ELSE 0 END), 0)
		FROM resolution_cache`,
	).Scan(&st.Total, &st.Resolved, &st.MissingPhotos)
	return st, eris.Wrap(err, "sqlite: stats")
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
