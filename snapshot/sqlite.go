package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/finpulse/fincache/types"
)

type SQLiteConfig struct {
	Path string `yaml:"path" json:"path"`
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	blob       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// SQLiteStore keeps snapshots in a single sqlite table keyed by
// snapshot name.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil || config.Path == "" {
		return nil, types.Errorf(types.ErrSnapshot, "sqlite store requires a path")
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, types.WrapError(err, "failed to open sqlite store")
	}

	if _, err = db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, types.WrapError(err, "failed to create snapshot table")
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, "SELECT blob FROM snapshots WHERE key = ?", key).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, types.ErrSnapshotNotFound
		}
		return nil, types.WrapError(err, "failed to read snapshot from sqlite")
	}
	return blob, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key string, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO snapshots (key, blob, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET blob = excluded.blob, updated_at = excluded.updated_at",
		key, blob, time.Now().UnixNano())
	if err != nil {
		return types.WrapError(err, "failed to write snapshot to sqlite")
	}
	return nil
}

func (s *SQLiteStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE key = ?", key)
	if err != nil {
		return types.WrapError(err, "failed to remove snapshot from sqlite")
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
