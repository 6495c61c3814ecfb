package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteMedium stores each collection as one row of the kv table. It has no
// cross-process change signal.
type SQLiteMedium struct {
	db *sql.DB
}

// NewSQLiteMedium wraps an already migrated database (see database.Open).
// The caller owns db; Close does not close it.
func NewSQLiteMedium(db *sql.DB) *SQLiteMedium {
	return &SQLiteMedium{db: db}
}

func (m *SQLiteMedium) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := m.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key=?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return value, err
}

func (m *SQLiteMedium) Set(ctx context.Context, key string, payload []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	query := `INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			  ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`
	_, err := m.db.ExecContext(ctx, query, key, payload, time.Now())
	return err
}

func (m *SQLiteMedium) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	_, err := m.db.ExecContext(ctx, `DELETE FROM kv WHERE key=?`, key)
	return err
}

func (m *SQLiteMedium) Close() error { return nil }
