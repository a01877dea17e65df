// Package cache implements the local cache store for reference data
// (clients, work areas, collection points, measurement-type catalog),
// keyed by entity type plus parent id. There is no expiry beyond explicit
// overwrite or an app-level clear.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rgoncalves/fieldsync/internal/common"
	"github.com/rgoncalves/fieldsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX

	now func() time.Time
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Read returns the snapshot under key, or common.ErrorNotFound.
func (r *SQLiteRepository) Read(ctx context.Context, key string) (json.RawMessage, error) {
	query := `SELECT payload FROM cache_entries WHERE key = ?`
	row := r.db.QueryRowContext(ctx, query, key)

	var payload string
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return json.RawMessage(payload), nil
}

// Write upserts the snapshot under key, replacing any previous payload.
func (r *SQLiteRepository) Write(ctx context.Context, key string, data json.RawMessage) error {
	query := `INSERT INTO cache_entries (key, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`

	_, err := r.db.ExecContext(ctx, query, key, string(data), r.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

// Delete removes one key; absent keys are a no-op.
func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Clear removes every snapshot.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cache_entries`); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
