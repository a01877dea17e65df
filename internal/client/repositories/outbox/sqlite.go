// Package outbox implements the pending-submission store: an append-only
// ordered queue in SQLite that survives restarts. The payload column holds
// the submission JSON, photos base64-encoded inside it, matching the
// durable contract of the original PWA's pending_medicoes key.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rgoncalves/fieldsync/internal/client/models"
	"github.com/rgoncalves/fieldsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX
// (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX

	// now is a test seam for the enqueue timestamp.
	now func() time.Time
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

// Enqueue stores the submission under a freshly generated id. The INSERT
// completes before the id is returned, so a crash immediately after
// Enqueue cannot lose the submission.
func (r *SQLiteRepository) Enqueue(ctx context.Context, s models.PendingSubmission) (string, error) {
	s.ID = uuid.NewString()
	s.EnqueuedAt = r.now().UnixMilli()

	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal submission: %w", err)
	}

	query := `INSERT INTO pending_submissions (id, payload) VALUES (?, ?)`
	if _, err := r.db.ExecContext(ctx, query, s.ID, string(payload)); err != nil {
		return "", fmt.Errorf("failed to enqueue submission: %w", err)
	}

	return s.ID, nil
}

// List returns all pending submissions in enqueue order.
func (r *SQLiteRepository) List(ctx context.Context) ([]models.PendingSubmission, error) {
	query := `SELECT payload FROM pending_submissions ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select pending submissions: %w", err)
	}
	defer rows.Close()

	var result []models.PendingSubmission
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var s models.PendingSubmission
		if err := json.Unmarshal([]byte(payload), &s); err != nil {
			return nil, fmt.Errorf("failed to unmarshal submission: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Remove deletes the given ids in a single statement. Ids not present in
// the store are silently ignored.
func (r *SQLiteRepository) Remove(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	query := fmt.Sprintf(`DELETE FROM pending_submissions WHERE id IN (%s)`, placeholders)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove submissions: %w", err)
	}
	return nil
}

// Clear empties the store.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pending_submissions`); err != nil {
		return fmt.Errorf("failed to clear pending submissions: %w", err)
	}
	return nil
}
