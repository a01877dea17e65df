package cache

import (
	"context"
	"encoding/json"
)

// Repository is a key/value store of reference-data snapshots. Entries are
// overwritten wholesale on every successful network refresh and never
// merged field-by-field.
type Repository interface {
	// Read returns the snapshot stored under key, or common.ErrorNotFound
	// when the key is absent.
	Read(ctx context.Context, key string) (json.RawMessage, error)

	// Write replaces the snapshot stored under key.
	Write(ctx context.Context, key string, data json.RawMessage) error

	// Delete removes a single key. Unknown keys are ignored.
	Delete(ctx context.Context, key string) error

	// Clear removes every snapshot. Part of the app-level reset flow.
	Clear(ctx context.Context) error
}
