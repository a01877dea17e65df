package outbox

import (
	"context"

	"github.com/rgoncalves/fieldsync/internal/client/models"
)

// Repository is the durable queue of not-yet-confirmed submissions.
// Implementations are backed by the local SQLite database.
//
// Submissions are immutable once enqueued; the sync engine only ever
// removes them wholesale after a fully successful sync.
type Repository interface {
	// Enqueue assigns a unique id, appends the submission to the ordered
	// durable collection and persists it synchronously before returning.
	// On error nothing is persisted and no id is handed out.
	Enqueue(ctx context.Context, s models.PendingSubmission) (string, error)

	// List returns all pending submissions in enqueue order.
	List(ctx context.Context) ([]models.PendingSubmission, error)

	// Remove atomically deletes exactly the submissions whose id is in ids,
	// preserving all others. Unknown ids are ignored.
	Remove(ctx context.Context, ids []string) error

	// Clear empties the store. Administrative/reset use only.
	Clear(ctx context.Context) error
}
