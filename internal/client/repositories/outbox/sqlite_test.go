package outbox

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE pending_submissions (
  seq INTEGER PRIMARY KEY AUTOINCREMENT,
  id TEXT NOT NULL UNIQUE,
  payload TEXT NOT NULL
);
`

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

func sampleSubmission() models.PendingSubmission {
	return models.PendingSubmission{
		CollectionPointID: "ponto-1",
		ClientID:          42,
		WorkAreaID:        "area-1",
		MeasuredAt:        time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Items: []models.MeasurementItem{
			{Label: "pH", Value: 7.2, MeasurementTypeID: "ph"},
			{MeasurementTypeID: "turbidity", Image: models.PhotoPlaceholderPrefix + "turbidity"},
		},
		Photos: []models.PendingPhoto{
			{MeasurementTypeID: "turbidity", Data: "aGVsbG8=", FileName: "t.jpg", MimeType: "image/jpeg"},
		},
	}
}

func TestEnqueue_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	in := sampleSubmission()
	id, err := r.Enqueue(ctx, in)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	// Deep-equal modulo the generated id and enqueue timestamp.
	assert.Equal(t, id, got[0].ID)
	assert.NotZero(t, got[0].EnqueuedAt)
	got[0].ID = ""
	got[0].EnqueuedAt = 0
	assert.Equal(t, in, got[0])
}

func TestList_EnqueueOrder(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		s := sampleSubmission()
		s.CollectionPointID = "ponto-" + string(rune('a'+i))
		id, err := r.Enqueue(ctx, s)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, s := range got {
		assert.Equal(t, ids[i], s.ID)
	}
}

func TestEnqueue_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "outbox.db")
	ctx := context.Background()

	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	id, err := NewSQLiteRepository(db).Enqueue(ctx, sampleSubmission())
	require.NoError(t, err)
	require.NoError(t, db.Close()) // simulated process restart

	db2, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db2.Close() })

	got, err := NewSQLiteRepository(db2).List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
	assert.Equal(t, "ponto-1", got[0].CollectionPointID)
}

func TestRemove_OnlyGivenIDs(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id1, err := r.Enqueue(ctx, sampleSubmission())
	require.NoError(t, err)
	id2, err := r.Enqueue(ctx, sampleSubmission())
	require.NoError(t, err)
	id3, err := r.Enqueue(ctx, sampleSubmission())
	require.NoError(t, err)

	require.NoError(t, r.Remove(ctx, []string{id1, id3}))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id2, got[0].ID)
}

func TestRemove_UnknownIDIsNoop(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	id, err := r.Enqueue(ctx, sampleSubmission())
	require.NoError(t, err)

	require.NoError(t, r.Remove(ctx, []string{"does-not-exist"}))
	require.NoError(t, r.Remove(ctx, nil))

	got, err := r.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, id, got[0].ID)
}

func TestClear(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err := r.Enqueue(ctx, sampleSubmission())
	require.NoError(t, err)
	require.NoError(t, r.Clear(ctx))

	got, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
