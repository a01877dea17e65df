// Package syncer drains the pending-submission outbox against the remote
// backend whenever connectivity allows. Semantics are all-or-nothing per
// submission for the parent record and plain items, but best-effort per
// photo within a submission; that asymmetry is deliberate — losing one
// photo must not hold a whole batch of readings hostage.
package syncer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/backend"
	"github.com/rgoncalves/fieldsync/internal/client/models"
	"github.com/rgoncalves/fieldsync/internal/client/photo"
	"github.com/rgoncalves/fieldsync/internal/client/repositories/outbox"
	"github.com/rgoncalves/fieldsync/internal/logging"
)

// PhotoUploader is the slice of the photo pipeline the engine needs.
type PhotoUploader interface {
	Upload(ctx context.Context, data []byte, filename, mimeType, ownerItemID string, clientID int64) (*photo.Result, error)
}

const (
	// defaultCallTimeout bounds each individual backend call so a hung
	// request cannot stall a flush cycle indefinitely.
	defaultCallTimeout = 15 * time.Second

	// defaultUploadTimeout bounds one photo upload (larger payloads).
	defaultUploadTimeout = 30 * time.Second
)

// Engine is the sync protocol core.
type Engine struct {
	outbox  outbox.Repository
	backend backend.Client
	photos  PhotoUploader
	log     logging.Logger

	callTimeout   time.Duration
	uploadTimeout time.Duration

	// flushing is the reentrancy guard: only one flush cycle may run at a
	// time. A trigger arriving mid-flush is dropped, not queued; the next
	// natural trigger picks up whatever is still in the outbox.
	flushing atomic.Bool

	mu      sync.Mutex
	lastErr string
}

// New returns an Engine draining out against b, uploading photos via p.
func New(out outbox.Repository, b backend.Client, p PhotoUploader, log logging.Logger) *Engine {
	return &Engine{
		outbox:        out,
		backend:       b,
		photos:        p,
		log:           log,
		callTimeout:   defaultCallTimeout,
		uploadTimeout: defaultUploadTimeout,
	}
}

// Run consumes offline→online transitions from ch and flushes on each one
// until ctx is cancelled. Callers typically pass a connectivity.Monitor
// subscription.
func (e *Engine) Run(ctx context.Context, ch <-chan struct{}) {
	for {
		select {
		case <-ch:
			_ = e.Flush(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// Flush runs one complete drain cycle over the current outbox contents.
// If a cycle is already active the call returns immediately with no error.
// Per-submission failures do not abort the cycle and are not returned; the
// failed submissions simply stay queued for the next trigger.
func (e *Engine) Flush(ctx context.Context) error {
	if !e.flushing.CompareAndSwap(false, true) {
		return nil
	}
	defer e.flushing.Store(false)

	pending, err := e.outbox.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing pending submissions: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	e.log.Info(ctx, "starting flush cycle", "pending", len(pending))

	var synced []string
	for _, s := range pending {
		if err := e.syncOne(ctx, s); err != nil {
			e.log.Error(ctx, "submission sync failed", "submission_id", s.ID, "error", err)
			e.setLastError(err)
			continue
		}
		synced = append(synced, s.ID)
	}

	if len(synced) > 0 {
		if err := e.outbox.Remove(ctx, synced); err != nil {
			return fmt.Errorf("error removing synced submissions: %w", err)
		}
	}

	e.log.Info(ctx, "flush cycle finished",
		"total", len(pending), "synced", len(synced), "remaining", len(pending)-len(synced))
	return nil
}

// syncOne pushes a single submission: parent record, plain items in one
// batch, then photos one by one. An error from the parent or plain-item
// steps aborts this submission; photo errors never do.
func (e *Engine) syncOne(ctx context.Context, s models.PendingSubmission) error {
	batchID, err := e.insertBatch(ctx, s)
	if err != nil {
		return fmt.Errorf("error inserting batch: %w", err)
	}

	var plain, placeholders []models.MeasurementItem
	for _, item := range s.Items {
		if item.IsPhotoPlaceholder() {
			placeholders = append(placeholders, item)
		} else {
			plain = append(plain, item)
		}
	}

	if len(plain) > 0 {
		if err := e.insertItems(ctx, batchID, plain); err != nil {
			// The parent record already exists server-side; the idempotency
			// key on the batch keeps the retry from duplicating it.
			return fmt.Errorf("error inserting items: %w", err)
		}
	}

	for _, ph := range s.Photos {
		if err := e.syncPhoto(ctx, s, batchID, &placeholders, ph); err != nil {
			e.log.Error(ctx, "photo sync failed",
				"submission_id", s.ID, "measurement_type_id", ph.MeasurementTypeID, "error", err)
		}
	}

	return nil
}

// syncPhoto handles one photo: placeholder item with a null attachment,
// binary upload, then the URL patch. Each photo fails independently.
func (e *Engine) syncPhoto(ctx context.Context, s models.PendingSubmission, batchID string, placeholders *[]models.MeasurementItem, ph models.PendingPhoto) error {
	data, err := decodePhotoData(ph.Data)
	if err != nil {
		return fmt.Errorf("error decoding photo payload: %w", err)
	}

	placeholder, rest, ok := takePlaceholder(*placeholders, ph.MeasurementTypeID)
	if !ok {
		return fmt.Errorf("no placeholder item for measurement type %q", ph.MeasurementTypeID)
	}
	*placeholders = rest

	itemID, err := e.insertItem(ctx, batchID, backend.ItemInsert{
		Label:               placeholder.Label,
		Value:               placeholder.Value,
		MeasurementTypeID:   placeholder.MeasurementTypeID,
		MeasurementTypeName: placeholder.MeasurementTypeName,
		AttachmentURL:       nil, // patched after the upload succeeds
	})
	if err != nil {
		return fmt.Errorf("error inserting placeholder item: %w", err)
	}

	uctx, cancel := context.WithTimeout(ctx, e.uploadTimeout)
	defer cancel()

	res, err := e.photos.Upload(uctx, data, ph.FileName, ph.MimeType, itemID, s.ClientID)
	if err != nil {
		return fmt.Errorf("error uploading photo: %w", err)
	}

	if err := e.updateAttachment(ctx, itemID, res.URL, res.ThumbnailURL); err != nil {
		return fmt.Errorf("error linking photo url: %w", err)
	}
	return nil
}

func (e *Engine) insertBatch(ctx context.Context, s models.PendingSubmission) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	return e.backend.InsertBatch(cctx, backend.BatchInsert{
		ClientRef:         s.ID,
		CollectionPointID: s.CollectionPointID,
		ClientID:          s.ClientID,
		WorkAreaID:        s.WorkAreaID,
		MeasuredAt:        s.MeasuredAt,
	})
}

func (e *Engine) insertItems(ctx context.Context, batchID string, items []models.MeasurementItem) error {
	inserts := make([]backend.ItemInsert, 0, len(items))
	for _, item := range items {
		url := item.Image
		var att *string
		if url != "" {
			att = &url
		}
		inserts = append(inserts, backend.ItemInsert{
			Label:               item.Label,
			Value:               item.Value,
			MeasurementTypeID:   item.MeasurementTypeID,
			MeasurementTypeName: item.MeasurementTypeName,
			AttachmentURL:       att,
		})
	}

	cctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	return e.backend.InsertItems(cctx, batchID, inserts)
}

func (e *Engine) insertItem(ctx context.Context, batchID string, item backend.ItemInsert) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	return e.backend.InsertItem(cctx, batchID, item)
}

func (e *Engine) updateAttachment(ctx context.Context, itemID, url, thumbURL string) error {
	cctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()

	return e.backend.UpdateItemAttachment(cctx, itemID, url, thumbURL)
}

// LastSyncError returns the most recent sync failure message, or "" when
// none is outstanding. It stays set until DismissSyncError.
func (e *Engine) LastSyncError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// DismissSyncError clears the user-visible error channel.
func (e *Engine) DismissSyncError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = ""
}

func (e *Engine) setLastError(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastErr = err.Error()
}

// decodePhotoData turns the stored base64 payload back into binary. Data
// URL prefixes ("data:image/jpeg;base64,...") are tolerated for payloads
// imported from the original PWA's storage.
func decodePhotoData(stored string) ([]byte, error) {
	if idx := strings.IndexByte(stored, ','); idx >= 0 && strings.Contains(stored[:idx], ";base64") {
		stored = stored[idx+1:]
	}
	return base64.StdEncoding.DecodeString(stored)
}

// takePlaceholder removes and returns the first placeholder item whose
// measurement-type id equals typeID. Matching on the id field rather than
// the marker string keeps ids that are substrings of each other apart, and
// consuming the match keeps two photos of one type from sharing a
// placeholder.
func takePlaceholder(placeholders []models.MeasurementItem, typeID string) (models.MeasurementItem, []models.MeasurementItem, bool) {
	for i, item := range placeholders {
		if item.MeasurementTypeID == typeID {
			return item, append(placeholders[:i:i], placeholders[i+1:]...), true
		}
	}
	return models.MeasurementItem{}, placeholders, false
}
