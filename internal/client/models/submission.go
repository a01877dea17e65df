// Package models holds the client-side domain types: pending submissions,
// the reference-data hierarchy and the measurement-type catalog.
//
// JSON field names follow the durable storage contract of the original PWA
// (Portuguese column names), so payloads persisted by either client remain
// interchangeable.
package models

import "time"

// PendingSubmission is one user-initiated measurement batch awaiting
// confirmation by the backend. It is immutable once enqueued; the sync
// engine only ever removes it wholesale after a fully successful sync.
type PendingSubmission struct {
	// ID is generated locally at enqueue time and never reused. It doubles
	// as the idempotency key (client_ref) on the remote parent insert.
	ID                string            `json:"id"`
	CollectionPointID string            `json:"ponto_de_coleta_id"`
	ClientID          int64             `json:"cliente_id"`
	WorkAreaID        string            `json:"area_de_trabalho_id,omitempty"`
	// MeasuredAt is the instant of the measurement event itself, distinct
	// from the enqueue time. Stored as an absolute UTC instant.
	MeasuredAt time.Time         `json:"data_hora_medicao"`
	Items      []MeasurementItem `json:"items"`
	Photos     []PendingPhoto    `json:"photos"`
	// EnqueuedAt is local bookkeeping only (unix milliseconds).
	EnqueuedAt int64 `json:"timestamp"`
}

// PhotoPlaceholderPrefix marks an item as produced from the photos array.
// The full marker is PhotoPlaceholderPrefix + measurement-type id.
const PhotoPlaceholderPrefix = "pending_upload_"

// MeasurementItem is a single reading inside a submission.
type MeasurementItem struct {
	Label               string  `json:"parametro,omitempty"`
	Value               float64 `json:"valor"`
	MeasurementTypeID   string  `json:"tipo_medicao_id"`
	MeasurementTypeName string  `json:"tipo_medicao_nome,omitempty"`
	// Image holds a photo-placeholder marker while the submission is
	// pending; after sync it is the attachment URL on the remote item.
	Image string `json:"image,omitempty"`
}

// IsPhotoPlaceholder reports whether the item stands in for a photo whose
// upload has not happened yet.
func (i MeasurementItem) IsPhotoPlaceholder() bool {
	return len(i.Image) >= len(PhotoPlaceholderPrefix) &&
		i.Image[:len(PhotoPlaceholderPrefix)] == PhotoPlaceholderPrefix
}

// PendingPhoto is a photo captured while offline, held in the outbox until
// its submission syncs. Data is the binary payload encoded as base64.
type PendingPhoto struct {
	MeasurementTypeID string `json:"tipo_medicao_id"`
	Data              string `json:"file_data"`
	FileName          string `json:"file_name"`
	MimeType          string `json:"file_type"`
}
