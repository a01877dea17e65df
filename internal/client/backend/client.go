// Package backend defines the narrow interface the client consumes from the
// remote record store, plus its REST implementation. The backend is treated
// as an opaque service: table-like inserts/updates for measurement data and
// reads for the reference hierarchy.
package backend

import (
	"context"
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/models"
)

// BatchInsert is the parent record created per submission.
type BatchInsert struct {
	// ClientRef is the local submission id, used by the backend as an
	// idempotency key: re-inserting the same ref returns the existing
	// batch instead of creating a duplicate.
	ClientRef         string    `json:"client_ref"`
	CollectionPointID string    `json:"ponto_de_coleta_id"`
	ClientID          int64     `json:"cliente_id"`
	WorkAreaID        string    `json:"area_de_trabalho_id,omitempty"`
	MeasuredAt        time.Time `json:"data_hora_medicao"`
}

// ItemInsert is one child record tied to a batch.
type ItemInsert struct {
	Label               string  `json:"parametro,omitempty"`
	Value               float64 `json:"valor"`
	MeasurementTypeID   string  `json:"tipo_medicao_id"`
	MeasurementTypeName string  `json:"tipo_medicao_nome,omitempty"`
	// AttachmentURL stays nil for photo placeholders until the upload
	// pipeline patches it in.
	AttachmentURL *string `json:"image"`
}

// AppVersion is the currently published client version.
type AppVersion struct {
	Version     string `json:"version"`
	ForceUpdate bool   `json:"force_update"`
	Description string `json:"description,omitempty"`
}

// ActionLogEntry records one user action for audit purposes.
type ActionLogEntry struct {
	ActionType        string `json:"action_type"`
	ClientID          int64  `json:"cliente_id,omitempty"`
	WorkAreaID        string `json:"area_de_trabalho_id,omitempty"`
	CollectionPointID string `json:"ponto_de_coleta_id,omitempty"`
	MeasurementTypeID string `json:"tipo_medicao_id,omitempty"`
	RawValue          string `json:"raw_value,omitempty"`
	ErrorData         string `json:"error_data,omitempty"`
}

// Client is the remote backend as seen by the rest of the system. Any
// transport failure is wrapped as common.ErrTransientNetwork so callers can
// classify it without knowing the transport.
type Client interface {
	Close() error

	Login(ctx context.Context, username, password string) error
	Ping(ctx context.Context) error

	InsertBatch(ctx context.Context, b BatchInsert) (string, error)
	InsertItems(ctx context.Context, batchID string, items []ItemInsert) error
	InsertItem(ctx context.Context, batchID string, item ItemInsert) (string, error)
	UpdateItemAttachment(ctx context.Context, itemID string, url, thumbnailURL string) error

	ListClients(ctx context.Context) ([]models.Client, error)
	ListAreas(ctx context.Context, clientID int64) ([]models.WorkArea, error)
	ListPoints(ctx context.Context, areaID string) ([]models.CollectionPoint, error)
	ListMeasurementTypes(ctx context.Context) ([]models.MeasurementType, error)

	ActiveVersion(ctx context.Context) (*AppVersion, error)
	InsertActionLog(ctx context.Context, e ActionLogEntry) error
}
