// Package models defines the persistence schema of the backend. JSON tags
// follow the field-data wire contract the mobile clients already speak, so
// gorm rows marshal straight into API responses.
package models

import "time"

// User is an API account for a field technician.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
	Username       string    `gorm:"size:255;not null;unique" json:"username"`
	HashedPassword []byte    `gorm:"not null" json:"-"`
}

// Client is a customer company.
type Client struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	TaxID       string `gorm:"size:20" json:"cnpj_cpf,omitempty"`
	ShortName   string `gorm:"size:100" json:"id_name,omitempty"`
	LegalName   string `gorm:"size:255" json:"razao_social,omitempty"`
	City        string `gorm:"size:100" json:"cidade,omitempty"`
	State       string `gorm:"size:2" json:"uf,omitempty"`
	HasContract bool   `json:"tem_contrato,omitempty"`
}

// WorkArea is a named area inside a client's site.
type WorkArea struct {
	ID          string `gorm:"primaryKey;size:36" json:"id"`
	ClientID    int64  `gorm:"index;not null" json:"cliente_id"`
	Name        string `gorm:"size:255;not null" json:"nome_area"`
	Description string `json:"descricao,omitempty"`
}

// CollectionPoint is a physical measurement location inside a work area.
// MeasurementTypeIDs restricts which catalog entries apply at this point.
type CollectionPoint struct {
	ID                 string   `gorm:"primaryKey;size:36" json:"id"`
	ClientID           int64    `gorm:"index;not null" json:"cliente_id"`
	WorkAreaID         string   `gorm:"index;size:36;not null" json:"area_de_trabalho_id"`
	Name               string   `gorm:"size:255;not null" json:"nome"`
	Description        string   `json:"descricao,omitempty"`
	MeasurementTypeIDs []string `gorm:"serializer:json" json:"tipos_medicao,omitempty"`
}

// MeasurementType is one catalog entry. Wire shape matches what the client
// catalog parser expects (input_type, range, validation_rules).
type MeasurementType struct {
	ID            string   `gorm:"primaryKey;size:36" json:"id"`
	Name          string   `gorm:"size:255;not null" json:"nome"`
	InputType     string   `gorm:"size:20;not null" json:"input_type"`
	RangeMin      *float64 `json:"-"`
	RangeMax      *float64 `json:"-"`
	DecimalPlaces int      `json:"decimal_places,omitempty"`
	Unit          string   `gorm:"size:20" json:"unit,omitempty"`
	Options       []string `gorm:"serializer:json" json:"options,omitempty"`
	Required      bool     `json:"-"`
	MaxLength     int      `json:"-"`
}

// MeasurementBatch is the parent record of one client submission. ClientRef
// is the submitting device's local id and doubles as an idempotency key:
// retried inserts with the same ref return the existing batch.
type MeasurementBatch struct {
	ID                string    `gorm:"primaryKey;size:36" json:"id"`
	ClientRef         string    `gorm:"uniqueIndex;size:36;not null" json:"client_ref"`
	CollectionPointID string    `gorm:"index;size:36;not null" json:"ponto_de_coleta_id"`
	ClientID          int64     `gorm:"index" json:"cliente_id"`
	WorkAreaID        string    `gorm:"size:36" json:"area_de_trabalho_id,omitempty"`
	MeasuredAt        time.Time `json:"data_hora_medicao"`
	CreatedAt         time.Time `json:"-"`
}

// MeasurementItem is one reading inside a batch. AttachmentURL stays null
// for photo items until the upload finishes and the client patches it in.
type MeasurementItem struct {
	ID                  string    `gorm:"primaryKey;size:36" json:"id"`
	BatchID             string    `gorm:"index;size:36;not null" json:"medicao_id"`
	Label               string    `gorm:"size:255" json:"parametro,omitempty"`
	Value               float64   `json:"valor"`
	MeasurementTypeID   string    `gorm:"index;size:36" json:"tipo_medicao_id"`
	MeasurementTypeName string    `gorm:"size:255" json:"tipo_medicao_nome,omitempty"`
	AttachmentURL       *string   `json:"image"`
	ThumbnailURL        *string   `json:"thumbnail_url,omitempty"`
	CreatedAt           time.Time `json:"-"`
}

// PhotoRecord tracks an uploaded photo object and which item it annotates.
type PhotoRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ItemID       string    `gorm:"index;size:36;not null" json:"item_id"`
	URL          string    `gorm:"not null" json:"url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	CreatedAt    time.Time `json:"-"`
}

// AppVersion is the published client version the update check serves.
type AppVersion struct {
	ID          uint   `gorm:"primaryKey" json:"-"`
	Version     string `gorm:"size:20;not null" json:"version"`
	ForceUpdate bool   `json:"force_update"`
	Description string `json:"description,omitempty"`
	Active      bool   `gorm:"index" json:"-"`
}

// ActionLog is one audited user action reported by a client.
type ActionLog struct {
	ID                uint      `gorm:"primaryKey" json:"-"`
	UserID            uint      `gorm:"index" json:"-"`
	ActionType        string    `gorm:"size:50;not null" json:"action_type"`
	ClientID          int64     `json:"cliente_id,omitempty"`
	WorkAreaID        string    `gorm:"size:36" json:"area_de_trabalho_id,omitempty"`
	CollectionPointID string    `gorm:"size:36" json:"ponto_de_coleta_id,omitempty"`
	MeasurementTypeID string    `gorm:"size:36" json:"tipo_medicao_id,omitempty"`
	RawValue          string    `json:"raw_value,omitempty"`
	ErrorData         string    `json:"error_data,omitempty"`
	CreatedAt         time.Time `json:"-"`
}
