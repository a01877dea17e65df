package models

import "time"

// Client is a customer company the technician collects measurements for.
type Client struct {
	ID          int64  `json:"id"`
	TaxID       string `json:"cnpj_cpf,omitempty"`
	ShortName   string `json:"id_name,omitempty"`
	LegalName   string `json:"razao_social,omitempty"`
	City        string `json:"cidade,omitempty"`
	State       string `json:"uf,omitempty"`
	HasContract bool   `json:"tem_contrato,omitempty"`
}

// DisplayName prefers the legal name, falling back to the short name.
func (c Client) DisplayName() string {
	if c.LegalName != "" {
		return c.LegalName
	}
	return c.ShortName
}

// WorkArea is a named area inside a client's site.
type WorkArea struct {
	ID          string `json:"id"`
	ClientID    int64  `json:"cliente_id"`
	Name        string `json:"nome_area"`
	Description string `json:"descricao,omitempty"`
}

// CollectionPoint is the physical location a measurement is taken at.
// MeasurementTypeIDs scopes the point to its allowed measurement types.
type CollectionPoint struct {
	ID                 string   `json:"id"`
	ClientID           int64    `json:"cliente_id"`
	WorkAreaID         string   `json:"area_de_trabalho_id"`
	Name               string   `json:"nome"`
	Description        string   `json:"descricao,omitempty"`
	MeasurementTypeIDs []string `json:"tipos_medicao,omitempty"`
}

// SelectionStateTTL bounds how long a persisted selection is restored for.
const SelectionStateTTL = time.Hour

// SelectionState remembers the last chosen client/area so the technician
// resumes where they left off. Expired state is ignored on load.
type SelectionState struct {
	ClientID   int64  `json:"clienteId"`
	WorkAreaID string `json:"areaId,omitempty"`
	// Timestamp is unix milliseconds of the last save.
	Timestamp int64 `json:"timestamp"`
}

// Expired reports whether the state is older than SelectionStateTTL at now.
func (s SelectionState) Expired(now time.Time) bool {
	saved := time.UnixMilli(s.Timestamp)
	return now.Sub(saved) > SelectionStateTTL
}
