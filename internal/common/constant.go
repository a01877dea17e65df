package common

// AuthorizationHeaderName is the HTTP header used to carry the bearer
// access token on requests to the backend API.
const AuthorizationHeaderName = "Authorization"

// Local store keys follow the durable contract of the original PWA's
// browser storage, so exported/imported state remains recognizable.
const (
	CacheKeyClients          = "cached_clientes"
	CacheKeyAreaPrefix       = "cached_areas_"
	CacheKeyPointPrefix      = "cached_pontos_"
	CacheKeyMeasurementTypes = "cached_tipos_medicao"
	CacheKeySelectionState   = "selection_state"
)
