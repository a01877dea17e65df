// Package common contains shared constants and sentinel errors used across
// FieldSync components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Sync error taxonomy. ErrValidation covers malformed input detected
	// before any network call, ErrTransientNetwork covers any failed backend
	// call during a flush cycle (the submission stays queued and is retried),
	// ErrProcessing covers local data transformation failures such as an
	// image that cannot be decoded.
	ErrValidation       = errors.New("validation error")
	ErrTransientNetwork = errors.New("transient network error")
	ErrProcessing       = errors.New("processing error")

	// ErrOfflineNoData is returned by cache-first reads when the client is
	// offline and no cached snapshot exists for the requested key.
	ErrOfflineNoData = errors.New("data unavailable offline")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
