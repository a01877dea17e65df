// Package services holds the use-case layer of the client: reference-data
// selection, submission building, user-action logging and version checks.
// Services depend on the repositories and the backend through interfaces
// so tests can swap fakes in.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/backend"
	"github.com/rgoncalves/fieldsync/internal/client/models"
	"github.com/rgoncalves/fieldsync/internal/client/repositories/cache"
	"github.com/rgoncalves/fieldsync/internal/common"
	"github.com/rgoncalves/fieldsync/internal/logging"
)

// OnlineChecker reports current connectivity. Implemented by the
// connectivity monitor.
type OnlineChecker interface {
	Online() bool
}

// SelectionService serves the client/area/point hierarchy and the
// measurement-type catalog, cache-first, and persists the technician's
// last selection.
type SelectionService interface {
	Clients(ctx context.Context) ([]models.Client, error)
	Areas(ctx context.Context, clientID int64) ([]models.WorkArea, error)
	Points(ctx context.Context, areaID string) ([]models.CollectionPoint, error)
	MeasurementTypes(ctx context.Context) ([]models.MeasurementType, error)

	SaveSelection(ctx context.Context, clientID int64, areaID string) error
	LoadSelection(ctx context.Context) (*models.SelectionState, error)

	// Reset clears every cached snapshot, including the saved selection.
	Reset(ctx context.Context) error
}

type selectionService struct {
	backend backend.Client
	cache   cache.Repository
	online  OnlineChecker
	log     logging.Logger

	now func() time.Time
}

func NewSelectionService(b backend.Client, c cache.Repository, online OnlineChecker, log logging.Logger) SelectionService {
	return &selectionService{backend: b, cache: c, online: online, log: log, now: time.Now}
}

func (s *selectionService) Clients(ctx context.Context) ([]models.Client, error) {
	return readThrough(ctx, s, common.CacheKeyClients, s.backend.ListClients)
}

func (s *selectionService) Areas(ctx context.Context, clientID int64) ([]models.WorkArea, error) {
	key := fmt.Sprintf("%s%d", common.CacheKeyAreaPrefix, clientID)
	return readThrough(ctx, s, key, func(ctx context.Context) ([]models.WorkArea, error) {
		return s.backend.ListAreas(ctx, clientID)
	})
}

func (s *selectionService) Points(ctx context.Context, areaID string) ([]models.CollectionPoint, error) {
	key := common.CacheKeyPointPrefix + areaID
	return readThrough(ctx, s, key, func(ctx context.Context) ([]models.CollectionPoint, error) {
		return s.backend.ListPoints(ctx, areaID)
	})
}

func (s *selectionService) MeasurementTypes(ctx context.Context) ([]models.MeasurementType, error) {
	return readThrough(ctx, s, common.CacheKeyMeasurementTypes, s.backend.ListMeasurementTypes)
}

func (s *selectionService) SaveSelection(ctx context.Context, clientID int64, areaID string) error {
	state := models.SelectionState{
		ClientID:   clientID,
		WorkAreaID: areaID,
		Timestamp:  s.now().UnixMilli(),
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("error marshalling selection: %w", err)
	}
	return s.cache.Write(ctx, common.CacheKeySelectionState, data)
}

// LoadSelection returns the persisted selection, or nil when none is
// saved or the saved one has expired.
func (s *selectionService) LoadSelection(ctx context.Context) (*models.SelectionState, error) {
	data, err := s.cache.Read(ctx, common.CacheKeySelectionState)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading selection: %w", err)
	}

	var state models.SelectionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("error unmarshalling selection: %w", err)
	}

	if state.Expired(s.now()) {
		_ = s.cache.Delete(ctx, common.CacheKeySelectionState)
		return nil, nil
	}
	return &state, nil
}

func (s *selectionService) Reset(ctx context.Context) error {
	if err := s.cache.Clear(ctx); err != nil {
		return fmt.Errorf("error clearing cache: %w", err)
	}
	return nil
}

// readThrough is the uniform cache-first pattern used for every reference
// type. Online: fetch fresh, overwrite the snapshot wholesale, return it;
// if the fetch fails, fall back to the snapshot. Offline: snapshot or
// common.ErrOfflineNoData.
func readThrough[T any](ctx context.Context, s *selectionService, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if s.online.Online() {
		fresh, err := fetch(ctx)
		if err == nil {
			if data, merr := json.Marshal(fresh); merr == nil {
				if werr := s.cache.Write(ctx, key, data); werr != nil {
					s.log.Warn(ctx, "cache write failed", "key", key, "error", werr)
				}
			}
			return fresh, nil
		}
		s.log.Warn(ctx, "network refresh failed, falling back to cache", "key", key, "error", err)
	}

	data, err := s.cache.Read(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrOfflineNoData
		}
		return nil, fmt.Errorf("error reading cache: %w", err)
	}

	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("error unmarshalling cached snapshot: %w", err)
	}
	return out, nil
}
