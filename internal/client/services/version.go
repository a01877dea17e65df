package services

import (
	"context"
	"sync"
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/backend"
	"github.com/rgoncalves/fieldsync/internal/logging"
	"github.com/rgoncalves/fieldsync/internal/semver"
)

// VersionCheckInterval is how often the published version is re-polled.
const VersionCheckInterval = 30 * time.Minute

// UpdateInfo describes an available update for the status line.
type UpdateInfo struct {
	Version     string
	ForceUpdate bool
	Description string
}

// VersionService polls the backend for the published client version and
// reports when it is newer than the running build. A dismissed version
// stays hidden until a yet-newer one is published, unless the update is
// forced.
type VersionService interface {
	// Check polls once and updates the available-update state.
	Check(ctx context.Context) error

	// Available returns the pending update, or nil when up to date or
	// dismissed.
	Available() *UpdateInfo

	// Dismiss hides the currently offered version.
	Dismiss()

	// Run polls on VersionCheckInterval until ctx is done.
	Run(ctx context.Context)
}

type versionService struct {
	backend backend.Client
	current string
	log     logging.Logger

	mu        sync.Mutex
	latest    *UpdateInfo
	dismissed string
}

func NewVersionService(b backend.Client, currentVersion string, log logging.Logger) VersionService {
	return &versionService{backend: b, current: currentVersion, log: log}
}

func (s *versionService) Check(ctx context.Context) error {
	v, err := s.backend.ActiveVersion(ctx)
	if err != nil {
		return err
	}
	if v == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !semver.IsNewer(s.current, v.Version) {
		s.latest = nil
		return nil
	}
	s.latest = &UpdateInfo{
		Version:     v.Version,
		ForceUpdate: v.ForceUpdate,
		Description: v.Description,
	}
	return nil
}

func (s *versionService) Available() *UpdateInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest == nil {
		return nil
	}
	// Forced updates cannot be dismissed.
	if s.latest.Version == s.dismissed && !s.latest.ForceUpdate {
		return nil
	}
	u := *s.latest
	return &u
}

func (s *versionService) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.latest != nil {
		s.dismissed = s.latest.Version
	}
}

func (s *versionService) Run(ctx context.Context) {
	if err := s.Check(ctx); err != nil {
		s.log.Debug(ctx, "version check failed", "error", err)
	}

	ticker := time.NewTicker(VersionCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Check(ctx); err != nil {
				s.log.Debug(ctx, "version check failed", "error", err)
			}
		}
	}
}
