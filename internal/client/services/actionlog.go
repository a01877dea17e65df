package services

import (
	"context"
	"sync"
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/backend"
	"github.com/rgoncalves/fieldsync/internal/logging"
)

const (
	actionLogMaxFailures = 5
	actionLogRetryAfter  = 30 * time.Second
)

// ActionLogService records user actions for audit. Delivery is strictly
// best-effort: a failing backend must never slow the UI down, so after
// actionLogMaxFailures consecutive failures the breaker opens and events
// queue locally until actionLogRetryAfter has passed and a send succeeds.
type ActionLogService interface {
	Record(ctx context.Context, e backend.ActionLogEntry)

	// Pending reports how many events are queued behind an open breaker.
	Pending() int
}

type actionLogService struct {
	backend backend.Client
	log     logging.Logger

	mu           sync.Mutex
	failureCount int
	open         bool
	openedAt     time.Time
	queue        []backend.ActionLogEntry

	now func() time.Time
}

func NewActionLogService(b backend.Client, log logging.Logger) ActionLogService {
	return &actionLogService{backend: b, log: log, now: time.Now}
}

// Record sends the event, or queues it while the breaker is open. Errors
// are swallowed after logging; callers never see them.
func (s *actionLogService) Record(ctx context.Context, e backend.ActionLogEntry) {
	s.mu.Lock()

	if s.open && s.now().Sub(s.openedAt) < actionLogRetryAfter {
		s.queue = append(s.queue, e)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.backend.InsertActionLog(ctx, e); err != nil {
		s.onFailure(ctx, e, err)
		return
	}
	s.onSuccess(ctx)
}

func (s *actionLogService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *actionLogService) onFailure(ctx context.Context, e backend.ActionLogEntry, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failureCount++
	s.queue = append(s.queue, e)

	if s.failureCount >= actionLogMaxFailures && !s.open {
		s.open = true
		s.openedAt = s.now()
		s.log.Warn(ctx, "action log breaker opened",
			"failures", s.failureCount, "queued", len(s.queue))
		return
	}
	if s.open {
		// Half-open probe failed; stay open for another window.
		s.openedAt = s.now()
	}
	s.log.Debug(ctx, "action log send failed", "error", err)
}

// onSuccess closes the breaker and drains the local queue. A drain failure
// puts the remainder back and counts as one fresh failure; the breaker only
// reopens after the usual run of consecutive failures.
func (s *actionLogService) onSuccess(ctx context.Context) {
	s.mu.Lock()
	s.failureCount = 0
	s.open = false
	queued := s.queue
	s.queue = nil
	s.mu.Unlock()

	for i, e := range queued {
		if err := s.backend.InsertActionLog(ctx, e); err != nil {
			s.mu.Lock()
			s.queue = append(queued[i:], s.queue...)
			s.failureCount = 1
			s.mu.Unlock()
			s.log.Debug(ctx, "action log drain interrupted", "remaining", len(queued)-i, "error", err)
			return
		}
	}
}
