package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rgoncalves/fieldsync/internal/client/backend"
	"github.com/rgoncalves/fieldsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newActionLogForTest(fb *stubBackend) (*actionLogService, *time.Time) {
	svc := NewActionLogService(fb, logging.NopLogger{}).(*actionLogService)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	return svc, &now
}

func entry(action string) backend.ActionLogEntry {
	return backend.ActionLogEntry{ActionType: action, ClientID: 42}
}

func TestActionLog_DeliversWhenHealthy(t *testing.T) {
	fb := &stubBackend{}
	svc, _ := newActionLogForTest(fb)
	ctx := context.Background()

	svc.Record(ctx, entry("login"))
	svc.Record(ctx, entry("submit"))

	require.Len(t, fb.actionLogs, 2)
	assert.Zero(t, svc.Pending())
	assert.False(t, svc.open)
}

func TestActionLog_OpensAfterMaxFailures(t *testing.T) {
	fb := &stubBackend{actionErr: errors.New("backend down")}
	svc, _ := newActionLogForTest(fb)
	ctx := context.Background()

	for i := 0; i < actionLogMaxFailures; i++ {
		svc.Record(ctx, entry("submit"))
	}

	assert.True(t, svc.open)
	assert.Equal(t, actionLogMaxFailures, svc.Pending())
}

func TestActionLog_QueuesWhileOpen(t *testing.T) {
	fb := &stubBackend{actionErr: errors.New("backend down")}
	svc, _ := newActionLogForTest(fb)
	ctx := context.Background()

	for i := 0; i < actionLogMaxFailures; i++ {
		svc.Record(ctx, entry("submit"))
	}
	require.True(t, svc.open)

	// Backend recovers, but the retry window has not passed: events must
	// queue without touching the network.
	fb.mu.Lock()
	fb.actionErr = nil
	fb.mu.Unlock()

	svc.Record(ctx, entry("select"))
	assert.Empty(t, fb.actionLogs)
	assert.Equal(t, actionLogMaxFailures+1, svc.Pending())
}

func TestActionLog_DrainsQueueAfterRetryWindow(t *testing.T) {
	fb := &stubBackend{actionErr: errors.New("backend down")}
	svc, now := newActionLogForTest(fb)
	ctx := context.Background()

	for i := 0; i < actionLogMaxFailures; i++ {
		svc.Record(ctx, entry("submit"))
	}
	require.True(t, svc.open)

	fb.mu.Lock()
	fb.actionErr = nil
	fb.mu.Unlock()
	*now = now.Add(actionLogRetryAfter + time.Second)

	svc.Record(ctx, entry("sync"))

	// The probe event plus the whole queue made it through.
	require.Len(t, fb.actionLogs, actionLogMaxFailures+1)
	assert.Zero(t, svc.Pending())
	assert.False(t, svc.open)
}

func TestActionLog_DrainFailureRequeuesWithoutReopening(t *testing.T) {
	fb := &stubBackend{actionErr: errors.New("backend down")}
	svc, now := newActionLogForTest(fb)
	ctx := context.Background()

	for i := 0; i < actionLogMaxFailures; i++ {
		svc.Record(ctx, entry("submit"))
	}
	require.True(t, svc.open)
	require.Equal(t, actionLogMaxFailures, svc.Pending())

	// Backend recovers just long enough for the probe plus one queued
	// event, then fails mid-drain.
	fb.mu.Lock()
	fb.actionErr = nil
	fb.failActionAfter = 2
	fb.mu.Unlock()
	*now = now.Add(actionLogRetryAfter + time.Second)

	svc.Record(ctx, entry("sync"))

	require.Len(t, fb.actionLogs, 2)
	assert.Equal(t, actionLogMaxFailures-1, svc.Pending())
	assert.False(t, svc.open)
	assert.Equal(t, 1, svc.failureCount)

	// The next healthy send drains what was put back.
	fb.mu.Lock()
	fb.failActionAfter = 0
	fb.mu.Unlock()

	svc.Record(ctx, entry("sync"))

	require.Len(t, fb.actionLogs, actionLogMaxFailures+2)
	assert.Zero(t, svc.Pending())
	assert.Zero(t, svc.failureCount)
}

func TestActionLog_HalfOpenFailureStaysOpen(t *testing.T) {
	fb := &stubBackend{actionErr: errors.New("backend down")}
	svc, now := newActionLogForTest(fb)
	ctx := context.Background()

	for i := 0; i < actionLogMaxFailures; i++ {
		svc.Record(ctx, entry("submit"))
	}
	require.True(t, svc.open)

	*now = now.Add(actionLogRetryAfter + time.Second)
	svc.Record(ctx, entry("sync"))

	assert.True(t, svc.open)
	assert.Equal(t, actionLogMaxFailures+1, svc.Pending())
}
