package connectivity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rgoncalves/fieldsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	fail atomic.Bool
}

func (p *fakePinger) Ping(ctx context.Context) error {
	if p.fail.Load() {
		return errors.New("unreachable")
	}
	return nil
}

func TestMonitor_StartsOffline(t *testing.T) {
	m := NewMonitor(&fakePinger{}, logging.NopLogger{})
	assert.False(t, m.Online())
}

func TestSetOnline_NotifiesOnOfflineToOnline(t *testing.T) {
	m := NewMonitor(&fakePinger{}, logging.NopLogger{})
	ch := m.Subscribe()

	m.SetOnline(true)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("expected a transition signal")
	}
	assert.True(t, m.Online())
}

func TestSetOnline_NoSignalOnRepeatOrOffline(t *testing.T) {
	m := NewMonitor(&fakePinger{}, logging.NopLogger{})
	ch := m.Subscribe()

	m.SetOnline(true)
	<-ch

	m.SetOnline(true)  // repeat, no transition
	m.SetOnline(false) // online→offline never signals

	select {
	case <-ch:
		t.Fatal("unexpected signal")
	default:
	}
}

func TestSetOnline_CoalescesWhenSubscriberIsSlow(t *testing.T) {
	m := NewMonitor(&fakePinger{}, logging.NopLogger{})
	ch := m.Subscribe()

	// Three transitions without the subscriber draining; must not block.
	for i := 0; i < 3; i++ {
		m.SetOnline(true)
		m.SetOnline(false)
	}
	m.SetOnline(true)

	select {
	case <-ch:
	default:
		t.Fatal("expected at least one buffered signal")
	}
}

func TestRun_ProbesAndFlipsState(t *testing.T) {
	p := &fakePinger{}
	p.fail.Store(true)
	m := NewMonitor(p, logging.NopLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		m.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return !m.Online() }, time.Second, 5*time.Millisecond)

	p.fail.Store(false)
	require.Eventually(t, m.Online, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on ctx cancel")
	}
}
