// Package connectivity tracks whether the backend is reachable and lets the
// sync engine react to offline→online transitions.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/rgoncalves/fieldsync/internal/logging"
)

// Pinger probes backend reachability. Satisfied by backend.Client.
type Pinger interface {
	Ping(ctx context.Context) error
}

const probeTimeout = 3 * time.Second

// Monitor holds the current online/offline state. State changes come from
// periodic probes (Run) or are injected directly via SetOnline, which tests
// and platform hooks use.
type Monitor struct {
	pinger Pinger
	log    logging.Logger

	mu     sync.Mutex
	online bool
	subs   []chan struct{}
}

// NewMonitor returns a Monitor that starts out offline; the first
// successful probe flips it online.
func NewMonitor(p Pinger, log logging.Logger) *Monitor {
	return &Monitor{pinger: p, log: log}
}

// Online reports the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe returns a channel that receives a signal on each
// offline→online transition. The channel has capacity one and sends are
// non-blocking: a subscriber that has not drained the previous signal
// simply coalesces transitions, which is all the sync engine needs.
func (m *Monitor) Subscribe() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan struct{}, 1)
	m.subs = append(m.subs, ch)
	return ch
}

// SetOnline updates the state and notifies subscribers when the state went
// from offline to online. Repeated calls with the same value are no-ops.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.online == online {
		return
	}
	m.online = online

	if m.log != nil {
		mode := "offline"
		if online {
			mode = "online"
		}
		m.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}

	if !online {
		return
	}
	for _, ch := range m.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Run probes the backend every interval until ctx is cancelled. Each probe
// is bounded by its own timeout so a hung probe cannot stall the loop.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	m.probe(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	m.SetOnline(m.pinger.Ping(pctx) == nil)
}
