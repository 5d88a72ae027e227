// Package connectivity tracks server reachability and notifies listeners on
// online/offline transitions.
//
// There is no portable native connectivity event source, so the monitor
// uses a heartbeat: a periodic cheap probe against the API. Listeners are
// invoked only on transitions, never on steady state.
package connectivity

import (
	"context"
	"log"
	"os"
	"sync"
	"time"
)

// Prober checks whether the server is reachable. A nil error means online.
type Prober interface {
	Ping(ctx context.Context) error
}

// DefaultInterval is the heartbeat period.
const DefaultInterval = 15 * time.Second

// probeTimeout bounds a single heartbeat probe.
const probeTimeout = 5 * time.Second

// Monitor emits online/offline transitions driven by a heartbeat probe.
type Monitor struct {
	prober   Prober
	interval time.Duration
	logger   *log.Logger

	mu       sync.Mutex
	online   bool
	handlers []func(online bool)

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor creates a monitor. The initial state is offline until the
// first successful probe.
//
// If interval is 0, DefaultInterval is used. If logger is nil, a default
// logger writing to stderr is used.
func NewMonitor(prober Prober, interval time.Duration, logger *log.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if logger == nil {
		logger = log.New(os.Stderr, "[connectivity] ", log.LstdFlags)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Monitor{
		prober:   prober,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnChange registers fn to run on every transition. Handlers run on the
// monitor goroutine and must not block. Register before Start.
func (m *Monitor) OnChange(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, fn)
}

// Online returns the current reachability state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Start probes once immediately, then begins the heartbeat loop.
func (m *Monitor) Start() {
	m.probe()

	m.wg.Add(1)
	go m.heartbeat()
}

// Stop terminates the heartbeat loop and waits for it to finish.
func (m *Monitor) Stop() {
	m.cancel()
	m.wg.Wait()
}

// SetOnline forces the state, firing handlers on a transition. Used by
// tests and by the CLI's explicit offline mode.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	changed := m.online != online
	m.online = online
	handlers := make([]func(bool), len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	if !changed {
		return
	}

	if online {
		m.logger.Println("Became online")
	} else {
		m.logger.Println("Became offline")
	}
	for _, fn := range handlers {
		fn(online)
	}
}

// heartbeat probes the server every interval until stopped.
func (m *Monitor) heartbeat() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return

		case <-ticker.C:
			m.probe()
		}
	}
}

// probe runs a single bounded reachability check and records the result.
func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(m.ctx, probeTimeout)
	defer cancel()

	err := m.prober.Ping(ctx)
	m.SetOnline(err == nil)
}
