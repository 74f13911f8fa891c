// Package netmon provides the network signal: a push-based connectivity flag
// with transition subscriptions consumed by the sync scheduler and helpers.
package netmon

import (
	"sync"

	"github.com/estrateji/edusync/internal/logging"
)

// Monitor holds the current online flag and notifies subscribers exactly once
// per transition. It never fails, it only reports.
type Monitor struct {
	mu     sync.Mutex
	online bool
	subs   map[int]func(online bool)
	nextID int
}

// NewMonitor creates a Monitor with the given initial state. No subscriber
// is notified for the initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{
		online: online,
		subs:   make(map[int]func(bool)),
	}
}

// IsOnline returns the current connectivity flag.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records a connectivity report from the underlying source. Subscribers
// are invoked only when the flag actually changes, never on no-op re-checks.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.mu.Unlock()

	logging.Info("connectivity changed", logging.Fields{"online": online})

	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers fn to be called on every transition and returns an
// unsubscribe function.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}
