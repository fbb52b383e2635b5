// Package connectivity tracks the daemon's online/offline state.
package connectivity

import "sync"

// Probe reports the current network reachability. It is consulted exactly
// once, at Monitor construction; afterwards state changes only through
// externally delivered events via SetOnline.
type Probe func() bool

// Monitor holds two independent bits: the live online state, driven by
// connectivity-changed events, and the sticky offline-mode flag. Offline mode
// defaults to enabled and is never cleared by network recovery; it signals
// consumers to prefer cached values even when online.
type Monitor struct {
	mu          sync.Mutex
	online      bool
	offlineMode bool
	subs        []chan bool
}

// NewMonitor creates a Monitor with the initial online state read from probe.
// A nil probe starts the monitor offline.
func NewMonitor(probe Probe) *Monitor {
	m := &Monitor{offlineMode: true}
	if probe != nil {
		m.online = probe()
	}
	return m
}

// IsOnline reports the last delivered connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OfflineModeEnabled reports whether consumers should prefer cached data.
func (m *Monitor) OfflineModeEnabled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offlineMode
}

// EnableOfflineMode turns the sticky offline-mode flag on. Calling it when
// already enabled is a no-op. Nothing turns the flag back off.
func (m *Monitor) EnableOfflineMode() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offlineMode = true
}

// SetOnline delivers a connectivity-changed event. Subscribers are notified
// only on actual transitions.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]chan bool, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- online:
		default:
			// Slow subscriber; drop rather than block the event source.
		}
	}
}

// Subscribe returns a channel receiving each online/offline transition.
// The channel is buffered; subscribers that fall behind miss events.
func (m *Monitor) Subscribe() <-chan bool {
	ch := make(chan bool, 4)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}
