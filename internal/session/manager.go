package session

import (
	"fmt"
	"sync"

	"github.com/agrivaani/agrivaani/internal/lang"
	"github.com/agrivaani/agrivaani/internal/storage"
)

// Manager creates and tracks live sessions for the daemon's API surface.
type Manager struct {
	store *storage.Store
	opts  Options

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a Manager. opts apply to every session it creates.
func NewManager(store *storage.Store, opts Options) *Manager {
	return &Manager{
		store:    store,
		opts:     opts,
		sessions: map[string]*Session{},
	}
}

// Create starts a new session in the given language.
func (m *Manager) Create(l lang.Language) (*Session, error) {
	s, err := New(m.store, l, m.opts)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s, nil
}

// Get returns the session with the given id, rehydrating it from storage
// when it is not live, or storage.ErrNotFound for an unknown id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	if s, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return s, nil
	}
	m.mu.Unlock()

	// Persisted conversations outlive the daemon; a miss here may just
	// mean the process restarted since the session was created.
	s, err := Load(m.store, id, m.opts)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.sessions[id]; ok {
		return existing, nil
	}
	m.sessions[id] = s
	return s, nil
}

// Count reports the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
