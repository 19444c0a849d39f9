package session

import (
	"sync"
	"time"
)

// DefaultIdleWindow is how long a session may sit untouched before the
// eviction sweep removes it.
const DefaultIdleWindow = 30 * time.Minute

// Manager is the dependency-injected keyed session collection. There are
// no package globals: tests instantiate isolated managers.
type Manager struct {
	mu         sync.Mutex
	sessions   map[string]*Session // keyed by user ID
	idleWindow time.Duration
}

// NewManager creates an empty Manager.
func NewManager(idleWindow time.Duration) *Manager {
	if idleWindow <= 0 {
		idleWindow = DefaultIdleWindow
	}
	return &Manager{
		sessions:   make(map[string]*Session),
		idleWindow: idleWindow,
	}
}

// GetOrCreate returns the user's session, creating it on first contact.
func (m *Manager) GetOrCreate(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[userID]; ok {
		s.Touch()
		return s
	}
	s := New(userID)
	m.sessions[userID] = s
	return s
}

// Get returns the user's session or nil.
func (m *Manager) Get(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[userID]
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// EvictIdle removes sessions idle longer than the window. Called from the
// background sweep; returns how many were evicted.
func (m *Manager) EvictIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, s := range m.sessions {
		if now.Sub(s.LastActive) > m.idleWindow {
			delete(m.sessions, id)
			evicted++
		}
	}
	return evicted
}
