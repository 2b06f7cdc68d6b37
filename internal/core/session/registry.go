package session

import (
	"sync"

	"stationbot/internal/telemetry"
)

// Registry is the authoritative record of which sets currently have a
// live score-entry announcement. Keyed by set id.
//
// The RWMutex protects the map itself; each Session serializes its own
// state mutations behind its own mutex.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

func (r *Registry) Get(setID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[setID]
	return s, ok
}

// Put installs a session, replacing any previous one for the same set.
// At most one live announcement per set id at any time.
func (r *Registry) Put(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.setID]; !exists {
		telemetry.Metrics.ActiveSessions.Inc()
	}
	r.sessions[s.setID] = s
}

func (r *Registry) Remove(setID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[setID]; ok {
		delete(r.sessions, setID)
		telemetry.Metrics.ActiveSessions.Dec()
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
