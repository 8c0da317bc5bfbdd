package api

import (
	"sync"

	"github.com/aldwin/othala/internal/syncengine"
)

// SessionRegistry tracks the open editing sessions served by this
// process, keyed by the engine-issued session id.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*syncengine.Session
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{sessions: make(map[string]*syncengine.Session)}
}

// Add registers a session.
func (r *SessionRegistry) Add(s *syncengine.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID()] = s
}

// Get returns the session with the given id, or nil.
func (r *SessionRegistry) Get(id string) *syncengine.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[id]
}

// Remove closes and forgets the session with the given id.
func (r *SessionRegistry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// InvalidateAll clears the active document of every session whose path
// is, or lives under, deletedPath.
func (r *SessionRegistry) InvalidateAll(deletedPath string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		s.Invalidate(deletedPath)
	}
}

// Len returns the number of registered sessions.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
