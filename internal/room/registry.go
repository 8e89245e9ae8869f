package room

import "sync"

// Registry tracks the active in-memory sessions, keyed by room code. It
// guards its own map; the sessions themselves serialize their operations
// with their own mutex.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for the given room code, creating an
// empty lobby-phase session if none exists.
func (r *Registry) GetOrCreate(code string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[code]
	if !ok {
		s = NewSession(code)
		r.sessions[code] = s
	}
	return s
}

// Get returns the session for the given room code, if present.
func (r *Registry) Get(code string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[code]
	return s, ok
}

// Remove deletes the session for the given room code, if present.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, code)
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
