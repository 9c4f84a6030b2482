package dashboard

import "sync"

// Registry tracks the live views of each session so that logout and
// shutdown can tear down every open subscription before the session
// dies. A subscription outliving its authorization context is a
// correctness bug, not a cosmetic leak.
type Registry struct {
	mu    sync.RWMutex
	views map[string]map[*View]struct{} // session ID -> live views
}

// NewRegistry creates an empty view registry.
func NewRegistry() *Registry {
	return &Registry{
		views: make(map[string]map[*View]struct{}),
	}
}

// Add registers a live view under its session.
func (r *Registry) Add(sessionID string, v *View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.views[sessionID]
	if !ok {
		set = make(map[*View]struct{})
		r.views[sessionID] = set
	}
	set[v] = struct{}{}
}

// Remove forgets a view, typically after its own teardown on
// disconnect.
func (r *Registry) Remove(sessionID string, v *View) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if set, ok := r.views[sessionID]; ok {
		delete(set, v)
		if len(set) == 0 {
			delete(r.views, sessionID)
		}
	}
}

// CloseAll closes every live view of a session and forgets them.
// Called on logout, strictly before the session record is deleted.
func (r *Registry) CloseAll(sessionID string) {
	r.mu.Lock()
	set := r.views[sessionID]
	delete(r.views, sessionID)
	r.mu.Unlock()

	for v := range set {
		v.Close()
	}
}

// Shutdown closes every live view of every session.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	all := r.views
	r.views = make(map[string]map[*View]struct{})
	r.mu.Unlock()

	for _, set := range all {
		for v := range set {
			v.Close()
		}
	}
}

// Count returns the number of live views for a session.
func (r *Registry) Count(sessionID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.views[sessionID])
}
