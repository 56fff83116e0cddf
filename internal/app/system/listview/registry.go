// internal/app/system/listview/registry.go
package listview

import (
	"sync"
	"time"
)

type entry interface {
	lastTouched() time.Time
}

type key struct {
	session string
	screen  string
}

// Registry keeps one orchestrator per (session, screen) so table state
// survives between requests of the same browser session.
type Registry struct {
	mu      sync.Mutex
	entries map[key]entry
	idleTTL time.Duration
}

// NewRegistry returns a registry whose entries expire after idleTTL
// without use (see Sweep).
func NewRegistry(idleTTL time.Duration) *Registry {
	return &Registry{entries: map[key]entry{}, idleTTL: idleTTL}
}

// Get returns the orchestrator for session and screen, creating it with
// create on first use. If an entry of another record type is stored under
// the same key it is replaced.
func Get[T Record](r *Registry, session, screen string, create func() *Orchestrator[T]) *Orchestrator[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := key{session: session, screen: screen}
	if e, ok := r.entries[k]; ok {
		if o, ok := e.(*Orchestrator[T]); ok {
			return o
		}
	}
	o := create()
	r.entries[k] = o
	return o
}

// DropSession removes every orchestrator of session (called on logout).
func (r *Registry) DropSession(session string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for k := range r.entries {
		if k.session == session {
			delete(r.entries, k)
			n++
		}
	}
	return n
}

// Sweep evicts entries idle longer than the TTL and returns how many.
func (r *Registry) Sweep(now time.Time) int {
	r.mu.Lock()
	keys := make([]key, 0, len(r.entries))
	vals := make([]entry, 0, len(r.entries))
	for k, e := range r.entries {
		keys = append(keys, k)
		vals = append(vals, e)
	}
	r.mu.Unlock()

	var stale []key
	for i, e := range vals {
		if now.Sub(e.lastTouched()) > r.idleTTL {
			stale = append(stale, keys[i])
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, k := range stale {
		delete(r.entries, k)
	}
	return len(stale)
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
