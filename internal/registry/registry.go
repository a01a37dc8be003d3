// Package registry provides the shared name-to-function lookup pattern
// used for field processors, field validators, serializers, and file
// canonicalizers. Names are case-insensitive and the last registration
// for a name wins, so applications can override built-ins without
// touching core code.
package registry

import (
	"log/slog"
	"strings"
	"sync"
)

type entry[T any] struct {
	name  string // as registered, for All()
	value T
}

// Registry is a case-insensitive name-to-value lookup with lazy built-in
// seeding. The seed function runs at most once, on first use; after that
// reads never block on initialization. Writers take the lock, so custom
// registrations are safe against concurrent readers.
type Registry[T any] struct {
	kind     string // what the registry holds, for log attrs
	builtins func() map[string]T

	initOnce sync.Once
	mu       sync.RWMutex
	entries  map[string]entry[T]
}

// New creates a registry whose built-ins are produced lazily by the given
// function on first use. builtins may be nil for an initially empty
// registry.
func New[T any](kind string, builtins func() map[string]T) *Registry[T] {
	return &Registry[T]{kind: kind, builtins: builtins}
}

func (r *Registry[T]) ensure() {
	r.initOnce.Do(func() {
		seeded := map[string]entry[T]{}
		if r.builtins != nil {
			for name, v := range r.builtins() {
				seeded[strings.ToLower(name)] = entry[T]{name: name, value: v}
			}
		}
		r.mu.Lock()
		r.entries = seeded
		r.mu.Unlock()
	})
}

// Register stores value under name, silently replacing any existing entry
// including built-ins. Replacement is intentional: it is the extension
// mechanism for application-specific behavior.
func (r *Registry[T]) Register(name string, value T) {
	r.ensure()
	key := strings.ToLower(name)

	r.mu.Lock()
	_, replaced := r.entries[key]
	r.entries[key] = entry[T]{name: name, value: value}
	r.mu.Unlock()

	if replaced {
		slog.Debug("registry entry replaced",
			slog.String("registry", r.kind),
			slog.String("name", name))
	}
}

// Get returns the value registered under name, case-insensitively.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.ensure()
	r.mu.RLock()
	e, ok := r.entries[strings.ToLower(name)]
	r.mu.RUnlock()
	return e.value, ok
}

// Contains reports whether name has a registered entry.
func (r *Registry[T]) Contains(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Unregister removes the entry for name, reporting whether one existed.
func (r *Registry[T]) Unregister(name string) bool {
	r.ensure()
	key := strings.ToLower(name)

	r.mu.Lock()
	_, ok := r.entries[key]
	delete(r.entries, key)
	r.mu.Unlock()
	return ok
}

// All returns a copy of the registry contents keyed by the names used at
// registration time. Mutating the returned map does not affect the
// registry.
func (r *Registry[T]) All() map[string]T {
	r.ensure()
	r.mu.RLock()
	out := make(map[string]T, len(r.entries))
	for _, e := range r.entries {
		out[e.name] = e.value
	}
	r.mu.RUnlock()
	return out
}

// Len reports the number of registered entries.
func (r *Registry[T]) Len() int {
	r.ensure()
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
