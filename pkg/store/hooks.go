package store

import (
	"sync"

	"github.com/vango-dev/vstore/pkg/reactive"
)

// CreateStateEvent is passed to create-state hooks.
type CreateStateEvent struct {
	// Identifier is the scoped identifier of the initialization.
	Identifier string

	// State is the candidate initial state: the raw value given to
	// CreateState for the first hook, the previous hook's result afterwards.
	State any

	// Owner is the scope the store is initialized in, or nil.
	Owner *reactive.Owner
}

// CreateStateHook may replace the candidate state. Returning nil keeps the
// candidate unchanged; any other value replaces it wholesale.
type CreateStateHook func(ev CreateStateEvent) (any, error)

// InitializedEvent is passed to initialized hooks.
type InitializedEvent struct {
	Identifier string

	// State is the store's reactive state, or nil if setup never called
	// CreateState.
	State reactive.Value

	// API is the API as assembled so far, including the patches of earlier
	// hooks. Its dynamic type is the store's API type.
	API any

	Owner *reactive.Owner
}

// InitializedHook may override API fields. An empty Patch leaves the API
// unchanged.
type InitializedHook func(ev InitializedEvent) (Patch, error)

// hookEntry is the registration handle removed by uninstall.
type hookEntry[H any] struct {
	hook H
}

// registry is an ordered collection of hooks.
type registry[H any] struct {
	mu      sync.Mutex
	entries []*hookEntry[H]
}

// install appends hook and returns a function removing exactly this
// registration. The returned function is idempotent.
func (r *registry[H]) install(hook H) func() {
	entry := &hookEntry[H]{hook: hook}

	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		for i, e := range r.entries {
			if e == entry {
				r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
				return
			}
		}
	}
}

// snapshot returns the hooks in registration order at call time. Changes
// made while the caller iterates apply to the next snapshot only.
func (r *registry[H]) snapshot() []H {
	r.mu.Lock()
	defer r.mu.Unlock()
	hooks := make([]H, len(r.entries))
	for i, e := range r.entries {
		hooks[i] = e.hook
	}
	return hooks
}

func (r *registry[H]) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
