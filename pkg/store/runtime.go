package store

import (
	"sync"

	"github.com/vango-dev/vstore/pkg/reactive"
)

// Runtime is the composition root for stores: it owns the two hook
// registries, the registered observers and the identifier stacks.
//
// Most applications use the process-wide Default runtime. Tests and embedders
// that need isolation create their own with NewRuntime and bind stores to it
// with WithRuntime.
type Runtime struct {
	createState registry[CreateStateHook]
	initialized registry[InitializedHook]
	observers   registry[Observer]

	// stacks holds one *Stack per goroutine with an initialization in
	// progress. Nested initializations run on the goroutine of their parent.
	stacks sync.Map // map[uint64]*Stack
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithObserver registers observers at construction time.
func WithObserver(observers ...Observer) RuntimeOption {
	return func(r *Runtime) {
		for _, obs := range observers {
			if obs != nil {
				r.observers.install(obs)
			}
		}
	}
}

// NewRuntime creates an empty Runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRuntime = NewRuntime()

// Default returns the process-wide Runtime used by stores created without
// WithRuntime.
func Default() *Runtime {
	return defaultRuntime
}

// InstallOnCreateState appends a create-state hook. The returned function
// removes exactly this registration; calling it again is a no-op.
func (r *Runtime) InstallOnCreateState(hook CreateStateHook) (uninstall func()) {
	return r.createState.install(hook)
}

// InstallOnInitialized appends an initialized hook. The returned function
// removes exactly this registration; calling it again is a no-op.
func (r *Runtime) InstallOnInitialized(hook InitializedHook) (uninstall func()) {
	return r.initialized.install(hook)
}

// Observe registers an observer notified around every initialization.
func (r *Runtime) Observe(obs Observer) (remove func()) {
	return r.observers.install(obs)
}

// HookCount returns the number of installed create-state and initialized
// hooks.
func (r *Runtime) HookCount() (createState, initialized int) {
	return r.createState.count(), r.initialized.count()
}

// Identifier returns the identifier of the initialization in progress on the
// calling goroutine, or "" outside of any setup function.
func (r *Runtime) Identifier() string {
	if s, ok := r.stacks.Load(reactive.GoroutineID()); ok {
		return s.(*Stack).Identifier()
	}
	return ""
}

// stack returns the identifier stack of the calling goroutine.
func (r *Runtime) stack() (*Stack, uint64) {
	gid := reactive.GoroutineID()
	if s, ok := r.stacks.Load(gid); ok {
		return s.(*Stack), gid
	}
	s := &Stack{}
	r.stacks.Store(gid, s)
	return s, gid
}

// pop removes the innermost frame and forgets the stack once it is empty.
func (r *Runtime) pop(s *Stack, gid uint64) {
	s.Pop()
	if s.Depth() == 0 {
		r.stacks.Delete(gid)
	}
}

// InstallOnCreateState installs a create-state hook on the Default runtime.
func InstallOnCreateState(hook CreateStateHook) (uninstall func()) {
	return defaultRuntime.InstallOnCreateState(hook)
}

// InstallOnInitialized installs an initialized hook on the Default runtime.
func InstallOnInitialized(hook InitializedHook) (uninstall func()) {
	return defaultRuntime.InstallOnInitialized(hook)
}
