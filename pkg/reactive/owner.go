package reactive

import (
	"sync"
	"sync/atomic"
)

// Owner represents a component scope. Owners form a hierarchy mirroring the
// component tree: context values set on an owner are visible to every
// descendant, and disposing an owner disposes its children and runs its
// cleanups.
type Owner struct {
	id uint64

	// parent is nil for a root owner (typically a session or request).
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	cleanups   []func()
	cleanupsMu sync.Mutex

	values   map[any]any
	valuesMu sync.RWMutex

	disposed atomic.Bool
}

// NewOwner creates a new Owner registered as a child of parent.
// If parent is nil, a root Owner is created.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}
	if parent != nil {
		parent.addChild(o)
	}
	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent Owner, or nil for a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether Dispose has been called.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// OnCleanup registers fn to run when this Owner is disposed.
// On an already disposed Owner fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	o.cleanupsMu.Lock()
	if o.disposed.Load() {
		o.cleanupsMu.Unlock()
		fn()
		return
	}
	o.cleanups = append(o.cleanups, fn)
	o.cleanupsMu.Unlock()
}

// SetValue sets a context value on this Owner.
func (o *Owner) SetValue(key, value any) {
	o.valuesMu.Lock()
	defer o.valuesMu.Unlock()
	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// Lookup retrieves a value from this Owner or the nearest ancestor that has
// one. The boolean reports whether any owner in the chain provided the key,
// which distinguishes a provided nil from a missing provider.
func (o *Owner) Lookup(key any) (any, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		cur.valuesMu.RLock()
		val, ok := cur.values[key]
		cur.valuesMu.RUnlock()
		if ok {
			return val, true
		}
	}
	return nil, false
}

// GetValue retrieves a value from this Owner or its ancestors.
// Returns nil if no owner in the chain provides key.
func (o *Owner) GetValue(key any) any {
	val, _ := o.Lookup(key)
	return val
}

// Dispose disposes this Owner and all of its children, then runs cleanups.
// Children are disposed and cleanups run in reverse registration order.
// Calling Dispose more than once is a no-op.
func (o *Owner) Dispose() {
	// The flag flips under cleanupsMu so OnCleanup either appends before the
	// swap or sees the owner disposed.
	o.cleanupsMu.Lock()
	already := o.disposed.Swap(true)
	o.cleanupsMu.Unlock()
	if already {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := o.children
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
