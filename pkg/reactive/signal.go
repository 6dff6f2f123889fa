package reactive

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

// ErrTypeMismatch is returned by SetAny when the value does not have the
// signal's element type.
var ErrTypeMismatch = errors.New("reactive: value type mismatch")

// Value is the type-erased view of a Signal. Collaborators that observe every
// store (devtools, hydration) work against Value without knowing the concrete
// state type.
type Value interface {
	// Any returns the current value without subscribing.
	Any() any

	// SetAny replaces the current value. It returns ErrTypeMismatch if v is
	// not assignable to the underlying element type.
	SetAny(v any) error

	// Type returns the element type of the value.
	Type() reflect.Type

	// Subscribe registers fn to be called after every change.
	Subscribe(fn func()) (unsubscribe func())
}

type subscriber struct {
	fn func()
}

// Signal is a reactive value container. Writes that change the value notify
// every subscriber after the write lock is released.
type Signal[T any] struct {
	id uint64

	value T
	mu    sync.RWMutex

	subs  []*subscriber
	subMu sync.Mutex

	// equal decides whether a write changed the value. nil uses defaultEquals.
	equal func(T, T) bool
}

// NewSignal creates a new signal with the given initial value.
func NewSignal[T any](initial T) *Signal[T] {
	return &Signal[T]{
		id:    nextID(),
		value: initial,
	}
}

// ID returns the unique identifier for this signal.
func (s *Signal[T]) ID() uint64 {
	return s.id
}

// Get returns the current value.
func (s *Signal[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Peek returns the current value. It is an alias of Get kept for parity with
// Vango signals, where Get subscribes the current listener and Peek does not.
func (s *Signal[T]) Peek() T {
	return s.Get()
}

// Set updates the value and notifies subscribers if it changed.
func (s *Signal[T]) Set(value T) {
	s.mu.Lock()
	changed := !s.equals(s.value, value)
	if changed {
		s.value = value
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// Update atomically reads and replaces the value.
func (s *Signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	old := s.value
	next := fn(old)
	changed := !s.equals(old, next)
	if changed {
		s.value = next
	}
	s.mu.Unlock()

	if changed {
		s.notify()
	}
}

// WithEquals configures a custom equality function and returns the signal.
func (s *Signal[T]) WithEquals(fn func(T, T) bool) *Signal[T] {
	s.equal = fn
	return s
}

// Subscribe registers fn to run after every change. The returned function
// removes the subscription; calling it more than once is a no-op.
func (s *Signal[T]) Subscribe(fn func()) func() {
	sub := &subscriber{fn: fn}

	s.subMu.Lock()
	s.subs = append(s.subs, sub)
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, existing := range s.subs {
			if existing == sub {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Any implements Value.
func (s *Signal[T]) Any() any {
	return s.Get()
}

// SetAny implements Value.
func (s *Signal[T]) SetAny(v any) error {
	if v == nil {
		var zero T
		s.Set(zero)
		return nil
	}
	typed, ok := v.(T)
	if !ok {
		return fmt.Errorf("%w: got %T, want %s", ErrTypeMismatch, v, s.Type())
	}
	s.Set(typed)
	return nil
}

// Type implements Value.
func (s *Signal[T]) Type() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// notify calls subscribers from a snapshot so they may unsubscribe or
// subscribe while being notified.
func (s *Signal[T]) notify() {
	s.subMu.Lock()
	subs := make([]*subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn()
	}
}

func (s *Signal[T]) equals(a, b T) bool {
	if s.equal != nil {
		return s.equal(a, b)
	}
	return defaultEquals(a, b)
}

// defaultEquals uses == for common comparable kinds and reflect.DeepEqual
// for everything else (slices, maps, structs).
func defaultEquals[T any](a, b T) bool {
	switch av := any(a).(type) {
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	default:
		return reflect.DeepEqual(a, b)
	}
}
