package store

import (
	"context"

	"github.com/vango-dev/vstore/pkg/reactive"
)

// InitInfo describes one store initialization.
type InitInfo struct {
	// Name is the store definition's name.
	Name string

	// ID is the instance id, or "".
	ID string

	// Identifier is the scoped identifier, e.g. "Cart/Counter".
	Identifier string

	// Depth is 1 for a top-level initialization, 2 for one nested in
	// another store's setup, and so on.
	Depth int

	// Owner is the scope the store is initialized in, or nil.
	Owner *reactive.Owner
}

// Observer is notified around every store initialization. InitStart returns
// the context handed to InitEnd and used as the parent context of nested
// initializations, which lets tracing observers build span trees.
type Observer interface {
	InitStart(ctx context.Context, info InitInfo) context.Context
	InitEnd(ctx context.Context, info InitInfo, err error)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Start func(ctx context.Context, info InitInfo) context.Context
	End   func(ctx context.Context, info InitInfo, err error)
}

// InitStart implements Observer.
func (o ObserverFuncs) InitStart(ctx context.Context, info InitInfo) context.Context {
	if o.Start == nil {
		return ctx
	}
	return o.Start(ctx, info)
}

// InitEnd implements Observer.
func (o ObserverFuncs) InitEnd(ctx context.Context, info InitInfo, err error) {
	if o.End != nil {
		o.End(ctx, info, err)
	}
}

// MultiObserver fans out to several observers. InitStart threads the context
// through them in order; InitEnd runs in reverse order.
type MultiObserver struct {
	observers []Observer
}

// NewMultiObserver creates a MultiObserver over the non-nil observers.
func NewMultiObserver(observers ...Observer) *MultiObserver {
	filtered := make([]Observer, 0, len(observers))
	for _, obs := range observers {
		if obs != nil {
			filtered = append(filtered, obs)
		}
	}
	return &MultiObserver{observers: filtered}
}

// InitStart implements Observer.
func (m *MultiObserver) InitStart(ctx context.Context, info InitInfo) context.Context {
	for _, obs := range m.observers {
		ctx = obs.InitStart(ctx, info)
	}
	return ctx
}

// InitEnd implements Observer.
func (m *MultiObserver) InitEnd(ctx context.Context, info InitInfo, err error) {
	for i := len(m.observers) - 1; i >= 0; i-- {
		m.observers[i].InitEnd(ctx, info, err)
	}
}
