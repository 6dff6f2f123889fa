package store

import (
	"context"
	"fmt"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/reactive"
)

// Setup is handed to a Definition's setup function.
type Setup[S any] struct {
	rt         *Runtime
	id         string
	identifier string
	owner      *reactive.Owner
	ctx        context.Context

	state *reactive.Signal[S]
}

// ID returns the instance id passed with WithID, or "".
func (s *Setup[S]) ID() string {
	return s.id
}

// Identifier returns the scoped identifier of this initialization.
func (s *Setup[S]) Identifier() string {
	return s.identifier
}

// Owner returns the scope the store is initialized in, or nil for a
// standalone store created outside of any scope.
func (s *Setup[S]) Owner() *reactive.Owner {
	return s.owner
}

// Context returns the observer context of this initialization. It carries
// the initialization span when tracing is enabled.
func (s *Setup[S]) Context() context.Context {
	return s.ctx
}

// CreateState runs the create-state hooks over initial and wraps the result
// in a signal. A store is expected to call it exactly once; if it is called
// again, the last signal is the one initialized hooks observe.
func (s *Setup[S]) CreateState(initial S) (*reactive.Signal[S], error) {
	var candidate any = initial
	for i, hook := range s.rt.createState.snapshot() {
		next, err := hook(CreateStateEvent{
			Identifier: s.identifier,
			State:      candidate,
			Owner:      s.owner,
		})
		if err != nil {
			return nil, fmt.Errorf("store %s: create-state hook %d: %w", s.identifier, i, err)
		}
		if next != nil {
			candidate = next
		}
	}

	value, ok := candidate.(S)
	if !ok {
		var zero S
		return nil, errors.New("E211").WithDetailf("store %s: got %T, want %T", s.identifier, candidate, zero)
	}

	s.state = reactive.NewSignal(value)
	return s.state, nil
}

// value returns the state as a reactive.Value, keeping a nil interface when
// CreateState was never called.
func (s *Setup[S]) value() reactive.Value {
	if s.state == nil {
		return nil
	}
	return s.state
}

// initialize runs one store initialization: push the identifier segment,
// run setup, run initialized hooks, pop. The pop is deferred and happens on
// error and panic too. Errors from setup and hooks are returned to the
// caller; nothing is retried or rolled back.
func initialize[S, A any](rt *Runtime, def Definition[S, A], o initOptions) (api A, err error) {
	stack, gid := rt.stack()
	stack.Push(segmentFor(def.Name, o.id))
	defer rt.pop(stack, gid)

	owner := o.owner
	if owner == nil {
		owner = stack.enclosingOwner()
	}
	if owner == nil {
		owner = reactive.CurrentOwner()
	}

	info := InitInfo{
		Name:       def.Name,
		ID:         o.id,
		Identifier: stack.Identifier(),
		Depth:      stack.Depth(),
		Owner:      owner,
	}

	observers := rt.observers.snapshot()
	ctx := stack.parentContext()
	for _, obs := range observers {
		ctx = obs.InitStart(ctx, info)
	}
	stack.setTop(ctx, owner)

	defer func() {
		endErr := err
		r := recover()
		if r != nil {
			endErr = errors.New("E216").WithDetailf("store %s: panic: %v", info.Identifier, r)
		}
		for i := len(observers) - 1; i >= 0; i-- {
			observers[i].InitEnd(ctx, info, endErr)
		}
		if r != nil {
			panic(r)
		}
	}()

	setup := &Setup[S]{
		rt:         rt,
		id:         o.id,
		identifier: info.Identifier,
		owner:      owner,
		ctx:        ctx,
	}

	api, err = def.Setup(setup)
	if err != nil {
		var zero A
		return zero, err
	}

	for i, hook := range rt.initialized.snapshot() {
		patch, herr := hook(InitializedEvent{
			Identifier: info.Identifier,
			State:      setup.value(),
			API:        api,
			Owner:      owner,
		})
		if herr != nil {
			var zero A
			return zero, fmt.Errorf("store %s: initialized hook %d: %w", info.Identifier, i, herr)
		}
		if api, err = applyPatch(api, patch); err != nil {
			var zero A
			return zero, fmt.Errorf("store %s: initialized hook %d: %w", info.Identifier, i, err)
		}
	}

	return api, nil
}
