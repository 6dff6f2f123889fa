package store

import (
	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/reactive"
)

// Definition declares a store: a name and a setup function building the
// store's API. S is the state type, A the API type (usually a struct of
// funcs). A Definition is treated as immutable once passed to New.
type Definition[S, A any] struct {
	// Name identifies the store in identifiers, devtools and errors.
	// Names need not be unique, but two stores with the same name produce
	// identical identifiers.
	Name string

	// Setup builds the API. It should call CreateState once and must not
	// block or yield: the identifier stack of the calling goroutine is in use
	// until it returns.
	Setup func(s *Setup[S]) (A, error)
}

// providerKey is the definition-scoped key a provided API is stored under.
// Its address is its identity.
type providerKey struct {
	description string
}

// Store wraps a Definition behind its three access modes.
type Store[S, A any] struct {
	def Definition[S, A]
	rt  *Runtime
	key *providerKey
}

// Option configures a Store.
type Option func(*storeOptions)

type storeOptions struct {
	rt *Runtime
}

// WithRuntime binds the store to rt instead of the Default runtime.
func WithRuntime(rt *Runtime) Option {
	return func(o *storeOptions) {
		o.rt = rt
	}
}

// InitOption configures a single initialization.
type InitOption func(*initOptions)

type initOptions struct {
	id    string
	owner *reactive.Owner
}

// WithID sets the instance id. The identifier segment becomes name/id.
func WithID(id string) InitOption {
	return func(o *initOptions) {
		o.id = id
	}
}

// WithOwner sets the scope the store is initialized in. Without it, a
// nested initialization inherits the scope of the enclosing one and a
// top-level initialization uses the ambient owner, if any.
func WithOwner(owner *reactive.Owner) InitOption {
	return func(o *initOptions) {
		o.owner = owner
	}
}

// New creates a Store from a Definition.
func New[S, A any](def Definition[S, A], opts ...Option) *Store[S, A] {
	o := storeOptions{rt: defaultRuntime}
	for _, opt := range opts {
		opt(&o)
	}
	if o.rt == nil {
		o.rt = defaultRuntime
	}
	return &Store[S, A]{
		def: def,
		rt:  o.rt,
		key: &providerKey{description: def.Name + "Store"},
	}
}

// Name returns the definition's name.
func (s *Store[S, A]) Name() string {
	return s.def.Name
}

// Runtime returns the runtime the store is bound to.
func (s *Store[S, A]) Runtime() *Runtime {
	return s.rt
}

// Use initializes a standalone instance. Every call returns a fresh API with
// its own state.
func (s *Store[S, A]) Use(opts ...InitOption) (A, error) {
	return initialize(s.rt, s.def, collect(opts))
}

// Provide initializes an instance in scope and registers it there, making it
// available to Consume from scope and its descendants. A nil scope fails with
// ErrNoOwner before anything is initialized.
func (s *Store[S, A]) Provide(scope *reactive.Owner, opts ...InitOption) (A, error) {
	if scope == nil {
		var zero A
		return zero, errors.New("E214").
			WithDetailf("%s.Provide: nil scope", s.key.description).
			WithSuggestion("Pass the owner the store should be registered on, or call Use for a standalone instance")
	}
	o := collect(opts)
	o.owner = scope
	api, err := initialize(s.rt, s.def, o)
	if err != nil {
		return api, err
	}
	scope.SetValue(s.key, api)
	return api, nil
}

// Consume returns the instance provided by scope or its nearest ancestor.
// It fails with ErrNotFound when no ancestor provides the store.
func (s *Store[S, A]) Consume(scope *reactive.Owner) (A, error) {
	var zero A
	if scope != nil {
		if val, ok := scope.Lookup(s.key); ok {
			if api, ok := val.(A); ok {
				return api, nil
			}
		}
	}
	return zero, errors.New("E210").
		WithDetailf("'%s' not found", s.key.description).
		WithSuggestion("Call " + s.key.description + ".Provide in an ancestor scope before consuming it")
}

// UseProvider is Provide against the ambient owner.
func (s *Store[S, A]) UseProvider(opts ...InitOption) (A, error) {
	owner := reactive.CurrentOwner()
	if owner == nil {
		var zero A
		return zero, errors.New("E214").WithDetailf("%s.UseProvider", s.key.description)
	}
	return s.Provide(owner, opts...)
}

// UseConsumer is Consume against the ambient owner.
func (s *Store[S, A]) UseConsumer() (A, error) {
	owner := reactive.CurrentOwner()
	if owner == nil {
		var zero A
		return zero, errors.New("E214").WithDetailf("%s.UseConsumer", s.key.description)
	}
	return s.Consume(owner)
}

// Must returns api or panics with err.
//
//	cart := store.Must(CartStore.Use())
func Must[A any](api A, err error) A {
	if err != nil {
		panic(err)
	}
	return api
}

func collect(opts []InitOption) initOptions {
	var o initOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
