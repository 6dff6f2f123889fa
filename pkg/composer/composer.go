package composer

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/internal/hydrate"
	"github.com/vango-dev/vstore/pkg/reactive"
)

// HydrationData maps store identifiers to their encoded state.
type HydrationData map[string]json.RawMessage

// activeStore is a live store registered with a Composer.
type activeStore struct {
	identifier string
	state      reactive.Value
}

// Composer holds the hydration payload for one scope and tracks the stores
// initialized under it.
type Composer struct {
	hydration HydrationData
	logger    *slog.Logger

	mu     sync.Mutex
	active []*activeStore
}

// Option configures a Composer.
type Option func(*Composer)

// WithLogger sets the logger used for hydration diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Composer seeded with hydration, which may be nil.
func New(hydration HydrationData, opts ...Option) *Composer {
	if hydration == nil {
		hydration = HydrationData{}
	}
	c := &Composer{
		hydration: hydration,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindHydrationData returns the payload for identifier.
func (c *Composer) FindHydrationData(identifier string) (json.RawMessage, bool) {
	data, ok := c.hydration[identifier]
	return data, ok
}

// RegisterStore records a live store. The returned function unregisters it
// and is safe to call more than once.
func (c *Composer) RegisterStore(identifier string, state reactive.Value) (unregister func()) {
	entry := &activeStore{identifier: identifier, state: state}

	c.mu.Lock()
	c.active = append(c.active, entry)
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, e := range c.active {
			if e == entry {
				c.active = append(c.active[:i:i], c.active[i+1:]...)
				return
			}
		}
	}
}

// ActiveStores returns the identifiers of the live stores in registration
// order.
func (c *Composer) ActiveStores() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, len(c.active))
	for i, e := range c.active {
		ids[i] = e.identifier
	}
	return ids
}

// ExportHydrationData encodes the current state of every live store. When
// two live stores share an identifier, the later registration wins.
func (c *Composer) ExportHydrationData() (HydrationData, error) {
	c.mu.Lock()
	active := make([]*activeStore, len(c.active))
	copy(active, c.active)
	c.mu.Unlock()

	out := make(HydrationData, len(active))
	for _, e := range active {
		data, err := hydrate.Encode(e.state.Any())
		if err != nil {
			return nil, errors.New("E222").WithDetailf("store %s", e.identifier).Wrap(err)
		}
		out[e.identifier] = data
	}
	return out, nil
}

// ErrNoComposer is returned when a store is initialized in a scope whose
// owner tree has no Composer. It matches by error code.
var ErrNoComposer error = errors.New("E220")

// composerKey is the context key a Composer is provided under.
var composerKey = &struct{ name string }{"StateComposer"}

// Provide makes c available to stores initialized in owner and its
// descendants.
func Provide(owner *reactive.Owner, c *Composer) {
	owner.SetValue(composerKey, c)
}

// From returns the Composer provided by owner or its nearest ancestor.
func From(owner *reactive.Owner) (*Composer, error) {
	if owner != nil {
		if c, ok := owner.GetValue(composerKey).(*Composer); ok && c != nil {
			return c, nil
		}
	}
	return nil, errors.New("E220").
		WithSuggestion("Call composer.Provide on the session's root owner before initializing stores")
}
