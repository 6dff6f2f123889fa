package devtools

import (
	"encoding/json"
	"log/slog"
	"reflect"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/internal/hydrate"
	"github.com/vango-dev/vstore/pkg/reactive"
	"github.com/vango-dev/vstore/pkg/store"
)

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for devtools diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithFilter restricts which mutations are emitted. The expression is
// evaluated with two string variables, identifier and action (the API field
// name), and must return a boolean. An empty expression emits everything.
func WithFilter(expression string) Option {
	return func(b *Bridge) {
		b.filterSource = expression
	}
}

// mirrored is one store registered with the bridge.
type mirrored struct {
	state reactive.Value
}

// Bridge mirrors stores into a devtools Hook.
type Bridge struct {
	hook         Hook
	logger       *slog.Logger
	filterSource string
	filter       *exprvm.Program

	mu        sync.Mutex
	mirror    map[string]*mirrored
	installed map[*store.Runtime]func()
	announced bool
}

// NewBridge creates a bridge emitting to hook. With a nil hook the bridge
// is inert. An invalid filter expression returns E230.
func NewBridge(hook Hook, opts ...Option) (*Bridge, error) {
	b := &Bridge{
		hook:      hook,
		logger:    slog.Default(),
		mirror:    make(map[string]*mirrored),
		installed: make(map[*store.Runtime]func()),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	if b.filterSource != "" {
		program, err := exprlang.Compile(b.filterSource,
			exprlang.Env(filterEnv("", "")),
			exprlang.AsBool(),
		)
		if err != nil {
			return nil, errors.New("E230").WithDetailf("filter %q", b.filterSource).Wrap(err)
		}
		b.filter = program
	}

	if hook != nil {
		hook.On(EventTravelToState, b.travelToState)
	}
	return b, nil
}

func filterEnv(identifier, action string) map[string]any {
	return map[string]any{
		"identifier": identifier,
		"action":     action,
	}
}

// Install adds the bridge's initialized hook to rt. Installing on the same
// runtime again returns the existing uninstall function. The first install
// of a bridge emits EventInit with the current snapshot.
func (b *Bridge) Install(rt *store.Runtime) (uninstall func()) {
	if b.hook == nil {
		return func() {}
	}

	b.mu.Lock()
	if existing, ok := b.installed[rt]; ok {
		b.mu.Unlock()
		return existing
	}
	announce := !b.announced
	b.announced = true

	remove := rt.InstallOnInitialized(b.onInitialized)
	var once sync.Once
	uninstall = func() {
		once.Do(func() {
			remove()
			b.mu.Lock()
			delete(b.installed, rt)
			b.mu.Unlock()
		})
	}
	b.installed[rt] = uninstall
	b.mu.Unlock()

	if announce {
		b.hook.Emit(EventInit, b.Snapshot())
	}
	return uninstall
}

// Snapshot returns the current state of every mirrored store by identifier.
func (b *Bridge) Snapshot() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	snap := make(map[string]any, len(b.mirror))
	for id, m := range b.mirror {
		snap[id] = stateOf(m.state)
	}
	return snap
}

// Identifiers returns the identifiers of the mirrored stores.
func (b *Bridge) Identifiers() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	ids := make([]string, 0, len(b.mirror))
	for id := range b.mirror {
		ids = append(ids, id)
	}
	return ids
}

func stateOf(v reactive.Value) any {
	if v == nil {
		return nil
	}
	return v.Any()
}

func (b *Bridge) onInitialized(ev store.InitializedEvent) (store.Patch, error) {
	entry := &mirrored{state: ev.State}

	b.mu.Lock()
	b.mirror[ev.Identifier] = entry
	b.mu.Unlock()

	b.hook.Emit(EventRegister, Registration{Identifier: ev.Identifier, State: stateOf(ev.State)})

	if ev.Owner != nil {
		identifier := ev.Identifier
		ev.Owner.OnCleanup(func() { b.unregister(identifier, entry) })
	}
	return b.wrapAPI(ev.Identifier, ev.API), nil
}

// unregister drops entry unless a later store took over its identifier.
func (b *Bridge) unregister(identifier string, entry *mirrored) {
	b.mu.Lock()
	current, ok := b.mirror[identifier]
	if !ok || current != entry {
		b.mu.Unlock()
		return
	}
	delete(b.mirror, identifier)
	b.mu.Unlock()

	b.hook.Emit(EventUnregister, identifier)
}

// wrapAPI returns a patch replacing every non-nil func field of api with an
// interceptor. Other fields are left alone.
func (b *Bridge) wrapAPI(identifier string, api any) store.Patch {
	v := reflect.ValueOf(api)
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}

	var patch store.Patch
	for _, name := range store.Fields(api) {
		fv := v.FieldByName(name)
		if fv.Kind() != reflect.Func || fv.IsNil() {
			continue
		}
		patch = patch.Set(name, b.intercept(identifier, name, fv).Interface())
	}
	return patch
}

func (b *Bridge) intercept(identifier, field string, fn reflect.Value) reflect.Value {
	mutationType := "[" + identifier + "]: " + field
	variadic := fn.Type().IsVariadic()

	return reflect.MakeFunc(fn.Type(), func(args []reflect.Value) []reflect.Value {
		if b.shouldEmit(identifier, field) {
			payload := make([]any, len(args))
			for i, arg := range args {
				payload[i] = arg.Interface()
			}
			b.hook.Emit(EventMutation, Mutation{
				Type:    mutationType,
				Payload: payload,
				State:   b.Snapshot(),
			})
		}
		if variadic {
			return fn.CallSlice(args)
		}
		return fn.Call(args)
	})
}

func (b *Bridge) shouldEmit(identifier, action string) bool {
	if b.filter == nil {
		return true
	}
	out, err := exprlang.Run(b.filter, filterEnv(identifier, action))
	if err != nil {
		b.logger.Warn("devtools filter failed", "identifier", identifier, "action", action, "error", err)
		return true
	}
	ok, _ := out.(bool)
	return ok
}

// travelToState replaces mirrored states from a client message mapping
// identifiers to state. Unknown identifiers are ignored.
func (b *Bridge) travelToState(payload json.RawMessage) {
	var target map[string]json.RawMessage
	if err := json.Unmarshal(payload, &target); err != nil {
		b.logger.Warn("devtools message invalid",
			"event", EventTravelToState,
			"error", errors.New("E231").Wrap(err))
		return
	}

	b.mu.Lock()
	entries := make(map[string]*mirrored, len(target))
	for id := range target {
		if m, ok := b.mirror[id]; ok && m.state != nil {
			entries[id] = m
		}
	}
	b.mu.Unlock()

	for id, m := range entries {
		merged, err := hydrate.MergeInto(m.state.Type(), m.state.Any(), target[id])
		if err != nil {
			b.logger.Warn("devtools state rejected", "identifier", id, "error", err)
			continue
		}
		if err := m.state.SetAny(merged); err != nil {
			b.logger.Warn("devtools state rejected", "identifier", id, "error", err)
		}
	}
}
