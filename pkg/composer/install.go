package composer

import (
	"github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/internal/hydrate"
	"github.com/vango-dev/vstore/pkg/store"
)

// Install wires the composer hooks into rt and returns a function removing
// them. Install does not guard against being called twice; the composition
// root owning rt is responsible for installing once.
//
// The create-state hook merges the scope's hydration payload for the store's
// identifier onto the initial state. The initialized hook registers the live
// store with the scope's composer until the scope is disposed.
//
// Stores initialized outside of any scope are left alone. Stores initialized
// in a scope without a provided Composer fail with E220.
func Install(rt *store.Runtime) (uninstall func()) {
	removeCreate := rt.InstallOnCreateState(onCreateState)
	removeInit := rt.InstallOnInitialized(onInitialized)
	return func() {
		removeCreate()
		removeInit()
	}
}

func onCreateState(ev store.CreateStateEvent) (any, error) {
	if ev.Owner == nil {
		return nil, nil
	}
	c, err := From(ev.Owner)
	if err != nil {
		return nil, err
	}

	data, ok := c.FindHydrationData(ev.Identifier)
	if !ok {
		return nil, nil
	}

	merged, err := hydrate.Merge(ev.State, data)
	if err != nil {
		return nil, errors.New("E221").WithDetailf("store %s", ev.Identifier).Wrap(err)
	}
	c.logger.Debug("store hydrated", "identifier", ev.Identifier, "bytes", len(data))
	return merged, nil
}

func onInitialized(ev store.InitializedEvent) (store.Patch, error) {
	if ev.Owner == nil || ev.State == nil {
		return nil, nil
	}
	c, err := From(ev.Owner)
	if err != nil {
		return nil, err
	}

	unregister := c.RegisterStore(ev.Identifier, ev.State)
	ev.Owner.OnCleanup(unregister)
	return nil, nil
}
