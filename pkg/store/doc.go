// Package store provides named, hookable stores for vstore applications.
//
// A store is declared once as a Definition: a name plus a setup function that
// creates the store's reactive state and returns its API. The API is a plain
// struct whose function fields operate on the state.
//
//	type Counter struct{ Count int }
//
//	type CounterAPI struct {
//	    State     *reactive.Signal[Counter]
//	    Increment func()
//	}
//
//	var CounterStore = store.New(store.Definition[Counter, CounterAPI]{
//	    Name: "Counter",
//	    Setup: func(s *store.Setup[Counter]) (CounterAPI, error) {
//	        state, err := s.CreateState(Counter{Count: 5})
//	        if err != nil {
//	            return CounterAPI{}, err
//	        }
//	        return CounterAPI{
//	            State: state,
//	            Increment: func() {
//	                state.Update(func(c Counter) Counter { c.Count++; return c })
//	            },
//	        }, nil
//	    },
//	})
//
// # Access Modes
//
//   - Use: standalone, every call returns a fresh instance.
//   - Provide: initialize and register the instance on a scope (Owner).
//   - Consume: fetch the instance provided by the nearest ancestor scope.
//     A missing provider is an error, never a default instance.
//
// # Hooks
//
// Cross-cutting features observe every store through two hook registries on a
// Runtime. Create-state hooks may replace the initial state before it becomes
// reactive; initialized hooks see the final state and API and may override API
// fields with a Patch. Hooks run in installation order and each one sees the
// result of the previous ones.
//
// # Identifiers
//
// Every initialization gets an identifier: the store's name, or name/id when
// an instance id is given, prefixed by the identifiers of every initialization
// it is nested in. A Cart store whose setup uses a Counter store produces
// "Cart" and "Cart/Counter".
package store
