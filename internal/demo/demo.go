// Package demo defines the example stores served by the vstore CLI.
package demo

import (
	"github.com/vango-dev/vstore/pkg/reactive"
	"github.com/vango-dev/vstore/pkg/store"
)

// CounterState is the state of a Counter store.
type CounterState struct {
	Count int `json:"count"`
}

// CounterAPI is the API of a Counter store.
type CounterAPI struct {
	State     *reactive.Signal[CounterState]
	Increment func()
	Add       func(n int)
}

// CartState is the state of a Cart store.
type CartState struct {
	Items []string `json:"items"`
	Open  bool     `json:"open"`
}

// CartAPI is the API of a Cart store. Quantity is a Counter nested in the
// cart, identified as "Cart/Counter".
type CartAPI struct {
	State    *reactive.Signal[CartState]
	Quantity CounterAPI
	AddItem  func(item string)
	Clear    func()
}

// Stores holds the demo store factories bound to one runtime.
type Stores struct {
	Counter *store.Store[CounterState, CounterAPI]
	Cart    *store.Store[CartState, CartAPI]
}

// New defines the demo stores on rt.
func New(rt *store.Runtime) *Stores {
	s := &Stores{}
	s.Counter = store.New(store.Definition[CounterState, CounterAPI]{
		Name:  "Counter",
		Setup: setupCounter,
	}, store.WithRuntime(rt))

	s.Cart = store.New(store.Definition[CartState, CartAPI]{
		Name: "Cart",
		Setup: func(setup *store.Setup[CartState]) (CartAPI, error) {
			state, err := setup.CreateState(CartState{Open: true})
			if err != nil {
				return CartAPI{}, err
			}
			quantity, err := s.Counter.Use()
			if err != nil {
				return CartAPI{}, err
			}
			return CartAPI{
				State:    state,
				Quantity: quantity,
				AddItem: func(item string) {
					state.Update(func(c CartState) CartState {
						c.Items = append(append([]string(nil), c.Items...), item)
						return c
					})
					quantity.Increment()
				},
				Clear: func() {
					state.Update(func(c CartState) CartState {
						c.Items = nil
						return c
					})
					quantity.State.Set(CounterState{})
				},
			}, nil
		},
	}, store.WithRuntime(rt))
	return s
}

func setupCounter(setup *store.Setup[CounterState]) (CounterAPI, error) {
	state, err := setup.CreateState(CounterState{})
	if err != nil {
		return CounterAPI{}, err
	}
	add := func(n int) {
		state.Update(func(c CounterState) CounterState {
			c.Count += n
			return c
		})
	}
	return CounterAPI{
		State:     state,
		Increment: func() { add(1) },
		Add:       add,
	}, nil
}

// ProvideAll provides a Counter and a Cart on scope and returns the cart.
func (s *Stores) ProvideAll(scope *reactive.Owner) (CartAPI, error) {
	if _, err := s.Counter.Provide(scope); err != nil {
		return CartAPI{}, err
	}
	return s.Cart.Provide(scope)
}
