package middleware

import (
	"errors"

	vserrors "github.com/vango-dev/vstore/internal/errors"
	"github.com/vango-dev/vstore/pkg/store"
)

var (
	errBoom     = errors.New("boom")
	errNotFound = vserrors.New("E210")
)

type counterState struct {
	Count int
}

type counterAPI struct {
	Increment func()
}

// newCounter defines a store whose setup fails with setupErr when it is not
// nil.
func newCounter(rt *store.Runtime, name string, setupErr error) *store.Store[counterState, counterAPI] {
	return store.New(store.Definition[counterState, counterAPI]{
		Name: name,
		Setup: func(s *store.Setup[counterState]) (counterAPI, error) {
			if setupErr != nil {
				return counterAPI{}, setupErr
			}
			state, err := s.CreateState(counterState{})
			if err != nil {
				return counterAPI{}, err
			}
			return counterAPI{
				Increment: func() {
					state.Update(func(c counterState) counterState {
						c.Count++
						return c
					})
				},
			}, nil
		},
	}, store.WithRuntime(rt))
}
