package store

import "github.com/vango-dev/vstore/internal/errors"

// Sentinel errors. Errors returned by this package match them with
// errors.Is by error code.
var (
	// ErrNotFound is returned by Consume when no ancestor provides the store.
	ErrNotFound error = errors.New("E210")

	// ErrStateType is returned when a create-state hook replaces the state
	// with a value of another type.
	ErrStateType error = errors.New("E211")

	// ErrUnknownField is returned when a patch names a field the API lacks.
	ErrUnknownField error = errors.New("E212")

	// ErrInvalidOverride is returned when a patch value is not assignable or
	// the field is tagged `store:"-"`.
	ErrInvalidOverride error = errors.New("E213")

	// ErrNoOwner is returned by UseProvider and UseConsumer outside of
	// reactive.WithOwner.
	ErrNoOwner error = errors.New("E214")

	// ErrNotPatchable is returned when a patch targets a non-struct API.
	ErrNotPatchable error = errors.New("E215")

	// ErrPanic is the error observers receive when an initialization
	// panics. The panic itself still propagates to the caller.
	ErrPanic error = errors.New("E216")
)
