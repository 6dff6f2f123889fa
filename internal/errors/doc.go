// Package errors provides structured, actionable error values for vstore.
//
// Every error carries a stable code (e.g. "E210") mapped in a registry to a
// category, a short message, a longer explanation and a documentation URL.
// Call sites add the specifics:
//
//	err := errors.New("E210").
//	    WithDetail("'CartStore' not found").
//	    WithSuggestion("Call CartStore.Provide in an ancestor scope")
//
// Errors compare by code with errors.Is, so a package can export a sentinel
// built from the registry and callers can match any error carrying that code:
//
//	var ErrNotFound = errors.New("E210")
//	...
//	if stderrors.Is(err, ErrNotFound) { ... }
//
// # Error Categories
//
//   - runtime: store initialization and lookup failures
//   - hydration: server state that cannot be merged into a store
//   - devtools: devtools bridge and transport problems
//   - config: vstore.json and environment problems
//   - cli: command-line usage problems
package errors
