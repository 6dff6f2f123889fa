// Package reactive provides the host primitives vstore stores are built on.
//
// It is a deliberately small reactive core shaped after Vango's: a Signal[T]
// holds a value and notifies subscribers when it changes, and an Owner is a
// component scope that carries context values for its descendants and runs
// cleanups when it is disposed.
//
// # Signals
//
//	count := reactive.NewSignal(0)
//	unsubscribe := count.Subscribe(func() { fmt.Println("changed") })
//	count.Set(5)
//	count.Update(func(n int) int { return n + 1 })
//	unsubscribe()
//
// # Owners
//
// Owners form a tree mirroring the component tree. A value set on an owner is
// visible to every descendant; the nearest ancestor wins.
//
//	root := reactive.NewOwner(nil)
//	root.SetValue(themeKey, "dark")
//	child := reactive.NewOwner(root)
//	child.GetValue(themeKey) // "dark"
//
// # Thread Safety
//
// Signals and owners are safe for concurrent use. The ambient owner is tracked
// per goroutine; goroutines that need one must establish it with WithOwner.
package reactive
