// Package composer hydrates stores with server-rendered state and exports
// the state of live stores for the next render.
//
// A Composer is provided on a scope (usually a session's root owner) together
// with the hydration payload received from the previous render. Once Install
// has wired its hooks into a store Runtime, every store initialized under that
// scope starts from its hydrated state, and every live store can be exported:
//
//	rt := store.Default()
//	uninstall := composer.Install(rt)
//	defer uninstall()
//
//	root := reactive.NewOwner(nil)
//	c := composer.New(payload)
//	composer.Provide(root, c)
//
//	cart := store.Must(CartStore.Provide(root))
//	...
//	next, err := c.ExportHydrationData()
//
// Hydration data is keyed by store identifier ("Cart", "Cart/Counter",
// "Tab/settings"), so nested and id-scoped stores hydrate independently.
package composer
