// Package devtools mirrors stores into a devtools client.
//
// A Bridge installs an initialized hook on a store.Runtime. Every store
// initialized afterwards is mirrored under its identifier, and every
// function-valued field of its API is wrapped so that each call is reported
// as a mutation before it runs:
//
//	hub := devtools.NewSocketHub()
//	bridge, err := devtools.NewBridge(hub, devtools.WithFilter(`action != "Tick"`))
//	if err != nil {
//	    return err
//	}
//	bridge.Install(rt)
//	http.Handle("/_vstore/devtools", hub)
//
// The client may send a travel-to-state message to replace mirrored states.
//
// A Bridge created with a nil Hook does nothing, so applications can build
// one unconditionally and only attach a hub in development.
package devtools
