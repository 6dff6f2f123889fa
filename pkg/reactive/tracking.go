package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the ambient reactive state for one goroutine.
type trackingContext struct {
	// currentOwner is the Owner established by the innermost WithOwner call.
	currentOwner *Owner
}

// trackingContexts stores per-goroutine tracking contexts.
var trackingContexts sync.Map // map[uint64]*trackingContext

// GoroutineID returns an identifier for the calling goroutine.
// It is parsed from the runtime stack header ("goroutine <id> [...]") and is
// only meant for keying per-goroutine bookkeeping such as tracking contexts
// and store identifier stacks.
func GoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// lookupTrackingContext returns the tracking context of the calling
// goroutine, or nil. It never creates one.
func lookupTrackingContext() *trackingContext {
	if ctx, ok := trackingContexts.Load(GoroutineID()); ok {
		return ctx.(*trackingContext)
	}
	return nil
}

// getTrackingContext returns the tracking context of the calling goroutine,
// creating it on first use. Only writers call it.
func getTrackingContext() *trackingContext {
	gid := GoroutineID()
	if ctx, ok := trackingContexts.Load(gid); ok {
		return ctx.(*trackingContext)
	}
	ctx := &trackingContext{}
	trackingContexts.Store(gid, ctx)
	return ctx
}

// CurrentOwner returns the ambient owner for the calling goroutine, or nil.
func CurrentOwner() *Owner {
	if ctx := lookupTrackingContext(); ctx != nil {
		return ctx.currentOwner
	}
	return nil
}

func setCurrentOwner(o *Owner) *Owner {
	ctx := getTrackingContext()
	old := ctx.currentOwner
	ctx.currentOwner = o
	return old
}

// WithOwner runs fn with owner as the ambient owner of the calling goroutine.
// The previous owner is restored when fn returns or panics.
//
//	reactive.WithOwner(session.Owner(), func() {
//	    cart := CartStore.MustUseProvider()
//	    ...
//	})
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer func() {
		if old == nil {
			// Nothing left to track for this goroutine.
			trackingContexts.Delete(GoroutineID())
			return
		}
		setCurrentOwner(old)
	}()
	fn()
}
