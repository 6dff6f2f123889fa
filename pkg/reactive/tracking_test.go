package reactive

import (
	"sync"
	"testing"
)

func TestWithOwnerRestores(t *testing.T) {
	if CurrentOwner() != nil {
		t.Fatal("Expected no ambient owner")
	}

	outer := NewOwner(nil)
	inner := NewOwner(outer)

	WithOwner(outer, func() {
		if CurrentOwner() != outer {
			t.Error("Expected outer owner")
		}
		WithOwner(inner, func() {
			if CurrentOwner() != inner {
				t.Error("Expected inner owner")
			}
		})
		if CurrentOwner() != outer {
			t.Error("Expected outer owner to be restored")
		}
	})

	if CurrentOwner() != nil {
		t.Error("Expected ambient owner to be cleared")
	}
}

func TestWithOwnerRestoresOnPanic(t *testing.T) {
	o := NewOwner(nil)
	func() {
		defer func() { _ = recover() }()
		WithOwner(o, func() { panic("boom") })
	}()
	if CurrentOwner() != nil {
		t.Error("Expected ambient owner to be cleared after panic")
	}
}

func TestAmbientOwnerIsPerGoroutine(t *testing.T) {
	o := NewOwner(nil)
	var wg sync.WaitGroup

	WithOwner(o, func() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if CurrentOwner() != nil {
				t.Error("New goroutine should not inherit the ambient owner")
			}
		}()
		wg.Wait()
	})
}

func TestGoroutineID(t *testing.T) {
	main := GoroutineID()
	if main == 0 {
		t.Fatal("Expected non-zero goroutine id")
	}
	if GoroutineID() != main {
		t.Error("GoroutineID should be stable on one goroutine")
	}

	other := make(chan uint64)
	go func() { other <- GoroutineID() }()
	if <-other == main {
		t.Error("Expected a different id on another goroutine")
	}
}

func countTrackingContexts() int {
	n := 0
	trackingContexts.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestCurrentOwnerDoesNotTrack(t *testing.T) {
	before := countTrackingContexts()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if CurrentOwner() != nil {
				t.Error("Expected no ambient owner")
			}
		}()
	}
	wg.Wait()

	if after := countTrackingContexts(); after != before {
		t.Errorf("tracking contexts: before=%d after=%d", before, after)
	}
}

func TestWithOwnerForgetsGoroutine(t *testing.T) {
	before := countTrackingContexts()

	done := make(chan struct{})
	go func() {
		defer close(done)
		WithOwner(NewOwner(nil), func() {})
	}()
	<-done

	if after := countTrackingContexts(); after != before {
		t.Errorf("tracking contexts: before=%d after=%d", before, after)
	}
}
