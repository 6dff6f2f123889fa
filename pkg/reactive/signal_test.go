package reactive

import (
	"errors"
	"reflect"
	"testing"
)

func TestSignalGetSet(t *testing.T) {
	s := NewSignal(1)
	if s.Get() != 1 {
		t.Errorf("Expected 1, got %d", s.Get())
	}
	s.Set(2)
	if s.Peek() != 2 {
		t.Errorf("Expected 2, got %d", s.Peek())
	}
	s.Update(func(n int) int { return n * 10 })
	if s.Get() != 20 {
		t.Errorf("Expected 20, got %d", s.Get())
	}
}

func TestSignalSubscribe(t *testing.T) {
	s := NewSignal("a")
	calls := 0
	unsubscribe := s.Subscribe(func() { calls++ })

	s.Set("b")
	s.Set("b") // unchanged, no notification
	if calls != 1 {
		t.Errorf("Expected 1 notification, got %d", calls)
	}

	unsubscribe()
	unsubscribe()
	s.Set("c")
	if calls != 1 {
		t.Errorf("Expected no notification after unsubscribe, got %d", calls)
	}
}

func TestSignalUnsubscribeDuringNotify(t *testing.T) {
	s := NewSignal(0)
	var unsubscribe func()
	first := 0
	second := 0
	unsubscribe = s.Subscribe(func() {
		first++
		unsubscribe()
	})
	s.Subscribe(func() { second++ })

	s.Set(1)
	s.Set(2)

	if first != 1 {
		t.Errorf("Expected first subscriber once, got %d", first)
	}
	if second != 2 {
		t.Errorf("Expected second subscriber twice, got %d", second)
	}
}

func TestSignalStructEquality(t *testing.T) {
	type counter struct{ Count int }
	s := NewSignal(counter{Count: 1})
	calls := 0
	s.Subscribe(func() { calls++ })

	s.Set(counter{Count: 1})
	if calls != 0 {
		t.Errorf("Deep-equal write should not notify, got %d", calls)
	}
	s.Set(counter{Count: 2})
	if calls != 1 {
		t.Errorf("Expected 1 notification, got %d", calls)
	}
}

func TestSignalAnyInterfaceMixedTypes(t *testing.T) {
	s := NewSignal[any](1)
	s.Set("one")
	if s.Get() != "one" {
		t.Errorf("Expected 'one', got %v", s.Get())
	}
}

func TestSignalValue(t *testing.T) {
	type state struct{ Name string }
	var v Value = NewSignal(state{Name: "a"})

	if v.Type() != reflect.TypeOf(state{}) {
		t.Errorf("Type() = %v", v.Type())
	}
	if err := v.SetAny(state{Name: "b"}); err != nil {
		t.Fatalf("SetAny: %v", err)
	}
	if v.Any().(state).Name != "b" {
		t.Errorf("Expected 'b', got %v", v.Any())
	}

	err := v.SetAny(42)
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("Expected ErrTypeMismatch, got %v", err)
	}

	if err := v.SetAny(nil); err != nil {
		t.Fatalf("SetAny(nil): %v", err)
	}
	if v.Any().(state).Name != "" {
		t.Errorf("Expected zero value after SetAny(nil), got %v", v.Any())
	}
}

func TestSignalWithEquals(t *testing.T) {
	s := NewSignal(1).WithEquals(func(a, b int) bool { return a%2 == b%2 })
	calls := 0
	s.Subscribe(func() { calls++ })

	s.Set(3)
	if calls != 0 || s.Get() != 1 {
		t.Errorf("Same parity should be treated as equal, calls=%d value=%d", calls, s.Get())
	}
	s.Set(2)
	if calls != 1 || s.Get() != 2 {
		t.Errorf("Expected change, calls=%d value=%d", calls, s.Get())
	}
}
