package hydrate

import (
	"reflect"
	"testing"
)

type cart struct {
	Items []string       `json:"items"`
	Total int            `json:"total"`
	Meta  map[string]int `json:"meta,omitempty"`
}

func TestMergeOverridesPresentKeys(t *testing.T) {
	current := cart{Items: []string{"a"}, Total: 1}

	merged, err := Merge(current, []byte(`{"total": 9}`))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	got := merged.(cart)
	if got.Total != 9 {
		t.Errorf("Total = %d, want 9", got.Total)
	}
	if !reflect.DeepEqual(got.Items, []string{"a"}) {
		t.Errorf("Items = %v, want [a]", got.Items)
	}
}

func TestMergeDoesNotMutateCurrent(t *testing.T) {
	current := cart{Items: []string{"a", "b"}, Meta: map[string]int{"x": 1}}

	merged, err := Merge(current, []byte(`{"items": ["z"], "meta": {"y": 2}}`))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if current.Items[0] != "a" || len(current.Meta) != 1 {
		t.Errorf("current was modified: %#v", current)
	}
	got := merged.(cart)
	if !reflect.DeepEqual(got.Items, []string{"z"}) {
		t.Errorf("Items = %v", got.Items)
	}
	if got.Meta["x"] != 1 || got.Meta["y"] != 2 {
		t.Errorf("Meta = %v", got.Meta)
	}
}

func TestMergeMapState(t *testing.T) {
	current := map[string]any{"count": 1.0, "label": "a"}
	merged, err := Merge(current, []byte(`{"count": 5}`))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	got := merged.(map[string]any)
	if got["count"] != 5.0 || got["label"] != "a" {
		t.Errorf("merged = %v", got)
	}
	if current["count"] != 1.0 {
		t.Error("current map was modified")
	}
}

func TestMergePointerState(t *testing.T) {
	current := &cart{Total: 1}
	merged, err := Merge(current, []byte(`{"total": 2}`))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	got := merged.(*cart)
	if got == current || got.Total != 2 || current.Total != 1 {
		t.Errorf("pointer state should be copied: got %#v, current %#v", got, current)
	}
}

func TestMergeNilCurrent(t *testing.T) {
	merged, err := Merge(nil, []byte(`{"a": 1}`))
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if merged.(map[string]any)["a"] != 1.0 {
		t.Errorf("merged = %v", merged)
	}
}

func TestMergeIntoNilInterface(t *testing.T) {
	merged, err := MergeInto(reflect.TypeOf(cart{}), nil, []byte(`{"total": 3}`))
	if err != nil {
		t.Fatalf("MergeInto: %v", err)
	}
	if merged.(cart).Total != 3 {
		t.Errorf("merged = %#v", merged)
	}
}

func TestMergeInvalidJSON(t *testing.T) {
	if _, err := Merge(cart{}, []byte(`{"total": "nine"}`)); err == nil {
		t.Error("Expected a type error")
	}
	if _, err := Merge(cart{}, []byte(`{`)); err == nil {
		t.Error("Expected a syntax error")
	}
}

func TestEncode(t *testing.T) {
	data, err := Encode(cart{Total: 4})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if string(data) != `{"items":null,"total":4}` {
		t.Errorf("Encode = %s", data)
	}
}
