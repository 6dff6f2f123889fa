// Package hydrate merges JSON payloads into typed state values.
//
// It backs both server-state hydration and devtools state replacement: a
// payload produced by encoding a store's state is merged onto a copy of
// another value of the same type. Keys present in the payload override, keys
// absent keep the current value, following encoding/json decoding rules for
// nested objects.
package hydrate

import (
	"encoding/json"
	"fmt"
	"reflect"
)

// Merge returns a deep copy of current with data decoded on top of it.
// current is never modified. The copy is made through a JSON round trip, so
// unexported fields are not carried over. With a nil current, data is decoded
// into a generic value.
func Merge(current any, data []byte) (any, error) {
	if current == nil {
		var out any
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return MergeInto(reflect.TypeOf(current), current, data)
}

// MergeInto is Merge with an explicit result type, for callers holding a
// typed container whose current value may be a nil interface.
func MergeInto(t reflect.Type, current any, data []byte) (any, error) {
	target := reflect.New(t)

	if current != nil {
		base, err := json.Marshal(current)
		if err != nil {
			return nil, fmt.Errorf("encode current state: %w", err)
		}
		if err := json.Unmarshal(base, target.Interface()); err != nil {
			return nil, fmt.Errorf("copy current state: %w", err)
		}
	}

	if err := json.Unmarshal(data, target.Interface()); err != nil {
		return nil, err
	}
	return target.Elem().Interface(), nil
}

// Encode returns the JSON encoding of a state value.
func Encode(state any) (json.RawMessage, error) {
	data, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}
