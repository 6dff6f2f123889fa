package store

import (
	"reflect"
	"sort"

	"github.com/vango-dev/vstore/internal/errors"
)

// tagName is the struct tag controlling patching. A field tagged
// `store:"-"` cannot be overridden by initialized hooks.
const tagName = "store"

// Patch overrides API fields by name. Values must be assignable to the
// field's type; a nil value resets the field to its zero value.
type Patch map[string]any

// Set records an override and returns the patch for chaining.
//
//	return store.Patch{}.Set("Increment", wrapped), nil
func (p Patch) Set(field string, value any) Patch {
	if p == nil {
		p = Patch{}
	}
	p[field] = value
	return p
}

// Fields returns the names of the overridable fields of api in declaration
// order. It returns nil if api is not a struct or pointer to struct.
func Fields(api any) []string {
	t, _, ok := structType(api)
	if !ok {
		return nil
	}
	var names []string
	for i := 0; i < t.NumField(); i++ {
		if overridable(t.Field(i)) {
			names = append(names, t.Field(i).Name)
		}
	}
	return names
}

func overridable(f reflect.StructField) bool {
	return f.IsExported() && !f.Anonymous && f.Tag.Get(tagName) != "-"
}

// structType returns the struct type behind api and whether api is a pointer.
func structType(api any) (reflect.Type, bool, bool) {
	t := reflect.TypeOf(api)
	if t == nil {
		return nil, false, false
	}
	if t.Kind() == reflect.Struct {
		return t, false, true
	}
	if t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct {
		return t.Elem(), true, true
	}
	return nil, false, false
}

// applyPatch returns a shallow copy of api with the patch applied. api itself
// is never modified: for pointer APIs a new pointer is returned.
func applyPatch[A any](api A, p Patch) (A, error) {
	if len(p) == 0 {
		return api, nil
	}

	t, isPtr, ok := structType(api)
	if !ok {
		return api, errors.New("E215").WithDetailf("API type %T", api)
	}

	src := reflect.ValueOf(api)
	if isPtr {
		if src.IsNil() {
			return api, errors.New("E215").WithDetailf("nil %T", api)
		}
		src = src.Elem()
	}
	dst := reflect.New(t).Elem()
	dst.Set(src)

	// Deterministic order keeps error reporting stable.
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sf, found := t.FieldByName(name)
		if !found || len(sf.Index) != 1 {
			return api, errors.New("E212").WithDetailf("%s has no field %q", t, name)
		}
		if !overridable(sf) {
			return api, errors.New("E213").WithDetailf("%s.%s is not overridable", t, name)
		}
		field := dst.Field(sf.Index[0])

		value := p[name]
		if value == nil {
			field.Set(reflect.Zero(sf.Type))
			continue
		}
		v := reflect.ValueOf(value)
		if !v.Type().AssignableTo(sf.Type) {
			return api, errors.New("E213").WithDetailf("cannot assign %s to %s.%s (%s)", v.Type(), t, name, sf.Type)
		}
		field.Set(v)
	}

	if isPtr {
		return dst.Addr().Interface().(A), nil
	}
	return dst.Interface().(A), nil
}
