// Package pointer reads and writes nested fields addressed by a dotted path ("name.first").
//
// Reads work on any Go value: maps keyed by strings, structs (by field name, json
// tag or case-insensitive name), pointers, interfaces and slices (numeric segments).
// Writes work on map trees, the shape of decoded JSON/YAML documents.
package pointer

import (
	"maps"
	"reflect"
	"strconv"
	"strings"

	"github.com/smart-table/smart-table-server/pkg/fn"
)

// Pointer is a compiled dotted path.
type Pointer struct {
	path  string
	parts []string
}

// New compiles a dotted path.
func New(path string) Pointer {
	return Pointer{
		path:  path,
		parts: strings.Split(path, "."),
	}
}

// Path returns the dotted path the pointer was built from.
func (p Pointer) Path() string {
	return p.path
}

// Get walks the path and returns the addressed value.
// It returns nil as soon as a segment is absent; it never panics on missing intermediates.
func (p Pointer) Get(target any) any {
	current := reflect.ValueOf(target)
	for _, part := range p.parts {
		next, ok := step(current, part)
		if !ok {
			return nil
		}
		current = next
	}
	return unwrap(current)
}

// Set walks the path, creating intermediate maps as needed, and shallow-merges tree
// into the map found at the leaf (existing keys not in tree are kept).
// It returns the mutated root, allocating one when target is nil.
func (p Pointer) Set(target map[string]any, tree map[string]any) map[string]any {
	if target == nil {
		target = map[string]any{}
	}
	current := target
	last := len(p.parts) - 1
	for _, key := range p.parts[:last] {
		next, ok := current[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[key] = next
		}
		current = next
	}

	leaf, ok := current[p.parts[last]].(map[string]any)
	if !ok {
		leaf = map[string]any{}
	}
	maps.Copy(leaf, tree)
	current[p.parts[last]] = leaf
	return target
}

// Setter is the curried form of Set: Setter(path)(target)(tree).
// Apply it once to a document to get a reusable updater for that sub-tree.
func Setter(path string) func(map[string]any) func(map[string]any) map[string]any {
	return fn.Curry2(New(path).Set)
}

// Get is a shorthand for New(path).Get(target).
func Get(target any, path string) any {
	return New(path).Get(target)
}

func step(v reflect.Value, key string) (reflect.Value, bool) {
	v, ok := indirect(v)
	if !ok {
		return reflect.Value{}, false
	}

	switch v.Kind() {
	case reflect.Map:
		keyType := v.Type().Key()
		if keyType.Kind() != reflect.String {
			return reflect.Value{}, false
		}
		val := v.MapIndex(reflect.ValueOf(key).Convert(keyType))
		return val, val.IsValid()
	case reflect.Struct:
		return field(v, key)
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= v.Len() {
			return reflect.Value{}, false
		}
		return v.Index(i), true
	}
	return reflect.Value{}, false
}

func indirect(v reflect.Value) (reflect.Value, bool) {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}, false
		}
		v = v.Elem()
	}
	return v, v.IsValid()
}

func field(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Name == name || jsonName(sf) == name {
			return v.Field(i), true
		}
	}
	// Promoted fields are reached one embedded level at a time: a nil embedded
	// pointer means the field is absent.
	sf, ok := t.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, name) })
	if !ok {
		return reflect.Value{}, false
	}
	f, err := v.FieldByIndexErr(sf.Index)
	if err != nil || !f.CanInterface() {
		return reflect.Value{}, false
	}
	return f, true
}

func jsonName(sf reflect.StructField) string {
	tag := sf.Tag.Get("json")
	if tag == "" || tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}

func unwrap(v reflect.Value) any {
	if !v.IsValid() || !v.CanInterface() {
		return nil
	}
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return nil
		}
	}
	return v.Interface()
}
