package entities

import (
	"reflect"
	"strings"
)

// Flags is the open metadata map carried by entities and effects.
// Nested values are addressed with dotted paths such as "ddbimporter.definitionId".
type Flags map[string]any

// Get returns the value at path.
func (f Flags) Get(path string) (any, bool) {
	if f == nil {
		return nil, false
	}
	parts := strings.Split(path, ".")
	var current map[string]any = f
	for i, part := range parts {
		value, ok := current[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return value, true
		}
		current, ok = asMap(value)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

// GetString returns the string at path, or "".
func (f Flags) GetString(path string) string {
	value, ok := f.Get(path)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// GetBool returns the bool at path, or false.
func (f Flags) GetBool(path string) bool {
	value, ok := f.Get(path)
	if !ok {
		return false
	}
	b, _ := value.(bool)
	return b
}

// Has reports whether path is set.
func (f Flags) Has(path string) bool {
	_, ok := f.Get(path)
	return ok
}

// Set stores value at path, creating intermediate maps.
// f must be non-nil.
func (f Flags) Set(path string, value any) {
	parts := strings.Split(path, ".")
	var current map[string]any = f
	for _, part := range parts[:len(parts)-1] {
		next, ok := asMap(current[part])
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// Clone returns a deep copy.
func (f Flags) Clone() Flags {
	if f == nil {
		return nil
	}
	return Flags(cloneMap(f))
}

func asMap(value any) (map[string]any, bool) {
	switch m := value.(type) {
	case map[string]any:
		return m, true
	case Flags:
		return m, true
	default:
		return nil, false
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch value := v.(type) {
	case map[string]any:
		return cloneMap(value)
	case Flags:
		return Flags(cloneMap(value))
	case []any:
		out := make([]any, len(value))
		for i, item := range value {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(value))
		copy(out, value)
		return out
	case []map[string]any:
		out := make([]map[string]any, len(value))
		for i, item := range value {
			out[i] = cloneMap(item)
		}
		return out
	case nil:
		return nil
	default:
		return cloneReflect(reflect.ValueOf(v)).Interface()
	}
}

// cloneReflect copies any other slice, map, array or pointer value. Structs are
// copied by value.
func cloneReflect(rv reflect.Value) reflect.Value {
	if !rv.IsValid() {
		return rv
	}
	switch rv.Kind() {
	case reflect.Slice:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneElem(rv.Index(i)))
		}
		return out
	case reflect.Array:
		out := reflect.New(rv.Type()).Elem()
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(cloneElem(rv.Index(i)))
		}
		return out
	case reflect.Map:
		if rv.IsNil() {
			return rv
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), cloneElem(iter.Value()))
		}
		return out
	case reflect.Pointer:
		if rv.IsNil() {
			return rv
		}
		out := reflect.New(rv.Elem().Type())
		out.Elem().Set(cloneElem(rv.Elem()))
		return out
	default:
		return rv
	}
}

func cloneElem(rv reflect.Value) reflect.Value {
	if rv.Kind() != reflect.Interface {
		return cloneReflect(rv)
	}
	if rv.IsNil() {
		return rv
	}
	out := reflect.New(rv.Type()).Elem()
	out.Set(reflect.ValueOf(cloneValue(rv.Elem().Interface())))
	return out
}
