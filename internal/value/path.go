package value

import (
	"reflect"
	"strings"
)

// PathSeparator separates the segments of a nested field path.
const PathSeparator = "."

// GetByPath retrieves a value from a nested map using a dot-separated path.
func GetByPath(data map[string]any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}

	current := any(data)
	for _, part := range strings.Split(path, PathSeparator) {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		val, exists := m[part]
		if !exists {
			return nil, false
		}
		current = val
	}

	return current, true
}

// SetByPath sets a value in a nested map using a dot-separated path.
// Creates intermediate maps as needed.
func SetByPath(data map[string]any, path string, v any) {
	if data == nil {
		return
	}

	parts := strings.Split(path, PathSeparator)
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		current = next
	}

	current[parts[len(parts)-1]] = v
}

// DeleteByPath removes a value from a nested map using a dot-separated path.
// Returns true if the value was found and deleted.
func DeleteByPath(data map[string]any, path string) bool {
	if data == nil {
		return false
	}

	parts := strings.Split(path, PathSeparator)
	current := data

	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			return false
		}
		current = next
	}

	key := parts[len(parts)-1]
	if _, exists := current[key]; exists {
		delete(current, key)
		return true
	}
	return false
}

// Flatten flattens a nested map into a single-level map with dot-separated keys.
func Flatten(data map[string]any) map[string]any {
	result := make(map[string]any)
	flattenRecursive(data, "", result)
	return result
}

func flattenRecursive(data map[string]any, prefix string, result map[string]any) {
	for key, val := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + PathSeparator + key
		}

		if nested, ok := val.(map[string]any); ok && len(nested) > 0 {
			flattenRecursive(nested, fullKey, result)
		} else {
			result[fullKey] = val
		}
	}
}

// Unflatten converts a flattened map with dot-separated keys back to nested structure.
func Unflatten(data map[string]any) map[string]any {
	result := make(map[string]any)
	for path, val := range data {
		SetByPath(result, path, val)
	}
	return result
}

// Diff returns the paths that differ between two maps.
func Diff(old, new map[string]any) (added, modified, removed []string) {
	oldFlat := Flatten(old)
	newFlat := Flatten(new)

	for path, newVal := range newFlat {
		if oldVal, exists := oldFlat[path]; exists {
			if !Equal(oldVal, newVal) {
				modified = append(modified, path)
			}
		} else {
			added = append(added, path)
		}
	}

	for path := range oldFlat {
		if _, exists := newFlat[path]; !exists {
			removed = append(removed, path)
		}
	}

	return added, modified, removed
}

// Field looks up a named field of v. The name may be a dot path that walks
// through nested maps with string keys and exported struct fields; pointers
// and interfaces along the way are dereferenced.
func Field(v any, name string) (any, bool) {
	head, rest, nested := strings.Cut(name, PathSeparator)

	var found any
	if m, ok := v.(map[string]any); ok {
		val, exists := m[head]
		if !exists {
			return nil, false
		}
		found = val
	} else {
		val, ok := reflectField(reflect.ValueOf(v), head)
		if !ok {
			return nil, false
		}
		found = val
	}

	if nested {
		return Field(found, rest)
	}
	return found, true
}

func reflectField(rv reflect.Value, name string) (any, bool) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Struct:
		f := rv.FieldByName(name)
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return f.Interface(), true
	case reflect.Map:
		keyType := rv.Type().Key()
		if keyType.Kind() != reflect.String {
			return nil, false
		}
		e := rv.MapIndex(reflect.ValueOf(name).Convert(keyType))
		if !e.IsValid() {
			return nil, false
		}
		return e.Interface(), true
	default:
		return nil, false
	}
}

// FieldChanged reports whether the named field differs between next and
// prev. A field present on one side only counts as changed.
func FieldChanged(next, prev any, name string) bool {
	a, okA := Field(next, name)
	b, okB := Field(prev, name)
	if okA != okB {
		return true
	}
	return !Equal(a, b)
}
