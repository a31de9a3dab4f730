package value

import "reflect"

// Same reports whether a and b are the same value by identity.
//
// Maps compare by their underlying table and slices by backing array and
// length, so two equal but separately allocated containers are not the same.
// Functions are never the same. Other values compare with ==, and values
// that cannot be compared are never the same.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}

	switch ra.Kind() {
	case reflect.Map:
		return ra.UnsafePointer() == rb.UnsafePointer()
	case reflect.Slice:
		return ra.UnsafePointer() == rb.UnsafePointer() && ra.Len() == rb.Len()
	case reflect.Func:
		return false
	}

	if !ra.Comparable() || !rb.Comparable() {
		return false
	}
	return a == b
}

// Equal reports whether a and b are structurally equal.
func Equal(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}

	switch va := a.(type) {
	case map[string]any:
		vb, ok := b.(map[string]any)
		if !ok {
			return false
		}
		return mapsEqual(va, vb)
	case []any:
		vb, ok := b.([]any)
		if !ok {
			return false
		}
		return slicesEqual(va, vb)
	default:
		return reflect.DeepEqual(a, b)
	}
}

func mapsEqual(a, b map[string]any) bool {
	if len(a) != len(b) {
		return false
	}
	for k, va := range a {
		vb, ok := b[k]
		if !ok || !Equal(va, vb) {
			return false
		}
	}
	return true
}

func slicesEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
