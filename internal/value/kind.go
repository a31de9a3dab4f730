package value

import "reflect"

// Kind is the shape of a value as far as merge and copy are concerned.
type Kind int

const (
	// KindScalar covers numbers, strings, bools, nil, structs, pointers and
	// any other value that is replaced rather than merged.
	KindScalar Kind = iota

	// KindMap is a plain key-value structure: any map with string keys.
	KindMap

	// KindSlice is any Go slice.
	KindSlice
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindMap:
		return "map"
	case KindSlice:
		return "slice"
	default:
		return "unknown"
	}
}

// KindOf classifies v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindScalar
	case map[string]any:
		return KindMap
	case []any:
		return KindSlice
	}
	switch t := reflect.TypeOf(v); t.Kind() {
	case reflect.Slice:
		return KindSlice
	case reflect.Map:
		if t.Key().Kind() == reflect.String {
			return KindMap
		}
	}
	return KindScalar
}

func isStringMap(rv reflect.Value) bool {
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String
}

// IsMap reports whether v is a plain key-value structure.
func IsMap(v any) bool {
	return KindOf(v) == KindMap
}

// IsSlice reports whether v is a slice of any element type.
func IsSlice(v any) bool {
	return KindOf(v) == KindSlice
}
