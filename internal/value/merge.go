package value

import "reflect"

// Merge deep-merges each source into dst, left to right, and returns dst.
// Later sources overwrite overlapping keys. Nested maps of the same type
// are merged recursively; every other value replaces what was there.
// Values copied from a source are cloned so dst never aliases a source.
//
// dst is modified in place; pass Clone(x) to keep x untouched.
func Merge(dst map[string]any, srcs ...map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for _, src := range srcs {
		mergeMap(reflect.ValueOf(dst), reflect.ValueOf(src))
	}
	return dst
}

// MergeOf returns a copy of dst with src deep-merged into it, leaving
// both arguments untouched. It works for any map type with string keys,
// including named ones, and reports false when dst and src are not such
// maps of the same type.
func MergeOf[T any](dst, src T) (T, bool) {
	dv, sv := reflect.ValueOf(any(dst)), reflect.ValueOf(any(src))
	if !isStringMap(dv) || !isStringMap(sv) || dv.Type() != sv.Type() {
		return dst, false
	}

	out := reflect.MakeMapWithSize(dv.Type(), dv.Len()+sv.Len())
	if !dv.IsNil() {
		out = reflect.ValueOf(Clone(dv.Interface()))
	}
	mergeMap(out, sv)

	merged, ok := out.Interface().(T)
	if !ok {
		return dst, false
	}
	return merged, true
}

// mergeMap merges src into the string-keyed map dst in place. Nested maps
// already in dst are mutated, so dst must not share them with anyone.
func mergeMap(dst, src reflect.Value) {
	iter := src.MapRange()
	for iter.Next() {
		key, sv := iter.Key(), iter.Value()
		if dv := dst.MapIndex(key); dv.IsValid() {
			d, s := concrete(dv), concrete(sv)
			if isStringMap(d) && isStringMap(s) && d.Type() == s.Type() && !d.IsNil() {
				mergeMap(d, s)
				continue
			}
		}
		var c cloner
		dst.SetMapIndex(key, c.value(sv))
	}
}

func concrete(rv reflect.Value) reflect.Value {
	if rv.Kind() == reflect.Interface && !rv.IsNil() {
		return rv.Elem()
	}
	return rv
}
