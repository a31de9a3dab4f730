package value

import "reflect"

// Clone returns a structurally independent copy of v.
//
// Maps, slices and arrays are copied element by element, pointers get a
// fresh pointee, and structs have their exported fields cloned. Shared and
// cyclic pointers keep their shape in the copy. Unexported struct fields,
// channels and functions are copied as is.
func Clone(v any) any {
	if v == nil {
		return nil
	}
	var c cloner
	return c.value(reflect.ValueOf(v)).Interface()
}

// CloneOf is the typed form of Clone.
func CloneOf[T any](v T) T {
	c, ok := Clone(v).(T)
	if !ok {
		return v
	}
	return c
}

// ref identifies an already cloned pointer or map. The type is part of the
// key because a struct and its first field share an address.
type ref struct {
	addr uintptr
	typ  reflect.Type
}

type cloner struct {
	seen map[ref]reflect.Value
}

func (c *cloner) lookup(src reflect.Value) (ref, reflect.Value, bool) {
	r := ref{addr: src.Pointer(), typ: src.Type()}
	out, ok := c.seen[r]
	return r, out, ok
}

func (c *cloner) remember(r ref, out reflect.Value) {
	if c.seen == nil {
		c.seen = make(map[ref]reflect.Value)
	}
	c.seen[r] = out
}

// value returns a clone of src with the same static type.
func (c *cloner) value(src reflect.Value) reflect.Value {
	switch src.Kind() {
	case reflect.Interface:
		if src.IsNil() {
			return src
		}
		out := reflect.New(src.Type()).Elem()
		out.Set(c.value(src.Elem()))
		return out

	case reflect.Map:
		if src.IsNil() {
			return src
		}
		r, done, ok := c.lookup(src)
		if ok {
			return done
		}
		out := reflect.MakeMapWithSize(src.Type(), src.Len())
		c.remember(r, out)
		iter := src.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), c.value(iter.Value()))
		}
		return out

	case reflect.Slice:
		if src.IsNil() {
			return src
		}
		out := reflect.MakeSlice(src.Type(), src.Len(), src.Len())
		for i := range src.Len() {
			out.Index(i).Set(c.value(src.Index(i)))
		}
		return out

	case reflect.Array:
		out := reflect.New(src.Type()).Elem()
		for i := range src.Len() {
			out.Index(i).Set(c.value(src.Index(i)))
		}
		return out

	case reflect.Pointer:
		if src.IsNil() {
			return src
		}
		r, done, ok := c.lookup(src)
		if ok {
			return done
		}
		out := reflect.New(src.Type().Elem())
		c.remember(r, out)
		out.Elem().Set(c.value(src.Elem()))
		return out

	case reflect.Struct:
		out := reflect.New(src.Type()).Elem()
		out.Set(src)
		for i := range src.NumField() {
			if f := out.Field(i); f.CanSet() {
				f.Set(c.value(src.Field(i)))
			}
		}
		return out

	default:
		return src
	}
}
