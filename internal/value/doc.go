// Package value implements the copy and merge primitives the store is built on.
//
// Values are classified into a closed set of shapes:
//
//	KindMap     any map with string keys, merged key-wise on write
//	KindSlice   any Go slice, always replaced wholesale
//	KindScalar  everything else, replaced by identity
//
// Clone produces a snapshot that shares no mutable containers with its
// source, so callers may freely mutate what they receive. Merge performs a
// deep, left-to-right structural merge of string-keyed maps; non-map values are
// treated as atomic replacements.
package value
