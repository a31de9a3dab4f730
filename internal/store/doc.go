// Package store provides an observable state container.
//
// A Store holds one value of type S. Writers replace or merge into it;
// readers always get an independent copy. Every effective write runs
// through an ordered pipeline of change listeners and is then broadcast
// once to subscribers.
//
// # Write policy
//
// A write produces a candidate value, which is combined with the current
// value as follows:
//
//   - a slice candidate replaces the current value wholesale
//   - a candidate map with string keys is deep-merged onto a copy of a
//     current map of the same type, named map types included
//   - anything else replaces the current value
//
// If the result is identical to the current value the write is a no-op:
// no listener runs and nothing is broadcast.
//
// # Listeners and subscribers
//
// Listeners registered with OnChange run inside the write, in
// registration order, each receiving the candidate so far and its own
// snapshot of the previous value. Whatever the last listener returns is
// committed. Listeners must not write to the store they are attached to.
//
// Subscribers registered with Subscribe are told about each committed
// value after the write has finished, and may write back to the store.
package store
