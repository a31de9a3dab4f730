// Package view renders a map store on a terminal.
//
// A View draws a flattened, sorted key/value listing of a snapshot. Run
// wires a View to a store through a binding.Binding so every committed
// change is redrawn, and returns when the user presses q, Esc or Ctrl-C
// or the context is cancelled.
//
// The package depends on a narrow Screen interface rather than the full
// tcell.Screen so tests can draw into memory.
package view
