package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/statebus/internal/event"
	"github.com/dshills/statebus/internal/store"
)

// DefaultTimeout bounds a single call into Lua.
const DefaultTimeout = 5 * time.Second

// TopicError is emitted on a bound bus when a listener or filter fails.
const TopicError = "script.error"

// Errors for Lua runtime operations.
var (
	// ErrClosed is returned when operating on a closed runtime.
	ErrClosed = errors.New("lua runtime is closed")

	// ErrNotFunction is returned when a called global is not a function.
	ErrNotFunction = errors.New("not a lua function")

	// ErrBadResult is returned when a transform returns something other
	// than a table or nil.
	ErrBadResult = errors.New("lua transform must return a table or nil")
)

// Runtime is a sandboxed Lua state.
type Runtime struct {
	mu     sync.Mutex
	L      *lua.LState
	closed bool

	timeout time.Duration
	logger  *slog.Logger
	bus     *event.Bus

	calls  atomic.Uint64
	errors atomic.Uint64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the logger. Lua print and log calls go to it.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithTimeout bounds each call into Lua. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(r *Runtime) {
		if d >= 0 {
			r.timeout = d
		}
	}
}

// New creates a runtime with only the base, table, string and math
// libraries opened.
func New(opts ...Option) (*Runtime, error) {
	r := &Runtime{
		timeout: DefaultTimeout,
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, open := range []lua.LGFunction{lua.OpenBase, lua.OpenTable, lua.OpenString, lua.OpenMath} {
		open(L)
	}
	// The base library can still reach the file system.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	r.L = L

	L.SetGlobal("print", L.NewFunction(r.luaPrint))
	L.SetGlobal("log", L.NewFunction(r.luaLog))
	return r, nil
}

// BindBus exposes emit(topic, ...) to Lua and reports listener failures
// on b.
func (r *Runtime) BindBus(b *event.Bus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.bus = b
	r.L.SetGlobal("emit", r.L.NewFunction(r.luaEmit))
}

// DoString executes a Lua chunk.
func (r *Runtime) DoString(code string) error {
	return r.do(func() error { return r.L.DoString(code) })
}

// DoFile executes a Lua file.
func (r *Runtime) DoFile(path string) error {
	if err := r.do(func() error { return r.L.DoFile(path) }); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func (r *Runtime) do(fn func() error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	cancel := r.bound()
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("lua panic: %v", rec)
		}
	}()
	return fn()
}

// bound applies the call timeout to the state.
func (r *Runtime) bound() func() {
	if r.timeout <= 0 {
		return func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	r.L.SetContext(ctx)
	return func() {
		r.L.RemoveContext()
		cancel()
	}
}

// Call calls the global Lua function fn with Go arguments and returns its
// results as Go values.
func (r *Runtime) Call(fn string, args ...any) ([]any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}
	r.calls.Add(1)

	fnVal := r.L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %q is %s", ErrNotFunction, fn, fnVal.Type())
	}

	cancel := r.bound()
	defer cancel()

	stackTop := r.L.GetTop()
	r.L.Push(fnVal)
	for _, arg := range args {
		r.L.Push(ToLua(r.L, arg))
	}

	var callErr error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				callErr = fmt.Errorf("lua panic: %v", rec)
			}
		}()
		callErr = r.L.PCall(len(args), lua.MultRet, nil)
	}()
	if callErr != nil {
		r.L.SetTop(stackTop)
		return nil, fmt.Errorf("calling %s: %w", fn, callErr)
	}

	nRet := r.L.GetTop() - stackTop
	results := make([]any, 0, max(nRet, 0))
	for i := 1; i <= nRet; i++ {
		results = append(results, ToGo(r.L.Get(stackTop+i)))
	}
	r.L.SetTop(stackTop)
	return results, nil
}

// Has reports whether fn is a global Lua function.
func (r *Runtime) Has(fn string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	return r.L.GetGlobal(fn).Type() == lua.LTFunction
}

// Transform returns a store listener backed by the global Lua function
// fn(next, prev). A returned table becomes the next value and nil keeps
// the candidate. When the call fails the failure is logged and the
// candidate passes through.
func (r *Runtime) Transform(fn string) store.Listener[map[string]any] {
	return func(next, prev map[string]any) map[string]any {
		results, err := r.Call(fn, next, prev)
		if err == nil && len(results) > 0 && results[0] != nil {
			if m, ok := results[0].(map[string]any); ok {
				return m
			}
			err = fmt.Errorf("%s: %w, got %T", fn, ErrBadResult, results[0])
		}
		if err != nil {
			r.fail(fn, err)
		}
		return next
	}
}

// Predicate returns a store filter backed by the global Lua function
// fn(next, prev). The candidate is accepted when fn returns a truthy
// value. A failing call rejects it.
func (r *Runtime) Predicate(fn string) store.Filter {
	return func(next, prev any) bool {
		results, err := r.Call(fn, next, prev)
		if err != nil {
			r.fail(fn, err)
			return false
		}
		if len(results) == 0 {
			return false
		}
		switch v := results[0].(type) {
		case nil:
			return false
		case bool:
			return v
		default:
			return true
		}
	}
}

func (r *Runtime) fail(fn string, err error) {
	r.errors.Add(1)
	r.logger.Error("lua listener failed", "function", fn, "error", err)

	r.mu.Lock()
	bus := r.bus
	r.mu.Unlock()
	if bus != nil {
		bus.Emit(TopicError, event.Wrap(err))
	}
}

// Stats contains runtime statistics.
type Stats struct {
	// Calls is the number of Call invocations.
	Calls uint64
	// Errors is the number of failed listener and filter calls.
	Errors uint64
}

// Stats returns runtime statistics.
func (r *Runtime) Stats() Stats {
	return Stats{Calls: r.calls.Load(), Errors: r.errors.Load()}
}

// Close releases the Lua state. Later calls return ErrClosed.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.L.Close()
	r.closed = true
	return nil
}

func (r *Runtime) luaPrint(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	r.logger.Info(strings.Join(parts, "\t"), "source", "lua")
	return 0
}

// luaLog implements log(level, msg, key, value, ...).
func (r *Runtime) luaLog(L *lua.LState) int {
	level := slog.LevelInfo
	if err := level.UnmarshalText([]byte(strings.ToUpper(L.CheckString(1)))); err != nil {
		L.ArgError(1, "unknown log level")
		return 0
	}
	msg := L.CheckString(2)

	attrs := []any{"source", "lua"}
	for i := 3; i+1 <= L.GetTop(); i += 2 {
		attrs = append(attrs, L.ToStringMeta(L.Get(i)).String(), ToGo(L.Get(i+1)))
	}
	r.logger.Log(context.Background(), level, msg, attrs...)
	return 0
}

// luaEmit implements emit(topic, ...) and returns the Emit result.
func (r *Runtime) luaEmit(L *lua.LState) int {
	topic := L.CheckString(1)
	args := make([]any, 0, max(L.GetTop()-1, 0))
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, ToGo(L.Get(i)))
	}
	L.Push(lua.LBool(r.bus.Emit(topic, args...)))
	return 1
}
