package event

import (
	"errors"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/statebus/internal/event/topic"
)

func TestBus_OnDeliversArgs(t *testing.T) {
	bus := New()

	var got []any
	_, err := bus.On("greet", func(evt *Event) {
		got = evt.Args
	})
	require.NoError(t, err)

	assert.True(t, bus.Emit("greet", "hello", 42))
	assert.Equal(t, []any{"hello", 42}, got)
}

func TestBus_PatternsAreUnanchored(t *testing.T) {
	bus := New()

	var topics []string
	_, err := bus.On("user", func(evt *Event) {
		topics = append(topics, evt.Topic)
	})
	require.NoError(t, err)

	bus.Emit("user.login")
	bus.Emit("superuser")
	bus.Emit("order")

	assert.Equal(t, []string{"user.login", "superuser"}, topics)
}

func TestBus_PatternKinds(t *testing.T) {
	bus := New()

	var calls atomic.Int32
	h := func(*Event) { calls.Add(1) }

	_, err := bus.On(regexp.MustCompile(`^a$`), h)
	require.NoError(t, err)
	_, err = bus.On(topic.Literal("b"), h)
	require.NoError(t, err)
	_, err = bus.On([]any{"^c$", []string{"^d$"}, []topic.Pattern{topic.Glob("e.*")}}, h)
	require.NoError(t, err)

	for _, name := range []string{"a", "b", "c", "d", "e.x", "aa", "bb", "e.x.y"} {
		bus.Emit(name)
	}
	assert.Equal(t, int32(5), calls.Load())
}

func TestBus_InvalidTopic(t *testing.T) {
	bus := New()

	_, err := bus.On("(", func(*Event) {})
	require.ErrorIs(t, err, ErrInvalidTopic)
	require.ErrorIs(t, err, topic.ErrInvalidPattern)

	_, err = bus.On([]string{}, func(*Event) {})
	require.ErrorIs(t, err, ErrInvalidTopic)

	_, err = bus.On(42, func(*Event) {})
	require.ErrorIs(t, err, ErrInvalidTopic)

	_, err = bus.On("a", nil)
	require.ErrorIs(t, err, ErrNilHandler)

	assert.Zero(t, bus.Len())
}

func TestBus_TopicSplitting(t *testing.T) {
	for _, emitted := range []string{"a|b", "a,b", "a,|b", "|a,b|"} {
		t.Run(emitted, func(t *testing.T) {
			bus := New()

			var a, b int
			_, err := bus.On("^a$", func(*Event) { a++ })
			require.NoError(t, err)
			_, err = bus.On("^b$", func(*Event) { b++ })
			require.NoError(t, err)

			bus.Emit(emitted)
			assert.Equal(t, 1, a)
			assert.Equal(t, 1, b)
		})
	}
}

func TestBus_OneCallPerEmission(t *testing.T) {
	bus := New()

	var calls int
	_, err := bus.On([]string{"a", "b"}, func(*Event) { calls++ })
	require.NoError(t, err)

	bus.Emit("a|b")
	assert.Equal(t, 1, calls)
}

func TestBus_EmptyTopic(t *testing.T) {
	bus := New()

	var calls int
	_, err := bus.On("", func(*Event) { calls++ })
	require.NoError(t, err)

	assert.True(t, bus.Emit(""))
	assert.True(t, bus.Emit("|,"))
	assert.Zero(t, calls)
}

func TestBus_RegistrationOrder(t *testing.T) {
	bus := New()

	var order []string
	for _, name := range []string{"A", "B", "C"} {
		_, err := bus.On("x", func(*Event) { order = append(order, name) })
		require.NoError(t, err)
	}

	bus.Emit("x")
	assert.Equal(t, []string{"A", "B", "C"}, order)
}

func TestBus_OnceFiresOnce(t *testing.T) {
	bus := New()

	var calls int
	_, err := bus.Once("ready", func(*Event) { calls++ })
	require.NoError(t, err)
	require.Equal(t, 1, bus.Len())

	bus.Emit("ready")
	bus.Emit("ready")

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.Len())
}

func TestBus_OnceReentrant(t *testing.T) {
	bus := New()

	var calls int
	_, err := bus.Once("ready", func(*Event) {
		calls++
		bus.Emit("ready")
	})
	require.NoError(t, err)

	bus.Emit("ready")
	assert.Equal(t, 1, calls)
}

func TestBus_OnceConcurrent(t *testing.T) {
	bus := New()

	var calls atomic.Int32
	_, err := bus.Once("ready", func(*Event) { calls.Add(1) })
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bus.Emit("ready")
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
}

func TestBus_OnceUnsubscribeBeforeEmit(t *testing.T) {
	bus := New()

	var calls int
	unsub, err := bus.Once("ready", func(*Event) { calls++ })
	require.NoError(t, err)

	unsub()
	bus.Emit("ready")
	assert.Zero(t, calls)
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := New()

	var calls int
	unsub, err := bus.On("x", func(*Event) { calls++ })
	require.NoError(t, err)

	bus.Emit("x")
	unsub()
	unsub()
	bus.Emit("x")

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.Len())
}

func TestBus_UnsubscribeDuringDispatch(t *testing.T) {
	bus := New()

	var order []string
	var unsubB Unsubscribe
	_, err := bus.On("x", func(*Event) {
		order = append(order, "A")
		unsubB()
	})
	require.NoError(t, err)
	unsubB, err = bus.On("x", func(*Event) { order = append(order, "B") })
	require.NoError(t, err)
	_, err = bus.On("x", func(*Event) { order = append(order, "C") })
	require.NoError(t, err)

	bus.Emit("x")
	assert.Equal(t, []string{"A", "C"}, order)
}

func TestBus_SubscribeDuringDispatch(t *testing.T) {
	bus := New()

	var late int
	_, err := bus.On("x", func(*Event) {
		_, err := bus.On("x", func(*Event) { late++ })
		require.NoError(t, err)
	})
	require.NoError(t, err)

	bus.Emit("x")
	assert.Zero(t, late)

	bus.Emit("x")
	assert.Equal(t, 1, late)
}

func TestBus_ErrorSinglePropagation(t *testing.T) {
	bus := New()

	var calls int
	_, err := bus.On("failure", func(*Event) { calls++ })
	require.NoError(t, err)

	e := NewError("disk full")
	assert.True(t, bus.Emit("failure", e))
	assert.True(t, bus.Emit("failure", e))

	assert.Equal(t, 1, calls)
	assert.True(t, e.Propagated())
	assert.Equal(t, uint64(1), bus.Stats().Suppressed)
}

func TestBus_ErrorSinglePropagationAcrossTopics(t *testing.T) {
	bus := New()

	var inner, outer int
	_, err := bus.On("^inner$", func(evt *Event) {
		inner++
		bus.Emit("outer", evt.Err())
	})
	require.NoError(t, err)
	_, err = bus.On("^outer$", func(*Event) { outer++ })
	require.NoError(t, err)

	bus.Emit("inner", errors.New("plain error"))

	assert.Equal(t, 1, inner)
	assert.Zero(t, outer)
}

func TestBus_ErrorWithOtherArgsIsNotDeduped(t *testing.T) {
	bus := New()

	var calls int
	_, err := bus.On("failure", func(*Event) { calls++ })
	require.NoError(t, err)

	e := NewError("boom")
	bus.Emit("failure", e, "context")
	bus.Emit("failure", e, "context")

	assert.Equal(t, 2, calls)
	assert.False(t, e.Propagated())
}

func TestBus_PreventDefault(t *testing.T) {
	bus := New()

	var after bool
	_, err := bus.On("close", func(evt *Event) { evt.PreventDefault() })
	require.NoError(t, err)
	_, err = bus.On("close", func(evt *Event) {
		after = evt.DefaultPrevented()
	})
	require.NoError(t, err)

	assert.False(t, bus.Emit("close"))
	assert.True(t, after)
	assert.True(t, bus.Emit("open"))
	assert.Equal(t, uint64(1), bus.Stats().Prevented)
}

func TestBus_PanicPropagates(t *testing.T) {
	bus := New()

	var second bool
	_, err := bus.On("x", func(*Event) { panic("boom") })
	require.NoError(t, err)
	_, err = bus.On("x", func(*Event) { second = true })
	require.NoError(t, err)

	assert.PanicsWithValue(t, "boom", func() { bus.Emit("x") })
	assert.False(t, second)
}

func TestBus_WithRecover(t *testing.T) {
	var recovered []*PanicError
	bus := New(
		WithLogger(slogt.New(t)),
		WithPanicHandler(func(perr *PanicError) {
			recovered = append(recovered, perr)
		}),
	)

	var second bool
	_, err := bus.On("x", func(*Event) { panic("boom") })
	require.NoError(t, err)
	_, err = bus.On("x", func(*Event) { second = true })
	require.NoError(t, err)

	assert.NotPanics(t, func() { bus.Emit("x") })
	assert.True(t, second)

	require.Len(t, recovered, 1)
	assert.Equal(t, "boom", recovered[0].Value)
	assert.Equal(t, "x", recovered[0].Topic)
	assert.NotEmpty(t, recovered[0].Stack)
	assert.ErrorIs(t, recovered[0], ErrHandlerPanic)

	stats := bus.Stats()
	assert.Equal(t, uint64(1), stats.Panics)
	assert.Equal(t, uint64(1), stats.Delivered)
}

func TestBus_Spread(t *testing.T) {
	bus := New()

	var sum int
	_, err := bus.On("add", Spread(func(args ...any) {
		for _, a := range args {
			sum += a.(int)
		}
	}))
	require.NoError(t, err)

	bus.Emit("add", 1, 2, 3)
	assert.Equal(t, 6, sum)
}

func TestBus_ClearAndStats(t *testing.T) {
	bus := New(WithRecover())

	var calls int
	unsub, err := bus.On("x", func(*Event) { calls++ })
	require.NoError(t, err)
	_, err = bus.On("y", func(*Event) { calls++ })
	require.NoError(t, err)

	bus.Emit("x|y")
	stats := bus.Stats()
	assert.Equal(t, uint64(1), stats.Emitted)
	assert.Equal(t, uint64(2), stats.Delivered)
	assert.Equal(t, 2, stats.Subscriptions)

	bus.Clear()
	unsub()
	bus.Emit("x|y")

	assert.Equal(t, 2, calls)
	assert.Zero(t, bus.Len())
}

func TestBus_HandlerTime(t *testing.T) {
	plain := New()
	_, err := plain.On("x", func(*Event) { time.Sleep(time.Millisecond) })
	require.NoError(t, err)
	plain.Emit("x")
	assert.Zero(t, plain.Stats().HandlerTime)

	bus := New(WithRecover())
	_, err = bus.On("x", func(*Event) { time.Sleep(2 * time.Millisecond) })
	require.NoError(t, err)
	_, err = bus.On("x", func(*Event) { panic("boom") })
	require.NoError(t, err)

	bus.Emit("x")
	stats := bus.Stats()
	assert.GreaterOrEqual(t, stats.HandlerTime, 2*time.Millisecond)
	assert.Equal(t, stats.HandlerTime/2, stats.AvgHandlerTime)
	assert.Equal(t, uint64(1), stats.Panics)
}

func TestEvent_Accessors(t *testing.T) {
	evt := &Event{Args: []any{"a"}}
	assert.Equal(t, "a", evt.Arg(0))
	assert.Nil(t, evt.Arg(1))
	assert.Nil(t, evt.Arg(-1))
	assert.Nil(t, evt.Err())

	err := errors.New("x")
	evt = &Event{Args: []any{err}}
	assert.Same(t, err, evt.Err())
}
