package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dshills/statebus/internal/config/loader"
	"github.com/dshills/statebus/internal/event"
	"github.com/dshills/statebus/internal/event/topic"
	"github.com/dshills/statebus/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNewFile_Validation(t *testing.T) {
	s := store.New(map[string]any{})

	_, err := NewFile("state.txt", s)
	assert.ErrorIs(t, err, loader.ErrUnsupportedFormat)

	_, err = NewFile("state.yaml", nil)
	assert.Error(t, err)

	f, err := NewFile("state.yaml", s)
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(f.Path()))
}

func TestFile_Load(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.yaml")
	writeFile(t, path, "user:\n  name: ada\n")

	s := store.New(map[string]any{"user": map[string]any{"role": "admin"}})
	f, err := NewFile(path, s, WithLogger(slogt.New(t)))
	require.NoError(t, err)

	require.NoError(t, f.Load())
	assert.Equal(t, map[string]any{"user": map[string]any{"name": "ada", "role": "admin"}}, s.Get())
	assert.Equal(t, Stats{Loads: 1}, f.Stats())
}

func TestFile_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.toml")

	bus := event.New()
	var reported []error
	_, err := bus.On(topic.Literal(TopicError), func(evt *event.Event) {
		reported = append(reported, evt.Err())
	})
	require.NoError(t, err)

	s := store.New(map[string]any{"keep": true})
	f, err := NewFile(path, s, WithBus(bus), WithLogger(slogt.New(t)))
	require.NoError(t, err)

	assert.ErrorIs(t, f.Load(), ErrMissing)

	writeFile(t, path, "[broken\n")
	err = f.Load()
	var perr *loader.ParseError
	assert.ErrorAs(t, err, &perr)

	assert.Len(t, reported, 2)
	assert.Equal(t, map[string]any{"keep": true}, s.Get())
	assert.Equal(t, uint64(2), f.Stats().Errors)
}

func TestFile_Run(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	writeFile(t, path, `{"count": 1}`)

	bus := event.New()
	loaded := make(chan uint64, 1)
	_, err := bus.On(topic.Literal(TopicLoaded), func(evt *event.Event) {
		select {
		case loaded <- evt.Arg(1).(uint64):
		default:
		}
	})
	require.NoError(t, err)

	s := store.New(map[string]any{})
	f, err := NewFile(path, s,
		WithBus(bus),
		WithDebounce(20*time.Millisecond),
		WithLogger(slogt.New(t)),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.Run(ctx) }()

	waitLoad(t, loaded)
	assert.Equal(t, float64(1), s.Get()["count"])

	writeFile(t, path, `{"count": 2}`)
	require.Eventually(t, func() bool {
		return s.Get()["count"] == float64(2)
	}, 5*time.Second, 10*time.Millisecond)

	// Unrelated files in the same directory are ignored.
	time.Sleep(100 * time.Millisecond)
	before := f.Stats().Loads
	writeFile(t, filepath.Join(dir, "other.json"), `{}`)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, before, f.Stats().Loads)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestFile_RunMissingDirectory(t *testing.T) {
	s := store.New(map[string]any{})
	f, err := NewFile(filepath.Join(t.TempDir(), "nope", "state.yaml"), s)
	require.NoError(t, err)

	assert.Error(t, f.Run(context.Background()))
}

func waitLoad(t *testing.T, loaded <-chan uint64) {
	t.Helper()
	select {
	case <-loaded:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for load")
	}
}
