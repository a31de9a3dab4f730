package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/statebus/internal/config/loader"
	"github.com/dshills/statebus/internal/event"
	"github.com/dshills/statebus/internal/store"
)

// Topics emitted on the bus configured with WithBus.
const (
	// TopicLoaded carries the file path and the store version after a load.
	TopicLoaded = "source.loaded"
	// TopicError carries the load error as its only argument.
	TopicError = "source.error"
)

// DefaultDebounce is how long file events settle before a reload.
const DefaultDebounce = 100 * time.Millisecond

// ErrMissing is returned by Load when the file does not exist.
var ErrMissing = errors.New("source file does not exist")

// File keeps a store in step with a data file.
type File struct {
	path     string
	target   *store.Store[map[string]any]
	loader   *loader.FileLoader
	debounce time.Duration
	logger   *slog.Logger
	bus      *event.Bus

	loads  atomic.Uint64
	errors atomic.Uint64
}

// Option configures a File.
type Option func(*File)

// WithDebounce sets how long file events settle before a reload.
func WithDebounce(d time.Duration) Option {
	return func(f *File) {
		if d >= 0 {
			f.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithBus reports loads and errors on b.
func WithBus(b *event.Bus) Option {
	return func(f *File) {
		f.bus = b
	}
}

// NewFile creates a feed from the file at path into target.
func NewFile(path string, target *store.Store[map[string]any], opts ...Option) (*File, error) {
	if target == nil {
		return nil, errors.New("source: nil target store")
	}
	if loader.FormatOf(path) == loader.FormatUnknown {
		return nil, fmt.Errorf("source %s: %w", path, loader.ErrUnsupportedFormat)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", path, err)
	}

	f := &File{
		path:     abs,
		target:   target,
		loader:   loader.NewFileLoader(abs),
		debounce: DefaultDebounce,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Path returns the absolute path of the file.
func (f *File) Path() string {
	return f.path
}

// Load reads the file once and merges it into the store.
func (f *File) Load() error {
	data, err := f.loader.Load()
	if err == nil && data == nil {
		err = fmt.Errorf("%w: %s", ErrMissing, f.path)
	}
	if err != nil {
		f.errors.Add(1)
		f.logger.Warn("source load failed", "path", f.path, "error", err)
		if f.bus != nil {
			f.bus.Emit(TopicError, event.Wrap(err))
		}
		return err
	}

	f.target.Set(data)
	f.loads.Add(1)
	version := f.target.Version()
	f.logger.Debug("source loaded", "path", f.path, "keys", len(data), "version", version)
	if f.bus != nil {
		f.bus.Emit(TopicLoaded, f.path, version)
	}
	return nil
}

// Run loads the file and then reloads it whenever it changes, until ctx
// is done. Load failures are reported and do not stop Run.
func (f *File) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("source %s: creating watcher: %w", f.path, err)
	}
	defer watcher.Close()

	// Watch the directory so atomic saves (write temp, rename) are seen.
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		return fmt.Errorf("source %s: watching: %w", f.path, err)
	}

	_ = f.Load()

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != f.path {
				continue
			}
			if ev.Has(fsnotify.Remove) {
				f.logger.Info("source file removed", "path", f.path)
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(f.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.errors.Add(1)
			f.logger.Error("source watcher error", "path", f.path, "error", err)
			if f.bus != nil {
				f.bus.Emit(TopicError, event.Wrap(err))
			}

		case <-timer.C:
			_ = f.Load()
		}
	}
}

// Stats contains feed statistics.
type Stats struct {
	// Loads is the number of successful loads.
	Loads uint64
	// Errors is the number of failed loads and watcher errors.
	Errors uint64
}

// Stats returns feed statistics.
func (f *File) Stats() Stats {
	return Stats{
		Loads:  f.loads.Load(),
		Errors: f.errors.Load(),
	}
}
