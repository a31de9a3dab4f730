package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dshills/statebus/internal/config"
	"github.com/dshills/statebus/internal/event"
	"github.com/dshills/statebus/internal/event/topic"
	"github.com/dshills/statebus/internal/script"
	"github.com/dshills/statebus/internal/source"
	"github.com/dshills/statebus/internal/store"
)

// errNoSource is returned when neither an argument nor the config names a
// data file.
var errNoSource = errors.New("no data file: pass one as an argument or set store.source")

// pipeline is a store fed by a data file and transformed by Lua listeners,
// with every commit forwarded to a bus.
type pipeline struct {
	bus    *event.Bus
	store  *store.Store[map[string]any]
	source *source.File
	lua    *script.Runtime
	topic  string
	logger *slog.Logger
}

// newPipeline assembles a pipeline from cfg. path overrides store.source.
func newPipeline(cfg *config.Config, logger *slog.Logger, path string) (*pipeline, error) {
	storeCfg := cfg.Store()
	if path == "" {
		path = storeCfg.Source
	}
	if path == "" {
		return nil, errNoSource
	}

	bus := newBus(cfg, logger)

	s := store.New(map[string]any{},
		store.WithLogger(logger),
		store.WithBus(bus, storeCfg.Topic),
	)

	rt, err := script.New(script.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	rt.BindBus(bus)

	p := &pipeline{bus: bus, store: s, lua: rt, topic: storeCfg.Topic, logger: logger}
	if err := p.installScripts(cfg.Script()); err != nil {
		p.Close()
		return nil, err
	}

	p.source, err = source.NewFile(path, s,
		source.WithDebounce(storeCfg.Debounce),
		source.WithLogger(logger),
		source.WithBus(bus),
	)
	if err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// newBus creates a bus configured by the bus section of cfg.
func newBus(cfg *config.Config, logger *slog.Logger) *event.Bus {
	opts := []event.Option{event.WithLogger(logger)}
	if cfg.Bus().Recover {
		opts = append(opts, event.WithRecover())
	}
	return event.New(opts...)
}

func (p *pipeline) installScripts(cfg config.ScriptSection) error {
	for _, file := range cfg.Files {
		if err := p.lua.DoFile(file); err != nil {
			return err
		}
	}
	for _, name := range cfg.Transforms {
		if !p.lua.Has(name) {
			return fmt.Errorf("transform %q: %w", name, script.ErrNotFunction)
		}
		p.store.OnChange(p.lua.Transform(name))
		p.logger.Debug("transform installed", "function", name)
	}
	return nil
}

// OnCommit calls fn for every change the store forwards to the bus.
func (p *pipeline) OnCommit(fn func(store.Change[map[string]any])) (event.Unsubscribe, error) {
	return p.bus.On(topic.Literal(p.topic), func(e *event.Event) {
		if c, ok := e.Arg(0).(store.Change[map[string]any]); ok {
			fn(c)
		}
	})
}

// Close releases the Lua runtime.
func (p *pipeline) Close() {
	if err := p.lua.Close(); err != nil {
		p.logger.Debug("closing lua runtime", "error", err)
	}
}
