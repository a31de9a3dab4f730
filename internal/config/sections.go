package config

import (
	"errors"
	"slices"
	"time"
)

// LogSection configures logging.
type LogSection struct {
	// Level is one of debug, info, warn or error.
	Level string
	// Format is text or json.
	Format string
}

// StoreSection configures the store fed by the CLI.
type StoreSection struct {
	// Source is the data file the store is seeded from.
	Source string
	// Debounce is how long file changes settle before a reload.
	Debounce time.Duration
	// Topic is the bus topic committed changes are forwarded under.
	Topic string
}

// BusSection configures the event bus.
type BusSection struct {
	// Recover isolates handler panics.
	Recover bool
}

// ScriptSection configures Lua listeners.
type ScriptSection struct {
	// Files are Lua files loaded at startup.
	Files []string
	// Transforms name global Lua functions installed as store listeners,
	// in order.
	Transforms []string
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Log returns the log section.
func (c *Config) Log() LogSection {
	level, _ := c.GetString("log.level")
	format, _ := c.GetString("log.format")
	return LogSection{Level: level, Format: format}
}

// Store returns the store section.
func (c *Config) Store() StoreSection {
	source, _ := c.GetString("store.source")
	debounce, _ := c.GetDuration("store.debounce")
	topic, _ := c.GetString("store.topic")
	return StoreSection{Source: source, Debounce: debounce, Topic: topic}
}

// Bus returns the bus section.
func (c *Config) Bus() BusSection {
	isolate, _ := c.GetBool("bus.recover")
	return BusSection{Recover: isolate}
}

// Script returns the script section.
func (c *Config) Script() ScriptSection {
	files, _ := c.GetStringSlice("script.files")
	transforms, _ := c.GetStringSlice("script.transforms")
	return ScriptSection{Files: files, Transforms: transforms}
}

// Validate checks every known setting and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error

	if level, err := c.GetString("log.level"); err != nil {
		errs = append(errs, err)
	} else if !slices.Contains(logLevels, level) {
		errs = append(errs, &ValidationError{Path: "log.level", Message: "must be one of debug, info, warn, error", Value: level})
	}

	if format, err := c.GetString("log.format"); err != nil {
		errs = append(errs, err)
	} else if !slices.Contains(logFormats, format) {
		errs = append(errs, &ValidationError{Path: "log.format", Message: "must be text or json", Value: format})
	}

	if d, err := c.GetDuration("store.debounce"); err != nil {
		errs = append(errs, err)
	} else if d < 0 {
		errs = append(errs, &ValidationError{Path: "store.debounce", Message: "must not be negative", Value: d})
	}

	if _, err := c.GetString("store.source"); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.GetString("store.topic"); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.GetBool("bus.recover"); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.GetStringSlice("script.files"); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.GetStringSlice("script.transforms"); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
