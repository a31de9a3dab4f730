package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/dshills/statebus/internal/config/loader"
	"github.com/dshills/statebus/internal/value"
)

// Config provides access to the merged statebus configuration.
type Config struct {
	mu sync.RWMutex

	merged map[string]any
	path   string

	fs        loader.FileSystem
	envPrefix string
	overrides map[string]any
}

// Option configures a Config instance.
type Option func(*Config)

// WithFS sets the file system used to read the config file.
func WithFS(fs loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fs
	}
}

// WithEnvPrefix sets the environment variable prefix.
// An empty prefix disables the environment layer.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithOverrides sets values that win over every other layer. Keys are
// dot paths.
func WithOverrides(overrides map[string]any) Option {
	return func(c *Config) {
		for path, v := range overrides {
			value.SetByPath(c.overrides, path, v)
		}
	}
}

// Load builds a configuration from defaults, the file at path, the
// environment and overrides, then validates it. An empty path or a
// missing file skips the file layer.
func Load(path string, opts ...Option) (*Config, error) {
	c := &Config{
		path:      path,
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		overrides: make(map[string]any),
	}
	for _, opt := range opts {
		opt(c)
	}

	merged := defaultConfig()

	if path != "" {
		file, err := loader.NewFileLoaderWithFS(c.fs, path).Load()
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		merged = value.Merge(merged, file)
	}

	if c.envPrefix != "" {
		env, err := loader.NewEnvLoader(c.envPrefix).Load()
		if err != nil {
			return nil, fmt.Errorf("loading environment: %w", err)
		}
		merged = value.Merge(merged, env)
	}

	merged = value.Merge(merged, c.overrides)
	c.merged = merged

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		merged:    defaultConfig(),
		fs:        loader.DefaultFS(),
		overrides: make(map[string]any),
	}
}

// Path returns the config file path, if any.
func (c *Config) Path() string {
	return c.path
}

// Merged returns a copy of the merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return value.CloneOf(c.merged)
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return value.GetByPath(c.merged, path)
}

// Set sets a value at the given path.
func (c *Config) Set(path string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value.SetByPath(c.merged, path, v)
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		return int(val), nil
	default:
		return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
	}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration at the given path. Strings are parsed
// with time.ParseDuration and integers are read as milliseconds.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("string %q", val)}
		}
		return d, nil
	case int:
		return time.Duration(val) * time.Millisecond, nil
	case int64:
		return time.Duration(val) * time.Millisecond, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// GetStringSlice returns a string slice at the given path. A single
// string is returned as a one-element slice.
func (c *Config) GetStringSlice(path string) ([]string, error) {
	v, ok := c.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}

	switch val := v.(type) {
	case []string:
		return val, nil
	case string:
		if val == "" {
			return nil, nil
		}
		return []string{val}, nil
	case []any:
		result := make([]string, len(val))
		for i, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, &TypeError{Path: path, Expected: "[]string", Actual: typeName(v)}
	}
}

// defaultConfig returns the default configuration values.
func defaultConfig() map[string]any {
	return map[string]any{
		"log": map[string]any{
			"level":  "info",
			"format": "text",
		},
		"store": map[string]any{
			"source":   "",
			"debounce": "100ms",
			"topic":    "store.changed",
		},
		"bus": map[string]any{
			"recover": false,
		},
		"script": map[string]any{
			"files":      []any{},
			"transforms": []any{},
		},
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case []any:
		return "array"
	case map[string]any:
		return "table"
	default:
		return fmt.Sprintf("%T", v)
	}
}
