package config

import (
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func (m memFS) Stat(path string) (fs.FileInfo, error) {
	return nil, fs.ErrNotExist
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", WithEnvPrefix(""))
	require.NoError(t, err)

	assert.Equal(t, LogSection{Level: "info", Format: "text"}, cfg.Log())
	assert.Equal(t, StoreSection{Debounce: 100 * time.Millisecond, Topic: "store.changed"}, cfg.Store())
	assert.Equal(t, BusSection{}, cfg.Bus())
	assert.Empty(t, cfg.Script().Files)
}

func TestLoad_TOMLFile(t *testing.T) {
	files := memFS{"/statebus.toml": `
[log]
level = "debug"

[store]
source = "state.yaml"
debounce = "1s"

[script]
files = ["clamp.lua"]
transforms = ["clamp"]
`}

	cfg, err := Load("/statebus.toml", WithFS(files), WithEnvPrefix(""))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log().Level)
	assert.Equal(t, "text", cfg.Log().Format, "defaults survive partial sections")
	assert.Equal(t, "state.yaml", cfg.Store().Source)
	assert.Equal(t, time.Second, cfg.Store().Debounce)
	assert.Equal(t, ScriptSection{Files: []string{"clamp.lua"}, Transforms: []string{"clamp"}}, cfg.Script())
	assert.Equal(t, "/statebus.toml", cfg.Path())
}

func TestLoad_YAMLFile(t *testing.T) {
	files := memFS{"/statebus.yaml": "bus:\n  recover: true\nstore:\n  debounce: 250\n"}

	cfg, err := Load("/statebus.yaml", WithFS(files), WithEnvPrefix(""))
	require.NoError(t, err)

	assert.True(t, cfg.Bus().Recover)
	assert.Equal(t, 250*time.Millisecond, cfg.Store().Debounce)
}

func TestLoad_MissingFile(t *testing.T) {
	cfg, err := Load("/missing.toml", WithFS(memFS{}), WithEnvPrefix(""))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log().Level)
}

func TestLoad_Precedence(t *testing.T) {
	files := memFS{"/statebus.toml": "[log]\nlevel = \"debug\"\nformat = \"json\"\n"}
	t.Setenv("STATEBUS_LOG_LEVEL", "warn")

	cfg, err := Load("/statebus.toml",
		WithFS(files),
		WithOverrides(map[string]any{"log.format": "text"}),
	)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log().Level)
	assert.Equal(t, "text", cfg.Log().Format)
}

func TestLoad_EnvDuration(t *testing.T) {
	t.Setenv("STATEBUS_STORE_DEBOUNCE", "2s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 2*time.Second, cfg.Store().Debounce)
}

func TestLoad_Validation(t *testing.T) {
	files := memFS{"/bad.toml": `
[log]
level = "loud"
format = 3

[store]
debounce = "-1s"
`}

	_, err := Load("/bad.toml", WithFS(files), WithEnvPrefix(""))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidationFailed)

	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "log.format", typeErr.Path)

	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "store.debounce")
}

func TestLoad_ParseError(t *testing.T) {
	files := memFS{"/bad.toml": "[log\n"}

	_, err := Load("/bad.toml", WithFS(files), WithEnvPrefix(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading config")
}

func TestAccessors(t *testing.T) {
	cfg := Default()
	cfg.Set("custom.count", int64(3))
	cfg.Set("custom.name", "x")
	cfg.Set("custom.list", []any{"a", 1})

	n, err := cfg.GetInt("custom.count")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = cfg.GetInt("custom.name")
	var typeErr *TypeError
	require.ErrorAs(t, err, &typeErr)
	assert.Equal(t, "string", typeErr.Actual)

	_, err = cfg.GetString("custom.missing")
	assert.ErrorIs(t, err, ErrSettingNotFound)

	_, err = cfg.GetStringSlice("custom.list")
	assert.ErrorAs(t, err, &typeErr)

	list, err := cfg.GetStringSlice("custom.name")
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, list)

	_, err = cfg.GetDuration("custom.name")
	assert.ErrorAs(t, err, &typeErr)

	merged := cfg.Merged()
	merged["custom"] = nil
	v, ok := cfg.Get("custom.name")
	require.True(t, ok)
	assert.Equal(t, "x", v)
}
