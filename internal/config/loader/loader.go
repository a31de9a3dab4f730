// Package loader reads data files and environment variables into nested
// maps.
//
// TOML, YAML and JSON files are supported; the format is chosen by file
// extension. Every loader produces map[string]any trees, so results from
// different sources can be combined with value.Merge.
package loader

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Loader is the interface for configuration loaders.
type Loader interface {
	// Load reads configuration from the source and returns a map.
	// Returns nil, nil if the source doesn't exist (not an error).
	Load() (map[string]any, error)
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format is a data file format.
type Format int

const (
	// FormatUnknown is returned for unrecognised extensions.
	FormatUnknown Format = iota
	// FormatTOML is TOML.
	FormatTOML
	// FormatYAML is YAML.
	FormatYAML
	// FormatJSON is JSON.
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatOf picks a format from the extension of path.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	default:
		return FormatUnknown
	}
}

// Decode parses data in the given format. source names the data in errors.
// An empty document decodes to an empty map.
func Decode(format Format, source string, data []byte) (map[string]any, error) {
	var (
		out map[string]any
		err error
	)
	switch format {
	case FormatTOML:
		out, err = decodeTOML(source, data)
	case FormatYAML:
		out, err = decodeYAML(source, data)
	case FormatJSON:
		out, err = decodeJSON(source, data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, source)
	}
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = make(map[string]any)
	}
	return out, nil
}

// FileLoader loads a data file, picking the decoder by extension.
type FileLoader struct {
	fs   FileSystem
	path string
}

// NewFileLoader creates a file loader for the given path.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{
		fs:   DefaultFS(),
		path: path,
	}
}

// NewFileLoaderWithFS creates a file loader with a custom file system.
func NewFileLoaderWithFS(fs FileSystem, path string) *FileLoader {
	return &FileLoader{
		fs:   fs,
		path: path,
	}
}

// Path returns the configured path.
func (l *FileLoader) Path() string {
	return l.path
}

// Load reads the configured path.
func (l *FileLoader) Load() (map[string]any, error) {
	return l.LoadFrom(l.path)
}

// LoadFrom reads a specific path.
func (l *FileLoader) LoadFrom(path string) (map[string]any, error) {
	format := FormatOf(path)
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // File doesn't exist, not an error
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return Decode(format, path, data)
}

// LoadFromReader reads data in the given format from r.
func LoadFromReader(r io.Reader, format Format) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading: %w", err)
	}
	return Decode(format, "<reader>", data)
}

var _ Loader = (*FileLoader)(nil)
