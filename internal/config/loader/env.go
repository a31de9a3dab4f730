package loader

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/statebus/internal/value"
)

// DefaultEnvPrefix is the prefix of statebus environment variables.
const DefaultEnvPrefix = "STATEBUS_"

// EnvLoader loads configuration from environment variables.
//
// STATEBUS_LOG_LEVEL becomes log.level and STATEBUS_SCRIPT_MAX_CALL_DEPTH
// becomes script.maxCallDepth: the first word names the section and the
// rest are joined in camelCase.
type EnvLoader struct {
	prefix  string            // Environment variable prefix (e.g., "STATEBUS_")
	mapping map[string]string // Env var -> config path
	environ func() []string
}

// NewEnvLoader creates a new environment variable loader.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: make(map[string]string),
		environ: os.Environ,
	}
}

// NewEnvLoaderWithMapping creates a loader with explicit variable mappings.
// Mapped variables need not carry the prefix.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	l := NewEnvLoader(prefix)
	for env, path := range mapping {
		l.mapping[env] = path
	}
	return l
}

// AddMapping adds a custom environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	l.mapping[envVar] = configPath
}

// Load reads environment variables and returns a configuration map.
// Empty values are kept, not treated as unset.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.environ() {
		name, raw, ok := strings.Cut(env, "=")
		if !ok {
			continue
		}

		if path, mapped := l.mapping[name]; mapped {
			value.SetByPath(config, path, ParseValue(raw))
			continue
		}
		if l.prefix == "" || !strings.HasPrefix(name, l.prefix) {
			continue
		}
		if path := l.envToPath(name); path != "" {
			value.SetByPath(config, path, ParseValue(raw))
		}
	}

	return config, nil
}

// envToPath converts STATEBUS_STORE_DEBOUNCE_MS to store.debounceMs.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.TrimPrefix(env, l.prefix)
	parts := strings.FieldsFunc(name, func(r rune) bool { return r == '_' })
	if len(parts) == 0 {
		return ""
	}

	section := strings.ToLower(parts[0])
	if len(parts) == 1 {
		return section
	}

	var setting strings.Builder
	setting.WriteString(strings.ToLower(parts[1]))
	for _, part := range parts[2:] {
		setting.WriteString(strings.ToUpper(part[:1]))
		setting.WriteString(strings.ToLower(part[1:]))
	}
	return section + value.PathSeparator + setting.String()
}

// ParseValue guesses the type of an environment value: bool, integer,
// float, duration, JSON array or object, and finally string.
func ParseValue(s string) any {
	if s == "" {
		return s
	}

	lower := strings.ToLower(s)
	switch lower {
	case "true", "yes", "on":
		return true
	case "false", "no", "off":
		return false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}

	// Only treat dotted numbers as floats so "1" stays an integer.
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}

	if d, err := time.ParseDuration(s); err == nil {
		return d
	}

	if strings.HasPrefix(s, "[") || strings.HasPrefix(s, "{") {
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			return v
		}
	}

	return s
}

var _ Loader = (*EnvLoader)(nil)
