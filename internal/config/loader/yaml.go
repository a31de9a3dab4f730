package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func decodeYAML(source string, data []byte) (map[string]any, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{
			Path:    source,
			Format:  FormatYAML,
			Message: err.Error(),
			Err:     err,
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ParseError{
			Path:    source,
			Format:  FormatYAML,
			Line:    root.Line,
			Column:  root.Column,
			Message: fmt.Sprintf("top level must be a mapping, got %s", root.Tag),
		}
	}

	var out map[string]any
	if err := root.Decode(&out); err != nil {
		return nil, &ParseError{
			Path:    source,
			Format:  FormatYAML,
			Line:    root.Line,
			Column:  root.Column,
			Message: err.Error(),
			Err:     err,
		}
	}
	return normalizeYAML(out).(map[string]any), nil
}

// normalizeYAML turns any map[any]any left by non-string keys into
// map[string]any so the result merges like the other formats.
func normalizeYAML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeYAML(item)
		}
		return val
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalizeYAML(item)
		}
		return out
	case []any:
		for i, item := range val {
			val[i] = normalizeYAML(item)
		}
		return val
	default:
		return v
	}
}
