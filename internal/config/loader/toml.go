package loader

import (
	"errors"

	"github.com/pelletier/go-toml/v2"
)

func decodeTOML(source string, data []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		perr := &ParseError{
			Path:    source,
			Format:  FormatTOML,
			Message: err.Error(),
			Err:     err,
		}
		var derr *toml.DecodeError
		if errors.As(err, &derr) {
			perr.Line, perr.Column = derr.Position()
		}
		return nil, perr
	}
	return out, nil
}
