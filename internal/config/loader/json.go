package loader

import (
	"bytes"
	"encoding/json"
)

func decodeJSON(source string, data []byte) (map[string]any, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		perr := &ParseError{
			Path:    source,
			Format:  FormatJSON,
			Message: err.Error(),
			Err:     err,
		}
		if serr, ok := err.(*json.SyntaxError); ok {
			perr.Line, perr.Column = lineColumn(data, serr.Offset)
		}
		return nil, perr
	}
	return out, nil
}

// lineColumn converts a byte offset into 1-based line and column numbers.
func lineColumn(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}
