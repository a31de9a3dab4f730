package loader

import (
	"errors"
	"fmt"
)

// ErrUnsupportedFormat is returned for files whose extension names no
// known format.
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ParseError represents an error while parsing a data file.
type ParseError struct {
	Path    string
	Format  Format
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
