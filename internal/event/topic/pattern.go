package topic

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
)

var (
	// ErrInvalidPattern is returned when a pattern cannot be compiled.
	ErrInvalidPattern = errors.New("invalid topic pattern")

	// ErrNoPatterns is returned when a pattern set flattens to nothing.
	ErrNoPatterns = errors.New("no topic patterns")
)

// Pattern matches single topic names.
type Pattern interface {
	// Match reports whether the name matches.
	Match(name string) bool

	// String returns the source form of the pattern.
	String() string
}

// Compile compiles a regular expression into a Pattern.
// The expression is not anchored.
func Compile(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, expr, err)
	}
	return regexpPattern{re: re}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string) Pattern {
	p, err := Compile(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// Regexp wraps an already compiled regular expression.
func Regexp(re *regexp.Regexp) Pattern {
	return regexpPattern{re: re}
}

type regexpPattern struct {
	re *regexp.Regexp
}

func (p regexpPattern) Match(name string) bool {
	return p.re.MatchString(name)
}

func (p regexpPattern) String() string {
	return p.re.String()
}

// Literal returns a Pattern that matches name exactly.
func Literal(name string) Pattern {
	return literal(name)
}

type literal string

func (l literal) Match(name string) bool {
	return string(l) == name
}

func (l literal) String() string {
	return string(l)
}

// Patterns flattens set into a list of patterns.
//
// set may be a string (compiled as a regular expression), a
// *regexp.Regexp, a Pattern, or any slice of those, nested to any depth.
func Patterns(set any) ([]Pattern, error) {
	var out []Pattern
	if err := flatten(set, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoPatterns
	}
	return out, nil
}

func flatten(set any, out *[]Pattern) error {
	switch v := set.(type) {
	case Pattern:
		*out = append(*out, v)
		return nil
	case *regexp.Regexp:
		if v == nil {
			return fmt.Errorf("%w: nil regexp", ErrInvalidPattern)
		}
		*out = append(*out, Regexp(v))
		return nil
	case string:
		p, err := Compile(v)
		if err != nil {
			return err
		}
		*out = append(*out, p)
		return nil
	case nil:
		return fmt.Errorf("%w: nil", ErrInvalidPattern)
	}

	rv := reflect.ValueOf(set)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidPattern, set)
	}
	for i := range rv.Len() {
		if err := flatten(rv.Index(i).Interface(), out); err != nil {
			return err
		}
	}
	return nil
}
