package topic

import "strings"

// Matcher tests topic names against a fixed set of patterns.
// A Matcher is immutable and safe for concurrent use.
type Matcher struct {
	patterns []Pattern
}

// NewMatcher creates a matcher over the given patterns.
func NewMatcher(patterns ...Pattern) *Matcher {
	ps := make([]Pattern, len(patterns))
	copy(ps, patterns)
	return &Matcher{patterns: ps}
}

// Match reports whether any pattern matches any of the names.
func (m *Matcher) Match(names []string) bool {
	for _, name := range names {
		if m.MatchName(name) {
			return true
		}
	}
	return false
}

// MatchName reports whether any pattern matches name.
func (m *Matcher) MatchName(name string) bool {
	for _, p := range m.patterns {
		if p.Match(name) {
			return true
		}
	}
	return false
}

// Patterns returns a copy of the matcher's patterns.
func (m *Matcher) Patterns() []Pattern {
	ps := make([]Pattern, len(m.patterns))
	copy(ps, m.patterns)
	return ps
}

// Count returns the number of patterns.
func (m *Matcher) Count() int {
	return len(m.patterns)
}

// String returns the patterns joined with "|".
func (m *Matcher) String() string {
	parts := make([]string, len(m.patterns))
	for i, p := range m.patterns {
		parts[i] = p.String()
	}
	return strings.Join(parts, "|")
}
