package topic

import "strings"

// Glob wildcards.
const (
	// WildcardSingle matches exactly one segment.
	WildcardSingle = "*"

	// WildcardMulti matches zero or more segments.
	WildcardMulti = "**"

	// Separator is the character used to separate topic segments.
	Separator = "."
)

// Glob returns a Pattern that matches dot-separated names segment by
// segment. "*" matches exactly one segment and "**" matches zero or more.
//
// Example: "buffer.*" matches "buffer.saved" but not "buffer.content.inserted".
func Glob(pattern string) Pattern {
	return glob{src: pattern, segments: segments(pattern)}
}

type glob struct {
	src      string
	segments []string
}

func (g glob) Match(name string) bool {
	return matchSegments(segments(name), g.segments)
}

func (g glob) String() string {
	return g.src
}

func segments(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, Separator)
}

// matchSegments performs recursive pattern matching on topic segments.
func matchSegments(name, pattern []string) bool {
	ni, pi := 0, 0

	for pi < len(pattern) {
		if pattern[pi] == WildcardMulti {
			// Try matching 0, 1, 2, ... remaining segments
			for ni <= len(name) {
				if matchSegments(name[ni:], pattern[pi+1:]) {
					return true
				}
				ni++
			}
			return false
		}

		if ni >= len(name) {
			return false
		}

		if pattern[pi] != WildcardSingle && pattern[pi] != name[ni] {
			return false
		}
		ni++
		pi++
	}

	return ni == len(name)
}
