package topic

import "strings"

// Delimiters are the characters that separate names in a composite topic.
const Delimiters = "|,"

// Split splits a composite topic into its names, dropping empty ones.
//
// Example: "a|b,c" -> ["a", "b", "c"]
func Split(s string) []string {
	return strings.FieldsFunc(s, isDelimiter)
}

// Join joins names into a composite topic.
func Join(names ...string) string {
	return strings.Join(names, ",")
}

func isDelimiter(r rune) bool {
	return strings.ContainsRune(Delimiters, r)
}
