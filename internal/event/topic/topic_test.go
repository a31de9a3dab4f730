package topic

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a", []string{"a"}},
		{"a|b", []string{"a", "b"}},
		{"a,b", []string{"a", "b"}},
		{"a|b,c", []string{"a", "b", "c"}},
		{"a||b,", []string{"a", "b"}},
		{"", []string{}},
		{"|,", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			require.Equal(t, tt.want, Split(tt.in))
		})
	}
}

func TestJoin(t *testing.T) {
	require.Equal(t, "a,b", Join("a", "b"))
	require.Equal(t, []string{"a", "b"}, Split(Join("a", "b")))
}

func TestGlob_Match(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    bool
	}{
		// Exact matches
		{"buffer.content.inserted", "buffer.content.inserted", true},
		{"single", "single", true},

		// Non-matches
		{"buffer.content.inserted", "buffer.content.deleted", false},
		{"buffer", "buffer.content", false},

		// Single wildcard (*)
		{"buffer.content.inserted", "buffer.*.inserted", true},
		{"buffer.content.deleted", "buffer.*.inserted", false},
		{"config.changed", "*.changed", true},
		{"buffer.content", "*.*", true},
		{"buffer.content.inserted", "*.*", false},

		// Multi wildcard (**)
		{"buffer.content.inserted", "buffer.**", true},
		{"buffer", "buffer.**", true},
		{"cursor.moved", "buffer.**", false},
		{"single", "**", true},

		// Combined wildcards
		{"a.b.c.inserted", "**.inserted", true},
		{"inserted", "**.inserted", true},
		{"buffer.content.deleted", "**.inserted", false},
	}

	for _, tt := range tests {
		t.Run(tt.name+"_matches_"+tt.pattern, func(t *testing.T) {
			require.Equal(t, tt.want, Glob(tt.pattern).Match(tt.name))
		})
	}
}

func TestCompile_unanchored(t *testing.T) {
	p := MustCompile("user")
	require.True(t, p.Match("user"))
	require.True(t, p.Match("user.login"))
	require.True(t, p.Match("superuser"))
	require.False(t, p.Match("account"))
	require.Equal(t, "user", p.String())
}

func TestCompile_alternation(t *testing.T) {
	p := MustCompile("a|b")
	require.True(t, p.Match("a"))
	require.True(t, p.Match("b"))
}

func TestCompile_invalid(t *testing.T) {
	_, err := Compile("(")
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestLiteral(t *testing.T) {
	p := Literal("user.login")
	require.True(t, p.Match("user.login"))
	require.False(t, p.Match("user.login.failed"))
	require.False(t, p.Match("userXlogin"))
}

func TestPatterns_flattens(t *testing.T) {
	set := []any{
		"a",
		regexp.MustCompile("^b$"),
		[]any{[]string{"c", "d"}, Literal("e")},
		[]*regexp.Regexp{regexp.MustCompile("f")},
	}

	ps, err := Patterns(set)
	require.NoError(t, err)

	got := make([]string, len(ps))
	for i, p := range ps {
		got[i] = p.String()
	}
	require.Equal(t, []string{"a", "^b$", "c", "d", "e", "f"}, got)
}

func TestPatterns_errors(t *testing.T) {
	_, err := Patterns([]any{})
	require.ErrorIs(t, err, ErrNoPatterns)

	_, err = Patterns(42)
	require.ErrorIs(t, err, ErrInvalidPattern)

	_, err = Patterns([]any{"ok", "("})
	require.ErrorIs(t, err, ErrInvalidPattern)

	_, err = Patterns(nil)
	require.ErrorIs(t, err, ErrInvalidPattern)
}

func TestMatcher(t *testing.T) {
	m := NewMatcher(Literal("a"), Glob("cart.*"))

	require.True(t, m.Match([]string{"x", "a"}))
	require.True(t, m.Match(Split("b|cart.add")))
	require.False(t, m.Match(Split("b|cart.item.add")))
	require.False(t, m.Match(nil))
	require.Equal(t, 2, m.Count())
	require.Equal(t, "a|cart.*", m.String())
}
