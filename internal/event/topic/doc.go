// Package topic provides topic splitting and pattern matching for the event bus.
//
// # Topic Format
//
// An emitted topic is a plain string that may name several topics at once,
// separated by "|" or ",":
//
//	user.login
//	user.login|audit
//	cart.add,cart.remove
//
// Empty names are dropped, so "a||b," names exactly a and b.
//
// # Patterns
//
// Subscriptions are expressed as patterns. Three kinds exist:
//
//   - Regular expressions, the default for plain strings. They are
//     unanchored, so "user" matches "user.login" and "superuser".
//   - Literals (Literal), which match one name exactly.
//   - Globs (Glob), which use dot-separated segments with "*" matching
//     one segment and "**" matching zero or more.
//
// Examples:
//
//	Compile("^cart\\.")    matches cart.add, cart.remove
//	Literal("cart.add")    matches cart.add only
//	Glob("cart.*")         matches cart.add (not cart.item.add)
//	Glob("cart.**")        matches cart, cart.add, cart.item.add
//
// # Usage
//
//	ps, err := topic.Patterns([]any{"^user\\.", topic.Literal("audit")})
//	m := topic.NewMatcher(ps...)
//	m.Match(topic.Split("user.login|metrics")) // true
package topic
