package router

import (
	"regexp"
	"strings"
)

// Matcher decides whether a message text satisfies a route's text predicate.
// Matchers are pure and side-effect-free.
type Matcher interface {
	Match(text string) bool
}

type literalMatcher struct {
	text string
}

func (m literalMatcher) Match(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), m.text)
}

// Literal matches the exact text, case-insensitively, ignoring surrounding
// whitespace.
func Literal(text string) Matcher {
	return literalMatcher{text: text}
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Match(text string) bool {
	return m.re.MatchString(text)
}

// Regex matches texts against a compiled regular expression.
func Regex(re *regexp.Regexp) Matcher {
	return regexMatcher{re: re}
}

// Glob matches texts against a wildcard pattern where '*' spans any run of
// characters and '?' a single character, case-insensitively.
func Glob(pattern string) Matcher {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexMatcher{re: regexp.MustCompile(b.String())}
}

// Any matches every text.
func Any() Matcher {
	return anyMatcher{}
}

type anyMatcher struct{}

func (anyMatcher) Match(string) bool { return true }
