package telnet

import (
	"fmt"
	"regexp"
	"strings"
)

// Matcher locates a prompt in received text. FindStringIndex returns the
// [start, end) byte offsets of the first match or nil. *regexp.Regexp
// satisfies Matcher, so compiled patterns can be used directly.
type Matcher interface {
	FindStringIndex(s string) []int
	String() string
}

// Literal matches an exact substring.
type Literal string

func (l Literal) FindStringIndex(s string) []int {
	if l == "" {
		return nil
	}
	i := strings.Index(s, string(l))
	if i < 0 {
		return nil
	}
	return []int{i, i + len(l)}
}

func (l Literal) String() string { return string(l) }

// Pattern compiles expr into a Matcher.
func Pattern(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("compile prompt %q: %w", expr, err)
	}
	return re, nil
}

// MustPattern is like Pattern but panics on a bad expression.
func MustPattern(expr string) Matcher {
	return regexp.MustCompile(expr)
}

// patternPrefix marks a configuration string as a regular expression.
const patternPrefix = "re:"

// ParseMatcher turns a configuration string into a Matcher. Strings that
// start with "re:" are compiled as regular expressions, everything else is a
// literal. An empty string yields a nil Matcher.
func ParseMatcher(s string) (Matcher, error) {
	if s == "" {
		return nil, nil
	}
	if expr, ok := strings.CutPrefix(s, patternPrefix); ok {
		return Pattern(expr)
	}
	return Literal(s), nil
}

// find returns the match location of m in s, treating a nil m as no match.
func find(m Matcher, s string) []int {
	if m == nil {
		return nil
	}
	return m.FindStringIndex(s)
}

func matches(m Matcher, s string) bool {
	return find(m, s) != nil
}
