// Package retro implements the retrospective ledger: a markdown-table-backed
// knowledge base of known error patterns, their fixes, and occurrence counts.
package retro

import (
	"regexp"
	"strings"
)

// Matcher decides whether a stored ledger pattern is present in a piece of
// validation output. Patterns are user-editable data, so a malformed regex
// must never crash matching; the substring variant is the first-class
// fallback, not an exception handler.
type Matcher interface {
	Matches(output string) bool
	Pattern() string
}

type regexMatcher struct {
	pattern string
	re      *regexp.Regexp
}

func (m *regexMatcher) Matches(output string) bool { return m.re.MatchString(output) }
func (m *regexMatcher) Pattern() string            { return m.pattern }

type substringMatcher struct {
	pattern string
}

func (m *substringMatcher) Matches(output string) bool {
	return strings.Contains(strings.ToLower(output), strings.ToLower(m.pattern))
}
func (m *substringMatcher) Pattern() string { return m.pattern }

// NewMatcher compiles pattern as a case-insensitive regex, degrading to a
// case-insensitive substring matcher when compilation fails.
func NewMatcher(pattern string) Matcher {
	re, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		return &substringMatcher{pattern: pattern}
	}
	return &regexMatcher{pattern: pattern, re: re}
}
