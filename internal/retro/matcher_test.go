package retro

import "testing"

func TestRegexPatternMatches(t *testing.T) {
	m := NewMatcher(`cannot find name '\w+'`)
	if !m.Matches("error TS2304: cannot find name 'useState'") {
		t.Error("regex should match")
	}
	if m.Matches("all good") {
		t.Error("regex should not match")
	}
}

func TestRegexIsCaseInsensitive(t *testing.T) {
	m := NewMatcher("connection refused")
	if !m.Matches("dial tcp: Connection Refused") {
		t.Error("match should ignore case")
	}
}

func TestInvalidRegexFallsBackToSubstring(t *testing.T) {
	// Unbalanced bracket: not a valid regex.
	m := NewMatcher("unexpected [ token")
	if !m.Matches("parse error: UNEXPECTED [ TOKEN at line 3") {
		t.Error("substring fallback should match case-insensitively")
	}
	if m.Matches("unexpected token") {
		t.Error("substring fallback must match literally")
	}
}
