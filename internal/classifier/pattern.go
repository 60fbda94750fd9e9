package classifier

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidPattern is returned when a rule or extractor pattern does not compile.
var ErrInvalidPattern = errors.New("invalid pattern")

// Pattern is a case-insensitive regular expression with an optional guard.
//
// A Pattern with an Unless guard matches when some match of the main
// expression is not followed, anywhere later in the input, by a match of
// Unless. "policy" guarded by "insurance" matches "pool policy.pdf" but not
// "policy for insurance.pdf", the same as the lookahead policy(?!.*insurance).
type Pattern struct {
	expr   *regexp.Regexp
	unless *regexp.Regexp
}

// NewPattern compiles expr and the optional unless guard case-insensitively.
func NewPattern(expr, unless string) (Pattern, error) {
	re, err := regexp.Compile("(?i)" + expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, expr, err)
	}
	p := Pattern{expr: re}
	if unless != "" {
		guard, err := regexp.Compile("(?i)" + unless)
		if err != nil {
			return Pattern{}, fmt.Errorf("%w: %q: %v", ErrInvalidPattern, unless, err)
		}
		p.unless = guard
	}
	return p, nil
}

// MustPattern is like NewPattern but panics on an invalid expression.
// It is meant for the built-in tables.
func MustPattern(expr, unless string) Pattern {
	p, err := NewPattern(expr, unless)
	if err != nil {
		panic(err)
	}
	return p
}

// P compiles an unguarded built-in pattern.
func P(expr string) Pattern {
	return MustPattern(expr, "")
}

// Unless compiles a built-in pattern guarded by unless.
func Unless(expr, unless string) Pattern {
	return MustPattern(expr, unless)
}

// MatchString reports whether s matches the pattern.
func (p Pattern) MatchString(s string) bool {
	if p.expr == nil {
		return false
	}
	if p.unless == nil {
		return p.expr.MatchString(s)
	}
	for _, loc := range p.expr.FindAllStringIndex(s, -1) {
		if !p.unless.MatchString(s[loc[1]:]) {
			return true
		}
	}
	return false
}

// String returns the source expression, with the guard when present.
func (p Pattern) String() string {
	if p.expr == nil {
		return ""
	}
	src := p.expr.String()[len("(?i)"):]
	if p.unless != nil {
		return src + " unless " + p.unless.String()[len("(?i)"):]
	}
	return src
}

func matchAny(patterns []Pattern, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
