// SPDX-License-Identifier: MPL-2.0

package conformance

import (
	"fmt"
	"regexp"
)

// Pattern is a compiled case-insensitive marker expression.
type Pattern struct {
	source string
	re     *regexp.Regexp
}

// CompilePattern compiles source as a case-insensitive regular expression.
// Plain marker strings such as "TO KEEP IN BUNDLE SYNC" need no escaping.
func CompilePattern(source string) (Pattern, error) {
	re, err := regexp.Compile("(?i)" + source)
	if err != nil {
		return Pattern{}, fmt.Errorf("invalid pattern %q: %w", source, err)
	}
	return Pattern{source: source, re: re}, nil
}

// MustCompilePattern is CompilePattern that panics on error.
func MustCompilePattern(source string) Pattern {
	p, err := CompilePattern(source)
	if err != nil {
		panic(err)
	}
	return p
}

// Match reports whether text contains a match.
func (p Pattern) Match(text string) bool {
	return p.re != nil && p.re.MatchString(text)
}

// String returns the pattern source.
func (p Pattern) String() string { return p.source }
