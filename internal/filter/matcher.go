// package filter implements the episode matching pass: title pattern
// matching, playlist deduplication, and per-rule processing.
package filter

import (
	"regexp"

	"github.com/charmbracelet/log"
)

// Matcher tests episode titles against a compiled set of patterns.
//
// Patterns are matched case-insensitively as unanchored substring searches.
// Patterns that fail to compile are skipped with a warning and never
// suppress evaluation of the remaining patterns.
type Matcher struct {
	patterns []*regexp.Regexp
}

// NewMatcher compiles the given pattern strings. Invalid patterns are
// dropped with a warning through the logger; a nil logger silences them.
func NewMatcher(patterns []string, logger *log.Logger) *Matcher {
	m := &Matcher{}

	for _, pattern := range patterns {
		re, err := regexp.Compile("(?i)" + pattern)
		if err != nil {
			if logger != nil {
				logger.Warnf("invalid pattern %q skipped: %v", pattern, err)
			}
			continue
		}
		m.patterns = append(m.patterns, re)
	}

	return m
}

// Matches reports whether the title matches at least one pattern.
// An empty (or all-invalid) pattern set never matches.
func (m *Matcher) Matches(title string) bool {
	for _, re := range m.patterns {
		if re.MatchString(title) {
			return true
		}
	}
	return false
}

// Len returns the number of successfully compiled patterns.
func (m *Matcher) Len() int {
	return len(m.patterns)
}
