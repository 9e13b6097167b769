package listdata

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/filterbox/internal/filter"
)

// Matcher tests display text against a search pattern.
type Matcher struct {
	needle string
	glob   glob.Glob
}

// NewMatcher compiles pattern. Patterns containing glob metacharacters
// (*, ?, [ or {) match the whole text as a glob; anything else is a
// substring test. Both are case-insensitive. Invalid globs degrade to a
// substring test.
func NewMatcher(pattern string) Matcher {
	folded := filter.Fold(pattern)
	if strings.ContainsAny(pattern, "*?[{") {
		if g, err := glob.Compile(folded); err == nil {
			return Matcher{glob: g}
		}
	}
	return Matcher{needle: folded}
}

// Match reports whether text satisfies the pattern. The empty pattern
// matches everything.
func (m Matcher) Match(text string) bool {
	if m.glob != nil {
		return m.glob.Match(filter.Fold(text))
	}
	if m.needle == "" {
		return true
	}
	return strings.Contains(filter.Fold(text), m.needle)
}

// MatchText is a one-shot NewMatcher(pattern).Match(text).
func MatchText(pattern, text string) bool {
	return NewMatcher(pattern).Match(text)
}
