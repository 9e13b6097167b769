package filter

import (
	"fmt"
	"strings"
)

// TextOperator selects how a TextFilter compares strings.
type TextOperator int

const (
	TextContains TextOperator = iota
	TextStartsWith
	TextEndsWith
	TextEquals
)

func (op TextOperator) String() string {
	switch op {
	case TextContains:
		return "contains"
	case TextStartsWith:
		return "starts with"
	case TextEndsWith:
		return "ends with"
	case TextEquals:
		return "equals"
	default:
		return "unknown"
	}
}

// ParseTextOperator accepts an operator name as written in config or
// candidate files. Dashes, underscores and spaces are interchangeable and an
// empty name means contains.
func ParseTextOperator(s string) (TextOperator, error) {
	name := strings.NewReplacer("-", " ", "_", " ").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch name {
	case "", "contains":
		return TextContains, nil
	case "starts with":
		return TextStartsWith, nil
	case "ends with":
		return TextEndsWith, nil
	case "equals":
		return TextEquals, nil
	}
	return 0, fmt.Errorf("unknown text operator %q (want contains, starts-with, ends-with or equals)", s)
}

// TextFilter is a single free-text rule, matched case-insensitively.
type TextFilter struct {
	Name     string
	Operator TextOperator
	Text     string
}

// IsEmpty reports whether the rule has no text. Empty rules match everything.
func (t TextFilter) IsEmpty() bool {
	return t.Text == ""
}

// Match reports whether s satisfies the rule.
func (t TextFilter) Match(s string) bool {
	if t.IsEmpty() {
		return true
	}
	s, needle := Fold(s), Fold(t.Text)
	switch t.Operator {
	case TextStartsWith:
		return strings.HasPrefix(s, needle)
	case TextEndsWith:
		return strings.HasSuffix(s, needle)
	case TextEquals:
		return s == needle
	default:
		return strings.Contains(s, needle)
	}
}

// Description returns e.g. `Title contains "report"`.
func (t TextFilter) Description() string {
	if t.IsEmpty() {
		return ""
	}
	desc := fmt.Sprintf("%s %q", t.Operator, t.Text)
	if t.Name == "" {
		return desc
	}
	return t.Name + " " + desc
}
