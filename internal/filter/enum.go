package filter

import (
	"fmt"
	"slices"
)

// EnumType describes a closed set of declared members and their display
// names. Go has no enum reflection, so members are listed explicitly.
type EnumType[V comparable] struct {
	name    string
	members []V
	display func(V) string
}

// NewEnumType declares an enum. A nil display func uses fmt.Sprint.
func NewEnumType[V comparable](name string, members []V, display func(V) string) *EnumType[V] {
	if display == nil {
		display = func(v V) string { return fmt.Sprint(v) }
	}
	return &EnumType[V]{
		name:    name,
		members: Distinct(members),
		display: display,
	}
}

// Name returns the enum's name.
func (e *EnumType[V]) Name() string {
	return e.name
}

// Display returns the display name of v.
func (e *EnumType[V]) Display(v V) string {
	return e.display(v)
}

// Has reports whether v is a declared member.
func (e *EnumType[V]) Has(v V) bool {
	return slices.Contains(e.members, v)
}

// Less orders members by case-insensitive display name; ties keep
// declaration order.
func (e *EnumType[V]) Less(a, b V) bool {
	if c := CompareFold(e.display(a), e.display(b)); c != 0 {
		return c < 0
	}
	return slices.Index(e.members, a) < slices.Index(e.members, b)
}

// Members returns every declared member sorted by display name.
func (e *EnumType[V]) Members() []V {
	out := slices.Clone(e.members)
	slices.SortStableFunc(out, func(a, b V) int {
		return CompareFold(e.display(a), e.display(b))
	})
	return out
}

// EnumPolicy offers every member of t, sorted by display name.
func EnumPolicy[V comparable](t *EnumType[V]) Policy[V] {
	return Policy[V]{
		Name:       t.name,
		Format:     t.display,
		Less:       t.Less,
		Candidates: t.Members,
	}
}
