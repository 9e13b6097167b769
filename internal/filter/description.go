package filter

import (
	"fmt"
	"strings"
)

// DescriptionBuilder accumulates included values into a readable sentence.
// It is write-only; build a new one per filter.
type DescriptionBuilder[V comparable] struct {
	name   string
	format func(V) string
	parts  []string
}

// NewDescriptionBuilder returns a builder labelled with name. A nil format
// uses fmt.Sprint.
func NewDescriptionBuilder[V comparable](name string, format func(V) string) *DescriptionBuilder[V] {
	if format == nil {
		format = func(v V) string { return fmt.Sprint(v) }
	}
	return &DescriptionBuilder[V]{name: name, format: format}
}

// AppendValue records one included value.
func (b *DescriptionBuilder[V]) AppendValue(v V) {
	b.parts = append(b.parts, b.format(v))
}

// Len returns the number of appended values.
func (b *DescriptionBuilder[V]) Len() int {
	return len(b.parts)
}

// String renders the description.
func (b *DescriptionBuilder[V]) String() string {
	values := strings.Join(b.parts, ", ")
	if b.name == "" {
		return values
	}
	return b.name + ": " + values
}
