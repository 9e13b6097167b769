package filter

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Iron-Ham/filterbox/internal/errors"
)

// Item is an atomic include predicate: an ordered set of unique values.
type Item[V comparable] struct {
	Values []V
}

// Contains reports whether v is one of the item's values.
func (it Item[V]) Contains(v V) bool {
	return slices.Contains(it.Values, v)
}

// Policy captures everything a typed filter variant contributes: how values
// are named, formatted and ordered, and which candidates exist when no data
// provider supplies any.
type Policy[V comparable] struct {
	// Name labels the filtered column in descriptions. Optional.
	Name string
	// Format renders one value for display. Nil uses fmt.Sprint.
	Format func(V) string
	// Less orders included values. Nil keeps the supplied order.
	Less func(a, b V) bool
	// Candidates enumerates the closed value universe, if there is one.
	Candidates func() []V
}

// Filter is an ordered collection of include items over values of type V.
type Filter[V comparable] struct {
	policy Policy[V]
	items  []Item[V]
}

// New returns an empty filter governed by policy.
func New[V comparable](policy Policy[V]) *Filter[V] {
	return &Filter[V]{policy: policy}
}

// Include builds a filter holding values as its include list.
func Include[V comparable](policy Policy[V], values []V) (*Filter[V], error) {
	f := New(policy)
	if err := f.AddIncludedInList(values); err != nil {
		return nil, err
	}
	return f, nil
}

// Policy returns the filter's policy.
func (f *Filter[V]) Policy() Policy[V] {
	return f.policy
}

// Items returns a copy of the filter's items.
func (f *Filter[V]) Items() []Item[V] {
	out := make([]Item[V], len(f.items))
	for i, it := range f.items {
		out[i] = Item[V]{Values: slices.Clone(it.Values)}
	}
	return out
}

// IsEmpty reports whether the filter holds no items. An empty filter
// matches everything.
func (f *Filter[V]) IsEmpty() bool {
	return f == nil || len(f.items) == 0
}

// AddIncludedInList de-duplicates values, orders them by the policy and
// stores them as a single include item. A nil slice is rejected; an empty
// slice adds nothing.
func (f *Filter[V]) AddIncludedInList(values []V) error {
	if values == nil {
		return errors.NewValidationError("included values must not be nil").WithField("values")
	}
	unique := Distinct(values)
	if len(unique) == 0 {
		return nil
	}
	if f.policy.Less != nil {
		slices.SortStableFunc(unique, func(a, b V) int {
			switch {
			case f.policy.Less(a, b):
				return -1
			case f.policy.Less(b, a):
				return 1
			default:
				return 0
			}
		})
	}
	f.items = append(f.items, Item[V]{Values: unique})
	return nil
}

// Values returns every included value across items in stored order.
func (f *Filter[V]) Values() []V {
	if f == nil {
		return nil
	}
	var out []V
	for _, it := range f.items {
		out = append(out, it.Values...)
	}
	return out
}

// Matches reports whether v passes the filter.
func (f *Filter[V]) Matches(v V) bool {
	if f.IsEmpty() {
		return true
	}
	for _, it := range f.items {
		if it.Contains(v) {
			return true
		}
	}
	return false
}

// DefaultFormatValue renders v for display using the policy.
func (f *Filter[V]) DefaultFormatValue(v V) string {
	if f.policy.Format != nil {
		return f.policy.Format(v)
	}
	return fmt.Sprint(v)
}

// BuildDescription appends every included value to b in stored order.
func (f *Filter[V]) BuildDescription(b *DescriptionBuilder[V]) {
	for _, it := range f.items {
		for _, v := range it.Values {
			b.AppendValue(v)
		}
	}
}

// Description returns "<Name>: v1, v2" (or just the values when the policy
// has no name). Empty filters describe as "".
func (f *Filter[V]) Description() string {
	if f.IsEmpty() {
		return ""
	}
	b := NewDescriptionBuilder(f.policy.Name, f.DefaultFormatValue)
	f.BuildDescription(b)
	return b.String()
}

type filterJSON[V comparable] struct {
	Include [][]V `json:"include"`
}

// MarshalJSON encodes the filter as {"include": [[v1, v2], ...]}.
func (f *Filter[V]) MarshalJSON() ([]byte, error) {
	doc := filterJSON[V]{Include: make([][]V, 0, len(f.items))}
	for _, it := range f.items {
		doc.Include = append(doc.Include, it.Values)
	}
	return json.Marshal(doc)
}

// UnmarshalJSON replaces the filter's items, re-applying the current policy.
func (f *Filter[V]) UnmarshalJSON(data []byte) error {
	var doc filterJSON[V]
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	f.items = nil
	for _, values := range doc.Include {
		if values == nil {
			continue
		}
		if err := f.AddIncludedInList(values); err != nil {
			return err
		}
	}
	return nil
}

// Distinct returns the unique values of in, keeping first occurrences.
func Distinct[V comparable](in []V) []V {
	seen := make(map[V]struct{}, len(in))
	out := make([]V, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
