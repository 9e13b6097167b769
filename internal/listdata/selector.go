package listdata

import (
	"context"
	"slices"
	"sync"

	"github.com/Iron-Ham/filterbox/internal/errors"
	"github.com/Iron-Ham/filterbox/internal/filter"
)

// Selector is the editor-side state of a filter box: the working items from
// the last applied search and the user's ordered selection.
//
// Searches are single-flight: starting a search cancels the one in flight,
// and a result that arrives after a newer search started is discarded and
// reported as errors.ErrSuperseded. Selector is safe for concurrent use so
// bubbletea commands may run searches off the update loop.
type Selector[S any, V comparable] struct {
	source *AsyncSource[S, V]
	policy filter.Policy[V]

	mu         sync.Mutex
	cancel     context.CancelFunc
	generation uint64
	text       string
	items      []S
	selected   []V
}

// NewSelector creates a selector over source. policy governs the filters it
// builds.
func NewSelector[S any, V comparable](source *AsyncSource[S, V], policy filter.Policy[V]) *Selector[S, V] {
	return &Selector[S, V]{source: source, policy: policy}
}

// Source returns the underlying data source.
func (s *Selector[S, V]) Source() *AsyncSource[S, V] { return s.source }

// Search replaces the working items with the candidates for text merged with
// the selection. Unknown selected values are resolved first so their rows
// keep their metadata.
func (s *Selector[S, V]) Search(ctx context.Context, text string, progress ProgressFunc) ([]S, error) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.generation++
	gen := s.generation
	selected := slices.Clone(s.selected)
	s.mu.Unlock()
	defer cancel()

	items, err := s.fetch(ctx, text, selected, progress)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return nil, errors.ErrSuperseded
	}
	s.cancel = nil
	if err != nil {
		return nil, err
	}
	s.text = text
	s.items = items
	return slices.Clone(items), nil
}

func (s *Selector[S, V]) fetch(ctx context.Context, text string, selected []V, progress ProgressFunc) ([]S, error) {
	if unknown := s.source.UnknownValues(selected); len(unknown) > 0 {
		if _, err := s.source.Fetch(ctx, NewGetItemsArgs(text, unknown, progress), selected); err != nil {
			return nil, err
		}
	}
	return s.source.Fetch(ctx, NewGetItemsArgs[V](text, nil, progress), selected)
}

// Cancel aborts the search in flight, if any.
func (s *Selector[S, V]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
		s.generation++
	}
}

// Text returns the text of the last applied search.
func (s *Selector[S, V]) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Items returns the working items.
func (s *Selector[S, V]) Items() []S {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.items)
}

// Rows returns views over the working items.
func (s *Selector[S, V]) Rows() []Item[S, V] {
	return s.source.Items(s.Items())
}

// Selected returns the selected values in selection order.
func (s *Selector[S, V]) Selected() []V {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.selected)
}

// IsSelected reports whether v is selected.
func (s *Selector[S, V]) IsSelected(v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.selected, v)
}

// Toggle flips v and reports whether it is now selected.
func (s *Selector[S, V]) Toggle(v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.selected, v); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return false
	}
	s.selected = append(s.selected, v)
	return true
}

// Select adds values to the selection.
func (s *Selector[S, V]) Select(values ...V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range values {
		if !slices.Contains(s.selected, v) {
			s.selected = append(s.selected, v)
		}
	}
}

// Deselect removes v from the selection.
func (s *Selector[S, V]) Deselect(v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.selected, v); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
	}
}

// SelectAll selects every enabled working item.
func (s *Selector[S, V]) SelectAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if s.source.ItemDisabled(it) {
			continue
		}
		if v := s.source.ItemValue(it); !slices.Contains(s.selected, v) {
			s.selected = append(s.selected, v)
		}
	}
}

// Clear empties the selection.
func (s *Selector[S, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// BuildFilter turns the selection into a filter. It returns nil when nothing
// is selected or when the selection is exactly the working set, since both
// mean "no filter".
func (s *Selector[S, V]) BuildFilter() *filter.Filter[V] {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selected) == 0 || s.selectionIsWorkingSet() {
		return nil
	}
	f := filter.New(s.policy)
	if err := f.AddIncludedInList(slices.Clone(s.selected)); err != nil {
		return nil
	}
	return f
}

func (s *Selector[S, V]) selectionIsWorkingSet() bool {
	if len(s.items) == 0 {
		return false
	}
	working := make(map[V]struct{}, len(s.items))
	for _, it := range s.items {
		working[s.source.ItemValue(it)] = struct{}{}
	}
	if len(working) != len(s.selected) {
		return false
	}
	for _, v := range s.selected {
		if _, ok := working[v]; !ok {
			return false
		}
	}
	return true
}

// LoadFilter replaces the selection with the filter's values. A nil or empty
// filter clears the selection.
func (s *Selector[S, V]) LoadFilter(f *filter.Filter[V]) {
	values := f.Values()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = values
}
