package listdata

import (
	"context"
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Iron-Ham/filterbox/internal/errors"
	"github.com/Iron-Ham/filterbox/internal/logging"
)

// DefaultCacheSize bounds how many resolved items a source keeps resident.
const DefaultCacheSize = 1024

// Fetch outcomes reported to a FetchObserver.
const (
	OutcomeOK       = "ok"
	OutcomeFallback = "fallback"
	OutcomeError    = "error"
	OutcomeCanceled = "canceled"
)

// FetchObserver records fetch results. metrics.Recorder implements it.
type FetchObserver interface {
	ObserveFetch(source, mode, outcome string, elapsed time.Duration)
}

// SourceOptions are the settings shared by every source constructor.
type SourceOptions struct {
	// Name identifies the source in logs and metrics.
	Name string
	// CacheSize bounds the resident item cache. Zero uses DefaultCacheSize.
	CacheSize int
	Logger    *logging.Logger
	Observer  FetchObserver
}

// Config configures an AsyncSource.
type Config[S any, V comparable] struct {
	SourceOptions
	Accessors Accessors[S, V]
	// Less orders merged results. Nil keeps provider order and appends
	// selected items the provider did not return.
	Less func(a, b S) bool
	// Defaults enumerates a closed candidate universe. When set, a text
	// search that yields nothing falls back to these, filtered client-side.
	Defaults func() []S
}

// AsyncSource is the reconciliation engine. It decides per fetch whether to
// resolve unknown selected values or search by text, keeps every item it
// has seen resident (bounded), and merges results with the selection.
//
// AsyncSource is safe for concurrent use; the resident cache is the only
// shared state.
type AsyncSource[S any, V comparable] struct {
	provider Provider[S, V]
	acc      Accessors[S, V]
	less     func(a, b S) bool
	defaults func() []S
	resident *lru.Cache[V, S]
	name     string
	logger   *logging.Logger
	observer FetchObserver
}

var _ Source[string, string] = (*AsyncSource[string, string])(nil)

// NewAsyncSource creates a source over provider. A nil provider serves
// Defaults only.
func NewAsyncSource[S any, V comparable](provider Provider[S, V], cfg Config[S, V]) (*AsyncSource[S, V], error) {
	if cfg.Accessors.Value == nil {
		return nil, errors.NewValidationError("value accessor is required").WithField("Accessors.Value")
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = DefaultCacheSize
	}
	resident, err := lru.New[V, S](size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create item cache")
	}
	s := &AsyncSource[S, V]{
		provider: provider,
		acc:      cfg.Accessors,
		less:     cfg.Less,
		defaults: cfg.Defaults,
		resident: resident,
		name:     cfg.Name,
		logger:   cfg.Logger.WithComponent("listdata").WithSource(cfg.Name),
		observer: cfg.Observer,
	}
	return s, nil
}

// Name returns the source name.
func (s *AsyncSource[S, V]) Name() string { return s.name }

func (s *AsyncSource[S, V]) ItemCSSClass(item S) string { return s.acc.cssClass(item) }
func (s *AsyncSource[S, V]) ItemDisabled(item S) bool   { return s.acc.disabled(item) }
func (s *AsyncSource[S, V]) ItemIconName(item S) string { return s.acc.iconName(item) }
func (s *AsyncSource[S, V]) ItemText(item S) string     { return s.acc.text(item) }
func (s *AsyncSource[S, V]) ItemTooltip(item S) string  { return s.acc.tooltip(item) }
func (s *AsyncSource[S, V]) ItemValue(item S) V         { return s.acc.Value(item) }

// Items wraps source items as row views.
func (s *AsyncSource[S, V]) Items(items []S) []Item[S, V] {
	out := make([]Item[S, V], len(items))
	for i, it := range items {
		out[i] = NewItem[S, V](it, s)
	}
	return out
}

// Lookup returns the resident item for v, if any.
func (s *AsyncSource[S, V]) Lookup(v V) (S, bool) {
	return s.resident.Get(v)
}

// UnknownValues returns the values of selected that have no resident item,
// in selection order without duplicates.
func (s *AsyncSource[S, V]) UnknownValues(selected []V) []V {
	var unknown []V
	seen := make(map[V]struct{}, len(selected))
	for _, v := range selected {
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		if !s.resident.Contains(v) {
			unknown = append(unknown, v)
		}
	}
	return unknown
}

// GetItems fetches candidates for text, resolving unknown selected values
// first when there are any, and returns them merged with the selection.
// Provider errors are returned unmodified; cancellation surfaces as the
// context's error.
func (s *AsyncSource[S, V]) GetItems(ctx context.Context, text string, selected []V, progress ProgressFunc) ([]S, error) {
	args := NewGetItemsArgs(text, s.UnknownValues(selected), progress)
	return s.Fetch(ctx, args, selected)
}

// Fetch runs exactly the query described by args and merges the result with
// the resident items of selected.
func (s *AsyncSource[S, V]) Fetch(ctx context.Context, args GetItemsArgs[V], selected []V) ([]S, error) {
	start := time.Now()
	mode := args.Mode()

	items, fellBack, err := s.query(ctx, args)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		outcome := OutcomeError
		if errors.IsCanceled(err) {
			outcome = OutcomeCanceled
			s.logger.Debug("fetch canceled", "mode", mode.String())
		} else {
			s.logger.Warn("fetch failed", "mode", mode.String(), "error", err.Error())
		}
		s.observe(mode, outcome, start)
		return nil, err
	}

	for _, it := range items {
		s.resident.Add(s.acc.Value(it), it)
	}
	merged := s.merge(items, selected)

	outcome := OutcomeOK
	if fellBack {
		outcome = OutcomeFallback
	}
	s.observe(mode, outcome, start)
	s.logger.Debug("fetch completed",
		"mode", mode.String(),
		"text", args.SearchedText,
		"unknown", len(args.UnknownValues),
		"returned", len(items),
		"merged", len(merged))
	return merged, nil
}

func (s *AsyncSource[S, V]) query(ctx context.Context, args GetItemsArgs[V]) ([]S, bool, error) {
	if args.OnlyUnknown() {
		if s.provider == nil {
			return s.defaultsWithValues(args.UnknownValues), false, nil
		}
		items, err := s.provider.GetItemsByValue(ctx, args.ValueArgs())
		return items, false, err
	}

	var items []S
	if s.provider != nil {
		var err error
		items, err = s.provider.GetItemsByText(ctx, args.TextArgs())
		if err != nil {
			return nil, false, err
		}
	}
	if len(items) == 0 && s.defaults != nil {
		return s.defaultsMatching(args.SearchedText), true, nil
	}
	return items, false, nil
}

func (s *AsyncSource[S, V]) defaultsMatching(text string) []S {
	m := NewMatcher(text)
	var out []S
	for _, it := range s.defaults() {
		if m.Match(s.acc.text(it)) {
			out = append(out, it)
		}
	}
	return out
}

func (s *AsyncSource[S, V]) defaultsWithValues(values []V) []S {
	if s.defaults == nil {
		return nil
	}
	var out []S
	for _, it := range s.defaults() {
		if slices.Contains(values, s.acc.Value(it)) {
			out = append(out, it)
		}
	}
	return out
}

// merge unions candidates with the resident items of selected by value,
// keeping the first occurrence, then orders the result.
func (s *AsyncSource[S, V]) merge(candidates []S, selected []V) []S {
	out := make([]S, 0, len(candidates)+len(selected))
	seen := make(map[V]struct{}, len(candidates)+len(selected))
	for _, it := range candidates {
		v := s.acc.Value(it)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, it)
	}
	for _, v := range selected {
		if _, ok := seen[v]; ok {
			continue
		}
		if it, ok := s.resident.Get(v); ok {
			seen[v] = struct{}{}
			out = append(out, it)
		}
	}
	if s.less != nil {
		slices.SortStableFunc(out, func(a, b S) int {
			switch {
			case s.less(a, b):
				return -1
			case s.less(b, a):
				return 1
			default:
				return 0
			}
		})
	}
	return out
}

func (s *AsyncSource[S, V]) observe(mode Mode, outcome string, start time.Time) {
	if s.observer != nil {
		s.observer.ObserveFetch(s.name, mode.String(), outcome, time.Since(start))
	}
}
