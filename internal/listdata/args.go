package listdata

import "context"

// Mode is the query mode of a single fetch.
type Mode int

const (
	// ModeText searches candidates by free text.
	ModeText Mode = iota
	// ModeValue resolves metadata for specific known values.
	ModeValue
)

func (m Mode) String() string {
	if m == ModeValue {
		return "value"
	}
	return "text"
}

// ProgressFunc receives provider progress reports. A nil ProgressFunc
// ignores reports.
type ProgressFunc func(done, total int)

// Report forwards a progress report when p is set.
func (p ProgressFunc) Report(done, total int) {
	if p != nil {
		p(done, total)
	}
}

// GetItemsArgs describes one fetch. Value resolution and text search are
// mutually exclusive: when UnknownValues is non-empty, SearchedText is ignored.
type GetItemsArgs[V comparable] struct {
	// UnknownValues are selected values whose display metadata is not resident.
	UnknownValues []V
	// SearchedText is the free-text query. Empty means "no text filter".
	SearchedText string
	// Progress is threaded through to the provider.
	Progress ProgressFunc
}

// NewGetItemsArgs builds the arguments for a fetch.
func NewGetItemsArgs[V comparable](text string, unknown []V, progress ProgressFunc) GetItemsArgs[V] {
	return GetItemsArgs[V]{
		UnknownValues: unknown,
		SearchedText:  text,
		Progress:      progress,
	}
}

// OnlyUnknown reports whether this fetch is a value resolution.
func (a GetItemsArgs[V]) OnlyUnknown() bool {
	return len(a.UnknownValues) > 0
}

// Mode returns the active query mode.
func (a GetItemsArgs[V]) Mode() Mode {
	if a.OnlyUnknown() {
		return ModeValue
	}
	return ModeText
}

// TextArgs projects a text-search fetch.
func (a GetItemsArgs[V]) TextArgs() TextArgs {
	return TextArgs{SearchedText: a.SearchedText, Progress: a.Progress}
}

// ValueArgs projects a value-resolution fetch.
func (a GetItemsArgs[V]) ValueArgs() ValueArgs[V] {
	return ValueArgs[V]{SearchedValues: a.UnknownValues, Progress: a.Progress}
}

// TextArgs is handed to Provider.GetItemsByText.
type TextArgs struct {
	SearchedText string
	Progress     ProgressFunc
}

// ValueArgs is handed to Provider.GetItemsByValue. SearchedValues is never
// empty.
type ValueArgs[V comparable] struct {
	SearchedValues []V
	Progress       ProgressFunc
}

// Provider loads candidate items. Implementations should honour ctx and may
// truncate or page text results; the engine imposes no limit. Items for
// values that cannot be resolved are simply left out.
type Provider[S any, V comparable] interface {
	GetItemsByText(ctx context.Context, args TextArgs) ([]S, error)
	GetItemsByValue(ctx context.Context, args ValueArgs[V]) ([]S, error)
}

// ProviderFuncs adapts plain functions to Provider. A nil func returns no
// items.
type ProviderFuncs[S any, V comparable] struct {
	ByText  func(ctx context.Context, args TextArgs) ([]S, error)
	ByValue func(ctx context.Context, args ValueArgs[V]) ([]S, error)
}

func (p ProviderFuncs[S, V]) GetItemsByText(ctx context.Context, args TextArgs) ([]S, error) {
	if p.ByText == nil {
		return nil, nil
	}
	return p.ByText(ctx, args)
}

func (p ProviderFuncs[S, V]) GetItemsByValue(ctx context.Context, args ValueArgs[V]) ([]S, error) {
	if p.ByValue == nil {
		return nil, nil
	}
	return p.ByValue(ctx, args)
}
