package listdata

import (
	"context"
	"slices"

	"github.com/Iron-Ham/filterbox/internal/filter"
)

// StaticProvider serves an in-memory item list. Text searches match item
// text with MatchText; value searches return items whose value was asked for.
type StaticProvider[S any, V comparable] struct {
	items []S
	acc   Accessors[S, V]
}

var _ Provider[string, string] = (*StaticProvider[string, string])(nil)

// NewStaticProvider returns a provider over a copy of items.
func NewStaticProvider[S any, V comparable](items []S, acc Accessors[S, V]) *StaticProvider[S, V] {
	return &StaticProvider[S, V]{items: slices.Clone(items), acc: acc}
}

func (p *StaticProvider[S, V]) GetItemsByText(ctx context.Context, args TextArgs) ([]S, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := NewMatcher(args.SearchedText)
	var out []S
	for i, it := range p.items {
		if m.Match(p.acc.text(it)) {
			out = append(out, it)
		}
		args.Progress.Report(i+1, len(p.items))
	}
	return out, nil
}

func (p *StaticProvider[S, V]) GetItemsByValue(ctx context.Context, args ValueArgs[V]) ([]S, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out []S
	for _, it := range p.items {
		if slices.Contains(args.SearchedValues, p.acc.Value(it)) {
			out = append(out, it)
		}
	}
	args.Progress.Report(len(args.SearchedValues), len(args.SearchedValues))
	return out, nil
}

// NewPolicySource builds a source whose items are the values themselves,
// taking text, ordering and default candidates from a filter policy. A nil
// provider serves the policy's candidates only.
func NewPolicySource[V comparable](policy filter.Policy[V], provider Provider[V, V], opts SourceOptions) (*AsyncSource[V, V], error) {
	if opts.Name == "" {
		opts.Name = policy.Name
	}
	format := filter.New(policy).DefaultFormatValue
	return NewAsyncSource(provider, Config[V, V]{
		SourceOptions: opts,
		Accessors: Accessors[V, V]{
			Value: func(v V) V { return v },
			Text:  format,
		},
		Less:     policy.Less,
		Defaults: policy.Candidates,
	})
}

// NewBooleanSource offers {false, true}.
func NewBooleanSource(labels filter.BoolLabels, provider Provider[bool, bool], opts SourceOptions) (*AsyncSource[bool, bool], error) {
	return NewPolicySource(filter.BooleanPolicy(labels), provider, opts)
}

// NewNullableBooleanSource offers {null, false, true}.
func NewNullableBooleanSource(labels filter.BoolLabels, provider Provider[filter.Null[bool], filter.Null[bool]], opts SourceOptions) (*AsyncSource[filter.Null[bool], filter.Null[bool]], error) {
	return NewPolicySource(filter.NullableBooleanPolicy(labels), provider, opts)
}

// NewEnumSource offers every member of t sorted by display name.
func NewEnumSource[V comparable](t *filter.EnumType[V], provider Provider[V, V], opts SourceOptions) (*AsyncSource[V, V], error) {
	return NewPolicySource(filter.EnumPolicy(t), provider, opts)
}
