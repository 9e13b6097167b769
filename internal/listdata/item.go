package listdata

import "fmt"

// ItemData is the metadata a rendered row needs. Each method is a pure read
// of one attribute.
type ItemData[V comparable] interface {
	CSSClass() string
	Disabled() bool
	IconName() string
	Text() string
	Tooltip() string
	Value() V
}

// Source answers metadata questions about source items of type S.
type Source[S any, V comparable] interface {
	ItemCSSClass(item S) string
	ItemDisabled(item S) bool
	ItemIconName(item S) string
	ItemText(item S) string
	ItemTooltip(item S) string
	ItemValue(item S) V
}

// Item is a non-owning view pairing one source item with the Source that
// describes it. Every accessor is forwarded to the source on each call, so
// the view always reflects the source's current state.
type Item[S any, V comparable] struct {
	item   S
	source Source[S, V]
}

var _ ItemData[int] = Item[string, int]{}

// NewItem returns a view over item.
func NewItem[S any, V comparable](item S, source Source[S, V]) Item[S, V] {
	return Item[S, V]{item: item, source: source}
}

// SourceItem returns the underlying source item.
func (i Item[S, V]) SourceItem() S { return i.item }

func (i Item[S, V]) CSSClass() string { return i.source.ItemCSSClass(i.item) }
func (i Item[S, V]) Disabled() bool   { return i.source.ItemDisabled(i.item) }
func (i Item[S, V]) IconName() string { return i.source.ItemIconName(i.item) }
func (i Item[S, V]) Text() string     { return i.source.ItemText(i.item) }
func (i Item[S, V]) Tooltip() string  { return i.source.ItemTooltip(i.item) }
func (i Item[S, V]) Value() V         { return i.source.ItemValue(i.item) }

// Accessors extracts metadata from source items. Value is required; the
// others fall back to zero values, and Text falls back to fmt.Sprint of the
// value.
type Accessors[S any, V comparable] struct {
	Value    func(S) V
	Text     func(S) string
	CSSClass func(S) string
	Disabled func(S) bool
	IconName func(S) string
	Tooltip  func(S) string
}

func (a Accessors[S, V]) cssClass(item S) string {
	if a.CSSClass == nil {
		return ""
	}
	return a.CSSClass(item)
}

func (a Accessors[S, V]) disabled(item S) bool {
	return a.Disabled != nil && a.Disabled(item)
}

func (a Accessors[S, V]) iconName(item S) string {
	if a.IconName == nil {
		return ""
	}
	return a.IconName(item)
}

func (a Accessors[S, V]) text(item S) string {
	if a.Text == nil {
		return fmt.Sprint(a.Value(item))
	}
	return a.Text(item)
}

func (a Accessors[S, V]) tooltip(item S) string {
	if a.Tooltip == nil {
		return ""
	}
	return a.Tooltip(item)
}
