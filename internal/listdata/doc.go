// Package listdata provides the asynchronous list-data engine behind
// searchable selection components.
//
// The engine lets a user search a large or remote candidate set by text
// while never losing the display metadata (text, icon, tooltip) of values
// that are already selected but no longer match the current search.
//
// # Query Modes
//
// Every fetch runs in exactly one of two modes, described by [GetItemsArgs]:
//
//  1. Value resolution: some selected values have no resident item yet.
//     The [Provider] is asked for exactly those values.
//  2. Text search: the provider is asked for candidates matching the text.
//
// # Reconciliation
//
// The candidates returned by either mode are unioned with the resident items
// of the current selection (by value), de-duplicated and ordered. Closed
// universes (booleans, enums) fall back to their declared candidates,
// filtered client-side, when the provider returns nothing for a text search.
//
// # Main Types
//
//   - [AsyncSource]: the reconciliation engine
//   - [Provider]: the application-supplied loader contract
//   - [Item] / [ItemData]: the non-owning per-row view over a source item
//   - [Selector]: editor state with single-flight search and filter building
//   - [StaticProvider]: an in-memory provider
//
// # Usage
//
//	src, err := listdata.NewAsyncSource(provider, listdata.Config[Customer, int]{
//	    Accessors: listdata.Accessors[Customer, int]{
//	        Value: func(c Customer) int { return c.ID },
//	        Text:  func(c Customer) string { return c.Name },
//	    },
//	})
//	sel := listdata.NewSelector(src, filter.SelectPolicy[int]("Customer", nil))
//	items, err := sel.Search(ctx, "acme", nil)
//	if errors.IsCanceled(err) {
//	    return // superseded by a newer keystroke
//	}
package listdata
