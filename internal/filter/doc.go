// Package filter provides the column-filter model used by filterbox editors.
//
// A [Filter] is an inclusion predicate over a value domain. It holds an
// ordered list of [Item] values; the editors in this module only ever build
// zero or one item (an "include list"). Filters are built once from the
// user's committed selection and replaced, never patched, afterwards.
//
// # Main Types
//
//   - [Item]: an ordered, de-duplicated set of values to include
//   - [Filter]: an ordered collection of items plus a [Policy]
//   - [Policy]: ordering, formatting and default candidates for one value domain
//   - [DescriptionBuilder]: accumulates a human-readable description
//   - [TextFilter]: a single free-text rule
//   - [EnumType]: a declared set of enum members with display names
//   - [Null]: a comparable nullable wrapper
//
// # Variants
//
// The typed variants are policies rather than subtypes:
//
//	f := filter.New(filter.BooleanPolicy(filter.BoolLabels{}))
//	_ = f.AddIncludedInList([]bool{true, false, true})
//	f.Values() // [false true]
//
//	status := filter.NewEnumType("Status", []Status{Open, Closed}, Status.String)
//	f2, _ := filter.Include(filter.EnumPolicy(status), []Status{Closed, Open})
//	f2.Description() // "Status: Closed, Open"
package filter
