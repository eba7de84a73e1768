// Package core holds the view-state pipeline behind the people table.
//
// This package has no UI or transport dependencies. The web layer feeds it
// raw events and renders the [View] it returns; record sources feed it the
// outcome of the one fetch a session performs.
//
// # Pipeline
//
// Every displayed page is derived in a fixed order:
//
//	Store -> Filter -> Sort -> Paginate -> View
//
// [Filter], [Sort] and [Paginate] are pure functions over slices of
// [Record]. The [Coordinator] owns the [Store] and one [ViewState] and
// decides which stages an event re-runs:
//
//   - filter, sort or store changes re-run all three stages
//   - page changes re-run Paginate only
//   - selection and column resizing re-run nothing
//
// # State machines
//
// [SortSpec.Toggle] cycles a column through none, ascending and descending.
// [ColumnLayout] is idle or resizing one column from a captured anchor;
// widths are clamped to [MinColumnWidth, MaxColumnWidth].
//
// # Error Handling
//
// Load failures are mapped by [MapError] to a [UserMessage] with a support
// code (LOAD001-LOAD005, DB001-DB002, REQ001, ERR000). Misuse of the handlers is a
// no-op that returns false rather than an error.
package core
