package domain

// EventKind identifies the category of a table event.
type EventKind int

const (
	EventToggleSort EventKind = iota + 1
	EventFilterChanged
	EventSearchChanged
	EventPageChanged
	EventSummaryChanged
	EventDisplayChanged
	EventExecChanged
	EventExecError
)

// EventKinds lists every kind, in declaration order.
var EventKinds = []EventKind{
	EventToggleSort,
	EventFilterChanged,
	EventSearchChanged,
	EventPageChanged,
	EventSummaryChanged,
	EventDisplayChanged,
	EventExecChanged,
	EventExecError,
}

var eventNames = map[EventKind]string{
	EventToggleSort:     "TOGGLE_SORT",
	EventFilterChanged:  "FILTER_CHANGED",
	EventSearchChanged:  "SEARCH_CHANGED",
	EventPageChanged:    "CHANGE_PAGE",
	EventSummaryChanged: "SUMMARY_CHANGED",
	EventDisplayChanged: "DISPLAY_CHANGED",
	EventExecChanged:    "EXEC_CHANGED",
	EventExecError:      "EXEC_ERROR",
}

// String returns the wire name of the kind (e.g. "TOGGLE_SORT").
func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Event is a typed table notification. The set of implementations is closed.
type Event interface {
	Kind() EventKind
	sealed()
}

// SortToggled carries the sort sub-tree after a sort request.
type SortToggled struct {
	Sort SortState
}

// FilterChanged carries the filter sub-tree after a filter request.
type FilterChanged struct {
	Filter FilterState
}

// SearchChanged carries the search sub-tree after a search request.
type SearchChanged struct {
	Search SearchState
}

// PageChanged carries the slice sub-tree after a page change (explicit or reset).
type PageChanged struct {
	Slice SliceState
}

// SummaryChanged carries the summary of an execution, local or remote.
type SummaryChanged struct {
	Summary Summary
}

// DisplayChanged carries the records to display, in display order.
type DisplayChanged[T any] struct {
	Items []DisplayItem[T]
}

// ExecChanged reports the working state of an execution.
type ExecChanged struct {
	Working bool
}

// ExecError reports the failure of an execution.
type ExecError struct {
	Err error
}

func (SortToggled) Kind() EventKind       { return EventToggleSort }
func (FilterChanged) Kind() EventKind     { return EventFilterChanged }
func (SearchChanged) Kind() EventKind     { return EventSearchChanged }
func (PageChanged) Kind() EventKind       { return EventPageChanged }
func (SummaryChanged) Kind() EventKind    { return EventSummaryChanged }
func (DisplayChanged[T]) Kind() EventKind { return EventDisplayChanged }
func (ExecChanged) Kind() EventKind       { return EventExecChanged }
func (ExecError) Kind() EventKind         { return EventExecError }

func (SortToggled) sealed()       {}
func (FilterChanged) sealed()     {}
func (SearchChanged) sealed()     {}
func (PageChanged) sealed()       {}
func (SummaryChanged) sealed()    {}
func (DisplayChanged[T]) sealed() {}
func (ExecChanged) sealed()       {}
func (ExecError) sealed()         {}
