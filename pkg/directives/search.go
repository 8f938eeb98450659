package directives

import (
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// SearchOptions refines a single search request.
type SearchOptions struct {
	Flags  string
	Escape bool
	// Scope overrides the scope of the directive when not nil.
	Scope []string
}

// SearchDirective searches an input across a fixed set of fields.
type SearchDirective[T any] struct {
	listeners

	table ports.Table[T]
	scope []string
}

// NewSearch creates a search directive over the fields in scope.
func NewSearch[T any](table ports.Table[T], scope ...string) *SearchDirective[T] {
	return &SearchDirective[T]{
		listeners: newListeners(table, domain.EventSearchChanged),
		table:     table,
		scope:     scope,
	}
}

// Search requests a search for input. An empty input clears the search.
func (d *SearchDirective[T]) Search(input string, opts SearchOptions) <-chan struct{} {
	scope := d.scope
	if opts.Scope != nil {
		scope = opts.Scope
	}
	if scope == nil {
		scope = []string{}
	}
	return d.table.Search(domain.SearchState{
		Value:  input,
		Scope:  scope,
		Flags:  opts.Flags,
		Escape: opts.Escape,
	})
}

// State returns the current search state of the table.
func (d *SearchDirective[T]) State() domain.SearchState {
	return d.table.GetTableState().Search
}

// OnSearchChange subscribes to search changes.
func (d *SearchDirective[T]) OnSearchChange(fn func(domain.SearchState)) events.ListenerID {
	return on(d.listeners, domain.EventSearchChanged, func(e domain.SearchChanged) { fn(e.Search) })
}
