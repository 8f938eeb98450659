package directives

import (
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// FilterDirective turns an input value into a single filter clause on one field.
type FilterDirective[T any] struct {
	listeners

	table    ports.Table[T]
	pointer  string
	operator domain.Operator
	typ      domain.ClauseType
}

// NewFilter creates a filter directive on the field addressed by pointer.
// The operator defaults to includes and the type to string.
func NewFilter[T any](table ports.Table[T], pointer string, operator domain.Operator, typ domain.ClauseType) *FilterDirective[T] {
	if operator == "" {
		operator = domain.OpIncludes
	}
	if typ == "" {
		typ = domain.TypeString
	}
	return &FilterDirective[T]{
		listeners: newListeners(table, domain.EventFilterChanged),
		table:     table,
		pointer:   pointer,
		operator:  operator,
		typ:       typ,
	}
}

// Filter replaces the clauses of the field with one clause on input.
// An empty string input clears the filter on the field.
func (d *FilterDirective[T]) Filter(input any) <-chan struct{} {
	return d.table.Filter(domain.FilterState{
		d.pointer: {{Value: input, Operator: d.operator, Type: d.typ}},
	})
}

// State returns the current filter state of the table.
func (d *FilterDirective[T]) State() domain.FilterState {
	return d.table.GetTableState().Filter
}

// OnFilterChange subscribes to filter changes.
func (d *FilterDirective[T]) OnFilterChange(fn func(domain.FilterState)) events.ListenerID {
	return on(d.listeners, domain.EventFilterChanged, func(e domain.FilterChanged) { fn(e.Filter) })
}
