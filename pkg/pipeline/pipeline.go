// Package pipeline turns table criteria into pure transforms over records.
//
// Every stage works on DisplayItem values so that the position of a record in the
// source data travels with it through filtering, searching, sorting and slicing.
// A full run applies the stages in a fixed order:
//
//	filter -> search -> (summary) -> sort -> slice
package pipeline

import (
	"fmt"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/fn"
)

// Stage is a pure transform. It never mutates its input and always returns a new slice.
type Stage[T any] func([]domain.DisplayItem[T]) []domain.DisplayItem[T]

type (
	SortFactory[T any]   func(domain.SortState) (Stage[T], error)
	FilterFactory[T any] func(domain.FilterState) (Stage[T], error)
	SearchFactory[T any] func(domain.SearchState) (Stage[T], error)
)

// Factories groups the stage factories an engine builds its pipelines from.
// A nil factory falls back to the default one.
type Factories[T any] struct {
	Sort   SortFactory[T]
	Filter FilterFactory[T]
	Search SearchFactory[T]
}

// DefaultFactories returns the built-in sort, filter and search factories.
func DefaultFactories[T any]() Factories[T] {
	return Factories[T]{
		Sort:   Sort[T],
		Filter: Filter[T],
		Search: Search[T],
	}
}

// WithDefaults fills the missing factories.
func (f Factories[T]) WithDefaults() Factories[T] {
	defaults := DefaultFactories[T]()
	if f.Sort == nil {
		f.Sort = defaults.Sort
	}
	if f.Filter == nil {
		f.Filter = defaults.Filter
	}
	if f.Search == nil {
		f.Search = defaults.Search
	}
	return f
}

// Pipeline is the composition of the stages built for one table state.
type Pipeline[T any] struct {
	filter Stage[T]
	search Stage[T]
	sort   Stage[T]
	slice  Stage[T]
	page   domain.SliceState
}

// Build creates the stages for state. Factory errors (unknown operator, invalid
// search expression) are returned as is.
func Build[T any](factories Factories[T], state domain.TableState) (*Pipeline[T], error) {
	factories = factories.WithDefaults()

	filter, err := factories.Filter(state.Filter)
	if err != nil {
		return nil, err
	}
	search, err := factories.Search(state.Search)
	if err != nil {
		return nil, err
	}
	sort, err := factories.Sort(state.Sort)
	if err != nil {
		return nil, fmt.Errorf("sort on %q: %w", state.Sort.Pointer, err)
	}

	return &Pipeline[T]{
		filter: filter,
		search: search,
		sort:   sort,
		slice:  Slice[T](state.Slice),
		page:   state.Slice,
	}, nil
}

// Run applies the stages in order. onMatch, when not nil, receives the filtered and
// searched items before they are sorted and sliced.
func (p *Pipeline[T]) Run(items []domain.DisplayItem[T], onMatch func([]domain.DisplayItem[T])) []domain.DisplayItem[T] {
	if onMatch == nil {
		onMatch = func([]domain.DisplayItem[T]) {}
	}
	run := fn.Compose[[]domain.DisplayItem[T]](
		p.filter,
		p.search,
		fn.Tap(onMatch),
		p.sort,
		p.slice,
	)
	return run(items)
}

// Summarize describes a run that matched the given items.
func (p *Pipeline[T]) Summarize(matching []domain.DisplayItem[T]) domain.Summary {
	return domain.Summary{
		Page:          p.page.Page,
		Size:          p.page.Size,
		FilteredCount: len(matching),
	}
}

// Items wraps source records, keeping each record's position.
func Items[T any](data []T) []domain.DisplayItem[T] {
	out := make([]domain.DisplayItem[T], len(data))
	for i, v := range data {
		out[i] = domain.DisplayItem[T]{Index: i, Value: v}
	}
	return out
}

// Eval runs a full pipeline for state over data and returns the displayed items.
// Panics raised by stages (a faulty comparator, for instance) are returned as errors.
func Eval[T any](factories Factories[T], state domain.TableState, data []T) (items []domain.DisplayItem[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			items, err = nil, fmt.Errorf("%w: %v", domain.ErrPipelinePanic, r)
		}
	}()

	p, err := Build(factories, state)
	if err != nil {
		return nil, err
	}
	return p.Run(Items(data), nil), nil
}
