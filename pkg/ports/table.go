package ports

import (
	"context"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
)

// Table is the public surface of a table engine.
//
// Mutating operations return once the state is updated and the change events are
// dispatched; the projection they trigger completes asynchronously and the
// returned channel is closed when it has.
type Table[T any] interface {
	Bus
	Dispatcher

	Sort(criteria domain.SortState) <-chan struct{}
	Filter(criteria domain.FilterState) <-chan struct{}
	Search(criteria domain.SearchState) <-chan struct{}
	Slice(criteria domain.SliceState) <-chan struct{}
	Exec(opts ...domain.ExecOptions) <-chan struct{}

	// Eval computes the displayed items for state, or for the current state when nil.
	Eval(ctx context.Context, state *domain.TableState) ([]domain.DisplayItem[T], error)

	GetTableState() domain.TableState
	GetMatchingItems() []T
	FilteredCount() int
	Len() int

	// Clear removes every listener of every kind.
	Clear()
}

// Listener is an engine event listener.
type Listener = events.Listener[domain.Event]
