package directives

import (
	"sync"
	"time"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// SortOptions configures a sort directive.
type SortOptions struct {
	// Cycle adds the none direction, so toggling goes asc, desc, none.
	Cycle bool
	// Debounce delays the sort request until toggling has been quiet that long.
	Debounce time.Duration
}

// SortDirective toggles the sort direction of one column.
type SortDirective[T any] struct {
	listeners

	table      ports.Table[T]
	pointer    string
	directions []domain.Direction
	commit     *Debouncer
	watch      events.ListenerID

	mu  sync.Mutex
	hit int
}

// NewSort creates a sort directive for the column addressed by pointer. It starts
// in line with the current table state.
func NewSort[T any](table ports.Table[T], pointer string, opts SortOptions) *SortDirective[T] {
	directions := []domain.Direction{domain.Desc, domain.Asc}
	if opts.Cycle {
		directions = []domain.Direction{domain.None, domain.Asc, domain.Desc}
	}

	d := &SortDirective[T]{
		listeners:  newListeners(table, domain.EventToggleSort),
		table:      table,
		pointer:    pointer,
		directions: directions,
		commit:     NewDebouncer(opts.Debounce),
		hit:        initialHit(table.GetTableState().Sort, pointer),
	}

	// Another column taking over the sort starts this one over.
	d.watch = table.On(domain.EventToggleSort, func(e domain.Event) {
		if toggled, ok := e.(domain.SortToggled); ok && toggled.Sort.Pointer != d.pointer {
			d.mu.Lock()
			d.hit = 0
			d.mu.Unlock()
		}
	})

	return d
}

// initialHit is the toggle count that leads to the current direction of pointer.
func initialHit(current domain.SortState, pointer string) int {
	if current.Pointer != pointer {
		return 0
	}
	switch current.Direction {
	case domain.Desc:
		return 2
	case domain.None:
		return 0
	default:
		return 1
	}
}

// Toggle moves to the next direction and requests the sort.
// The returned channel is closed once the resulting execution has ended.
func (d *SortDirective[T]) Toggle() <-chan struct{} {
	d.mu.Lock()
	d.hit++
	direction := d.directions[d.hit%len(d.directions)]
	d.mu.Unlock()

	criteria := domain.SortState{Pointer: d.pointer, Direction: direction}
	return d.commit.Trigger(func() <-chan struct{} {
		return d.table.Sort(criteria)
	})
}

// State returns the current sort state of the table.
func (d *SortDirective[T]) State() domain.SortState {
	return d.table.GetTableState().Sort
}

// Pointer returns the column the directive sorts.
func (d *SortDirective[T]) Pointer() string {
	return d.pointer
}

// OnSortToggle subscribes to sort changes.
func (d *SortDirective[T]) OnSortToggle(fn func(domain.SortState)) events.ListenerID {
	return on(d.listeners, domain.EventToggleSort, func(e domain.SortToggled) { fn(e.Sort) })
}

// Stop cancels a pending toggle and removes every listener of the directive.
func (d *SortDirective[T]) Stop() {
	d.commit.Stop()
	d.Off()
	d.table.Off(domain.EventToggleSort, d.watch)
}
