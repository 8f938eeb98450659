package directives

import (
	"sync"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// PaginationDirective navigates between pages. Its page, size and item count are
// taken from summaries as they are broadcast.
type PaginationDirective[T any] struct {
	listeners

	table ports.Table[T]
	watch events.ListenerID

	mu          sync.RWMutex
	currentPage int
	currentSize int
	itemCount   int
}

// NewPagination creates a pagination directive, starting from the current table state.
func NewPagination[T any](table ports.Table[T]) *PaginationDirective[T] {
	slice := table.GetTableState().Slice
	d := &PaginationDirective[T]{
		listeners:   newListeners(table, domain.EventPageChanged, domain.EventSummaryChanged),
		table:       table,
		currentPage: slice.Page,
		currentSize: slice.Size,
		itemCount:   table.FilteredCount(),
	}
	d.watch = table.On(domain.EventSummaryChanged, func(e domain.Event) {
		summary, ok := e.(domain.SummaryChanged)
		if !ok {
			return
		}
		d.mu.Lock()
		d.currentPage = summary.Summary.Page
		d.currentSize = summary.Summary.Size
		d.itemCount = summary.Summary.FilteredCount
		d.mu.Unlock()
	})
	return d
}

// SelectPage moves to page p, keeping the current size.
func (d *PaginationDirective[T]) SelectPage(p int) <-chan struct{} {
	d.mu.RLock()
	size := d.currentSize
	d.mu.RUnlock()
	return d.table.Slice(domain.SliceState{Page: p, Size: size})
}

// SelectNextPage moves one page forward.
func (d *PaginationDirective[T]) SelectNextPage() <-chan struct{} {
	return d.SelectPage(d.page() + 1)
}

// SelectPreviousPage moves one page back.
func (d *PaginationDirective[T]) SelectPreviousPage() <-chan struct{} {
	return d.SelectPage(d.page() - 1)
}

// ChangePageSize goes back to the first page with a new size. A size of zero or
// less makes the page span every item.
func (d *PaginationDirective[T]) ChangePageSize(size int) <-chan struct{} {
	if size <= 0 {
		size = domain.Unbounded
	}
	return d.table.Slice(domain.SliceState{Page: 1, Size: size})
}

// IsPreviousPageEnabled reports whether a page precedes the current one.
func (d *PaginationDirective[T]) IsPreviousPageEnabled() bool {
	return d.page() > 1
}

// IsNextPageEnabled reports whether a page follows the current one.
func (d *PaginationDirective[T]) IsNextPageEnabled() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.currentSize <= 0 {
		return false
	}
	pages := (d.itemCount + d.currentSize - 1) / d.currentSize
	return pages > d.currentPage
}

// State returns the slice state of the table with the latest filtered count.
func (d *PaginationDirective[T]) State() domain.Summary {
	slice := d.table.GetTableState().Slice
	d.mu.RLock()
	defer d.mu.RUnlock()
	return domain.Summary{Page: slice.Page, Size: slice.Size, FilteredCount: d.itemCount}
}

// OnPageChange subscribes to page changes.
func (d *PaginationDirective[T]) OnPageChange(fn func(domain.SliceState)) events.ListenerID {
	return on(d.listeners, domain.EventPageChanged, func(e domain.PageChanged) { fn(e.Slice) })
}

// OnSummaryChange subscribes to summaries.
func (d *PaginationDirective[T]) OnSummaryChange(fn func(domain.Summary)) events.ListenerID {
	return on(d.listeners, domain.EventSummaryChanged, func(e domain.SummaryChanged) { fn(e.Summary) })
}

// Stop removes every listener of the directive.
func (d *PaginationDirective[T]) Stop() {
	d.Off()
	d.table.Off(domain.EventSummaryChanged, d.watch)
}

func (d *PaginationDirective[T]) page() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.currentPage
}
