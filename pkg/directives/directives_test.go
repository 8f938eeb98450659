package directives_test

import (
	"sync"
	"testing"
	"time"

	"github.com/smart-table/smart-table-server/internal/runtime"
	"github.com/smart-table/smart-table-server/pkg/directives"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Record = ports.Record

func newTable(n int, state *domain.TableState) *runtime.Engine[Record] {
	data := make([]Record, n)
	for i := range data {
		data[i] = Record{"n": i + 1, "name": string(rune('a' + i%26))}
	}
	return runtime.NewEngine(
		runtime.Config[Record]{Data: data, State: state},
		runtime.WithProcessingDelay[Record](time.Millisecond),
	)
}

func TestSort_ToggleSequence(t *testing.T) {
	table := newTable(3, nil)
	sort := directives.NewSort(table, "n", directives.SortOptions{})

	var seen []domain.Direction
	for range 3 {
		ports.Wait(t, sort.Toggle())
		seen = append(seen, sort.State().Direction)
	}

	assert.Equal(t, []domain.Direction{domain.Asc, domain.Desc, domain.Asc}, seen)
}

func TestSort_CycleIncludesNone(t *testing.T) {
	table := newTable(3, nil)
	sort := directives.NewSort(table, "n", directives.SortOptions{Cycle: true})

	var seen []domain.Direction
	for range 4 {
		ports.Wait(t, sort.Toggle())
		seen = append(seen, sort.State().Direction)
	}

	assert.Equal(t, []domain.Direction{domain.Asc, domain.Desc, domain.None, domain.Asc}, seen)
}

func TestSort_OtherColumnResetsCounter(t *testing.T) {
	table := newTable(3, nil)
	byN := directives.NewSort(table, "n", directives.SortOptions{})
	byName := directives.NewSort(table, "name", directives.SortOptions{})

	ports.Wait(t, byN.Toggle())
	ports.Wait(t, byName.Toggle())
	ports.Wait(t, byN.Toggle())

	assert.Equal(t, domain.SortState{Pointer: "n", Direction: domain.Asc}, byN.State(),
		"a column starts over once another column took the sort")
}

func TestSort_InitializesFromState(t *testing.T) {
	table := newTable(3, &domain.TableState{Sort: domain.SortState{Pointer: "n", Direction: domain.Desc}})
	sort := directives.NewSort(table, "n", directives.SortOptions{})

	ports.Wait(t, sort.Toggle())

	assert.Equal(t, domain.Asc, sort.State().Direction, "desc is followed by asc")
}

func TestSort_CreatedWhileAnotherColumnToggles(t *testing.T) {
	table := newTable(3, &domain.TableState{Sort: domain.SortState{Pointer: "n", Direction: domain.Asc}})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range 20 {
			table.Sort(domain.SortState{Pointer: "name", Direction: domain.Asc})
		}
	}()
	sorts := make([]*directives.SortDirective[Record], 0, 20)
	for range 20 {
		sorts = append(sorts, directives.NewSort(table, "n", directives.SortOptions{}))
	}
	wg.Wait()

	for _, s := range sorts {
		s.Stop()
	}
	ports.Wait(t, table.Sort(domain.SortState{Pointer: "name", Direction: domain.Asc}))

	sort := directives.NewSort(table, "n", directives.SortOptions{})
	ports.Wait(t, sort.Toggle())
	assert.Equal(t, domain.SortState{Pointer: "n", Direction: domain.Asc}, sort.State())
}

func TestSort_DebounceKeepsLastToggle(t *testing.T) {
	table := newTable(3, nil)
	sort := directives.NewSort(table, "n", directives.SortOptions{Debounce: 20 * time.Millisecond})
	var mu sync.Mutex
	var requests []domain.SortState
	sort.OnSortToggle(func(s domain.SortState) {
		mu.Lock()
		requests = append(requests, s)
		mu.Unlock()
	})

	first := sort.Toggle()
	last := sort.Toggle()
	ports.Wait(t, first)
	ports.Wait(t, last)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requests, 1)
	assert.Equal(t, domain.Desc, requests[0].Direction)
}

func TestSort_StopRemovesListeners(t *testing.T) {
	table := newTable(3, nil)
	sort := directives.NewSort(table, "n", directives.SortOptions{})
	calls := 0
	sort.OnSortToggle(func(domain.SortState) { calls++ })

	sort.Stop()
	ports.Wait(t, table.Sort(domain.SortState{Pointer: "n"}))

	assert.Zero(t, calls)
}

func TestFilter_BuildsClause(t *testing.T) {
	table := newTable(5, nil)
	filter := directives.NewFilter(table, "n", domain.OpGTE, domain.TypeNumber)
	var changed domain.FilterState
	filter.OnFilterChange(func(f domain.FilterState) { changed = f })

	ports.Wait(t, filter.Filter("4"))

	want := domain.FilterState{"n": {{Value: "4", Operator: domain.OpGTE, Type: domain.TypeNumber}}}
	assert.Equal(t, want, changed)
	assert.Equal(t, want, filter.State())
	assert.Equal(t, 2, table.FilteredCount())
}

func TestFilter_Defaults(t *testing.T) {
	table := newTable(3, nil)
	filter := directives.NewFilter(table, "name", "", "")

	ports.Wait(t, filter.Filter("B"))

	assert.Equal(t, []domain.Clause{{Value: "B", Operator: domain.OpIncludes, Type: domain.TypeString}}, filter.State()["name"])
	assert.Equal(t, 1, table.FilteredCount())
}

func TestSearch_UsesScope(t *testing.T) {
	table := newTable(5, nil)
	search := directives.NewSearch(table, "name")
	var changed domain.SearchState
	search.OnSearchChange(func(s domain.SearchState) { changed = s })

	ports.Wait(t, search.Search("^[AB]$", directives.SearchOptions{Flags: "i"}))

	assert.Equal(t, domain.SearchState{Value: "^[AB]$", Scope: []string{"name"}, Flags: "i"}, changed)
	assert.Equal(t, 2, table.FilteredCount())

	ports.Wait(t, search.Search("", directives.SearchOptions{}))
	assert.Equal(t, 5, table.FilteredCount())
}

func TestPagination(t *testing.T) {
	table := newTable(7, &domain.TableState{Slice: domain.SliceState{Page: 1, Size: 3}})
	pagination := directives.NewPagination(table)

	assert.False(t, pagination.IsPreviousPageEnabled())
	assert.True(t, pagination.IsNextPageEnabled())

	ports.Wait(t, pagination.SelectNextPage())
	ports.Wait(t, pagination.SelectNextPage())
	assert.Equal(t, domain.Summary{Page: 3, Size: 3, FilteredCount: 7}, pagination.State())
	assert.True(t, pagination.IsPreviousPageEnabled())
	assert.False(t, pagination.IsNextPageEnabled())

	ports.Wait(t, pagination.SelectPreviousPage())
	assert.Equal(t, 2, table.GetTableState().Slice.Page)

	ports.Wait(t, pagination.ChangePageSize(10))
	assert.Equal(t, domain.SliceState{Page: 1, Size: 10}, table.GetTableState().Slice)
	assert.False(t, pagination.IsNextPageEnabled())

	ports.Wait(t, pagination.ChangePageSize(0))
	assert.Equal(t, domain.SliceState{Page: 1}, table.GetTableState().Slice)
}

func TestPagination_FollowsFilteredCount(t *testing.T) {
	table := newTable(10, &domain.TableState{Slice: domain.SliceState{Page: 1, Size: 4}})
	pagination := directives.NewPagination(table)
	var pages []domain.SliceState
	pagination.OnPageChange(func(s domain.SliceState) { pages = append(pages, s) })

	ports.Wait(t, table.Filter(domain.FilterState{"n": {{Value: 4, Operator: domain.OpLTE, Type: domain.TypeNumber}}}))

	assert.False(t, pagination.IsNextPageEnabled())
	assert.Equal(t, []domain.SliceState{{Page: 1, Size: 4}}, pages)
}

func TestSummaryAndWorkingIndicator(t *testing.T) {
	table := newTable(4, nil)
	summary := directives.NewSummary(table)
	working := directives.NewWorkingIndicator(table)

	var mu sync.Mutex
	var summaries []domain.Summary
	var states []bool
	summary.OnSummaryChange(func(s domain.Summary) {
		mu.Lock()
		summaries = append(summaries, s)
		mu.Unlock()
	})
	working.OnExecutionChange(func(w bool) {
		mu.Lock()
		states = append(states, w)
		mu.Unlock()
	})

	ports.Wait(t, table.Exec())

	mu.Lock()
	assert.Equal(t, []domain.Summary{{Page: 1, FilteredCount: 4}}, summaries)
	assert.Equal(t, []bool{true, false}, states)
	mu.Unlock()

	working.Off()
	summary.Off()
	ports.Wait(t, table.Exec())

	mu.Lock()
	defer mu.Unlock()
	assert.Len(t, states, 2)
	assert.Len(t, summaries, 1)
	assert.Equal(t, []domain.EventKind{domain.EventExecChanged}, working.Kinds())
}

func TestDebouncer(t *testing.T) {
	d := directives.NewDebouncer(10 * time.Millisecond)
	var mu sync.Mutex
	calls := 0
	run := func() <-chan struct{} {
		mu.Lock()
		calls++
		mu.Unlock()
		done := make(chan struct{})
		close(done)
		return done
	}

	first := d.Trigger(run)
	second := d.Trigger(run)
	ports.Wait(t, first)
	ports.Wait(t, second)

	third := d.Trigger(run)
	assert.True(t, d.Stop())
	ports.Wait(t, third)
	assert.False(t, d.Stop())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
