package ports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Record is the record type used by the contract suites.
type Record = map[string]any

// TableFactory builds a table over data for a contract suite.
type TableFactory func(t *testing.T, data []Record) Table[Record]

// EventRecorder collects every event dispatched by a table. It is safe for concurrent use.
type EventRecorder struct {
	mu     sync.Mutex
	events []domain.Event
}

// Record subscribes the recorder to every event kind of bus.
func (r *EventRecorder) Record(bus Bus) *EventRecorder {
	for _, kind := range domain.EventKinds {
		bus.On(kind, func(e domain.Event) {
			r.mu.Lock()
			r.events = append(r.events, e)
			r.mu.Unlock()
		})
	}
	return r
}

// Events returns the events recorded so far.
func (r *EventRecorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Event(nil), r.events...)
}

// Kinds returns the kinds of the events recorded so far.
func (r *EventRecorder) Kinds() []domain.EventKind {
	recorded := r.Events()
	out := make([]domain.EventKind, len(recorded))
	for i, e := range recorded {
		out[i] = e.Kind()
	}
	return out
}

// Reset drops the recorded events.
func (r *EventRecorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Wait blocks until done is closed, failing the test after a few seconds.
func Wait(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("execution did not complete")
	}
}

// RunExecutorContract runs a suite of tests verifying that a table, whatever computes
// its projections, produces the observable behavior directives rely on.
func RunExecutorContract(t *testing.T, newTable TableFactory) {
	data := func() []Record {
		out := make([]Record, 5)
		for i := range out {
			out[i] = Record{"n": i + 1}
		}
		return out
	}

	t.Run("Exec Event Pairing", func(t *testing.T) {
		table := newTable(t, data())
		rec := new(EventRecorder).Record(table)

		Wait(t, table.Exec())

		kinds := rec.Kinds()
		require.Equal(t, []domain.EventKind{
			domain.EventExecChanged,
			domain.EventSummaryChanged,
			domain.EventDisplayChanged,
			domain.EventExecChanged,
		}, kinds)
		recorded := rec.Events()
		assert.Equal(t, domain.ExecChanged{Working: true}, recorded[0])
		assert.Equal(t, domain.ExecChanged{Working: false}, recorded[3])
		assert.Equal(t, domain.Summary{Page: 1, FilteredCount: 5}, recorded[1].(domain.SummaryChanged).Summary)
	})

	t.Run("Sort Resets Page", func(t *testing.T) {
		table := newTable(t, data())
		Wait(t, table.Slice(domain.SliceState{Page: 2, Size: 2}))
		rec := new(EventRecorder).Record(table)

		Wait(t, table.Sort(domain.SortState{Pointer: "n", Direction: domain.Desc}))

		assert.Equal(t, 1, table.GetTableState().Slice.Page)
		kinds := rec.Kinds()
		require.GreaterOrEqual(t, len(kinds), 2)
		assert.Equal(t, domain.EventToggleSort, kinds[0])
		assert.Equal(t, domain.EventPageChanged, kinds[1])

		var display domain.DisplayChanged[Record]
		for _, e := range rec.Events() {
			if d, ok := e.(domain.DisplayChanged[Record]); ok {
				display = d
			}
		}
		require.Len(t, display.Items, 2)
		assert.Equal(t, []Record{{"n": 5}, {"n": 4}}, domain.Values(display.Items))
		assert.Equal(t, 4, display.Items[0].Index)
		assert.Equal(t, 3, display.Items[1].Index)
	})

	t.Run("Filter Updates Filtered Count", func(t *testing.T) {
		table := newTable(t, data())
		assert.Equal(t, 5, table.FilteredCount())

		Wait(t, table.Filter(domain.FilterState{
			"n": {{Value: 3, Operator: domain.OpGTE, Type: domain.TypeNumber}},
		}))

		assert.Equal(t, 3, table.FilteredCount())
		assert.Equal(t, 5, table.Len())
	})

	t.Run("Eval Is Silent", func(t *testing.T) {
		table := newTable(t, data())
		rec := new(EventRecorder).Record(table)
		state := table.GetTableState()
		state.Slice = domain.SliceState{Page: 1, Size: 2}

		items, err := table.Eval(context.Background(), &state)

		require.NoError(t, err)
		assert.Equal(t, []Record{{"n": 1}, {"n": 2}}, domain.Values(items))
		assert.Empty(t, rec.Events())
		assert.Equal(t, 1, table.GetTableState().Slice.Page)
		assert.Zero(t, table.GetTableState().Slice.Size, "eval must not touch the engine state")
	})

	t.Run("Failure Is An Event", func(t *testing.T) {
		table := newTable(t, data())
		rec := new(EventRecorder).Record(table)

		Wait(t, table.Search(domain.SearchState{Value: "(", Scope: []string{"n"}}))

		kinds := rec.Kinds()
		assert.Equal(t, []domain.EventKind{
			domain.EventSearchChanged,
			domain.EventPageChanged,
			domain.EventExecChanged,
			domain.EventExecError,
			domain.EventExecChanged,
		}, kinds)
		recorded := rec.Events()
		assert.Equal(t, domain.ExecChanged{Working: false}, recorded[len(recorded)-1])
		assert.Error(t, recorded[3].(domain.ExecError).Err)
	})
}
