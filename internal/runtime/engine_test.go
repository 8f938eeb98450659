package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/smart-table/smart-table-server/internal/runtime"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Record = ports.Record

func numbers(n int) []Record {
	out := make([]Record, n)
	for i := range out {
		out[i] = Record{"n": i + 1}
	}
	return out
}

func newEngine(data []Record, opts ...runtime.EngineOption[Record]) *runtime.Engine[Record] {
	opts = append([]runtime.EngineOption[Record]{runtime.WithProcessingDelay[Record](time.Millisecond)}, opts...)
	return runtime.NewEngine(runtime.Config[Record]{Data: data}, opts...)
}

func TestEngine_Contract(t *testing.T) {
	ports.RunExecutorContract(t, func(t *testing.T, data []Record) ports.Table[Record] {
		return newEngine(data)
	})
}

func TestEngine_SliceThenSortScenario(t *testing.T) {
	engine := newEngine(numbers(5))
	ctx := context.Background()

	ports.Wait(t, engine.Slice(domain.SliceState{Page: 1, Size: 2}))
	items, err := engine.Eval(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"n": 1}, {"n": 2}}, domain.Values(items))
	assert.Equal(t, 0, items[0].Index)
	assert.Equal(t, 1, items[1].Index)

	ports.Wait(t, engine.Sort(domain.SortState{Pointer: "n", Direction: domain.Desc}))
	items, err = engine.Eval(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"n": 5}, {"n": 4}}, domain.Values(items))
	assert.Equal(t, 4, items[0].Index)
	assert.Equal(t, 3, items[1].Index)
}

func TestEngine_PageResetInvariant(t *testing.T) {
	engine := newEngine(numbers(20))
	ports.Wait(t, engine.Slice(domain.SliceState{Page: 3, Size: 5}))
	require.Equal(t, 3, engine.GetTableState().Slice.Page)

	operations := map[string]func() <-chan struct{}{
		"sort":   func() <-chan struct{} { return engine.Sort(domain.SortState{Pointer: "n"}) },
		"filter": func() <-chan struct{} { return engine.Filter(domain.FilterState{"n": {{Value: 1, Operator: domain.OpGT, Type: domain.TypeNumber}}}) },
		"search": func() <-chan struct{} { return engine.Search(domain.SearchState{Value: "1", Scope: []string{"n"}}) },
	}
	for name, op := range operations {
		t.Run(name, func(t *testing.T) {
			ports.Wait(t, engine.Slice(domain.SliceState{Page: 2}))
			ports.Wait(t, op())

			state := engine.GetTableState()
			assert.Equal(t, 1, state.Slice.Page)
			assert.Equal(t, 5, state.Slice.Size, "the page size survives the reset")
		})
	}
}

func TestEngine_FilteredCount(t *testing.T) {
	engine := newEngine(numbers(5))
	assert.Equal(t, 5, engine.FilteredCount(), "before any run the count is the record count")

	ports.Wait(t, engine.Filter(domain.FilterState{"n": {{Value: 3, Operator: domain.OpGTE, Type: domain.TypeNumber}}}))
	assert.Equal(t, 3, engine.FilteredCount())
	assert.Equal(t, []Record{{"n": 3}, {"n": 4}, {"n": 5}}, engine.GetMatchingItems())

	engine.Dispatch(domain.SummaryChanged{Summary: domain.Summary{Page: 1, FilteredCount: 42}})
	assert.Equal(t, 42, engine.FilteredCount(), "an external summary overrides the count")
}

func TestEngine_FilteredCountSurvivesOff(t *testing.T) {
	engine := newEngine(numbers(5))
	engine.Off(domain.EventSummaryChanged)
	engine.Clear()

	engine.Dispatch(domain.SummaryChanged{Summary: domain.Summary{FilteredCount: 2}})

	assert.Equal(t, 2, engine.FilteredCount())
}

func TestEngine_GetTableStateIsDetached(t *testing.T) {
	engine := newEngine(numbers(3))
	ports.Wait(t, engine.Filter(domain.FilterState{"n": {{Value: 1, Operator: domain.OpIs}}}))

	state := engine.GetTableState()
	state.Filter["n"][0].Value = 99
	state.Filter["other"] = []domain.Clause{{Value: "x"}}
	state.Slice.Page = 7

	fresh := engine.GetTableState()
	assert.Equal(t, 1, fresh.Filter["n"][0].Value)
	assert.NotContains(t, fresh.Filter, "other")
	assert.Equal(t, 1, fresh.Slice.Page)
}

func TestEngine_FailingComparator(t *testing.T) {
	engine := newEngine(numbers(3))
	rec := new(ports.EventRecorder).Record(engine)

	done := engine.Sort(domain.SortState{
		Pointer:    "n",
		Direction:  domain.Asc,
		Comparator: func(a, b any) int { panic("bad comparator") },
	})
	ports.Wait(t, done)

	assert.Equal(t, []domain.EventKind{
		domain.EventToggleSort,
		domain.EventPageChanged,
		domain.EventExecChanged,
		domain.EventExecError,
		domain.EventExecChanged,
	}, rec.Kinds())
	execErr := rec.Events()[3].(domain.ExecError)
	assert.ErrorIs(t, execErr.Err, domain.ErrPipelinePanic)

	// The engine stays usable.
	rec.Reset()
	ports.Wait(t, engine.Sort(domain.SortState{Direction: domain.None}))
	assert.Contains(t, rec.Kinds(), domain.EventDisplayChanged)
}

func TestEngine_WorkingStartsSynchronously(t *testing.T) {
	engine := newEngine(numbers(3), runtime.WithProcessingDelay[Record](50*time.Millisecond))
	rec := new(ports.EventRecorder).Record(engine)

	done := engine.Exec()

	assert.Equal(t, []domain.Event{domain.ExecChanged{Working: true}}, rec.Events())
	ports.Wait(t, done)
	assert.Len(t, rec.Events(), 4)
}

func TestEngine_ExecOptionsOverrideDelay(t *testing.T) {
	engine := newEngine(numbers(3), runtime.WithProcessingDelay[Record](time.Hour))

	ports.Wait(t, engine.Exec(domain.ExecOptions{ProcessingDelay: time.Millisecond}))
}

func TestEngine_EvalPropagatesErrors(t *testing.T) {
	engine := newEngine(numbers(3))
	state := engine.GetTableState()
	state.Search = domain.SearchState{Value: "[", Scope: []string{"n"}}

	_, err := engine.Eval(context.Background(), &state)

	assert.ErrorIs(t, err, domain.ErrInvalidSearch)
}

func TestEngine_EvalHonorsCanceledContext(t *testing.T) {
	engine := newEngine(numbers(3))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.Eval(ctx, nil)

	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_InitialState(t *testing.T) {
	initial := domain.TableState{
		Sort:  domain.SortState{Pointer: "n", Direction: domain.Desc},
		Slice: domain.SliceState{Size: 2},
	}
	engine := runtime.NewEngine(runtime.Config[Record]{Data: numbers(5), State: &initial})

	initial.Sort.Pointer = "mutated"
	state := engine.GetTableState()
	assert.Equal(t, "n", state.Sort.Pointer, "the engine owns a copy of the initial state")
	assert.Equal(t, 1, state.Slice.Page)
	assert.NotNil(t, state.Filter)

	items, err := engine.Eval(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, []Record{{"n": 5}, {"n": 4}}, domain.Values(items))
	assert.Equal(t, 5, engine.Len())
}

type stubExecutor struct {
	execs int
}

func (s *stubExecutor) Exec(domain.ExecOptions) <-chan struct{} {
	s.execs++
	done := make(chan struct{})
	close(done)
	return done
}

func (s *stubExecutor) Eval(context.Context, domain.TableState) ([]domain.DisplayItem[Record], error) {
	return []domain.DisplayItem[Record]{{Index: 7, Value: Record{"stub": true}}}, nil
}

func TestEngine_WithExecutorAndExtensions(t *testing.T) {
	stub := &stubExecutor{}
	var order []string

	engine := newEngine(numbers(3),
		runtime.WithExecutor[Record](func(ports.ExecContext[Record]) ports.Executor[Record] { return stub }),
		runtime.WithExtensions[Record](
			func(table ports.Table[Record]) { order = append(order, "first") },
			func(table ports.Table[Record]) {
				order = append(order, "second")
				table.Exec()
			},
		),
	)

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, 1, stub.execs, "extensions run after the executor is installed")

	items, err := engine.Eval(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 7, items[0].Index)

	engine.Filter(domain.FilterState{})
	assert.Equal(t, 2, stub.execs)
}
