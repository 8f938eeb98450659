package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smart-table/smart-table-server/internal/logging"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/pipeline"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// Config holds what an engine is built from. Every field is optional.
type Config[T any] struct {
	Factories pipeline.Factories[T]
	State     *domain.TableState
	Data      []T
}

// Extension is a construction-time directive: it runs once the executor is
// installed and may subscribe to the engine or call its operations.
type Extension[T any] func(table ports.Table[T])

// Engine owns a table state and its source records. It updates the state through
// named operations, broadcasts the changes and delegates projections to its executor.
type Engine[T any] struct {
	emitter   *events.Emitter[domain.EventKind, domain.Event]
	factories pipeline.Factories[T]
	data      []T

	logger     *slog.Logger
	ctx        context.Context
	delay      time.Duration
	newExec    ports.ExecutorFactory[T]
	executor   ports.Executor[T]
	extensions []Extension[T]

	mu            sync.RWMutex
	state         domain.TableState
	filteredCount int
	matching      []domain.DisplayItem[T]
}

// NewEngine creates an engine. Without WithExecutor, projections run the local pipeline.
func NewEngine[T any](cfg Config[T], opts ...EngineOption[T]) *Engine[T] {
	state := domain.DefaultTableState()
	if cfg.State != nil {
		state = cfg.State.Clone()
		if state.Filter == nil {
			state.Filter = domain.FilterState{}
		}
		if state.Slice.Page < 1 {
			state.Slice.Page = 1
		}
	}

	e := &Engine[T]{
		emitter:       events.NewEmitter[domain.EventKind, domain.Event](),
		factories:     cfg.Factories.WithDefaults(),
		data:          cfg.Data,
		logger:        logging.NewNop(),
		ctx:           context.Background(),
		delay:         domain.DefaultProcessingDelay,
		newExec:       LocalExecutor[T](),
		state:         state,
		filteredCount: len(cfg.Data),
		matching:      pipeline.Items(cfg.Data),
	}
	for _, opt := range opts {
		opt(e)
	}

	e.trackSummary()

	e.executor = e.newExec(execContext[T]{e})
	for _, ext := range e.extensions {
		ext(e)
	}
	return e
}

// Sort merges criteria into the sort state, then re-anchors on the first page and executes.
func (e *Engine[T]) Sort(criteria domain.SortState) <-chan struct{} {
	e.mu.Lock()
	e.state.Sort = e.state.Sort.Merge(criteria)
	sort := e.state.Sort
	e.mu.Unlock()

	e.logger.Debug("sort changed", "pointer", sort.Pointer, "direction", sort.Direction)
	e.Dispatch(domain.SortToggled{Sort: sort})
	return e.firstPage()
}

// Filter merges criteria into the filter state, then re-anchors on the first page and executes.
func (e *Engine[T]) Filter(criteria domain.FilterState) <-chan struct{} {
	e.mu.Lock()
	e.state.Filter = e.state.Filter.Merge(criteria)
	filter := e.state.Filter.Clone()
	e.mu.Unlock()

	e.logger.Debug("filter changed", "paths", len(filter))
	e.Dispatch(domain.FilterChanged{Filter: filter})
	return e.firstPage()
}

// Search merges criteria into the search state, then re-anchors on the first page and executes.
func (e *Engine[T]) Search(criteria domain.SearchState) <-chan struct{} {
	e.mu.Lock()
	e.state.Search = e.state.Search.Merge(criteria)
	search := e.state.Clone().Search
	e.mu.Unlock()

	e.logger.Debug("search changed", "value", search.Value, "scope", search.Scope)
	e.Dispatch(domain.SearchChanged{Search: search})
	return e.firstPage()
}

// Slice merges criteria into the slice state and executes. It is the only
// operation that may move away from the first page.
func (e *Engine[T]) Slice(criteria domain.SliceState) <-chan struct{} {
	e.mu.Lock()
	e.state.Slice = e.state.Slice.Merge(criteria)
	slice := e.state.Slice
	e.mu.Unlock()

	e.logger.Debug("page changed", "page", slice.Page, "size", slice.Size)
	e.Dispatch(domain.PageChanged{Slice: slice})
	return e.Exec()
}

func (e *Engine[T]) firstPage() <-chan struct{} {
	e.mu.Lock()
	e.state.Slice = e.state.Slice.Merge(domain.SliceState{Page: 1})
	slice := e.state.Slice
	e.mu.Unlock()

	e.Dispatch(domain.PageChanged{Slice: slice})
	return e.Exec()
}

// Exec runs a projection of the current state through the executor.
// Options are merged in order; the last positive delay wins.
func (e *Engine[T]) Exec(opts ...domain.ExecOptions) <-chan struct{} {
	var merged domain.ExecOptions
	for _, o := range opts {
		if o.ProcessingDelay > 0 {
			merged.ProcessingDelay = o.ProcessingDelay
		}
	}
	return e.executor.Exec(merged)
}

// Eval computes the displayed items for state (the current state when nil)
// without touching the engine state nor emitting events.
func (e *Engine[T]) Eval(ctx context.Context, state *domain.TableState) ([]domain.DisplayItem[T], error) {
	target := e.GetTableState()
	if state != nil {
		target = state.Clone()
	}
	return e.executor.Eval(ctx, target)
}

// GetTableState returns a detached copy of the current state.
func (e *Engine[T]) GetTableState() domain.TableState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// GetMatchingItems returns the records matched by filter and search in the latest
// local run, in source order.
func (e *Engine[T]) GetMatchingItems() []T {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return domain.Values(e.matching)
}

// FilteredCount returns the count of the latest summary (the record count before any).
func (e *Engine[T]) FilteredCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filteredCount
}

// Len returns the number of source records.
func (e *Engine[T]) Len() int {
	return len(e.data)
}

// On subscribes fn to kind.
func (e *Engine[T]) On(kind domain.EventKind, fn events.Listener[domain.Event]) events.ListenerID {
	return e.emitter.On(kind, fn)
}

// Off removes the given listeners of kind, or all of them when no id is given.
func (e *Engine[T]) Off(kind domain.EventKind, ids ...events.ListenerID) {
	e.emitter.Off(kind, ids...)
	if kind == domain.EventSummaryChanged && len(ids) == 0 {
		e.trackSummary()
	}
}

// Clear removes every listener registered by consumers.
func (e *Engine[T]) Clear() {
	e.emitter.Clear()
	e.trackSummary()
}

// Dispatch broadcasts event to the listeners of its kind.
func (e *Engine[T]) Dispatch(event domain.Event) {
	e.emitter.Dispatch(event.Kind(), event)
}

// trackSummary keeps the filtered count in line with every summary, whoever computed it.
func (e *Engine[T]) trackSummary() {
	e.emitter.On(domain.EventSummaryChanged, func(ev domain.Event) {
		summary := ev.(domain.SummaryChanged).Summary
		e.mu.Lock()
		e.filteredCount = summary.FilteredCount
		e.mu.Unlock()
	})
}

// execContext is the view of the engine handed to executors.
type execContext[T any] struct {
	e *Engine[T]
}

func (c execContext[T]) Dispatch(event domain.Event) { c.e.Dispatch(event) }
func (c execContext[T]) Snapshot() domain.TableState { return c.e.GetTableState() }
func (c execContext[T]) Data() []T { return c.e.data }
func (c execContext[T]) Factories() pipeline.Factories[T] { return c.e.factories }
func (c execContext[T]) ProcessingDelay() time.Duration { return c.e.delay }
func (c execContext[T]) Logger() *slog.Logger { return c.e.logger }
func (c execContext[T]) Context() context.Context { return c.e.ctx }
func (c execContext[T]) RecordMatches(items []domain.DisplayItem[T]) {
	c.e.mu.Lock()
	c.e.matching = items
	c.e.mu.Unlock()
}

var _ ports.Table[any] = (*Engine[any])(nil)
