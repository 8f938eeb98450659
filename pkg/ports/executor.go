package ports

import (
	"context"
	"log/slog"
	"time"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/pipeline"
)

// Bus is the subscription side of the engine event stream.
type Bus = events.Source[domain.EventKind, domain.Event]

// Dispatcher broadcasts an event to the listeners of its kind.
type Dispatcher interface {
	Dispatch(event domain.Event)
}

// ExecContext is what an executor may see of the engine it computes for.
type ExecContext[T any] interface {
	Dispatcher

	// Snapshot returns a detached copy of the current table state.
	Snapshot() domain.TableState
	// Data returns the source records. Executors must not modify them.
	Data() []T
	Factories() pipeline.Factories[T]
	// RecordMatches stores the items matched by the latest local run.
	RecordMatches(items []domain.DisplayItem[T])
	ProcessingDelay() time.Duration
	Logger() *slog.Logger
	// Context is the base context of the engine, handed to queries.
	Context() context.Context
}

// Executor computes the projections of an engine.
type Executor[T any] interface {
	// Exec notifies the start of a run synchronously, computes asynchronously and
	// notifies the outcome. The returned channel is closed once the run has ended.
	Exec(opts domain.ExecOptions) <-chan struct{}

	// Eval computes the displayed items for state without emitting events.
	Eval(ctx context.Context, state domain.TableState) ([]domain.DisplayItem[T], error)
}

// ExecutorFactory binds an executor to an engine.
type ExecutorFactory[T any] func(ec ExecContext[T]) Executor[T]

// QueryResult is the answer of a data source to a table state.
type QueryResult[T any] struct {
	Data    []domain.DisplayItem[T] `json:"data"`
	Summary domain.Summary          `json:"summary"`
}

// QueryFunc resolves a table state against a data source.
// A returned error becomes the payload of an EXEC_ERROR event.
type QueryFunc[T any] func(ctx context.Context, state domain.TableState) (QueryResult[T], error)
