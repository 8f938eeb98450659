// Package remote delegates the projections of an engine to a query function,
// typically backed by a server.
//
// Observers cannot tell a remote engine from a local one: every execution emits
// EXEC_CHANGED(true), then SUMMARY_CHANGED and DISPLAY_CHANGED on success or
// EXEC_ERROR on failure, then EXEC_CHANGED(false).
package remote

import (
	"context"
	"fmt"
	"time"

	"github.com/smart-table/smart-table-server/internal/runtime"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// New returns an executor factory sending the engine state to query.
func New[T any](query ports.QueryFunc[T]) ports.ExecutorFactory[T] {
	return func(ec ports.ExecContext[T]) ports.Executor[T] {
		return &executor[T]{ec: ec, query: query}
	}
}

type executor[T any] struct {
	ec    ports.ExecContext[T]
	query ports.QueryFunc[T]
}

// Exec notifies the start synchronously and runs the query on its own goroutine.
// The state is snapshotted at call time. Processing delays do not apply.
func (x *executor[T]) Exec(domain.ExecOptions) <-chan struct{} {
	state := x.ec.Snapshot()
	logger := x.ec.Logger().With("exec_id", runtime.NewExecID())
	done := make(chan struct{})

	x.ec.Dispatch(domain.ExecChanged{Working: true})
	go func() {
		defer close(done)
		defer runtime.SafeDispatch(x.ec, logger, domain.ExecChanged{Working: false})

		start := time.Now()
		result, err := x.call(x.ec.Context(), state)
		if err != nil {
			logger.Error("remote exec failed", "error", err)
			runtime.SafeDispatch(x.ec, logger, domain.ExecError{Err: err})
			return
		}
		logger.Debug("remote exec completed", "duration", time.Since(start), "filtered_count", result.Summary.FilteredCount)
		runtime.SafeDispatch(x.ec, logger, domain.SummaryChanged{Summary: result.Summary})
		runtime.SafeDispatch(x.ec, logger, domain.DisplayChanged[T]{Items: result.Data})
	}()
	return done
}

// Eval passes state to the query and returns only its data.
func (x *executor[T]) Eval(ctx context.Context, state domain.TableState) ([]domain.DisplayItem[T], error) {
	result, err := x.call(ctx, state)
	if err != nil {
		return nil, err
	}
	return result.Data, nil
}

func (x *executor[T]) call(ctx context.Context, state domain.TableState) (result ports.QueryResult[T], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrPipelinePanic, r)
		}
	}()
	return x.query(ctx, state)
}
