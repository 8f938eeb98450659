package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/pipeline"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// LocalExecutor runs projections in process with the engine's pipeline factories.
func LocalExecutor[T any]() ports.ExecutorFactory[T] {
	return func(ec ports.ExecContext[T]) ports.Executor[T] {
		return &localExecutor[T]{ec: ec}
	}
}

type localExecutor[T any] struct {
	ec ports.ExecContext[T]
}

// Exec notifies the start, then computes after the processing delay on a timer
// goroutine. The state is read when the timer fires, not when Exec is called.
func (x *localExecutor[T]) Exec(opts domain.ExecOptions) <-chan struct{} {
	delay := opts.ProcessingDelay
	if delay <= 0 {
		delay = x.ec.ProcessingDelay()
	}
	logger := x.ec.Logger().With("exec_id", NewExecID())
	done := make(chan struct{})

	x.ec.Dispatch(domain.ExecChanged{Working: true})
	time.AfterFunc(delay, func() {
		defer close(done)
		defer SafeDispatch(x.ec, logger, domain.ExecChanged{Working: false})

		start := time.Now()
		if err := x.run(); err != nil {
			logger.Error("exec failed", "error", err)
			SafeDispatch(x.ec, logger, domain.ExecError{Err: err})
			return
		}
		logger.Debug("exec completed", "duration", time.Since(start))
	})
	return done
}

func (x *localExecutor[T]) run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", domain.ErrPipelinePanic, r)
		}
	}()

	p, err := pipeline.Build(x.ec.Factories(), x.ec.Snapshot())
	if err != nil {
		return err
	}
	items := p.Run(pipeline.Items(x.ec.Data()), func(matching []domain.DisplayItem[T]) {
		x.ec.RecordMatches(matching)
		x.ec.Dispatch(domain.SummaryChanged{Summary: p.Summarize(matching)})
	})
	x.ec.Dispatch(domain.DisplayChanged[T]{Items: items})
	return nil
}

// Eval runs the pipeline synchronously for state.
func (x *localExecutor[T]) Eval(ctx context.Context, state domain.TableState) ([]domain.DisplayItem[T], error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return pipeline.Eval(x.ec.Factories(), state, x.ec.Data())
}

// SafeDispatch dispatches from a background goroutine: a panicking listener is
// logged instead of crashing the process.
func SafeDispatch(d ports.Dispatcher, logger *slog.Logger, event domain.Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event listener panicked", "event", event.Kind().String(), "panic", r)
		}
	}()
	d.Dispatch(event)
}

// NewExecID returns a time-ordered identifier correlating the log lines of a run.
func NewExecID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
