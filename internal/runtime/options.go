package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/smart-table/smart-table-server/pkg/ports"
)

// EngineOption configures an Engine.
type EngineOption[T any] func(*Engine[T])

// WithLogger sets the logger of the engine and of its executor.
func WithLogger[T any](logger *slog.Logger) EngineOption[T] {
	return func(e *Engine[T]) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProcessingDelay sets the delay between the start notification of a local
// run and its computation.
func WithProcessingDelay[T any](delay time.Duration) EngineOption[T] {
	return func(e *Engine[T]) {
		e.delay = delay
	}
}

// WithExecutor replaces the local pipeline with the executor built by factory.
// This is how projections are delegated to a remote data source.
func WithExecutor[T any](factory ports.ExecutorFactory[T]) EngineOption[T] {
	return func(e *Engine[T]) {
		if factory != nil {
			e.newExec = factory
		}
	}
}

// WithContext sets the base context handed to executors (queries derive from it).
func WithContext[T any](ctx context.Context) EngineOption[T] {
	return func(e *Engine[T]) {
		if ctx != nil {
			e.ctx = ctx
		}
	}
}

// WithExtensions appends construction-time directives, run in order.
func WithExtensions[T any](exts ...Extension[T]) EngineOption[T] {
	return func(e *Engine[T]) {
		e.extensions = append(e.extensions, exts...)
	}
}
