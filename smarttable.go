package smarttable

import (
	"context"
	"log/slog"
	"time"

	"github.com/smart-table/smart-table-server/internal/runtime"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/pipeline"
	"github.com/smart-table/smart-table-server/pkg/ports"
	"github.com/smart-table/smart-table-server/pkg/remote"
)

// Table is the public surface of a smart table.
type Table[T any] = ports.Table[T]

// Extension is a construction-time directive. It runs after the executor is
// installed, in the order the extensions were given.
type Extension[T any] = runtime.Extension[T]

type config[T any] struct {
	state      *domain.TableState
	factories  pipeline.Factories[T]
	logger     *slog.Logger
	ctx        context.Context
	delay      time.Duration
	executor   ports.ExecutorFactory[T]
	extensions []Extension[T]
}

// Option configures a Table.
type Option[T any] func(*config[T])

// WithState sets the initial table state. Missing parts keep their defaults.
func WithState[T any](state domain.TableState) Option[T] {
	return func(c *config[T]) {
		c.state = &state
	}
}

// WithFactories replaces some of the stage factories. Nil factories keep the defaults.
func WithFactories[T any](factories pipeline.Factories[T]) Option[T] {
	return func(c *config[T]) {
		c.factories = factories
	}
}

// WithLogger sets a structured logger for the table.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(c *config[T]) {
		c.logger = logger
	}
}

// WithContext sets the base context of every execution.
func WithContext[T any](ctx context.Context) Option[T] {
	return func(c *config[T]) {
		c.ctx = ctx
	}
}

// WithProcessingDelay sets the delay between the working notification and the
// computation of a local execution (default 20ms).
func WithProcessingDelay[T any](delay time.Duration) Option[T] {
	return func(c *config[T]) {
		c.delay = delay
	}
}

// WithRemoteExecution delegates every projection to query instead of running
// the pipeline over the local records.
func WithRemoteExecution[T any](query ports.QueryFunc[T]) Option[T] {
	return func(c *config[T]) {
		c.executor = remote.New(query)
	}
}

// WithExtensions appends construction-time directives.
func WithExtensions[T any](exts ...Extension[T]) Option[T] {
	return func(c *config[T]) {
		c.extensions = append(c.extensions, exts...)
	}
}

// New creates a table over data.
func New[T any](data []T, opts ...Option[T]) Table[T] {
	c := &config[T]{delay: domain.DefaultProcessingDelay}
	for _, opt := range opts {
		opt(c)
	}

	engineOpts := []runtime.EngineOption[T]{
		runtime.WithProcessingDelay[T](c.delay),
		runtime.WithExtensions(c.extensions...),
	}
	if c.logger != nil {
		engineOpts = append(engineOpts, runtime.WithLogger[T](c.logger))
	}
	if c.ctx != nil {
		engineOpts = append(engineOpts, runtime.WithContext[T](c.ctx))
	}
	if c.executor != nil {
		engineOpts = append(engineOpts, runtime.WithExecutor(c.executor))
	}

	return runtime.NewEngine(runtime.Config[T]{
		Factories: c.factories,
		State:     c.state,
		Data:      data,
	}, engineOpts...)
}
