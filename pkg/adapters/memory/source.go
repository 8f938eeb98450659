// Package memory answers table queries from records held in memory.
// It is the data source behind the HTTP and MCP servers, and a stand-in for a
// remote server in tests.
package memory

import (
	"context"
	"log/slog"
	"time"

	"github.com/smart-table/smart-table-server/internal/logging"
	"github.com/smart-table/smart-table-server/internal/runtime"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/pipeline"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// Source evaluates table states against a fixed set of records.
// Safe for concurrent use.
type Source[T any] struct {
	engine    *runtime.Engine[T]
	latency   time.Duration
	logger    *slog.Logger
	factories pipeline.Factories[T]
}

// Option configures a Source.
type Option[T any] func(*Source[T])

// WithLatency delays every answer, to mimic a network round trip.
func WithLatency[T any](d time.Duration) Option[T] {
	return func(s *Source[T]) {
		s.latency = d
	}
}

// WithFactories replaces the pipeline factories used to evaluate queries.
func WithFactories[T any](f pipeline.Factories[T]) Option[T] {
	return func(s *Source[T]) {
		s.factories = f
	}
}

// WithLogger configures a logger for the Source.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(s *Source[T]) {
		s.logger = logger
	}
}

// NewSource creates a source over data. The records are not copied.
func NewSource[T any](data []T, opts ...Option[T]) *Source[T] {
	s := &Source[T]{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	s.engine = runtime.NewEngine(
		runtime.Config[T]{Data: data, Factories: s.factories},
		runtime.WithLogger[T](s.logger),
	)
	return s
}

// Query answers state with the requested page and a summary whose filtered
// count is the size of the unsliced result.
func (s *Source[T]) Query(ctx context.Context, state domain.TableState) (ports.QueryResult[T], error) {
	if s.latency > 0 {
		select {
		case <-time.After(s.latency):
		case <-ctx.Done():
			return ports.QueryResult[T]{}, ctx.Err()
		}
	}

	page, err := s.engine.Eval(ctx, &state)
	if err != nil {
		return ports.QueryResult[T]{}, err
	}
	unsliced := state.Unsliced()
	all, err := s.engine.Eval(ctx, &unsliced)
	if err != nil {
		return ports.QueryResult[T]{}, err
	}

	s.logger.Debug("query answered", "page", state.Slice.Page, "size", state.Slice.Size, "filtered_count", len(all))
	return ports.QueryResult[T]{
		Data: page,
		Summary: domain.Summary{
			Page:          state.Slice.Page,
			Size:          state.Slice.Size,
			FilteredCount: len(all),
		},
	}, nil
}

// QueryFunc exposes Query as a query function for remote executors and servers.
func (s *Source[T]) QueryFunc() ports.QueryFunc[T] {
	return s.Query
}

// Len returns the number of records.
func (s *Source[T]) Len() int {
	return s.engine.Len()
}
