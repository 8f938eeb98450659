// Package cli holds the logic behind the smarttable commands, kept apart from
// cobra so that it can be tested.
package cli

import (
	"context"
	"log/slog"
	"sync"

	smarttable "github.com/smart-table/smart-table-server"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/observability"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// Record is a row read from a data file.
type Record = map[string]any

// RunOptions configure a single table run.
type RunOptions struct {
	Logger *slog.Logger
	// Remote, when set, computes the run instead of the local pipeline.
	Remote ports.QueryFunc[Record]
}

// Run builds a table over records in state, executes it once and returns the
// displayed page and its summary, as a listener of the table would see them.
func Run(ctx context.Context, records []Record, state domain.TableState, opts RunOptions) (ports.QueryResult[Record], error) {
	tableOpts := []smarttable.Option[Record]{
		smarttable.WithState[Record](state),
		smarttable.WithContext[Record](ctx),
	}
	if opts.Logger != nil {
		tableOpts = append(tableOpts, smarttable.WithLogger[Record](opts.Logger))
	}
	if opts.Remote != nil {
		tableOpts = append(tableOpts, smarttable.WithRemoteExecution(opts.Remote))
	}
	table := smarttable.New(records, tableOpts...)
	defer table.Clear()

	if opts.Logger != nil {
		stop := observability.LogEvents(table, opts.Logger)
		defer stop()
	}

	var (
		mu     sync.Mutex
		result ports.QueryResult[Record]
		failed error
	)
	table.On(domain.EventDisplayChanged, func(e domain.Event) {
		mu.Lock()
		defer mu.Unlock()
		result.Data = e.(domain.DisplayChanged[Record]).Items
	})
	table.On(domain.EventSummaryChanged, func(e domain.Event) {
		mu.Lock()
		defer mu.Unlock()
		result.Summary = e.(domain.SummaryChanged).Summary
	})
	table.On(domain.EventExecError, func(e domain.Event) {
		mu.Lock()
		defer mu.Unlock()
		failed = e.(domain.ExecError).Err
	})

	select {
	case <-table.Exec():
	case <-ctx.Done():
		return ports.QueryResult[Record]{}, ctx.Err()
	}

	mu.Lock()
	defer mu.Unlock()
	if failed != nil {
		return ports.QueryResult[Record]{}, failed
	}
	if result.Data == nil {
		result.Data = []domain.DisplayItem[Record]{}
	}
	return result, nil
}
