package observability

import (
	"log/slog"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// LogEvents writes every event of bus to logger: failures at error level,
// summaries at info level and everything else at debug level.
// The returned function stops logging.
func LogEvents(bus ports.Bus, logger *slog.Logger) (stop func()) {
	log := func(e domain.Event) {
		kind := slog.String("kind", e.Kind().String())
		switch ev := e.(type) {
		case domain.ExecError:
			logger.Error("table execution failed", kind, slog.Any("error", ev.Err))
		case domain.SummaryChanged:
			logger.Info("table summary",
				kind,
				slog.Int("page", ev.Summary.Page),
				slog.Int("size", ev.Summary.Size),
				slog.Int("filtered_count", ev.Summary.FilteredCount),
			)
		case domain.ExecChanged:
			logger.Debug("table event", kind, slog.Bool("working", ev.Working))
		case domain.SortToggled:
			logger.Debug("table event", kind, slog.String("pointer", ev.Sort.Pointer), slog.String("direction", string(ev.Sort.Direction)))
		case domain.PageChanged:
			logger.Debug("table event", kind, slog.Int("page", ev.Slice.Page), slog.Int("size", ev.Slice.Size))
		default:
			logger.Debug("table event", kind)
		}
	}

	ids := make(map[domain.EventKind]events.ListenerID, len(domain.EventKinds))
	for _, kind := range domain.EventKinds {
		ids[kind] = bus.On(kind, log)
	}
	return func() {
		for kind, id := range ids {
			bus.Off(kind, id)
		}
	}
}
