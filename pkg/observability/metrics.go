package observability

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// Collector records table activity as Prometheus metrics. One collector can
// watch several tables, told apart by the "table" label.
type Collector struct {
	events        *prometheus.CounterVec
	executions    *prometheus.CounterVec
	failures      *prometheus.CounterVec
	inFlight      *prometheus.GaugeVec
	duration      *prometheus.HistogramVec
	filteredCount *prometheus.GaugeVec
}

// NewCollector creates the metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smarttable_events_total",
			Help: "Table events dispatched, by kind.",
		}, []string{"table", "kind"}),
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smarttable_executions_total",
			Help: "Executions completed, successful or not.",
		}, []string{"table"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "smarttable_execution_errors_total",
			Help: "Executions that ended with an error.",
		}, []string{"table"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smarttable_executions_in_flight",
			Help: "Executions started and not yet ended.",
		}, []string{"table"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "smarttable_execution_duration_seconds",
			Help:    "Time from the working notification to the end of an execution.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"table"}),
		filteredCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "smarttable_filtered_count",
			Help: "Records matching filter and search in the latest summary.",
		}, []string{"table"}),
	}
	reg.MustRegister(c.events, c.executions, c.failures, c.inFlight, c.duration, c.filteredCount)
	return c
}

// Attach starts recording the events of bus under the given table name.
// The returned function stops recording.
func (c *Collector) Attach(bus ports.Bus, table string) (detach func()) {
	var mu sync.Mutex
	// Start times of the executions in flight, oldest first.
	var started []time.Time

	record := func(e domain.Event) {
		c.events.WithLabelValues(table, e.Kind().String()).Inc()

		switch ev := e.(type) {
		case domain.ExecChanged:
			mu.Lock()
			defer mu.Unlock()
			if ev.Working {
				started = append(started, time.Now())
				c.inFlight.WithLabelValues(table).Inc()
				return
			}
			if len(started) == 0 {
				return
			}
			c.duration.WithLabelValues(table).Observe(time.Since(started[0]).Seconds())
			started = started[1:]
			c.inFlight.WithLabelValues(table).Dec()
			c.executions.WithLabelValues(table).Inc()
		case domain.ExecError:
			c.failures.WithLabelValues(table).Inc()
		case domain.SummaryChanged:
			c.filteredCount.WithLabelValues(table).Set(float64(ev.Summary.FilteredCount))
		}
	}

	ids := make(map[domain.EventKind]events.ListenerID, len(domain.EventKinds))
	for _, kind := range domain.EventKinds {
		ids[kind] = bus.On(kind, record)
	}
	return func() {
		for kind, id := range ids {
			bus.Off(kind, id)
		}
	}
}

// Instrument wraps a query function so that each call is recorded as one
// execution of the named table, the way an engine reports its runs.
func Instrument[T any](c *Collector, table string, query ports.QueryFunc[T]) ports.QueryFunc[T] {
	bus := events.NewEmitter[domain.EventKind, domain.Event]()
	c.Attach(bus, table)
	emit := func(e domain.Event) { bus.Dispatch(e.Kind(), e) }

	return func(ctx context.Context, state domain.TableState) (ports.QueryResult[T], error) {
		emit(domain.ExecChanged{Working: true})
		defer emit(domain.ExecChanged{Working: false})

		result, err := query(ctx, state)
		if err != nil {
			emit(domain.ExecError{Err: err})
			return result, err
		}
		emit(domain.SummaryChanged{Summary: result.Summary})
		return result, nil
	}
}
