package directives

import (
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/events"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// SummaryDirective exposes execution summaries.
type SummaryDirective struct {
	listeners
}

// NewSummary creates a summary directive over bus.
func NewSummary(bus ports.Bus) *SummaryDirective {
	return &SummaryDirective{listeners: newListeners(bus, domain.EventSummaryChanged)}
}

// OnSummaryChange subscribes to summaries.
func (d *SummaryDirective) OnSummaryChange(fn func(domain.Summary)) events.ListenerID {
	return on(d.listeners, domain.EventSummaryChanged, func(e domain.SummaryChanged) { fn(e.Summary) })
}

// WorkingIndicatorDirective exposes the working state of executions.
type WorkingIndicatorDirective struct {
	listeners
}

// NewWorkingIndicator creates a working indicator directive over bus.
func NewWorkingIndicator(bus ports.Bus) *WorkingIndicatorDirective {
	return &WorkingIndicatorDirective{listeners: newListeners(bus, domain.EventExecChanged)}
}

// OnExecutionChange subscribes to working state changes.
func (d *WorkingIndicatorDirective) OnExecutionChange(fn func(working bool)) events.ListenerID {
	return on(d.listeners, domain.EventExecChanged, func(e domain.ExecChanged) { fn(e.Working) })
}
