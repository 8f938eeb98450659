package domain

import "time"

const (
	// Unbounded is the slice size that clears a previously set page size when merged.
	// A stored Size of 0 means "no size": the whole result set is a single page.
	Unbounded = -1

	// DefaultProcessingDelay is the scheduling delay between the "exec started"
	// notification and the pipeline run of the local executor.
	DefaultProcessingDelay = 20 * time.Millisecond
)

// ExecOptions tunes a single execution.
type ExecOptions struct {
	// ProcessingDelay overrides the engine default when greater than zero.
	ProcessingDelay time.Duration
}
