package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ValidationError represents a single table-state validation failure.
type ValidationError struct {
	Path   string // Pointer to the offending part, e.g. "filter.age[0].operator"
	Reason string // Human-readable reason for failure
	Value  any    // The value that failed validation
	Err    error  // Underlying cause, if any
}

func (e *ValidationError) Error() string {
	if e.Value == nil {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return fmt.Sprintf("%s: %s (got %v)", e.Path, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// AggregateError represents multiple validation failures.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, err.Error())
	}
	return b.String()
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// ValidationErrors returns all validation errors if err is an AggregateError.
// Otherwise returns nil.
func ValidationErrors(err error) []error {
	var aggr *AggregateError
	if errors.As(err, &aggr) {
		return aggr.Errors
	}
	return nil
}
