package domain

import "errors"

// ErrUnknownOperator is returned when a filter clause names an operator the filter stage does not know.
var ErrUnknownOperator = errors.New("unknown filter operator")

// ErrInvalidSearch is returned when the search criteria cannot be turned into a regular expression.
var ErrInvalidSearch = errors.New("invalid search expression")

// ErrPipelinePanic wraps a panic recovered while computing a projection (e.g. a faulty comparator).
var ErrPipelinePanic = errors.New("pipeline panic")

// ErrQueryFailed is returned when a remote query cannot be completed.
var ErrQueryFailed = errors.New("query failed")
