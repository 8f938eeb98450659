package schema

import (
	"fmt"
	"sort"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/pipeline"
)

var clauseTypes = map[domain.ClauseType]bool{
	"":                 true,
	domain.TypeString:  true,
	domain.TypeNumber:  true,
	domain.TypeBoolean: true,
	domain.TypeDate:    true,
}

// Validate checks a table state before it is handed to an engine or a query.
// Returns an AggregateError with all failures found.
func Validate(state domain.TableState) error {
	var errs []error
	fail := func(path, reason string, value any) {
		errs = append(errs, &ValidationError{Path: path, Reason: reason, Value: value})
	}

	switch state.Sort.Direction {
	case "", domain.Asc, domain.Desc, domain.None:
	default:
		fail("sort.direction", "unknown direction", state.Sort.Direction)
	}

	// Map order is random; keep reports stable.
	paths := make([]string, 0, len(state.Filter))
	for path := range state.Filter {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	for _, path := range paths {
		for i, clause := range state.Filter[path] {
			at := fmt.Sprintf("filter.%s[%d]", path, i)
			if !pipeline.HasOperator(clause.Operator) {
				fail(at+".operator", "unknown operator", clause.Operator)
			}
			if !clauseTypes[clause.Type] {
				fail(at+".type", "unknown type", clause.Type)
			}
		}
	}

	if state.Search.Value != "" {
		if _, err := pipeline.Compile(state.Search); err != nil {
			errs = append(errs, &ValidationError{Path: "search.value", Reason: err.Error(), Err: err})
		}
	}

	if state.Slice.Page < 0 {
		fail("slice.page", "must not be negative", state.Slice.Page)
	}
	if state.Slice.Size < 0 && state.Slice.Size != domain.Unbounded {
		fail("slice.size", "must not be negative", state.Slice.Size)
	}

	if len(errs) > 0 {
		return &AggregateError{Errors: errs}
	}
	return nil
}
