package cli

import (
	"fmt"
	"strings"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/schema"
)

// StateFlags are the command line shortcuts for a table state.
// Set fields override the base state they are applied to.
type StateFlags struct {
	Sort    string
	Desc    bool
	Page    int
	Size    int
	Filters []string
	Search  string
	Scope   []string
	Flags   string
	Escape  bool
}

// Apply merges the flags into base and validates the result.
func (f StateFlags) Apply(base domain.TableState) (domain.TableState, error) {
	state := base.Clone()
	if state.Filter == nil {
		state.Filter = domain.FilterState{}
	}

	if f.Sort != "" {
		direction := domain.Asc
		if f.Desc {
			direction = domain.Desc
		}
		state.Sort = state.Sort.Merge(domain.SortState{Pointer: f.Sort, Direction: direction})
	}

	patch := domain.FilterState{}
	for _, expr := range f.Filters {
		path, clause, err := ParseFilter(expr)
		if err != nil {
			return domain.TableState{}, err
		}
		patch[path] = append(patch[path], clause)
	}
	state.Filter = state.Filter.Merge(patch)

	if f.Search != "" || f.Scope != nil || f.Flags != "" {
		value := f.Search
		if value == "" {
			value = state.Search.Value
		}
		state.Search = state.Search.Merge(domain.SearchState{
			Value:  value,
			Scope:  f.Scope,
			Flags:  f.Flags,
			Escape: f.Escape || state.Search.Escape,
		})
	}

	state.Slice = state.Slice.Merge(domain.SliceState{Page: f.Page, Size: f.Size})
	if state.Slice.Page == 0 {
		state.Slice.Page = 1
	}

	if err := schema.Validate(state); err != nil {
		return domain.TableState{}, err
	}
	return state, nil
}

// ParseFilter reads a filter flag of the form path[:operator[:type]]=value,
// e.g. "age:gte:number=30". The operator defaults to includes.
func ParseFilter(expr string) (string, domain.Clause, error) {
	lhs, value, ok := strings.Cut(expr, "=")
	if !ok {
		return "", domain.Clause{}, fmt.Errorf("invalid filter %q: expected path[:operator[:type]]=value", expr)
	}
	parts := strings.Split(lhs, ":")
	if len(parts) > 3 || parts[0] == "" {
		return "", domain.Clause{}, fmt.Errorf("invalid filter %q: expected path[:operator[:type]]=value", expr)
	}

	clause := domain.Clause{Value: value, Operator: domain.OpIncludes}
	if len(parts) > 1 && parts[1] != "" {
		clause.Operator = domain.Operator(parts[1])
	}
	if len(parts) > 2 {
		clause.Type = domain.ClauseType(parts[2])
	}
	if clause.Operator == domain.OpAnyOf {
		clause.Value = splitList(value)
	}
	return parts[0], clause, nil
}

func splitList(value string) []any {
	items := strings.Split(value, ",")
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = strings.TrimSpace(item)
	}
	return out
}
