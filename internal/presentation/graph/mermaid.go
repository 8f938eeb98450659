package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/smart-table/smart-table-server/pkg/domain"
)

// PipelineOverlay carries the outcome of a run to annotate the diagram with.
type PipelineOverlay struct {
	Total   int
	Summary domain.Summary
}

// GenerateMermaid produces a Mermaid flowchart of the stages a table state
// applies, in execution order: filter, search, sort, slice.
// Inactive stages are drawn with a dashed outline. Filter clauses become
// one subroutine node per field path.
// The overlay, when given, labels the edges with record counts.
func GenerateMermaid(state domain.TableState, overlay *PipelineOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	sb.WriteString("    source((\"source\"))\n")

	prev := "source"
	edge := func(to, label string) {
		if label == "" {
			fmt.Fprintf(&sb, "    %s --> %s\n", prev, to)
		} else {
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", prev, escape(label), to)
		}
		prev = to
	}

	var inactive []string
	sourceLabel := ""
	if overlay != nil {
		sourceLabel = fmt.Sprintf("%d records", overlay.Total)
	}

	// Filter
	paths := make([]string, 0, len(state.Filter))
	for path, clauses := range state.Filter {
		if len(clauses) > 0 {
			paths = append(paths, path)
		}
	}
	slices.Sort(paths)
	if len(paths) == 0 {
		sb.WriteString("    filter[\"filter\"]\n")
		edge("filter", sourceLabel)
		inactive = append(inactive, "filter")
	} else {
		for i, path := range paths {
			id := "filter_" + sanitizeMermaidID(path)
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", id, escape(path+": "+describeClauses(state.Filter[path])))
			label := ""
			if i == 0 {
				label = sourceLabel
			}
			edge(id, label)
		}
	}

	// Search
	if state.Search.Value == "" {
		sb.WriteString("    search[\"search\"]\n")
		inactive = append(inactive, "search")
	} else {
		label := "/" + state.Search.Value + "/" + state.Search.Flags
		if len(state.Search.Scope) > 0 {
			label += " in " + strings.Join(state.Search.Scope, ", ")
		}
		fmt.Fprintf(&sb, "    search[/\"%s\"/]\n", escape(label))
	}
	edge("search", "")

	// Sort
	if state.Sort.Pointer == "" || state.Sort.Direction == domain.None || state.Sort.Direction == "" {
		sb.WriteString("    sort[\"sort\"]\n")
		inactive = append(inactive, "sort")
	} else {
		fmt.Fprintf(&sb, "    sort[\"%s\"]\n", escape(fmt.Sprintf("sort %s %s", state.Sort.Pointer, state.Sort.Direction)))
	}
	matched := ""
	if overlay != nil {
		matched = fmt.Sprintf("%d matching", overlay.Summary.FilteredCount)
	}
	edge("sort", matched)

	// Slice
	if state.Slice.Size <= 0 {
		sb.WriteString("    slice[\"slice\"]\n")
		inactive = append(inactive, "slice")
	} else {
		fmt.Fprintf(&sb, "    slice[\"page %d, size %d\"]\n", max(state.Slice.Page, 1), state.Slice.Size)
	}
	edge("slice", "")

	sb.WriteString("    view((\"view\"))\n")
	edge("view", "")

	if len(inactive) > 0 {
		sb.WriteString("\n    classDef inactive stroke-dasharray: 5 5,color:#888;\n")
		for _, id := range inactive {
			fmt.Fprintf(&sb, "    class %s inactive;\n", id)
		}
	}

	return sb.String()
}

func describeClauses(clauses []domain.Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		op := c.Operator
		if op == "" {
			op = domain.OpIncludes
		}
		parts[i] = fmt.Sprintf("%s %v", op, c.Value)
	}
	return strings.Join(parts, " and ")
}

// Double quotes would end the Mermaid label.
func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
