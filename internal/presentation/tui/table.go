package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/pointer"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// Markdown formats one page of a table as a GitHub-flavored markdown table,
// followed by a line describing the page.
// Each column is a pointer path into the records; with no columns, the keys of
// the first record are used when it is a map, the whole record otherwise.
func Markdown[T any](result ports.QueryResult[T], columns []string) string {
	if len(columns) == 0 {
		columns = Columns(domain.Values(result.Data))
	}

	var sb strings.Builder
	sb.WriteString("| # |")
	for _, col := range columns {
		sb.WriteString(" " + escapeCell(header(col)) + " |")
	}
	sb.WriteString("\n|---:|")
	for range columns {
		sb.WriteString("---|")
	}
	sb.WriteString("\n")

	for _, item := range result.Data {
		fmt.Fprintf(&sb, "| %d |", item.Index)
		for _, col := range columns {
			sb.WriteString(" " + escapeCell(cell(pointer.Get(item.Value, col))) + " |")
		}
		sb.WriteString("\n")
	}

	if len(result.Data) == 0 {
		sb.WriteString("\n_No matching records._\n")
	}
	fmt.Fprintf(&sb, "\n_%s_\n", PageLine(result.Summary))
	return sb.String()
}

// Columns returns the sorted keys of the first record when it is a map.
func Columns[T any](records []T) []string {
	if len(records) == 0 {
		return nil
	}
	m, ok := any(records[0]).(map[string]any)
	if !ok {
		return []string{""}
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// PageLine describes a summary, e.g. "Page 2 of 3, 12 matching".
func PageLine(s domain.Summary) string {
	return fmt.Sprintf("Page %d of %d, %d matching", s.Page, PageCount(s), s.FilteredCount)
}

// PageCount is the number of pages the filtered records span, at least one.
func PageCount(s domain.Summary) int {
	if s.Size <= 0 || s.FilteredCount == 0 {
		return 1
	}
	return (s.FilteredCount + s.Size - 1) / s.Size
}

func header(col string) string {
	if col == "" {
		return "value"
	}
	return col
}

func cell(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
