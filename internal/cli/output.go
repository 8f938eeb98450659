package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/muesli/termenv"
	"github.com/smart-table/smart-table-server/internal/presentation/graph"
	"github.com/smart-table/smart-table-server/internal/presentation/tui"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/ports"
)

// Output formats.
const (
	FormatMarkdown = "md"
	FormatJSON     = "json"
	FormatMermaid  = "mermaid"
)

// OutputOptions select how a result is written.
type OutputOptions struct {
	Format  string
	Columns []string
	// TTY renders markdown for the terminal instead of writing it raw.
	TTY   bool
	Style string
	// Profile is the color profile of the status line, for TTY output.
	Profile termenv.Profile
}

// Write formats a result to w. The state and record count feed the mermaid format.
func Write(w io.Writer, result ports.QueryResult[Record], state domain.TableState, total int, opts OutputOptions) error {
	switch opts.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	case FormatMermaid:
		_, err := io.WriteString(w, graph.GenerateMermaid(state, &graph.PipelineOverlay{Total: total, Summary: result.Summary}))
		return err
	case FormatMarkdown, "":
		md := tui.Markdown(result, opts.Columns)
		if !opts.TTY {
			_, err := io.WriteString(w, md)
			return err
		}
		render, err := tui.NewRenderer(opts.Style)
		if err != nil {
			return err
		}
		out, err := render(md)
		if err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		_, err = fmt.Fprintf(w, "%s%s\n", out, tui.StatusLine(opts.Profile, result.Summary, false))
		return err
	default:
		return fmt.Errorf("unknown format %q: expected %s, %s or %s", opts.Format, FormatMarkdown, FormatJSON, FormatMermaid)
	}
}
