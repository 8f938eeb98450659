package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/smart-table/smart-table-server/internal/cli"
	httpadapter "github.com/smart-table/smart-table-server/pkg/adapters/http"
	"github.com/smart-table/smart-table-server/pkg/domain"
	"github.com/smart-table/smart-table-server/pkg/schema"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a table state against a data file",
	Long: `Loads records from a JSON or YAML file (or stdin with "-"), applies a table
state and prints the resulting page.

The state comes from --state and is overridden by the shortcut flags:

  smarttable eval --data people.json --sort age --desc --size 10 \
    --filter 'age:gte:number=30' --search '^a' --scope name --flags i

With --remote, the page is computed by a smarttable server instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}

		dataPath, _ := cmd.Flags().GetString("data")
		records, err := loadRecords(dataPath)
		if err != nil {
			return err
		}

		base := domain.DefaultTableState()
		if statePath, _ := cmd.Flags().GetString("state"); statePath != "" {
			if base, err = schema.LoadFile(statePath); err != nil {
				return err
			}
		}
		state, err := stateFlags(cmd).Apply(base)
		if err != nil {
			return err
		}

		opts := cli.RunOptions{Logger: logger}
		if remote, _ := cmd.Flags().GetString("remote"); remote != "" {
			opts.Remote = httpadapter.QueryFunc[cli.Record](httpadapter.NewClient(remote))
		}
		result, err := cli.Run(cmd.Context(), records, state, opts)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		columns, _ := cmd.Flags().GetStringSlice("columns")
		style, _ := cmd.Flags().GetString("style")
		out := cmd.OutOrStdout()
		return cli.Write(out, result, state, len(records), cli.OutputOptions{
			Format:  format,
			Columns: columns,
			TTY:     out == os.Stdout && term.IsTerminal(int(os.Stdout.Fd())),
			Style:   style,
			Profile: termenv.EnvColorProfile(),
		})
	},
}

func stateFlags(cmd *cobra.Command) cli.StateFlags {
	var f cli.StateFlags
	f.Sort, _ = cmd.Flags().GetString("sort")
	f.Desc, _ = cmd.Flags().GetBool("desc")
	f.Page, _ = cmd.Flags().GetInt("page")
	f.Size, _ = cmd.Flags().GetInt("size")
	f.Filters, _ = cmd.Flags().GetStringArray("filter")
	f.Search, _ = cmd.Flags().GetString("search")
	if cmd.Flags().Changed("scope") {
		f.Scope, _ = cmd.Flags().GetStringSlice("scope")
	}
	f.Flags, _ = cmd.Flags().GetString("flags")
	f.Escape, _ = cmd.Flags().GetBool("escape")
	return f
}

func loadRecords(path string) ([]cli.Record, error) {
	switch path {
	case "":
		return nil, fmt.Errorf("missing --data")
	case "-":
		return schema.ReadRecords(os.Stdin)
	default:
		return schema.LoadRecords(path)
	}
}

func init() {
	rootCmd.AddCommand(evalCmd)

	evalCmd.Flags().StringP("data", "d", "", "JSON or YAML file with a list of records, or - for stdin")
	evalCmd.Flags().String("state", "", "JSON or YAML file with a table state")
	evalCmd.Flags().String("remote", "", "Base URL of a smarttable server computing the page")

	evalCmd.Flags().String("sort", "", "Pointer of the field to sort by")
	evalCmd.Flags().Bool("desc", false, "Sort in descending order")
	evalCmd.Flags().Int("page", 0, "Page number, starting at 1")
	evalCmd.Flags().Int("size", 0, "Page size (-1 clears the size of --state)")
	evalCmd.Flags().StringArray("filter", nil, "Filter clause path[:operator[:type]]=value (repeatable)")
	evalCmd.Flags().String("search", "", "Regular expression to search for")
	evalCmd.Flags().StringSlice("scope", nil, "Field paths the search looks into")
	evalCmd.Flags().String("flags", "", "Search flags, e.g. i")
	evalCmd.Flags().Bool("escape", false, "Search for the literal text instead of a regular expression")

	evalCmd.Flags().StringP("format", "f", cli.FormatMarkdown, "Output format: md, json or mermaid")
	evalCmd.Flags().StringSlice("columns", nil, "Field paths to print as columns (markdown only)")
	evalCmd.Flags().String("style", "", "Glamour style for terminal output (default: detect)")
}
