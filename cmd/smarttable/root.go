package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/smart-table/smart-table-server/internal/logging"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "smarttable",
	Short: "smarttable sorts, filters, searches and pages tabular records",
	Long: `smarttable evaluates table states (sort, filter, search and page) against
records read from a JSON or YAML file, and serves them over HTTP or MCP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")
}

// newLogger builds the stderr logger the persistent flags describe.
func newLogger(cmd *cobra.Command) (*slog.Logger, error) {
	name, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(name)
	if err != nil {
		return nil, err
	}
	asJSON, _ := cmd.Flags().GetBool("log-json")
	return logging.New(level, logging.WithWriter(os.Stderr), logging.WithJSON(asJSON)), nil
}
