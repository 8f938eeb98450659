package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/smart-table/smart-table-server/internal/cli"
	mcpadapter "github.com/smart-table/smart-table-server/pkg/adapters/mcp"
	"github.com/smart-table/smart-table-server/pkg/adapters/memory"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Serves the records of a data file as an MCP server with a query_table tool,
so that AI agents can sort, filter, search and page them.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd)
		if err != nil {
			return err
		}
		dataPath, _ := cmd.Flags().GetString("data")
		transport, _ := cmd.Flags().GetString("transport")
		port, _ := cmd.Flags().GetInt("port")

		records, err := loadRecords(dataPath)
		if err != nil {
			return err
		}
		source := memory.NewSource(records, memory.WithLogger[cli.Record](logger))
		srv := mcpadapter.NewServer(source.QueryFunc(), mcpadapter.WithLogger(logger))

		switch transport {
		case "stdio":
			// Ensure logs don't corrupt JSON-RPC on Stdout
			log.SetOutput(os.Stderr)
			logger.Info("starting smarttable MCP server (stdio)", "records", source.Len())
			return srv.ServeStdio()
		case "sse":
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := fmt.Sprintf(":%d", port)
			if err := srv.ServeSSE(ctx, addr, fmt.Sprintf("http://localhost:%d", port)); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().StringP("data", "d", "", "JSON or YAML file with a list of records, or - for stdin")
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().Int("port", 8080, "Port to listen on (only for SSE)")
}
