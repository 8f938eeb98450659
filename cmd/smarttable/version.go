package main

import (
	"fmt"
	"strings"

	smarttable "github.com/smart-table/smart-table-server"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of smarttable",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "smarttable version %s\n", strings.TrimSpace(smarttable.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
