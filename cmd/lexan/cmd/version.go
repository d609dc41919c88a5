package cmd

import (
	"fmt"

	"github.com/msto63/lexan/pkg/core/version"
	"github.com/spf13/cobra"
)

// components are listed by the version command
var components = []string{"lexer", "parser", "server", "rpc", "tui"}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.String())
		for _, name := range components {
			fmt.Fprintf(out, "  %-7s %s\n", name+":", version.ServiceVersion(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
