package cmd

import (
	"fmt"
	"os"

	"github.com/msto63/lexan/internal/tui"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Start the interactive terminal shell",
	Long: `Starts the terminal shell of lexan.

Keys:
  Ctrl+T    - tokenize the input
  Ctrl+P    - parse the input
  Ctrl+L    - clear input and output
  Esc       - quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runProgram starts the terminal program
var runProgram = tui.Run

func runTUI(cmd *cobra.Command, args []string) error {
	a := newAnalyzer()
	defer a.Close()

	err := runProgram(tui.Options{
		Analyzer:    a,
		InputHeight: appConfig.TUI.InputHeight,
		TreeFormat:  appConfig.TUI.TreeFormat,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return reportedError{err}
	}
	return nil
}
