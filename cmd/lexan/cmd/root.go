package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/msto63/lexan/pkg/analyzer"
	"github.com/msto63/lexan/pkg/core/config"
	"github.com/msto63/lexan/pkg/core/logging"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	appConfig = config.Default()
	closeLog  = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "lexan",
	Short: "lexan - lexical and syntax analyzer",
	Long: `lexan tokenizes and parses small arithmetic programs.

A program is a list of statements separated by ';'. A statement is either
an assignment "name = expression" or a bare expression. Expressions use
numbers, previously assigned names, parentheses and the operators
+ - * / ^.

Commands:
  tokenize  - print the token stream
  parse     - print the parse tree
  tui       - interactive terminal shell
  serve     - HTTP, WebSocket and gRPC server`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			printError(err)
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $LEXAN_CONFIG or ./configs/lexan.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup loads the configuration and installs the log handler
func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Resolve(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	appConfig = cfg

	logCfg := logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		File:    cfg.Log.File,
		Journal: cfg.Log.Journal,
		Output:  cmd.ErrOrStderr(),
	}
	if verbose {
		logCfg.Level = "debug"
	}

	closeFn, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	closeLog = closeFn
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	return closeLog()
}

// newAnalyzer creates an analyzer using the loaded configuration
func newAnalyzer() *analyzer.Analyzer {
	return analyzer.New(analyzer.Options{
		MaxInputLength: appConfig.Analyzer.MaxInputLength,
		CacheSize:      appConfig.Analyzer.CacheSize,
		CacheTTL:       appConfig.Analyzer.CacheTTL.Duration,
	})
}

// reportedError marks an error that a command already printed
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error {
	return e.error
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
