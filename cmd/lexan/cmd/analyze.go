package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/msto63/lexan/internal/rpc"
	"github.com/msto63/lexan/pkg/analyzer"
	coregrpc "github.com/msto63/lexan/pkg/core/grpc"
	"github.com/msto63/lexan/pkg/render"
	"github.com/spf13/cobra"
)

var (
	inputFile    string
	outputFormat string
	remoteAddr   string
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [text]",
	Short: "Print the tokens of a program",
	Long: `Splits a program into tokens and prints one token per line.

The program is read from the arguments, from --file, or from stdin.

Examples:
  lexan tokenize "x = 3.14 + 2"
  lexan tokenize --file prog.lx --format json
  lexan tokenize --remote localhost:9091 "a * 2"
  echo "a = 1; a * 2" | lexan tokenize`,
	RunE: runTokenize,
}

var parseCmd = &cobra.Command{
	Use:   "parse [text]",
	Short: "Print the parse tree of a program",
	Long: `Parses a program and prints its parse tree.

Formats:
  text   - one line per statement with explicit parentheses
  tree   - indented tree
  tuple  - nested tuples, e.g. ('STMT', x, ('EXPR', 2, '+', 3))
  json   - JSON document
  yaml   - YAML document

Examples:
  lexan parse "x = (2 + 3) * 4; x ^ 2"
  lexan parse --format tuple --file prog.lx`,
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)

	for _, c := range []*cobra.Command{tokenizeCmd, parseCmd} {
		c.Flags().StringVarP(&inputFile, "file", "f", "", "read the program from a file")
		c.Flags().StringVarP(&outputFormat, "format", "o", "", "output format: "+strings.Join(render.Formats, "|")+" (default from config)")
		c.Flags().StringVar(&remoteAddr, "remote", "", "analyze on the lexan gRPC service at host:port")
	}
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat()
	if err != nil {
		return err
	}
	if format == render.FormatTree || format == render.FormatTuple {
		format = render.FormatText
	}

	source, err := getInputText(cmd, args)
	if err != nil {
		return err
	}

	res, err := analyze(cmd.Context(), source, false)
	if err != nil {
		return reportAnalysisError(cmd, format, err)
	}

	if format == render.FormatText {
		return render.Tokens(cmd.OutOrStdout(), res.Tokens)
	}
	return render.Encode(cmd.OutOrStdout(), format, res.Tokens)
}

func runParse(cmd *cobra.Command, args []string) error {
	format, err := resolveFormat()
	if err != nil {
		return err
	}

	source, err := getInputText(cmd, args)
	if err != nil {
		return err
	}

	res, err := analyze(cmd.Context(), source, true)
	if err != nil {
		return reportAnalysisError(cmd, format, err)
	}

	switch format {
	case render.FormatJSON, render.FormatYAML:
		return render.Encode(cmd.OutOrStdout(), format, res)
	default:
		return render.Program(cmd.OutOrStdout(), format, res.Program)
	}
}

// analyze tokenizes or parses source, locally or on the --remote service
func analyze(ctx context.Context, source string, parse bool) (*analyzer.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if remoteAddr == "" {
		a := newAnalyzer()
		defer a.Close()
		if parse {
			return a.Parse(ctx, source)
		}
		return a.Tokenize(ctx, source)
	}

	client, err := rpc.NewClient(coregrpc.DefaultClientConfig(remoteAddr))
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", remoteAddr, err)
	}
	defer client.Close()
	if parse {
		return client.Parse(ctx, source)
	}
	return client.Tokenize(ctx, source)
}

func resolveFormat() (string, error) {
	format := outputFormat
	if format == "" {
		format = appConfig.Analyzer.DefaultFormat
	}
	if format == "" {
		format = render.FormatText
	}
	if !render.ValidFormat(format) {
		return "", fmt.Errorf("unknown format %q (want %s)", format, strings.Join(render.Formats, ", "))
	}
	return format, nil
}

// reportAnalysisError prints err in the requested format. Structured
// formats get an error document on stdout, text formats a message on stderr.
func reportAnalysisError(cmd *cobra.Command, format string, err error) error {
	if !analyzer.IsAnalysisError(err) {
		return err
	}
	switch format {
	case render.FormatJSON, render.FormatYAML:
		if encErr := render.Encode(cmd.OutOrStdout(), format, err); encErr != nil {
			return encErr
		}
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), render.Error(err))
	}
	return reportedError{err}
}

// getInputText returns the program from the arguments, --file or stdin
func getInputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", inputFile, err)
		}
		return string(data), nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil || stat.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no input: pass text, --file or pipe a program on stdin")
		}
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
