// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     render
// Description: Text, tree, tuple, JSON and YAML output for analysis results
// Author:      Mike Stoffels
// Created:     2026-10-07
// License:     MIT
// ============================================================================

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/msto63/lexan/pkg/analyzer"
	"github.com/msto63/lexan/pkg/ast"
	"github.com/msto63/lexan/pkg/lexer"
)

// Output formats understood by shells
const (
	FormatText  = "text"
	FormatTree  = "tree"
	FormatTuple = "tuple"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Formats lists every supported output format
var Formats = []string{FormatText, FormatTree, FormatTuple, FormatJSON, FormatYAML}

// ValidFormat reports whether format is supported
func ValidFormat(format string) bool {
	for _, f := range Formats {
		if f == format {
			return true
		}
	}
	return false
}

// Tokens writes a "Tokens:" listing with one token per line
func Tokens(w io.Writer, tokens []lexer.Token) error {
	var b strings.Builder
	b.WriteString("Tokens:\n")
	for _, tok := range tokens {
		b.WriteString(tok.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// Tuple renders a program as nested tuples. Assignments are STMT,
// additive operations EXPR, multiplicative ones TERM, and several
// statements nest to the right as STMTS.
func Tuple(p *ast.Program) string {
	if p == nil || len(p.Statements) == 0 {
		return "()"
	}
	return tupleStatements(p.Statements)
}

func tupleStatements(stmts []ast.Node) string {
	if len(stmts) == 1 {
		return TupleNode(stmts[0])
	}
	return fmt.Sprintf("('STMTS', %s, %s)", TupleNode(stmts[0]), tupleStatements(stmts[1:]))
}

// TupleNode renders a single statement or expression as a tuple
func TupleNode(node ast.Node) string {
	switch n := node.(type) {
	case *ast.Literal:
		return n.Value.String()
	case *ast.Variable:
		return n.Name
	case *ast.Assignment:
		return fmt.Sprintf("('STMT', %s, %s)", n.Name, TupleNode(n.Value))
	case *ast.BinaryOp:
		tag := "TERM"
		if n.Operator == "+" || n.Operator == "-" {
			tag = "EXPR"
		}
		return fmt.Sprintf("('%s', %s, '%s', %s)", tag, TupleNode(n.Left), n.Operator, TupleNode(n.Right))
	default:
		return "None"
	}
}

// Tree renders a program as an indented tree
func Tree(p *ast.Program) string {
	var b strings.Builder
	b.WriteString("Program\n")
	if p == nil {
		return b.String()
	}
	for i, stmt := range p.Statements {
		writeTree(&b, stmt, "", i == len(p.Statements)-1)
	}
	return b.String()
}

func writeTree(b *strings.Builder, node ast.Node, prefix string, last bool) {
	branch, indent := "├── ", "│   "
	if last {
		branch, indent = "└── ", "    "
	}
	b.WriteString(prefix)
	b.WriteString(branch)

	switch n := node.(type) {
	case *ast.Literal:
		fmt.Fprintf(b, "Number %s\n", n.Value)
	case *ast.Variable:
		fmt.Fprintf(b, "Identifier %s\n", n.Name)
	case *ast.Assignment:
		fmt.Fprintf(b, "Assign %s\n", n.Name)
		writeTree(b, n.Value, prefix+indent, true)
	case *ast.BinaryOp:
		fmt.Fprintf(b, "BinaryOp %s\n", n.Operator)
		writeTree(b, n.Left, prefix+indent, false)
		writeTree(b, n.Right, prefix+indent, true)
	}
}

// Error formats an analysis error for display, prefixed by its category
func Error(err error) string {
	if err == nil {
		return ""
	}
	var title string
	switch analyzer.KindOf(err) {
	case analyzer.KindLexical:
		title = "Lexical Error"
	case analyzer.KindSyntax:
		title = "Syntax Error"
	case analyzer.KindSemantic:
		title = "Semantic Error"
	default:
		title = "Error"
	}
	return title + ": " + err.Error()
}

// Program writes a parsed program in one of the text formats
func Program(w io.Writer, format string, p *ast.Program) error {
	if p == nil {
		p = &ast.Program{}
	}

	var out string
	switch format {
	case FormatText, "":
		lines := make([]string, 0, len(p.Statements)+1)
		lines = append(lines, "Parse Tree:")
		for _, stmt := range p.Statements {
			lines = append(lines, stmt.String())
		}
		out = strings.Join(lines, "\n") + "\n"
	case FormatTree:
		out = Tree(p)
	case FormatTuple:
		out = "Parse Tree:\n" + Tuple(p) + "\n"
	default:
		return Encode(w, format, p)
	}
	_, err := io.WriteString(w, out)
	return err
}
