package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/msto63/lexan/pkg/analyzer"
	"github.com/msto63/lexan/pkg/ast"
	"github.com/msto63/lexan/pkg/lexer"
	"github.com/msto63/lexan/pkg/parser"
	"gopkg.in/yaml.v3"
)

// Encode writes value as a JSON or YAML document. Tokens, programs,
// nodes, results and errors are converted with ToMap first.
func Encode(w io.Writer, format string, value any) error {
	doc := ToMap(value)

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// ToMap converts analysis values into plain maps and slices suitable for
// serialization. Unknown values are returned unchanged.
func ToMap(value any) any {
	switch v := value.(type) {
	case []lexer.Token:
		return tokensToMap(v)
	case lexer.Token:
		return tokenToMap(v)
	case *ast.Program:
		return programToMap(v)
	case ast.Node:
		return nodeToMap(v)
	case *analyzer.Result:
		return resultToMap(v)
	case error:
		return ErrorMap(v)
	default:
		return value
	}
}

func tokensToMap(tokens []lexer.Token) []map[string]any {
	out := make([]map[string]any, len(tokens))
	for i, tok := range tokens {
		out[i] = tokenToMap(tok)
	}
	return out
}

func tokenToMap(tok lexer.Token) map[string]any {
	m := map[string]any{
		"type":   tok.Type.String(),
		"line":   tok.Pos.Line,
		"column": tok.Pos.Column,
	}
	switch tok.Type {
	case lexer.TokenEOF:
		m["value"] = nil
	case lexer.TokenNumber:
		m["value"] = numberValue(tok.Num)
		m["text"] = tok.Text
	default:
		m["value"] = tok.Text
	}
	return m
}

func numberValue(n lexer.Number) any {
	if n.IsFloat {
		return n.Float
	}
	return n.Int
}

func programToMap(p *ast.Program) map[string]any {
	stmts := []any{}
	if p != nil {
		for _, stmt := range p.Statements {
			stmts = append(stmts, nodeToMap(stmt))
		}
	}
	return map[string]any{"statements": stmts}
}

func nodeToMap(node ast.Node) map[string]any {
	switch n := node.(type) {
	case *ast.Literal:
		return map[string]any{"node": "number", "value": numberValue(n.Value), "float": n.Value.IsFloat}
	case *ast.Variable:
		return map[string]any{"node": "identifier", "name": n.Name}
	case *ast.Assignment:
		return map[string]any{"node": "assign", "name": n.Name, "value": nodeToMap(n.Value)}
	case *ast.BinaryOp:
		return map[string]any{
			"node":     "binary",
			"operator": n.Operator,
			"left":     nodeToMap(n.Left),
			"right":    nodeToMap(n.Right),
		}
	default:
		return nil
	}
}

func resultToMap(r *analyzer.Result) map[string]any {
	m := map[string]any{
		"request_id":  r.RequestID,
		"tokens":      tokensToMap(r.Tokens),
		"duration_us": r.Duration.Microseconds(),
	}
	if r.Program != nil {
		m["program"] = programToMap(r.Program)
		symbols := r.Symbols
		if symbols == nil {
			symbols = []string{}
		}
		m["symbols"] = symbols
	}
	return m
}

// documented is implemented by errors that arrive as an error document,
// such as those reported by a remote analyzer
type documented interface {
	Fields() map[string]any
}

// ErrorMap describes an error by kind, message and, when known, position
func ErrorMap(err error) map[string]any {
	m := map[string]any{
		"kind":    analyzer.KindOf(err),
		"message": err.Error(),
	}

	var (
		lexErr *lexer.LexicalError
		synErr *parser.SyntaxError
		semErr *parser.SemanticError
		doc    documented
	)
	switch {
	case errors.As(err, &lexErr):
		m["line"], m["column"] = lexErr.Pos.Line, lexErr.Pos.Column
	case errors.As(err, &synErr):
		m["line"], m["column"] = synErr.Found.Pos.Line, synErr.Found.Pos.Column
		m["expected"] = synErr.Expected
	case errors.As(err, &semErr):
		m["line"], m["column"] = semErr.Pos.Line, semErr.Pos.Column
		m["name"] = semErr.Name
	case errors.As(err, &doc):
		for k, v := range doc.Fields() {
			if _, ok := m[k]; !ok {
				m[k] = v
			}
		}
	}
	return m
}
