// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     parser
// Description: Recursive descent parser for statements and expressions
// Author:      Mike Stoffels
// Created:     2026-10-04
// License:     MIT
// ============================================================================

// Package parser turns a token sequence into a program tree.
//
// Grammar:
//
//	program    := [ statement { ";" statement } [ ";" ] ] EOF
//	statement  := assignment | expression
//	assignment := IDENTIFIER "=" expression
//	expression := term { ("+" | "-") term }
//	term       := factor { ("*" | "/" | "^") factor }
//	factor     := NUMBER | IDENTIFIER | "(" expression ")"
//
// Binary operators are left-associative. Identifiers must be assigned
// before they are read; the symbol table only learns a name after the
// right-hand side of its assignment has been parsed.
package parser

import (
	"fmt"

	"github.com/msto63/lexan/pkg/ast"
	"github.com/msto63/lexan/pkg/lexer"
)

// Parser implements recursive descent parsing over a token slice.
// A Parser is single-use: create a new one for every token sequence.
type Parser struct {
	tokens  []lexer.Token
	pos     int
	current lexer.Token
	symbols *SymbolTable
}

// New creates a parser for tokens. The sequence is expected to end with
// an EOF token; a missing terminator is treated as end of input.
func New(tokens []lexer.Token) *Parser {
	p := &Parser{
		tokens:  tokens,
		pos:     -1,
		symbols: NewSymbolTable(),
	}
	p.advance() // Load first token
	return p
}

// Parse parses a token sequence in one call
func Parse(tokens []lexer.Token) (*ast.Program, error) {
	return New(tokens).Parse()
}

// Parse consumes the whole token sequence and returns the program.
// On failure the first error is returned and no program is produced.
func (p *Parser) Parse() (*ast.Program, error) {
	program := &ast.Program{Statements: []ast.Node{}}

	if p.current.Type != lexer.TokenEOF {
		for {
			stmt, err := p.parseStatement()
			if err != nil {
				return nil, err
			}
			program.Statements = append(program.Statements, stmt)

			if p.current.Type != lexer.TokenStop {
				break
			}
			p.advance() // consume ';'
			if p.current.Type == lexer.TokenEOF {
				break
			}
		}
	}

	// Ensure we've consumed all input
	if p.current.Type != lexer.TokenEOF {
		return nil, p.syntaxError("';' or end of input", "unexpected token after statement")
	}

	return program, nil
}

// Symbols returns the identifiers assigned so far, in assignment order
func (p *Parser) Symbols() []string {
	return p.symbols.Names()
}

// parseStatement decides between assignment and expression with one
// token of lookahead
func (p *Parser) parseStatement() (ast.Node, error) {
	if p.current.Type == lexer.TokenIdentifier && p.peek().Is(lexer.TokenOperator, "=") {
		return p.parseAssignment()
	}
	return p.parseExpression()
}

func (p *Parser) parseAssignment() (ast.Node, error) {
	name := p.current
	p.advance() // consume identifier
	p.advance() // consume '='

	value, err := p.parseOperand("=")
	if err != nil {
		return nil, err
	}

	// The name becomes visible only after its right-hand side
	p.symbols.Declare(name.Text)

	return &ast.Assignment{Name: name.Text, Value: value, Pos: name.Pos}, nil
}

// parseExpression parses additive expressions
func (p *Parser) parseExpression() (ast.Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.matchOperator("+", "-") {
		op := p.current
		p.advance()

		right, err := p.parseTermAfter(op.Text)
		if err != nil {
			return nil, err
		}

		left = &ast.BinaryOp{Operator: op.Text, Left: left, Right: right, Pos: op.Pos}
	}

	return left, nil
}

// parseTerm parses multiplicative expressions. Exponentiation shares this
// level and folds left to right like * and /.
func (p *Parser) parseTerm() (ast.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.matchOperator("*", "/", "^") {
		op := p.current
		p.advance()

		right, err := p.parseFactorAfter(op.Text)
		if err != nil {
			return nil, err
		}

		left = &ast.BinaryOp{Operator: op.Text, Left: left, Right: right, Pos: op.Pos}
	}

	return left, nil
}

func (p *Parser) parseFactor() (ast.Node, error) {
	tok := p.current

	switch {
	case tok.Type == lexer.TokenNumber:
		p.advance()
		return &ast.Literal{Value: tok.Num, Pos: tok.Pos}, nil

	case tok.Type == lexer.TokenIdentifier:
		if !p.symbols.Defined(tok.Text) {
			return nil, &SemanticError{Name: tok.Text, Pos: tok.Pos}
		}
		p.advance()
		return &ast.Variable{Name: tok.Text, Pos: tok.Pos}, nil

	case tok.Is(lexer.TokenOperator, "("):
		p.advance() // consume '('
		inner, err := p.parseOperand("(")
		if err != nil {
			return nil, err
		}
		if !p.current.Is(lexer.TokenOperator, ")") {
			return nil, p.syntaxError("')'", "unbalanced parenthesis")
		}
		p.advance() // consume ')'
		return inner, nil
	}

	return nil, p.syntaxError("operand", "")
}

// parseOperand parses the expression required after op, naming op in the
// error when the expression is missing
func (p *Parser) parseOperand(op string) (ast.Node, error) {
	node, err := p.parseExpression()
	return node, p.incomplete(err, op)
}

func (p *Parser) parseTermAfter(op string) (ast.Node, error) {
	node, err := p.parseTerm()
	return node, p.incomplete(err, op)
}

func (p *Parser) parseFactorAfter(op string) (ast.Node, error) {
	node, err := p.parseFactor()
	return node, p.incomplete(err, op)
}

// incomplete annotates a bare "expected operand" error with the operator
// that was left without a right-hand side
func (p *Parser) incomplete(err error, op string) error {
	if se, ok := err.(*SyntaxError); ok && se.Msg == "" && se.Expected == "operand" {
		se.Msg = fmt.Sprintf("incomplete expression after %q", op)
	}
	return err
}

func (p *Parser) matchOperator(ops ...string) bool {
	if p.current.Type != lexer.TokenOperator {
		return false
	}
	for _, op := range ops {
		if p.current.Text == op {
			return true
		}
	}
	return false
}

// advance moves to the next token
func (p *Parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
	p.current = p.tokenAt(p.pos)
}

func (p *Parser) peek() lexer.Token {
	return p.tokenAt(p.pos + 1)
}

// tokenAt returns the token at i, or an EOF token past the end
func (p *Parser) tokenAt(i int) lexer.Token {
	if i >= 0 && i < len(p.tokens) {
		return p.tokens[i]
	}
	eof := lexer.Token{Type: lexer.TokenEOF}
	if n := len(p.tokens); n > 0 {
		eof.Pos = p.tokens[n-1].Pos
	}
	return eof
}

func (p *Parser) syntaxError(expected, msg string) *SyntaxError {
	return &SyntaxError{Expected: expected, Found: p.current, Msg: msg}
}
