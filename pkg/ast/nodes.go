// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     ast
// Description: AST node definitions for statements and expressions
// Author:      Mike Stoffels
// Created:     2026-10-03
// License:     MIT
// ============================================================================

package ast

import (
	"fmt"
	"strings"

	"github.com/msto63/lexan/pkg/lexer"
)

// Node represents the base interface for all AST nodes. The set of nodes
// is closed: only the types in this package implement it.
type Node interface {
	// String returns a compact infix representation of the node
	String() string

	// Accept implements the visitor pattern
	Accept(visitor Visitor) any

	// Position returns the source position of the node
	Position() lexer.Pos

	node()
}

// Literal is a numeric constant
type Literal struct {
	Value lexer.Number
	Pos   lexer.Pos
}

// Variable is a read of a previously assigned identifier
type Variable struct {
	Name string
	Pos  lexer.Pos
}

// Assignment binds the value of an expression to a name. Assignments only
// appear as whole statements.
type Assignment struct {
	Name  string
	Value Node
	Pos   lexer.Pos
}

// BinaryOp applies one of + - * / ^ to two operands
type BinaryOp struct {
	Operator string
	Left     Node
	Right    Node
	Pos      lexer.Pos // position of the operator
}

// Program is the result of a parse: statements in source order
type Program struct {
	Statements []Node
}

func (l *Literal) String() string { return l.Value.String() }

func (l *Literal) Accept(visitor Visitor) any { return visitor.VisitLiteral(l) }

func (l *Literal) Position() lexer.Pos { return l.Pos }

func (l *Literal) node() {}

func (v *Variable) String() string { return v.Name }

func (v *Variable) Accept(visitor Visitor) any { return visitor.VisitVariable(v) }

func (v *Variable) Position() lexer.Pos { return v.Pos }

func (v *Variable) node() {}

func (a *Assignment) String() string {
	return fmt.Sprintf("%s = %s", a.Name, a.Value.String())
}

func (a *Assignment) Accept(visitor Visitor) any { return visitor.VisitAssignment(a) }

func (a *Assignment) Position() lexer.Pos { return a.Pos }

func (a *Assignment) node() {}

func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Operator, b.Right.String())
}

func (b *BinaryOp) Accept(visitor Visitor) any { return visitor.VisitBinaryOp(b) }

func (b *BinaryOp) Position() lexer.Pos { return b.Pos }

func (b *BinaryOp) node() {}

// String returns all statements separated by "; "
func (p *Program) String() string {
	parts := make([]string, len(p.Statements))
	for i, stmt := range p.Statements {
		parts[i] = stmt.String()
	}
	return strings.Join(parts, "; ")
}

// Single returns the only statement of a one-statement program
func (p *Program) Single() (Node, bool) {
	if len(p.Statements) != 1 {
		return nil, false
	}
	return p.Statements[0], true
}

// Equal reports whether two trees have the same shape and values,
// ignoring source positions.
func Equal(a, b Node) bool {
	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Value == y.Value
	case *Variable:
		y, ok := b.(*Variable)
		return ok && x.Name == y.Name
	case *Assignment:
		y, ok := b.(*Assignment)
		return ok && x.Name == y.Name && Equal(x.Value, y.Value)
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		return ok && x.Operator == y.Operator && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case nil:
		return b == nil
	default:
		return false
	}
}

// EqualPrograms compares two programs statement by statement
func EqualPrograms(a, b *Program) bool {
	if a == nil || b == nil {
		return a == b
	}
	if len(a.Statements) != len(b.Statements) {
		return false
	}
	for i := range a.Statements {
		if !Equal(a.Statements[i], b.Statements[i]) {
			return false
		}
	}
	return true
}
