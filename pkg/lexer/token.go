// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     lexer
// Description: Token types, numeric values and source positions
// Author:      Mike Stoffels
// Created:     2026-10-02
// License:     MIT
// ============================================================================

package lexer

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	// TokenEOF is the synthetic end marker appended after scanning
	TokenEOF TokenType = iota
	TokenNumber     // 42, 3.14, 7.
	TokenIdentifier // x, _tmp, rate2
	TokenOperator   // + - * / ^ = ( )
	TokenStop       // ;
)

// String returns the name of the token type
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "EOF"
	case TokenNumber:
		return "NUMBER"
	case TokenIdentifier:
		return "IDENTIFIER"
	case TokenOperator:
		return "OPERATOR"
	case TokenStop:
		return "STOP"
	default:
		return fmt.Sprintf("TokenType(%d)", int(tt))
	}
}

// Pos is a position in the source text
type Pos struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column in runes (1-based)
}

// String returns "line:column"
func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Number is the value of a numeric literal. Literals without a decimal
// point are integral, everything else is floating-point.
type Number struct {
	IsFloat bool
	Int     int64
	Float   float64
}

// IntNumber returns an integral Number
func IntNumber(v int64) Number {
	return Number{Int: v}
}

// FloatNumber returns a floating-point Number
func FloatNumber(v float64) Number {
	return Number{IsFloat: true, Float: v}
}

// Float64 returns the value as float64 regardless of representation
func (n Number) Float64() float64 {
	if n.IsFloat {
		return n.Float
	}
	return float64(n.Int)
}

// String formats integers plainly and always keeps a fractional part on
// floats, so 3.0 stays distinguishable from 3.
func (n Number) String() string {
	if !n.IsFloat {
		return strconv.FormatInt(n.Int, 10)
	}
	if math.IsInf(n.Float, 0) || math.IsNaN(n.Float) {
		return strconv.FormatFloat(n.Float, 'g', -1, 64)
	}
	s := strconv.FormatFloat(n.Float, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

// Token is a single lexical unit. Num is only meaningful for TokenNumber.
type Token struct {
	Type TokenType
	Text string
	Num  Number
	Pos  Pos
}

// String renders the token the way the analyzer lists it, e.g.
// Token(NUMBER, 3.14) or Token(OPERATOR, '+').
func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "Token(EOF, None)"
	case TokenNumber:
		return fmt.Sprintf("Token(NUMBER, %s)", t.Num)
	default:
		return fmt.Sprintf("Token(%s, '%s')", t.Type, t.Text)
	}
}

// Is reports whether the token has the given type and, for operators,
// the given text. An empty text matches any token of the type.
func (t Token) Is(tt TokenType, text string) bool {
	if t.Type != tt {
		return false
	}
	return text == "" || t.Text == text
}

// Describe returns a short human description used in error messages
func (t Token) Describe() string {
	switch t.Type {
	case TokenEOF:
		return "end of input"
	case TokenNumber:
		return fmt.Sprintf("NUMBER %s", t.Text)
	default:
		return fmt.Sprintf("%s %q", t.Type, t.Text)
	}
}
