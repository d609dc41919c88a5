// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     lexer
// Description: Priority-ordered single pass scanner
// Author:      Mike Stoffels
// Created:     2026-10-02
// License:     MIT
// ============================================================================

package lexer

import (
	"strconv"
	"unicode/utf8"
)

// class is a lexical class in scan priority order. Only the first four
// produce tokens; whitespace is dropped and mismatch is an error.
type class int

const (
	classNumber class = iota
	classIdentifier
	classOperator
	classStop
	classWhitespace
	classMismatch
)

// rule matches one lexical class at the start of src and returns the
// length of the longest match, or 0.
type rule struct {
	class class
	match func(src string) int
}

// rules are tried in order; the first one that matches wins.
var rules = []rule{
	{classNumber, matchNumber},
	{classIdentifier, matchIdentifier},
	{classOperator, matchOperator},
	{classStop, matchStop},
	{classWhitespace, matchWhitespace},
}

// Lexer scans one source string. Create one with New; a Lexer is not safe
// for concurrent use.
type Lexer struct {
	input  string
	offset int
	line   int
	column int
}

// New creates a Lexer positioned at the start of input
func New(input string) *Lexer {
	return &Lexer{
		input:  input,
		line:   1,
		column: 1,
	}
}

// Tokenize scans the whole input and returns its tokens. The result always
// ends with exactly one TokenEOF token.
func Tokenize(input string) ([]Token, error) {
	return New(input).Tokenize()
}

// Tokenize returns all remaining tokens as a slice
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token

	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)

		if tok.Type == TokenEOF {
			break
		}
	}

	return tokens, nil
}

// Next returns the next token. Once the input is exhausted it keeps
// returning TokenEOF.
func (l *Lexer) Next() (Token, error) {
	for {
		if l.offset >= len(l.input) {
			return Token{Type: TokenEOF, Pos: l.pos()}, nil
		}

		src := l.input[l.offset:]
		cls, n := classify(src)
		start := l.pos()
		text := src[:n]

		switch cls {
		case classWhitespace:
			l.advance(text)
			continue
		case classMismatch:
			r, size := utf8.DecodeRuneInString(src)
			if r == utf8.RuneError && size == 1 {
				return Token{}, &LexicalError{
					Char:   r,
					Text:   src[:1],
					Reason: "invalid UTF-8 byte",
					Pos:    start,
				}
			}
			return Token{}, &LexicalError{Char: r, Text: string(r), Pos: start}
		}

		tok := Token{Pos: start, Text: text}
		switch cls {
		case classNumber:
			num, err := parseNumber(text)
			if err != nil {
				return Token{}, &LexicalError{
					Char:   rune(text[0]),
					Text:   text,
					Reason: "numeric literal out of range",
					Pos:    start,
				}
			}
			tok.Type = TokenNumber
			tok.Num = num
		case classIdentifier:
			tok.Type = TokenIdentifier
		case classOperator:
			tok.Type = TokenOperator
		case classStop:
			tok.Type = TokenStop
		}

		l.advance(text)
		return tok, nil
	}
}

func (l *Lexer) pos() Pos {
	return Pos{Offset: l.offset, Line: l.line, Column: l.column}
}

// advance moves past text, keeping line and column in step
func (l *Lexer) advance(text string) {
	for _, r := range text {
		if r == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
	}
	l.offset += len(text)
}

// classify finds the highest priority class that matches at the start of
// src. Anything unmatched is a single-character mismatch.
func classify(src string) (class, int) {
	for _, r := range rules {
		if n := r.match(src); n > 0 {
			return r.class, n
		}
	}
	_, size := utf8.DecodeRuneInString(src)
	return classMismatch, size
}

// parseNumber converts a number literal; a decimal point makes it a float
func parseNumber(text string) (Number, error) {
	for i := 0; i < len(text); i++ {
		if text[i] == '.' {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return Number{}, err
			}
			return FloatNumber(f), nil
		}
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return Number{}, err
	}
	return IntNumber(v), nil
}

// matchNumber matches digits, optionally followed by '.' and more digits
func matchNumber(src string) int {
	n := 0
	for n < len(src) && isDigit(src[n]) {
		n++
	}
	if n == 0 {
		return 0
	}
	if n < len(src) && src[n] == '.' {
		n++
		for n < len(src) && isDigit(src[n]) {
			n++
		}
	}
	return n
}

// matchIdentifier matches [A-Za-z_][A-Za-z0-9_]*
func matchIdentifier(src string) int {
	if len(src) == 0 || !isLetter(src[0]) {
		return 0
	}
	n := 1
	for n < len(src) && (isLetter(src[n]) || isDigit(src[n])) {
		n++
	}
	return n
}

func matchOperator(src string) int {
	switch src[0] {
	case '+', '-', '*', '/', '^', '=', '(', ')':
		return 1
	}
	return 0
}

func matchStop(src string) int {
	if src[0] == ';' {
		return 1
	}
	return 0
}

func matchWhitespace(src string) int {
	n := 0
	for n < len(src) && isSpace(src[n]) {
		n++
	}
	return n
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

func isSpace(ch byte) bool {
	switch ch {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}
