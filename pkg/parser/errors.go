package parser

import (
	"fmt"

	"github.com/msto63/lexan/pkg/lexer"
)

// Error categories reported by Kind
const (
	KindSyntax   = "syntax"
	KindSemantic = "semantic"
)

// SyntaxError reports a token stream that does not match the grammar.
// Expected describes what the grammar required at that point, Found is the
// token actually there, and Msg optionally names the specific violation.
type SyntaxError struct {
	Expected string
	Found    lexer.Token
	Msg      string
}

func (e *SyntaxError) Error() string {
	detail := fmt.Sprintf("expected %s, got %s at line %d, column %d",
		e.Expected, e.Found.Describe(), e.Found.Pos.Line, e.Found.Pos.Column)
	if e.Msg != "" {
		return e.Msg + ": " + detail
	}
	return detail
}

// Kind returns the error category
func (e *SyntaxError) Kind() string {
	return KindSyntax
}

// SemanticError reports an identifier read before any assignment to it
type SemanticError struct {
	Name string
	Pos  lexer.Pos
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("variable %q used before assignment at line %d, column %d",
		e.Name, e.Pos.Line, e.Pos.Column)
}

// Kind returns the error category
func (e *SemanticError) Kind() string {
	return KindSemantic
}
