package analyzer

import (
	"errors"

	"github.com/msto63/lexan/pkg/lexer"
	"github.com/msto63/lexan/pkg/parser"
)

// Error kinds reported by KindOf
const (
	KindLexical  = lexer.KindLexical
	KindSyntax   = parser.KindSyntax
	KindSemantic = parser.KindSemantic
	KindInternal = "internal"
)

// kinded is implemented by errors that carry their own kind, such as
// errors decoded from a remote analyzer
type kinded interface {
	Kind() string
}

// KindOf classifies an analysis error. Errors that did not originate in
// the lexer or parser are reported as internal.
func KindOf(err error) string {
	var (
		lexErr *lexer.LexicalError
		synErr *parser.SyntaxError
		semErr *parser.SemanticError
		other  kinded
	)
	switch {
	case errors.As(err, &lexErr):
		return KindLexical
	case errors.As(err, &synErr):
		return KindSyntax
	case errors.As(err, &semErr):
		return KindSemantic
	case errors.As(err, &other) && other.Kind() != "":
		return other.Kind()
	default:
		return KindInternal
	}
}

// IsAnalysisError reports whether err was caused by the input text rather
// than by the environment
func IsAnalysisError(err error) bool {
	return err != nil && KindOf(err) != KindInternal
}
