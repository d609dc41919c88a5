package lexer

import "fmt"

// KindLexical is the error category reported by LexicalError.Kind
const KindLexical = "lexical"

// LexicalError reports source text that no token class accepts. Char is
// the offending character; Text holds the whole rejected literal when a
// longer span is at fault (an out-of-range number) or the raw byte when the
// input is not valid UTF-8.
type LexicalError struct {
	Char   rune
	Text   string
	Reason string
	Pos    Pos
}

func (e *LexicalError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s %q at line %d, column %d", e.Reason, e.Text, e.Pos.Line, e.Pos.Column)
	}
	return fmt.Sprintf("illegal character %q at line %d, column %d", e.Char, e.Pos.Line, e.Pos.Column)
}

// Kind returns the error category
func (e *LexicalError) Kind() string {
	return KindLexical
}
