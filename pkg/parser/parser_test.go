package parser

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/msto63/lexan/pkg/ast"
	"github.com/msto63/lexan/pkg/lexer"
)

func num(v int64) ast.Node { return &ast.Literal{Value: lexer.IntNumber(v)} }
func flt(v float64) ast.Node { return &ast.Literal{Value: lexer.FloatNumber(v)} }
func ref(name string) ast.Node { return &ast.Variable{Name: name} }
func bin(op string, l, r ast.Node) ast.Node {
	return &ast.BinaryOp{Operator: op, Left: l, Right: r}
}
func assign(name string, v ast.Node) ast.Node {
	return &ast.Assignment{Name: name, Value: v}
}

func parseSource(t *testing.T, src string) (*ast.Program, []string, error) {
	t.Helper()
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize(%q) error = %v", src, err)
	}
	p := New(tokens)
	prog, err := p.Parse()
	return prog, p.Symbols(), err
}

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []ast.Node
	}{
		{"empty input", "", []ast.Node{}},
		{"whitespace only", "  \n\t", []ast.Node{}},
		{"single number", "42", []ast.Node{num(42)}},
		{"float literal", "3.5", []ast.Node{flt(3.5)}},
		{"addition", "1 + 2", []ast.Node{bin("+", num(1), num(2))}},
		{
			name:  "multiplication binds tighter",
			input: "1 + 2 * 3",
			want:  []ast.Node{bin("+", num(1), bin("*", num(2), num(3)))},
		},
		{
			name:  "subtraction is left-associative",
			input: "10 - 4 - 3",
			want:  []ast.Node{bin("-", bin("-", num(10), num(4)), num(3))},
		},
		{
			name:  "exponent folds left",
			input: "2^3^2",
			want:  []ast.Node{bin("^", bin("^", num(2), num(3)), num(2))},
		},
		{
			name:  "exponent shares level with multiplication",
			input: "2 * 3 ^ 2",
			want:  []ast.Node{bin("^", bin("*", num(2), num(3)), num(2))},
		},
		{
			name:  "parentheses override precedence",
			input: "(1 + 2) * 3",
			want:  []ast.Node{bin("*", bin("+", num(1), num(2)), num(3))},
		},
		{
			name:  "nested parentheses",
			input: "((4))",
			want:  []ast.Node{num(4)},
		},
		{
			name:  "assignment then read",
			input: "x = 5; x * 2",
			want:  []ast.Node{assign("x", num(5)), bin("*", ref("x"), num(2))},
		},
		{
			name:  "trailing separator",
			input: "x = 1;",
			want:  []ast.Node{assign("x", num(1))},
		},
		{
			name:  "reassignment reads previous value",
			input: "x = 1; x = x + 1",
			want:  []ast.Node{assign("x", num(1)), assign("x", bin("+", ref("x"), num(1)))},
		},
		{
			name:  "statements over several lines",
			input: "a = 2;\nb = a / 4;\na - b",
			want: []ast.Node{
				assign("a", num(2)),
				assign("b", bin("/", ref("a"), num(4))),
				bin("-", ref("a"), ref("b")),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, _, err := parseSource(t, tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			want := &ast.Program{Statements: tt.want}
			if !ast.EqualPrograms(prog, want) {
				t.Errorf("Parse() = %q, want %q", prog, want)
			}
		})
	}
}

func TestParse_SyntaxErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
		found    lexer.TokenType
		msg      string
	}{
		{"lone separator", ";", "operand", lexer.TokenStop, ""},
		{"double separator", "x = 1;;", "operand", lexer.TokenStop, ""},
		{"missing right operand", "1 +", "operand", lexer.TokenEOF, `incomplete expression after "+"`},
		{"missing factor", "2 * ;", "operand", lexer.TokenStop, `incomplete expression after "*"`},
		{"unclosed parenthesis", "(1 + 2", "')'", lexer.TokenEOF, "unbalanced parenthesis"},
		{"empty parentheses", "()", "operand", lexer.TokenOperator, `incomplete expression after "("`},
		{"stray closing parenthesis", "1)", "';' or end of input", lexer.TokenOperator, "unexpected token after statement"},
		{"missing separator", "1 2", "';' or end of input", lexer.TokenNumber, "unexpected token after statement"},
		{"number as target", "5 = 3", "';' or end of input", lexer.TokenOperator, "unexpected token after statement"},
		{"chained assignment", "x = y = 1", "", 0, ""},
		{"assignment without value", "x =", "operand", lexer.TokenEOF, `incomplete expression after "="`},
		{"leading operator", "* 2", "operand", lexer.TokenOperator, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog, _, err := parseSource(t, tt.input)
			if err == nil {
				t.Fatalf("Parse() = %q, want error", prog)
			}
			if prog != nil {
				t.Errorf("Parse() returned program %q alongside error", prog)
			}
			if tt.expected == "" {
				return
			}

			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error type = %T, want *SyntaxError", err)
			}
			if se.Expected != tt.expected {
				t.Errorf("Expected = %q, want %q", se.Expected, tt.expected)
			}
			if se.Found.Type != tt.found {
				t.Errorf("Found = %v, want type %v", se.Found, tt.found)
			}
			if se.Msg != tt.msg {
				t.Errorf("Msg = %q, want %q", se.Msg, tt.msg)
			}
			if se.Kind() != KindSyntax {
				t.Errorf("Kind() = %q", se.Kind())
			}
		})
	}
}

func TestParse_ChainedAssignment(t *testing.T) {
	// y is read before it is assigned, so the semantic check fires first
	_, _, err := parseSource(t, "x = y = 1")
	var sem *SemanticError
	if !errors.As(err, &sem) || sem.Name != "y" {
		t.Fatalf("error = %v, want semantic error for y", err)
	}

	// With y defined the trailing '=' is a syntax error
	_, _, err = parseSource(t, "y = 0; x = y = 1")
	var se *SyntaxError
	if !errors.As(err, &se) {
		t.Fatalf("error = %v, want *SyntaxError", err)
	}
	if !se.Found.Is(lexer.TokenOperator, "=") {
		t.Errorf("Found = %v, want '='", se.Found)
	}
}

func TestParse_SemanticErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		symbol string
		line   int
		column int
	}{
		{"undefined read", "y + 1", "y", 1, 1},
		{"self reference on first assignment", "x = x + 1", "x", 1, 5},
		{"read before later assignment", "a = b;\nb = 1", "b", 1, 5},
		{"read on second line", "a = 1;\na + c", "c", 2, 5},
		{"inside parentheses", "(1 + q)", "q", 1, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := parseSource(t, tt.input)

			var se *SemanticError
			if !errors.As(err, &se) {
				t.Fatalf("error = %v (%T), want *SemanticError", err, err)
			}
			if se.Name != tt.symbol {
				t.Errorf("Name = %q, want %q", se.Name, tt.symbol)
			}
			if se.Pos.Line != tt.line || se.Pos.Column != tt.column {
				t.Errorf("Pos = %v, want %d:%d", se.Pos, tt.line, tt.column)
			}
			if se.Kind() != KindSemantic {
				t.Errorf("Kind() = %q", se.Kind())
			}
		})
	}
}

func TestParse_Symbols(t *testing.T) {
	_, symbols, err := parseSource(t, "b = 1; a = b; b = a + b; c = 3")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(symbols, want) {
		t.Errorf("Symbols() = %v, want %v", symbols, want)
	}
}

func TestParse_Positions(t *testing.T) {
	prog, _, err := parseSource(t, "total = 1 +\n  2")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	stmt := prog.Statements[0].(*ast.Assignment)
	if stmt.Pos.Line != 1 || stmt.Pos.Column != 1 {
		t.Errorf("assignment Pos = %v", stmt.Pos)
	}
	sum := stmt.Value.(*ast.BinaryOp)
	if sum.Pos.Line != 1 || sum.Pos.Column != 11 {
		t.Errorf("operator Pos = %v, want 1:11", sum.Pos)
	}
	right := sum.Right.(*ast.Literal)
	if right.Pos.Line != 2 || right.Pos.Column != 3 {
		t.Errorf("literal Pos = %v, want 2:3", right.Pos)
	}
}

func TestParse_Idempotent(t *testing.T) {
	src := "x = (1 + 2) * 3.5; y = x ^ 2 - x / 4; y"
	tokens, err := lexer.Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	first, err := Parse(tokens)
	if err != nil {
		t.Fatalf("first Parse() error = %v", err)
	}
	second, err := Parse(tokens)
	if err != nil {
		t.Fatalf("second Parse() error = %v", err)
	}
	if !ast.EqualPrograms(first, second) {
		t.Errorf("parses differ: %q vs %q", first, second)
	}
}

func TestParse_MissingEOFToken(t *testing.T) {
	tokens := []lexer.Token{
		{Type: lexer.TokenNumber, Text: "1", Num: lexer.IntNumber(1)},
		{Type: lexer.TokenOperator, Text: "+"},
		{Type: lexer.TokenNumber, Text: "2", Num: lexer.IntNumber(2)},
	}
	prog, err := Parse(tokens)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := prog.String(); got != "(1 + 2)" {
		t.Errorf("Parse() = %q", got)
	}

	if prog, err := Parse(nil); err != nil || len(prog.Statements) != 0 {
		t.Errorf("Parse(nil) = %v, %v", prog, err)
	}
}

func TestSyntaxError_Message(t *testing.T) {
	_, _, err := parseSource(t, "(1 + 2")
	msg := err.Error()
	for _, part := range []string{"unbalanced parenthesis", "expected ')'", "end of input", "line 1"} {
		if !strings.Contains(msg, part) {
			t.Errorf("error %q does not mention %q", msg, part)
		}
	}
}

func TestSymbolTable(t *testing.T) {
	st := NewSymbolTable()
	if st.Defined("x") {
		t.Error("empty table defines x")
	}
	if !st.Declare("x") {
		t.Error("first Declare should report a new name")
	}
	if st.Declare("x") {
		t.Error("second Declare should not report a new name")
	}
	st.Declare("y")

	names := st.Names()
	names[0] = "mutated"
	if !reflect.DeepEqual(st.Names(), []string{"x", "y"}) {
		t.Errorf("Names() = %v", st.Names())
	}
}
