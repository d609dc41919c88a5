package rpc

import (
	"fmt"
	"time"

	"github.com/msto63/lexan/pkg/analyzer"
	"github.com/msto63/lexan/pkg/ast"
	"github.com/msto63/lexan/pkg/lexer"
	"google.golang.org/protobuf/types/known/structpb"
)

// decodeResult rebuilds an analysis result from a response document.
// Positions inside the program are not transmitted and stay zero.
func decodeResult(doc *structpb.Struct) (*analyzer.Result, error) {
	fields := doc.GetFields()
	res := &analyzer.Result{
		RequestID: fields["request_id"].GetStringValue(),
		Duration:  time.Duration(fields["duration_us"].GetNumberValue()) * time.Microsecond,
	}

	for i, v := range fields["tokens"].GetListValue().GetValues() {
		tok, err := decodeToken(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("token %d: %w", i, err)
		}
		res.Tokens = append(res.Tokens, tok)
	}

	program, ok := fields["program"]
	if !ok {
		return res, nil
	}
	res.Program = &ast.Program{Statements: []ast.Node{}}
	for i, v := range program.GetStructValue().GetFields()["statements"].GetListValue().GetValues() {
		node, err := decodeNode(v.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("statement %d: %w", i, err)
		}
		res.Program.Statements = append(res.Program.Statements, node)
	}
	res.Symbols = []string{}
	for _, v := range fields["symbols"].GetListValue().GetValues() {
		res.Symbols = append(res.Symbols, v.GetStringValue())
	}
	return res, nil
}

var tokenTypes = map[string]lexer.TokenType{
	lexer.TokenEOF.String():        lexer.TokenEOF,
	lexer.TokenNumber.String():     lexer.TokenNumber,
	lexer.TokenIdentifier.String(): lexer.TokenIdentifier,
	lexer.TokenOperator.String():   lexer.TokenOperator,
	lexer.TokenStop.String():       lexer.TokenStop,
}

func decodeToken(s *structpb.Struct) (lexer.Token, error) {
	fields := s.GetFields()
	name := fields["type"].GetStringValue()
	tt, ok := tokenTypes[name]
	if !ok {
		return lexer.Token{}, fmt.Errorf("unknown token type %q", name)
	}

	tok := lexer.Token{
		Type: tt,
		Pos: lexer.Pos{
			Line:   int(fields["line"].GetNumberValue()),
			Column: int(fields["column"].GetNumberValue()),
		},
	}
	switch tt {
	case lexer.TokenEOF:
	case lexer.TokenNumber:
		// the literal text is rescanned so integers keep full precision
		tok.Text = fields["text"].GetStringValue()
		num, err := lexer.Tokenize(tok.Text)
		if err != nil || num[0].Type != lexer.TokenNumber {
			return lexer.Token{}, fmt.Errorf("invalid number %q", tok.Text)
		}
		tok.Num = num[0].Num
	default:
		tok.Text = fields["value"].GetStringValue()
	}
	return tok, nil
}

func decodeNode(s *structpb.Struct) (ast.Node, error) {
	fields := s.GetFields()
	switch kind := fields["node"].GetStringValue(); kind {
	case "number":
		v := fields["value"].GetNumberValue()
		if fields["float"].GetBoolValue() {
			return &ast.Literal{Value: lexer.FloatNumber(v)}, nil
		}
		return &ast.Literal{Value: lexer.IntNumber(int64(v))}, nil
	case "identifier":
		return &ast.Variable{Name: fields["name"].GetStringValue()}, nil
	case "assign":
		value, err := decodeNode(fields["value"].GetStructValue())
		if err != nil {
			return nil, err
		}
		return &ast.Assignment{Name: fields["name"].GetStringValue(), Value: value}, nil
	case "binary":
		left, err := decodeNode(fields["left"].GetStructValue())
		if err != nil {
			return nil, err
		}
		right, err := decodeNode(fields["right"].GetStructValue())
		if err != nil {
			return nil, err
		}
		return &ast.BinaryOp{Operator: fields["operator"].GetStringValue(), Left: left, Right: right}, nil
	default:
		return nil, fmt.Errorf("unknown node %q", kind)
	}
}
