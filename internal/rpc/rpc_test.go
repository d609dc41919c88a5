package rpc

import (
	"context"
	"errors"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/msto63/lexan/pkg/analyzer"
	"github.com/msto63/lexan/pkg/ast"
	coregrpc "github.com/msto63/lexan/pkg/core/grpc"
	"github.com/msto63/lexan/pkg/lexer"
	"github.com/msto63/lexan/pkg/render"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
)

const bufSize = 1024 * 1024

func newTestClient(t *testing.T, opts analyzer.Options) *Client {
	t.Helper()

	lis := bufconn.Listen(bufSize)
	srv := coregrpc.NewServer(coregrpc.DefaultServerConfig())
	Register(srv.GRPCServer(), analyzer.New(opts))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	cfg := coregrpc.DefaultClientConfig("passthrough:///bufnet")
	cfg.Timeout = 5 * time.Second
	client, err := NewClient(cfg, grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
		return lis.DialContext(ctx)
	}))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestTokenize(t *testing.T) {
	client := newTestClient(t, analyzer.Options{})

	res, err := client.Tokenize(context.Background(), "a = 1.5")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}

	want, _ := lexer.Tokenize("a = 1.5")
	for i := range want {
		want[i].Pos.Offset = 0
	}
	if !reflect.DeepEqual(res.Tokens, want) {
		t.Errorf("tokens = %v, want %v", res.Tokens, want)
	}
	if res.Program != nil {
		t.Error("tokenize response should not carry a program")
	}
}

func TestTokenize_LargeInteger(t *testing.T) {
	client := newTestClient(t, analyzer.Options{})

	res, err := client.Tokenize(context.Background(), "9007199254740993")
	if err != nil {
		t.Fatalf("Tokenize() error = %v", err)
	}
	if got := res.Tokens[0].Num; got != lexer.IntNumber(9007199254740993) {
		t.Errorf("number = %v, want exact integer", got)
	}
}

func TestParse(t *testing.T) {
	client := newTestClient(t, analyzer.Options{})

	ctx := coregrpc.WithRequestID(context.Background(), "rpc-7")
	res, err := client.Parse(ctx, "x = 4; x / 2.5")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if got := render.Tuple(res.Program); got != "('STMTS', ('STMT', x, 4), ('TERM', x, '/', 2.5))" {
		t.Errorf("tuple = %q", got)
	}
	local, _ := analyzer.Parse("x = 4; x / 2.5")
	if !ast.EqualPrograms(res.Program, local) {
		t.Errorf("program = %v, want %v", res.Program, local)
	}
	if res.RequestID != "rpc-7" {
		t.Errorf("request_id = %q, want rpc-7", res.RequestID)
	}
	if !reflect.DeepEqual(res.Symbols, []string{"x"}) {
		t.Errorf("symbols = %v", res.Symbols)
	}
}

func TestParse_Empty(t *testing.T) {
	client := newTestClient(t, analyzer.Options{})

	res, err := client.Parse(context.Background(), "  ")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if res.Program == nil || len(res.Program.Statements) != 0 || len(res.Symbols) != 0 {
		t.Errorf("result = %+v, want empty program", res)
	}
}

func TestParse_AnalysisErrors(t *testing.T) {
	tests := []struct {
		source string
		kind   string
		line   float64
		column float64
	}{
		{"1 @ 2", analyzer.KindLexical, 1, 3},
		{"(1 + 2", analyzer.KindSyntax, 1, 7},
		{"a = 1;\nb", analyzer.KindSemantic, 2, 1},
	}

	client := newTestClient(t, analyzer.Options{})
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			_, err := client.Parse(context.Background(), tt.source)

			var remote *RemoteError
			if !errors.As(err, &remote) {
				t.Fatalf("error = %v (%T), want *RemoteError", err, err)
			}
			if remote.Kind() != tt.kind {
				t.Errorf("Kind() = %q, want %q", remote.Kind(), tt.kind)
			}
			if analyzer.KindOf(err) != tt.kind {
				t.Errorf("KindOf() = %q, want %q", analyzer.KindOf(err), tt.kind)
			}
			if remote.Code != codes.InvalidArgument {
				t.Errorf("Code = %v", remote.Code)
			}
			if remote.Details["line"] != tt.line || remote.Details["column"] != tt.column {
				t.Errorf("position = %v:%v, want %v:%v",
					remote.Details["line"], remote.Details["column"], tt.line, tt.column)
			}
		})
	}
}

func TestParse_InputTooLarge(t *testing.T) {
	client := newTestClient(t, analyzer.Options{MaxInputLength: 4})

	_, err := client.Parse(context.Background(), "1 + 2 + 3")
	if status.Code(err) != codes.ResourceExhausted {
		t.Errorf("code = %v, want ResourceExhausted", status.Code(err))
	}
}

func TestMissingSource(t *testing.T) {
	client := newTestClient(t, analyzer.Options{})

	tests := []struct {
		name string
		req  map[string]any
	}{
		{"absent", map[string]any{}},
		{"not a string", map[string]any{"source": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := structpb.NewStruct(tt.req)
			if err != nil {
				t.Fatal(err)
			}
			out := &structpb.Struct{}
			err = client.conn.Invoke(context.Background(), parseMethod, req, out)
			if status.Code(err) != codes.InvalidArgument {
				t.Errorf("code = %v, want InvalidArgument", status.Code(err))
			}
		})
	}
}

func TestRemoteError_DefaultKind(t *testing.T) {
	err := &RemoteError{Message: "boom"}
	if err.Kind() != analyzer.KindInternal {
		t.Errorf("Kind() = %q, want internal", err.Kind())
	}
	if err.Error() != "boom" {
		t.Errorf("Error() = %q", err.Error())
	}
}
