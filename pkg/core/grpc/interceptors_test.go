package grpc

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/msto63/lexan/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var testInfo = &grpc.UnaryServerInfo{FullMethod: "/lexan.v1.Analyzer/Parse"}

func TestRecoveryInterceptor(t *testing.T) {
	interceptor := RecoveryInterceptor()

	_, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		panic("boom")
	})
	if status.Code(err) != codes.Internal {
		t.Errorf("code = %v, want Internal", status.Code(err))
	}

	resp, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		return "ok", nil
	})
	if err != nil || resp != "ok" {
		t.Errorf("passthrough = %v, %v", resp, err)
	}
}

func TestRequestIDInterceptor_Generates(t *testing.T) {
	interceptor := RequestIDInterceptor()

	var seen string
	_, _ = interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	})

	if _, err := uuid.Parse(seen); err != nil {
		t.Errorf("request id %q is not a UUID: %v", seen, err)
	}
}

func TestRequestIDInterceptor_FromMetadata(t *testing.T) {
	interceptor := RequestIDInterceptor()
	ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(RequestIDHeader, "req-42"))

	var seen string
	_, _ = interceptor(ctx, nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		seen = GetRequestID(ctx)
		return nil, nil
	})

	if seen != "req-42" {
		t.Errorf("request id = %q, want req-42", seen)
	}
}

func TestLoggingInterceptor_PassesError(t *testing.T) {
	interceptor := LoggingInterceptor()
	want := status.Error(codes.InvalidArgument, "bad input")

	_, err := interceptor(context.Background(), nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, want
	})
	if !errors.Is(err, want) {
		t.Errorf("err = %v, want %v", err, want)
	}
}

// rejected builds an InvalidArgument status carrying an error document
func rejected(t *testing.T, kind string) error {
	t.Helper()
	detail, err := structpb.NewStruct(map[string]any{"kind": kind, "message": "bad input"})
	if err != nil {
		t.Fatal(err)
	}
	st, err := status.New(codes.InvalidArgument, "bad input").WithDetails(detail)
	if err != nil {
		t.Fatal(err)
	}
	return st.Err()
}

func TestLoggingInterceptor_ErrorKind(t *testing.T) {
	var buf bytes.Buffer
	if _, err := logging.Setup(logging.Config{Level: "debug", Format: "json", Output: &buf}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { logging.Setup(logging.DefaultConfig()) })

	interceptor := LoggingInterceptor()
	ctx := WithRequestID(context.Background(), "req-9")
	_, _ = interceptor(ctx, nil, testInfo, func(ctx context.Context, req interface{}) (interface{}, error) {
		return nil, rejected(t, "semantic")
	})

	out := buf.String()
	for _, want := range []string{`"level":"WARN"`, `"error_kind":"semantic"`, `"request_id":"req-9"`, `"status":"InvalidArgument"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log output %s lacks %s", out, want)
		}
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), ""},
		{"status without details", status.Error(codes.InvalidArgument, "x"), ""},
		{"status with document", rejected(t, "lexical"), "lexical"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetRequestID(t *testing.T) {
	if id := GetRequestID(context.Background()); id != "" {
		t.Errorf("GetRequestID(empty) = %q", id)
	}
	if id := GetRequestID(WithRequestID(context.Background(), "abc")); id != "abc" {
		t.Errorf("GetRequestID = %q, want abc", id)
	}
}

func TestClientRequestIDInterceptor(t *testing.T) {
	interceptor := ClientRequestIDInterceptor()
	ctx := WithRequestID(context.Background(), "client-1")

	var sent []string
	err := interceptor(ctx, "/x/y", nil, nil, nil, func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		sent = md.Get(RequestIDHeader)
		return nil
	})
	if err != nil {
		t.Fatalf("interceptor error = %v", err)
	}
	if len(sent) != 1 || sent[0] != "client-1" {
		t.Errorf("outgoing %s = %v", RequestIDHeader, sent)
	}
}
