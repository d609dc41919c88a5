package rpc

import (
	"context"
	"fmt"
	"time"

	"github.com/msto63/lexan/pkg/analyzer"
	coregrpc "github.com/msto63/lexan/pkg/core/grpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// RemoteError is an analysis error reported by a remote analyzer
type RemoteError struct {
	kind    string
	Code    codes.Code
	Message string
	Details map[string]any
}

// Error implements error
func (e *RemoteError) Error() string {
	return e.Message
}

// Kind returns the analysis error kind, or "internal" when the server did
// not report one
func (e *RemoteError) Kind() string {
	if e.kind == "" {
		return analyzer.KindInternal
	}
	return e.kind
}

// Fields returns the error document sent by the server
func (e *RemoteError) Fields() map[string]any {
	return e.Details
}

// Client calls a remote lexan.v1.Analyzer service
type Client struct {
	conn    *grpc.ClientConn
	timeout time.Duration
}

// NewClient dials target using cfg
func NewClient(cfg coregrpc.ClientConfig, opts ...grpc.DialOption) (*Client, error) {
	conn, err := coregrpc.Dial(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, timeout: cfg.Timeout}, nil
}

// Close closes the connection
func (c *Client) Close() error {
	return c.conn.Close()
}

// Tokenize lexes source on the remote analyzer
func (c *Client) Tokenize(ctx context.Context, source string) (*analyzer.Result, error) {
	return c.analyze(ctx, tokenizeMethod, source)
}

// Parse parses source on the remote analyzer. Nodes of the returned
// program carry no source positions.
func (c *Client) Parse(ctx context.Context, source string) (*analyzer.Result, error) {
	return c.analyze(ctx, parseMethod, source)
}

func (c *Client) analyze(ctx context.Context, method, source string) (*analyzer.Result, error) {
	doc, err := c.call(ctx, method, source)
	if err != nil {
		return nil, err
	}
	res, err := decodeResult(doc)
	if err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	return res, nil
}

func (c *Client) call(ctx context.Context, method, source string) (*structpb.Struct, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := structpb.NewStruct(map[string]any{"source": source})
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	var trailer metadata.MD
	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, method, req, out, grpc.Trailer(&trailer)); err != nil {
		return nil, fromStatus(err, trailer)
	}
	return out, nil
}

// fromStatus turns an InvalidArgument status carrying an error kind into a
// RemoteError. Other errors are returned unchanged.
func fromStatus(err error, trailer metadata.MD) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() != codes.InvalidArgument {
		return err
	}

	kinds := trailer.Get(ErrorKindTrailer)
	if len(kinds) == 0 {
		return err
	}

	remote := &RemoteError{
		kind:    kinds[0],
		Code:    st.Code(),
		Message: st.Message(),
	}
	for _, d := range st.Details() {
		if s, ok := d.(*structpb.Struct); ok {
			remote.Details = s.AsMap()
			break
		}
	}
	return remote
}
