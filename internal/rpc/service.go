// ============================================================================
// lexan - Lexical and Syntax Analyzer
// ============================================================================
//
// Package:     rpc
// Description: gRPC analyzer service carrying google.protobuf.Struct payloads
// Author:      Mike Stoffels
// Created:     2026-10-10
// License:     MIT
// ============================================================================

// Package rpc exposes the analyzer as the gRPC service lexan.v1.Analyzer.
// Requests and responses are google.protobuf.Struct documents so that no
// generated code is needed on either side. A request carries a single
// string field "source"; responses mirror the JSON bodies of the HTTP API.
//
// Rejected input is reported with codes.InvalidArgument. The error kind is
// sent in the x-error-kind trailer and the error document as a Struct
// status detail.
package rpc

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/msto63/lexan/pkg/analyzer"
	coregrpc "github.com/msto63/lexan/pkg/core/grpc"
	"github.com/msto63/lexan/pkg/core/logging"
	"github.com/msto63/lexan/pkg/render"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName = "lexan.v1.Analyzer"

	// ErrorKindTrailer carries the analysis error kind
	ErrorKindTrailer = coregrpc.ErrorKindKey

	tokenizeMethod = "/" + ServiceName + "/Tokenize"
	parseMethod    = "/" + ServiceName + "/Parse"
)

// AnalyzerServer is the server API for the lexan.v1.Analyzer service
type AnalyzerServer interface {
	Tokenize(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Parse(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// ServiceDesc describes lexan.v1.Analyzer for grpc.Server.RegisterService
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AnalyzerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Tokenize", Handler: tokenizeHandler},
		{MethodName: "Parse", Handler: parseHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "lexan/v1/analyzer.proto",
}

func tokenizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalyzerServer).Tokenize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: tokenizeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AnalyzerServer).Tokenize(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

func parseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AnalyzerServer).Parse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: parseMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AnalyzerServer).Parse(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}

// Service implements AnalyzerServer on top of an analyzer
type Service struct {
	analyzer *analyzer.Analyzer
	logger   *logging.Logger
}

// NewService creates the gRPC analyzer service
func NewService(a *analyzer.Analyzer) *Service {
	return &Service{
		analyzer: a,
		logger:   logging.New("lexan-rpc"),
	}
}

// Register creates a Service for a and registers it on s
func Register(s grpc.ServiceRegistrar, a *analyzer.Analyzer) *Service {
	svc := NewService(a)
	s.RegisterService(&ServiceDesc, svc)
	return svc
}

// Tokenize implements the Tokenize RPC
func (s *Service) Tokenize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := sourceOf(req)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.Tokenize(s.requestContext(ctx), source)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}
	return toStruct(render.ToMap(res))
}

// Parse implements the Parse RPC
func (s *Service) Parse(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	source, err := sourceOf(req)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.Parse(s.requestContext(ctx), source)
	if err != nil {
		return nil, s.toStatus(ctx, err)
	}

	body := render.ToMap(res).(map[string]any)
	body["tuple"] = render.Tuple(res.Program)
	return toStruct(body)
}

// requestContext propagates the gRPC request id into the analyzer
func (s *Service) requestContext(ctx context.Context) context.Context {
	if id := coregrpc.GetRequestID(ctx); id != "" {
		return analyzer.WithRequestID(ctx, id)
	}
	return ctx
}

func sourceOf(req *structpb.Struct) (string, error) {
	v, ok := req.GetFields()["source"]
	if !ok {
		return "", status.Error(codes.InvalidArgument, "source is required")
	}
	sv, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", status.Error(codes.InvalidArgument, "source must be a string")
	}
	return sv.StringValue, nil
}

// toStatus maps analyzer errors onto gRPC status codes
func (s *Service) toStatus(ctx context.Context, err error) error {
	switch {
	case analyzer.IsAnalysisError(err):
		kind := analyzer.KindOf(err)
		_ = grpc.SetTrailer(ctx, metadata.Pairs(ErrorKindTrailer, kind))

		st := status.New(codes.InvalidArgument, err.Error())
		if detail, derr := toStruct(render.ErrorMap(err)); derr == nil {
			if withDetail, werr := st.WithDetails(detail); werr == nil {
				st = withDetail
			}
		}
		return st.Err()
	case errors.Is(err, analyzer.ErrInputTooLarge):
		return status.Error(codes.ResourceExhausted, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return status.FromContextError(err).Err()
	default:
		s.logger.Error("Analysis failed", "error", err)
		return status.Error(codes.Internal, "analysis failed")
	}
}

// toStruct converts a rendered document into a Struct. The document is
// passed through JSON so nested []map[string]any and []string values are
// accepted.
func toStruct(doc any) (*structpb.Struct, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode response: %v", err)
	}
	return out, nil
}
