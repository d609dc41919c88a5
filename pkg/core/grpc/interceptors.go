package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/msto63/lexan/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Context keys for request metadata
type contextKey string

const (
	RequestIDKey    contextKey = "request_id"
	RequestIDHeader string     = "x-request-id"

	// ErrorKindKey is the trailer naming the category of a rejected input
	ErrorKindKey = "x-error-kind"
)

// RecoveryInterceptor turns a panicking handler into codes.Internal
func RecoveryInterceptor() grpc.UnaryServerInterceptor {
	logger := logging.New("grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Handler panicked",
					"request_id", GetRequestID(ctx),
					"method", info.FullMethod,
					"panic", r,
					"stack", string(debug.Stack()),
				)
				err = status.Errorf(codes.Internal, "internal server error")
			}
		}()
		return handler(ctx, req)
	}
}

// LoggingInterceptor logs one line per call. Rejected input is logged at
// warn level with its error kind, server faults at error level.
func LoggingInterceptor() grpc.UnaryServerInterceptor {
	logger := logging.New("grpc")
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		kv := []any{
			"request_id", GetRequestID(ctx),
			"method", info.FullMethod,
			"status", code.String(),
			"duration", time.Since(start),
		}
		switch code {
		case codes.OK:
			logger.Info("gRPC request", kv...)
		case codes.InvalidArgument, codes.ResourceExhausted:
			if kind := ErrorKind(err); kind != "" {
				kv = append(kv, "error_kind", kind)
			}
			logger.Warn("gRPC request rejected", kv...)
		default:
			logger.Error("gRPC request failed", append(kv, "error", status.Convert(err).Message())...)
		}

		return resp, err
	}
}

// RequestIDInterceptor adds a request ID to the context and echoes it in
// the response header
func RequestIDInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := extractRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx = context.WithValue(ctx, RequestIDKey, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs(RequestIDHeader, requestID))

		return handler(ctx, req)
	}
}

// ClientRequestIDInterceptor propagates request ID to outgoing requests
func ClientRequestIDInterceptor() grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		requestID := GetRequestID(ctx)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx = metadata.AppendToOutgoingContext(ctx, RequestIDHeader, requestID)

		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// ClientLoggingInterceptor logs outgoing calls with the error kind the
// server reported in its trailer
func ClientLoggingInterceptor() grpc.UnaryClientInterceptor {
	logger := logging.New("grpc-client")
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()

		var trailer metadata.MD
		opts = append(opts[:len(opts):len(opts)], grpc.Trailer(&trailer))
		err := invoker(ctx, method, req, reply, cc, opts...)

		kv := []any{
			"method", method,
			"status", status.Code(err).String(),
			"duration", time.Since(start),
		}
		if kinds := trailer.Get(ErrorKindKey); len(kinds) > 0 {
			kv = append(kv, "error_kind", kinds[0])
		}
		logger.Debug("gRPC client request", kv...)

		return err
	}
}

// ErrorKind returns the "kind" field of the first Struct detail attached
// to a status error, or "" when there is none
func ErrorKind(err error) string {
	st, ok := status.FromError(err)
	if !ok || st == nil {
		return ""
	}
	for _, d := range st.Details() {
		if s, ok := d.(*structpb.Struct); ok {
			return s.GetFields()["kind"].GetStringValue()
		}
	}
	return ""
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return extractRequestID(ctx)
}

// extractRequestID extracts request ID from incoming metadata
func extractRequestID(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}

	values := md.Get(RequestIDHeader)
	if len(values) > 0 {
		return values[0]
	}
	return ""
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}
