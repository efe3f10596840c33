package interceptors

import (
	"context"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/rainbow-me/myapp/common/correlation"
	"github.com/rainbow-me/myapp/common/headers"
)

// RequestIDUnaryServerInterceptor gives every call a request id, reusing the inbound
// x-request-id metadata when present, and echoes it in the response header.
func RequestIDUnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		var inbound string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(headers.HeaderXRequestID); len(values) > 0 {
				inbound = values[0]
			}
		}

		ctx = correlation.ContextWithRequestID(ctx, inbound)
		requestID := correlation.RequestIDFromContext(ctx)
		if span, ok := tracer.SpanFromContext(ctx); ok {
			span.SetTag("request_id", requestID)
		}
		_ = grpc.SetHeader(ctx, metadata.Pairs(headers.HeaderXRequestID, requestID))

		return handler(ctx, req)
	}
}
