package interceptors

import (
	"context"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/ext"
	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	grpcrecovery "github.com/grpc-ecosystem/go-grpc-middleware/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rainbow-me/myapp/common/logger"
)

// UnaryPanicRecoveryServerInterceptor turns a handler panic into codes.Internal, logging the
// panic with the request logger and flagging the active span. Panic details never reach the client.
func UnaryPanicRecoveryServerInterceptor() grpc.UnaryServerInterceptor {
	return grpcrecovery.UnaryServerInterceptor(
		grpcrecovery.WithRecoveryHandlerContext(func(ctx context.Context, panicValue any) error {
			logger.FromContext(ctx).Error("Recovered from panic in gRPC handler", logger.WithPanic(panicValue)...)

			if span, ok := tracer.SpanFromContext(ctx); ok {
				span.SetTag(ext.Error, true)
				span.SetTag(ext.ErrorType, "panic")
				span.SetTag(ext.ErrorMsg, codes.Internal.String())
			}
			return status.Error(codes.Internal, "Internal server error occurred")
		}),
	)
}
