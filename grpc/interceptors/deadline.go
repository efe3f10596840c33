package interceptors

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// ServerDeadlineInterceptor caps the processing time of every call. A shorter client deadline
// still wins.
func ServerDeadlineInterceptor(timeout time.Duration) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context, req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return handler(ctx, req)
	}
}

// ctxError reports the status of a handler that gave up because its context ended, while
// errors.Is still reaches the context error.
type ctxError struct {
	st    *status.Status
	cause error
}

func (e *ctxError) Error() string              { return e.st.Err().Error() }
func (e *ctxError) GRPCStatus() *status.Status { return e.st }
func (e *ctxError) Unwrap() error              { return e.cause }

// UnaryContextStatusInterceptor answers Canceled or DeadlineExceeded instead of Unknown when a
// handler returns a plain context error. Errors already carrying a status are left alone.
func UnaryContextStatusInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		_ *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}
		if _, ok := status.FromError(err); ok {
			return resp, err
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return resp, &ctxError{st: status.FromContextError(err), cause: err}
		}
		return resp, err
	}
}
