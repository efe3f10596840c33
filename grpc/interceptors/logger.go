package interceptors

import (
	"context"
	"time"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/rainbow-me/myapp/common/correlation"
	"github.com/rainbow-me/myapp/common/logger"
)

type loggingConfig struct {
	skipMethods map[string]struct{}
	codeLevels  map[codes.Code]logger.Level
}

type LoggingOption func(*loggingConfig)

// WithSkippedMethods disables the call log for the given full method names.
func WithSkippedMethods(methods ...string) LoggingOption {
	return func(c *loggingConfig) {
		for _, m := range methods {
			c.skipMethods[m] = struct{}{}
		}
	}
}

// WithCodeLevel overrides the level used when a call ends with code.
func WithCodeLevel(code codes.Code, level logger.Level) LoggingOption {
	return func(c *loggingConfig) {
		c.codeLevels[code] = level
	}
}

// UnaryLoggerServerInterceptor logs one line per call with its method, code and duration.
// The request scoped logger is stored in the context for the handler.
func UnaryLoggerServerInterceptor(log *logger.Logger, opts ...LoggingOption) grpc.UnaryServerInterceptor {
	cfg := &loggingConfig{
		skipMethods: make(map[string]struct{}),
		codeLevels: map[codes.Code]logger.Level{
			codes.Canceled: logger.WarnLevel,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		fields := []logger.Field{
			logger.String("grpc.method", info.FullMethod),
			logger.String("request_id", correlation.RequestIDFromContext(ctx)),
		}
		if span, ok := tracer.SpanFromContext(ctx); ok {
			fields = append(fields, logger.WithTrace(span.Context())...)
		}
		reqLog := log.With(fields...)
		ctx = logger.ContextWithLogger(ctx, reqLog)

		start := time.Now()
		resp, err := handler(ctx, req)
		if _, skip := cfg.skipMethods[info.FullMethod]; skip {
			return resp, err
		}

		code := status.Code(err)
		level := logger.InfoLevel
		if err != nil {
			level = logger.ErrorLevel
			if l, ok := cfg.codeLevels[code]; ok {
				level = l
			}
		}
		reqLog.Log(level, "server.request",
			logger.String("grpc.code", code.String()),
			logger.Duration("duration", time.Since(start)),
			logger.Error(err),
		)
		return resp, err
	}
}
