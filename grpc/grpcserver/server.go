package grpcserver

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/rainbow-me/myapp/common/logger"
	"github.com/rainbow-me/myapp/grpc/interceptors"
)

const (
	// DefaultGRPCMaxMsgSize defines the default gRPC max message size in
	// bytes the server can receive or send.
	DefaultGRPCMaxMsgSize = 1024 * 1024 * 10 // 10MB
)

type options struct {
	reflection    bool
	chainOptions  []interceptors.ConfigOption
	serverOptions []grpc.ServerOption
}

type Option func(*options)

// WithReflection exposes the service descriptors to tools like grpcurl.
func WithReflection(enabled bool) Option {
	return func(o *options) {
		o.reflection = enabled
	}
}

func WithChainOptions(opts ...interceptors.ConfigOption) Option {
	return func(o *options) {
		o.chainOptions = append(o.chainOptions, opts...)
	}
}

// WithServerOptions appends raw grpc options, applied after the defaults.
func WithServerOptions(opts ...grpc.ServerOption) Option {
	return func(o *options) {
		o.serverOptions = append(o.serverOptions, opts...)
	}
}

// NewServer builds a gRPC server running the default interceptor chain for serviceName.
func NewServer(log *logger.Logger, serviceName string, opts ...Option) *grpc.Server {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	chain := interceptors.NewDefaultServerUnaryChain(log, serviceName, o.chainOptions...)
	srv := NewServerWithCustomInterceptorChain(chain, o.serverOptions...)
	if o.reflection {
		reflection.Register(srv)
	}
	return srv
}

// NewServerWithCustomInterceptorChain creates a gRPC server with the given unary chain, message
// limits and conservative keepalive settings. serverOptions are appended last and may override
// any of them.
func NewServerWithCustomInterceptorChain(
	unaryChain *interceptors.UnaryServerInterceptorChain,
	serverOptions ...grpc.ServerOption,
) *grpc.Server {
	var chainedUnaryInterceptor grpc.UnaryServerInterceptor
	if unaryChain != nil {
		chainedUnaryInterceptor = unaryChain.Commit()
	} else {
		chainedUnaryInterceptor = func(
			ctx context.Context,
			req any,
			_ *grpc.UnaryServerInfo,
			handler grpc.UnaryHandler,
		) (any, error) {
			return handler(ctx, req)
		}
	}

	unknownHandler := func(_ any, _ grpc.ServerStream) error {
		return status.Error(codes.Unimplemented, "Unknown route")
	}

	baseServerOptions := []grpc.ServerOption{
		grpc.UnaryInterceptor(chainedUnaryInterceptor),
		grpc.UnknownServiceHandler(unknownHandler),
		grpc.MaxRecvMsgSize(DefaultGRPCMaxMsgSize),
		grpc.MaxSendMsgSize(DefaultGRPCMaxMsgSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second, // Ping every 30s if no activity.
			Timeout: 10 * time.Second, // Wait 10s for ping ack.
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second, // Clients must wait 5s between pings.
			PermitWithoutStream: true,            // Allow pings even without active streams.
		}),
	}

	return grpc.NewServer(append(baseServerOptions, serverOptions...)...)
}
