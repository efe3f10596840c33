package health

import (
	"context"
	"time"

	grpctrace "github.com/DataDog/dd-trace-go/contrib/google.golang.org/grpc/v2"
	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/backoff"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
)

const DefaultTarget = "localhost:9090"

// ErrNotServing is returned by CheckServing when the service answered with any status but SERVING.
var ErrNotServing = errors.New("service is not serving")

// config holds the configuration for creating a health checker.
type config struct {
	target      string
	serviceName string
	dialTimeout time.Duration
	dialOptions []grpc.DialOption
}

// Option is a functional option for configuring the health checker creation.
type Option func(*config)

// WithTarget sets the target address for the gRPC connection (e.g., "localhost:9090").
func WithTarget(target string) Option {
	return func(c *config) {
		c.target = target
	}
}

// WithDialTimeout bounds how long a connection attempt may take.
func WithDialTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.dialTimeout = timeout
		}
	}
}

// WithTracing names the client spans produced by health calls.
func WithTracing(serviceName string) Option {
	return func(c *config) {
		c.serviceName = serviceName
	}
}

// WithDialOptions allows passing custom gRPC DialOptions.
func WithDialOptions(opts ...grpc.DialOption) Option {
	return func(c *config) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// Checker is a wrapper around the gRPC health client that manages the underlying connection.
type Checker struct {
	client grpc_health_v1.HealthClient
	conn   *grpc.ClientConn
}

// CheckServing returns nil only when service reports SERVING. An empty service name checks the
// server as a whole.
func (h *Checker) CheckServing(ctx context.Context, service string) error {
	resp, err := h.client.Check(ctx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return errors.Wrapf(err, "health check %q", service)
	}
	if resp.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
		return errors.Wrapf(ErrNotServing, "%q reported %s", service, resp.GetStatus())
	}
	return nil
}

// Close closes the underlying gRPC connection.
func (h *Checker) Close() error {
	if h.conn != nil {
		return h.conn.Close()
	}
	return nil
}

// NewChecker creates a new Checker with the provided functional options.
// The user should call Close() when done, typically with defer.
// Default target is DefaultTarget, insecure, and 10s dial timeout.
func NewChecker(opts ...Option) (*Checker, error) {
	c := &config{
		target:      DefaultTarget,
		dialTimeout: 10 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.target == "" {
		return nil, errors.New("target address is required")
	}

	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithConnectParams(grpc.ConnectParams{
			Backoff:           backoff.DefaultConfig,
			MinConnectTimeout: c.dialTimeout,
		}),
	}
	if c.serviceName != "" {
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(grpctrace.UnaryClientInterceptor(
			grpctrace.WithService(c.serviceName),
		)))
	}
	// caller options come last so they can replace the credentials
	dialOpts = append(dialOpts, c.dialOptions...)

	conn, err := grpc.NewClient(c.target, dialOpts...)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", c.target)
	}

	return &Checker{client: grpc_health_v1.NewHealthClient(conn), conn: conn}, nil
}
