package interceptors

import (
	"time"

	grpctrace "github.com/DataDog/dd-trace-go/contrib/google.golang.org/grpc/v2"

	"github.com/rainbow-me/myapp/common/logger"
)

const (
	healthCheckMethod = "/grpc.health.v1.Health/Check"

	DefaultRequestTimeout = 30 * time.Second
)

// Config holds the options of the default server chain.
type Config struct {
	ServiceName    string
	RequestTimeout time.Duration
	Analytics      bool
	LoggingOptions []LoggingOption
}

// ConfigOption is a functional option for configuring the interceptor chain
type ConfigOption func(*Config)

// WithRequestTimeout sets the server-side request timeout duration, zero disables it
func WithRequestTimeout(timeout time.Duration) ConfigOption {
	return func(c *Config) {
		c.RequestTimeout = timeout
	}
}

func WithAnalytics(enabled bool) ConfigOption {
	return func(c *Config) {
		c.Analytics = enabled
	}
}

func WithLoggingOptions(opts ...LoggingOption) ConfigOption {
	return func(c *Config) {
		c.LoggingOptions = append(c.LoggingOptions, opts...)
	}
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig(serviceName string, opts ...ConfigOption) *Config {
	cfg := &Config{
		ServiceName:    serviceName,
		RequestTimeout: DefaultRequestTimeout,
		LoggingOptions: []LoggingOption{WithSkippedMethods(healthCheckMethod)},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// NewDefaultServerUnaryChain creates the server chain:
//
//	server-deadline -> trace -> request-id -> logger -> context-status -> panic-recovery
//
// Health checks are neither traced nor logged.
func NewDefaultServerUnaryChain(log *logger.Logger, serviceName string, opts ...ConfigOption) *UnaryServerInterceptorChain {
	cfg := NewConfig(serviceName, opts...)
	chain := NewUnaryServerInterceptorChain()

	if cfg.RequestTimeout > 0 {
		chain.Push("server-deadline", ServerDeadlineInterceptor(cfg.RequestTimeout))
	}
	chain.Push("trace", grpctrace.UnaryServerInterceptor(
		grpctrace.WithService(cfg.ServiceName),
		grpctrace.WithAnalytics(cfg.Analytics),
		grpctrace.WithUntracedMethods(healthCheckMethod),
	))
	chain.Push("request-id", RequestIDUnaryServerInterceptor())
	if log != nil {
		chain.Push("logger", UnaryLoggerServerInterceptor(log, cfg.LoggingOptions...))
	}
	chain.Push("context-status", UnaryContextStatusInterceptor())
	chain.Push("panic-recovery", UnaryPanicRecoveryServerInterceptor())
	return chain
}
