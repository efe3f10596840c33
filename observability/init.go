package observability

import (
	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"

	"github.com/rainbow-me/myapp/common/logger"
)

type config struct {
	Enabled          bool
	MetricsEnabled   bool
	AnalyticsEnabled bool
	DebugStack       bool
	AgentAddr        string
	Version          string
}

type Option func(o *config)

// WithTracing enables/disables the tracer entirely. Default enabled.
// When disabled no span is ever active, so error pages fall back to the request id.
func WithTracing(enabled bool) Option {
	return func(c *config) {
		c.Enabled = enabled
	}
}

// WithMetrics enables/disables collection of Go Runtime Metrics. Default enabled.
func WithMetrics(enabled bool) Option {
	return func(c *config) {
		c.MetricsEnabled = enabled
	}
}

// WithAnalytics enables/disables trace analytics. Default enabled.
func WithAnalytics(enabled bool) Option {
	return func(c *config) {
		c.AnalyticsEnabled = enabled
	}
}

// WithDebugStack enables/disables capture of stack traces when an error is set on a span. Default disabled.
func WithDebugStack(enabled bool) Option {
	return func(c *config) {
		c.DebugStack = enabled
	}
}

// WithAgentAddr points the tracer at a specific DataDog agent (host:port).
func WithAgentAddr(addr string) Option {
	return func(c *config) {
		c.AgentAddr = addr
	}
}

// WithVersion tags every span with the service version.
func WithVersion(version string) Option {
	return func(c *config) {
		c.Version = version
	}
}

// InitObservability starts the DataDog tracer and returns the function that flushes and stops it.
// A tracer that fails to start is logged and the returned stop function is a no-op.
func InitObservability(serviceName, env string, log *logger.Logger, opts ...Option) (stop func()) {
	cfg := &config{
		Enabled:          true,
		MetricsEnabled:   true,
		AnalyticsEnabled: true,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if !cfg.Enabled {
		log.Info("Tracing disabled")
		return func() {}
	}

	log.Info("Starting tracer", logger.String("service", serviceName), logger.String("env", env))
	tracerOpts := []tracer.StartOption{
		tracer.WithEnv(env),
		tracer.WithService(serviceName),
		tracer.WithLogger((*logger.Adapter)(log)),
		tracer.WithDebugStack(cfg.DebugStack),
		tracer.WithAnalytics(cfg.AnalyticsEnabled),
	}
	if cfg.MetricsEnabled {
		tracerOpts = append(tracerOpts, tracer.WithRuntimeMetrics())
	}
	if cfg.AgentAddr != "" {
		tracerOpts = append(tracerOpts, tracer.WithAgentAddr(cfg.AgentAddr))
	}
	if cfg.Version != "" {
		tracerOpts = append(tracerOpts, tracer.WithServiceVersion(cfg.Version))
	}

	if err := tracer.Start(tracerOpts...); err != nil {
		log.Error("Failed to start tracer", logger.Error(err))
		return func() {}
	}
	return tracer.Stop
}
