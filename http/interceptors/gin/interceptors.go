package gin

import (
	"io"
	"os"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/rainbow-me/myapp/common/env"
)

const (
	httpHandlerOp = "http.handler"
	componentName = "gin"
)

type interceptorCfg struct {
	TracingEnabled     bool
	CorrelationEnabled bool
	CompressionLevel   int
	HTTPDebug          bool
	HTTPTrace          bool
	Timeout            time.Duration
	ErrorRenderer      ErrorRenderer
	Environment        env.Environment
}

type InterceptorOpt func(cfg *interceptorCfg)

// WithCorrelationEnabled enables/disables correlation and request ids. Default is enabled.
func WithCorrelationEnabled(enabled bool) InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.CorrelationEnabled = enabled
	}
}

// WithTimeout sets the http handler timeout. Default is 1 minute.
func WithTimeout(timeout time.Duration) InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.Timeout = timeout
	}
}

// WithTracingEnabled enables/disables tracing. Default is enabled.
func WithTracingEnabled(enabled bool) InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.TracingEnabled = enabled
	}
}

// WithHTTPDebug enables printing log line with request info and duration for every request
func WithHTTPDebug() InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.HTTPDebug = true
	}
}

// WithHTTPTrace enables deeper http debugging by also printing the whole request and response body
func WithHTTPTrace() InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.HTTPDebug = true
		cfg.HTTPTrace = true
	}
}

// WithCompressionLevel specifies the gzip compression level, default is gzip.DefaultCompression.
// Disable by using gzip.NoCompression.
func WithCompressionLevel(level int) InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.CompressionLevel = level
	}
}

// WithErrorRenderer sets how handler errors and panics are turned into a response.
// Default is JSONErrorRenderer.
func WithErrorRenderer(renderer ErrorRenderer) InterceptorOpt {
	return func(cfg *interceptorCfg) {
		if renderer != nil {
			cfg.ErrorRenderer = renderer
		}
	}
}

// WithEnvironment sets the environment the server runs in. Local environments also get handler
// errors and panic stacks pretty printed to stderr. Default prints nothing.
func WithEnvironment(environment env.Environment) InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.Environment = environment
	}
}

// DefaultInterceptors returns all our default interceptors for Gin servers.
// Defaults can be changed by passing any of the WithXXX options.
//
// Tracing and correlation run first so that everything after them, including the error
// renderer, sees the active span and the request id.
func DefaultInterceptors(opts ...InterceptorOpt) []gin.HandlerFunc {
	cfg := &interceptorCfg{
		TracingEnabled:     true,
		CorrelationEnabled: true,
		CompressionLevel:   gzip.DefaultCompression,
		Timeout:            time.Minute,
		ErrorRenderer:      JSONErrorRenderer,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	var console io.Writer
	if cfg.Environment.IsLocal() {
		console = os.Stderr
	}

	var middlewares []gin.HandlerFunc
	if cfg.TracingEnabled {
		middlewares = append(middlewares, TracingMiddleware)
	}
	if cfg.CorrelationEnabled {
		middlewares = append(middlewares, CorrelationMiddleware)
	}
	// gzip does not restore the writer it swaps in, so anything that may still write after the
	// handler returns must sit inside it
	if cfg.CompressionLevel != gzip.NoCompression {
		middlewares = append(middlewares, gzip.Gzip(cfg.CompressionLevel))
	}
	middlewares = append(middlewares,
		RequestLogging(loggingCfg{
			debug: cfg.HTTPDebug,
			trace: cfg.HTTPTrace,
		}),
		PanicRecoveryMiddleware(cfg.ErrorRenderer, console),
		ErrorHandlingMiddleware(cfg.ErrorRenderer, console),
	)
	if cfg.Timeout > 0 {
		middlewares = append(middlewares, TimeoutMiddleware(cfg.Timeout))
	}

	return middlewares
}
