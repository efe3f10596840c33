package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"google.golang.org/grpc"
)

var (
	DefaultShutdownTimeout   = 30 * time.Second
	DefaultHookTimeout       = 5 * time.Second
	DefaultHTTPReadTimeout   = 5 * time.Second
	DefaultHTTPWriteTimeout  = 10 * time.Second
	DefaultHTTPIdleTimeout   = 120 * time.Second
	DefaultHTTPHeaderTimeout = 2 * time.Second
)

// HTTPConfig holds configuration for HTTP servers
type HTTPConfig struct {
	Name          string        // Unique name for this server (used in logging)
	Address       string        // Address to bind to (e.g., ":8080")
	Handler       http.Handler  // HTTP handler for this server (pre-configured with routes and middlewares)
	ReadTimeout   time.Duration // Maximum duration for reading the entire request
	WriteTimeout  time.Duration // Maximum duration before timing out writes
	IdleTimeout   time.Duration // Maximum amount of time to wait for next request when keep-alives are enabled
	HeaderTimeout time.Duration // Amount of time allowed to read request headers
}

// GRPCConfig holds configuration for gRPC servers
type GRPCConfig struct {
	Name       string             // Unique name for this server (used in logging)
	Address    string             // Address to bind to (e.g., ":9090")
	GRPCServer *grpc.Server       // Existing gRPC server instance; if not provided, one will be created
	SetupFunc  func(*grpc.Server) // Function to register services on the gRPC server
}

// ShutdownHook is cleanup run once the listeners have stopped. Hooks run one at a time in
// ascending Priority, each bounded by its own Timeout (DefaultHookTimeout when unset).
type ShutdownHook struct {
	Name     string
	Priority int
	Timeout  time.Duration
	Hook     func(context.Context) error
}

// ShutdownHooks orders hooks by Priority for sort.Stable.
type ShutdownHooks []ShutdownHook

func (h ShutdownHooks) Len() int           { return len(h) }
func (h ShutdownHooks) Less(i, j int) bool { return h[i].Priority < h[j].Priority }
func (h ShutdownHooks) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

// HTTPConfigOption is a functional option for configuring HTTPConfig
type HTTPConfigOption func(*HTTPConfig)

// WithHTTPReadTimeout sets the read timeout for the HTTP config
func WithHTTPReadTimeout(timeout time.Duration) HTTPConfigOption {
	return func(c *HTTPConfig) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

// WithHTTPWriteTimeout sets the write timeout for the HTTP config
func WithHTTPWriteTimeout(timeout time.Duration) HTTPConfigOption {
	return func(c *HTTPConfig) {
		if timeout > 0 {
			c.WriteTimeout = timeout
		}
	}
}

// WithHTTPIdleTimeout sets the idle timeout for the HTTP config
func WithHTTPIdleTimeout(timeout time.Duration) HTTPConfigOption {
	return func(c *HTTPConfig) {
		if timeout > 0 {
			c.IdleTimeout = timeout
		}
	}
}

// WithHTTPHeaderTimeout sets the header timeout for the HTTP config
func WithHTTPHeaderTimeout(timeout time.Duration) HTTPConfigOption {
	return func(c *HTTPConfig) {
		if timeout > 0 {
			c.HeaderTimeout = timeout
		}
	}
}

func newHTTPConfig(name, address string, handler http.Handler, opts ...HTTPConfigOption) HTTPConfig {
	cfg := HTTPConfig{
		Name:          name,
		Address:       address,
		Handler:       handler,
		ReadTimeout:   DefaultHTTPReadTimeout,
		WriteTimeout:  DefaultHTTPWriteTimeout,
		IdleTimeout:   DefaultHTTPIdleTimeout,
		HeaderTimeout: DefaultHTTPHeaderTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// ephemeral addresses may be shared, the kernel picks distinct ports
func isEphemeral(address string) bool {
	return strings.HasSuffix(address, ":0")
}
