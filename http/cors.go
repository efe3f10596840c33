package http

import (
	"net/http"

	"github.com/gorilla/handlers"

	"github.com/rainbow-me/myapp/common/headers"
)

// CORSConfig holds the CORS configuration
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowedOrigins"`
	AllowedMethods   []string `mapstructure:"allowedMethods"`
	AllowedHeaders   []string `mapstructure:"allowedHeaders"`
	AllowCredentials bool     `mapstructure:"allowCredentials"`
}

// DefaultCORSConfig returns the default CORS configuration, disabled
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodOptions,
		},
		AllowedHeaders: []string{headers.HeaderAccept, headers.HeaderXRequestID, headers.HeaderXCorrelationData},
	}
}

// Apply wraps the handler with CORS middleware if enabled
func (c CORSConfig) Apply(handler http.Handler) http.Handler {
	if !c.Enabled {
		return handler
	}

	options := []handlers.CORSOption{
		handlers.AllowedOrigins(c.AllowedOrigins),
		handlers.AllowedMethods(c.AllowedMethods),
		handlers.AllowedHeaders(c.AllowedHeaders),
		handlers.ExposedHeaders(headers.GetHeadersToExpose()),
		handlers.OptionStatusCode(http.StatusNoContent),
	}
	if c.AllowCredentials {
		options = append(options, handlers.AllowCredentials())
	}
	return handlers.CORS(options...)(handler)
}

// WithProxyHeaders trusts X-Forwarded-For, X-Real-IP and X-Forwarded-Proto set by a load balancer
// in front of the service.
func WithProxyHeaders(handler http.Handler) http.Handler {
	return handlers.ProxyHeaders(handler)
}
