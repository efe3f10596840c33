package app

import (
	"time"

	"github.com/gin-contrib/gzip"

	"github.com/rainbow-me/myapp/common/config"
	"github.com/rainbow-me/myapp/common/env"
	"github.com/rainbow-me/myapp/common/logger"
	myhttp "github.com/rainbow-me/myapp/http"
	"github.com/rainbow-me/myapp/server"
)

const DefaultServiceName = "myapp"

// Config is the application configuration, read from <config dir>/<ENVIRONMENT>.yaml.
type Config struct {
	Service         ServiceConfig `mapstructure:"service"`
	HTTP            HTTPConfig    `mapstructure:"http"`
	Admin           AdminConfig   `mapstructure:"admin"`
	GRPC            GRPCConfig    `mapstructure:"grpc"`
	Tracing         TracingConfig `mapstructure:"tracing"`
	ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
}

type ServiceConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

type HTTPConfig struct {
	Address          string            `mapstructure:"address"`
	ReadTimeout      time.Duration     `mapstructure:"readTimeout"`
	WriteTimeout     time.Duration     `mapstructure:"writeTimeout"`
	IdleTimeout      time.Duration     `mapstructure:"idleTimeout"`
	HeaderTimeout    time.Duration     `mapstructure:"headerTimeout"`
	RequestTimeout   time.Duration     `mapstructure:"requestTimeout"`
	CompressionLevel int               `mapstructure:"compressionLevel"`
	Debug            bool              `mapstructure:"debug"`
	Trace            bool              `mapstructure:"trace"`
	ProxyHeaders     bool              `mapstructure:"proxyHeaders"`
	CORS             myhttp.CORSConfig `mapstructure:"cors"`
}

// AdminConfig configures the side listener serving liveness and readiness. Empty address disables it.
type AdminConfig struct {
	Address string `mapstructure:"address"`
}

// GRPCConfig configures the gRPC health listener. Empty address disables it.
type GRPCConfig struct {
	Address    string `mapstructure:"address"`
	Reflection bool   `mapstructure:"reflection"`
}

type TracingConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Metrics      bool   `mapstructure:"metrics"`
	Analytics    bool   `mapstructure:"analytics"`
	DebugStack   bool   `mapstructure:"debugStack"`
	AgentAddress string `mapstructure:"agentAddress"`
}

// Defaults returns the default value of every key, so each one can also be set from the environment.
func Defaults() map[string]any {
	cors := myhttp.DefaultCORSConfig()
	return map[string]any{
		"service.name":               DefaultServiceName,
		"service.version":            "",
		"http.address":               ":8080",
		"http.readTimeout":           server.DefaultHTTPReadTimeout,
		"http.writeTimeout":          server.DefaultHTTPWriteTimeout,
		"http.idleTimeout":           server.DefaultHTTPIdleTimeout,
		"http.headerTimeout":         server.DefaultHTTPHeaderTimeout,
		"http.requestTimeout":        time.Minute,
		"http.compressionLevel":      gzip.DefaultCompression,
		"http.debug":                 false,
		"http.trace":                 false,
		"http.proxyHeaders":          false,
		"http.cors.enabled":          cors.Enabled,
		"http.cors.allowedOrigins":   cors.AllowedOrigins,
		"http.cors.allowedMethods":   cors.AllowedMethods,
		"http.cors.allowedHeaders":   cors.AllowedHeaders,
		"http.cors.allowCredentials": cors.AllowCredentials,
		"admin.address":              ":8081",
		"grpc.address":               "",
		"grpc.reflection":            false,
		"tracing.enabled":            true,
		"tracing.metrics":            true,
		"tracing.analytics":          true,
		"tracing.debugStack":         false,
		"tracing.agentAddress":       "",
		"shutdownTimeout":            server.DefaultShutdownTimeout,
	}
}

// LoadConfig reads the configuration of environment. An empty dir uses the default config directory.
func LoadConfig(log *logger.Logger, environment env.Environment, dir string) (Config, error) {
	opts := []config.ReadConfigOption{
		config.WithEnvironment(environment),
		config.WithDefaults(Defaults()),
	}
	if dir != "" {
		opts = append(opts, config.WithAbsolutePath(dir))
	}

	var cfg Config
	if err := config.LoadConfig(&cfg, log, opts...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
