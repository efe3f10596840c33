// Package app wires the configuration, the web router and the side listeners into one process.
package app

import (
	"context"
	"sync/atomic"

	"github.com/rainbow-me/myapp/common/env"
	"github.com/rainbow-me/myapp/common/logger"
	"github.com/rainbow-me/myapp/grpc/grpcserver"
	"github.com/rainbow-me/myapp/grpc/health"
	"github.com/rainbow-me/myapp/grpc/interceptors"
	"github.com/rainbow-me/myapp/observability"
	"github.com/rainbow-me/myapp/server"
)

const (
	webServerName   = "web"
	adminServerName = "admin"
	grpcServerName  = "grpc"
)

type App struct {
	cfg         Config
	environment env.Environment
	log         *logger.Logger
	health      *health.Server
	ready       atomic.Bool
}

func New(cfg Config, environment env.Environment, log *logger.Logger) *App {
	if cfg.Service.Name == "" {
		cfg.Service.Name = DefaultServiceName
	}
	if log == nil {
		log = logger.NewLogger(nil)
	}
	a := &App{
		cfg:         cfg,
		environment: environment,
		log:         log,
		health:      health.NewServer(cfg.Service.Name),
	}
	a.setReady(false)
	return a
}

// Ready reports whether the process accepts traffic.
func (a *App) Ready() bool {
	return a.ready.Load()
}

func (a *App) setReady(ready bool) {
	a.ready.Store(ready)
	a.health.SetServing(ready)
}

// NewServer assembles the listeners and shutdown hooks without starting them.
func (a *App) NewServer(stopTracer func()) (*server.Server, error) {
	httpTimeouts := []server.HTTPConfigOption{
		server.WithHTTPReadTimeout(a.cfg.HTTP.ReadTimeout),
		server.WithHTTPWriteTimeout(a.cfg.HTTP.WriteTimeout),
		server.WithHTTPIdleTimeout(a.cfg.HTTP.IdleTimeout),
		server.WithHTTPHeaderTimeout(a.cfg.HTTP.HeaderTimeout),
	}

	opts := []server.Option{
		server.WithLogger(a.log),
		server.WithHTTPServer(webServerName, a.cfg.HTTP.Address, a.Handler(), httpTimeouts...),
		server.WithShutdownHook(server.ShutdownHook{
			Name:     "tracer",
			Priority: 10,
			Hook: func(_ context.Context) error {
				stopTracer()
				return nil
			},
		}),
		server.WithShutdownHook(server.ShutdownHook{
			Name:     "logger",
			Priority: 100,
			Hook: func(_ context.Context) error {
				// syncing stderr fails on most platforms, nothing to act on
				_ = a.log.Sync()
				return nil
			},
		}),
	}
	if a.cfg.ShutdownTimeout > 0 {
		opts = append(opts, server.WithShutdownTimeout(a.cfg.ShutdownTimeout))
	}
	if a.cfg.Admin.Address != "" {
		opts = append(opts, server.WithHTTPServer(adminServerName, a.cfg.Admin.Address, a.AdminHandler()))
	}
	if a.cfg.GRPC.Address != "" {
		grpcSrv := grpcserver.NewServer(a.log, a.cfg.Service.Name,
			grpcserver.WithReflection(a.cfg.GRPC.Reflection),
			grpcserver.WithChainOptions(
				interceptors.WithAnalytics(a.cfg.Tracing.Analytics),
				interceptors.WithRequestTimeout(a.cfg.HTTP.RequestTimeout),
			),
		)
		opts = append(opts, server.WithGRPCServer(grpcServerName, a.cfg.GRPC.Address, grpcSrv, a.health.Register))
	}

	return server.NewServer(opts...)
}

// Run starts the tracer and every listener, and blocks until ctx is cancelled and the graceful
// shutdown has completed.
func (a *App) Run(ctx context.Context) error {
	stopTracer := observability.InitObservability(a.cfg.Service.Name, a.environment.String(), a.log,
		observability.WithTracing(a.cfg.Tracing.Enabled),
		observability.WithMetrics(a.cfg.Tracing.Metrics),
		observability.WithAnalytics(a.cfg.Tracing.Analytics),
		observability.WithDebugStack(a.cfg.Tracing.DebugStack),
		observability.WithAgentAddr(a.cfg.Tracing.AgentAddress),
		observability.WithVersion(a.cfg.Service.Version),
	)

	srv, err := a.NewServer(stopTracer)
	if err != nil {
		stopTracer()
		return err
	}
	return a.serve(ctx, srv, stopTracer)
}

// serve runs srv until ctx ends. stopTracer is normally called by the shutdown hooks; when the
// listeners never came up those hooks do not run, so serve calls it instead.
func (a *App) serve(ctx context.Context, srv *server.Server, stopTracer func()) error {
	stop := context.AfterFunc(ctx, func() {
		a.log.Info("shutdown requested, marking instance as not ready")
		a.setReady(false)
	})
	defer stop()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-srv.Ready():
			if ctx.Err() == nil {
				a.setReady(true)
				a.log.Info("instance ready", logger.String("service", a.cfg.Service.Name), logger.String("env", a.environment.String()))
			}
		case <-done:
		}
	}()
	err := srv.Serve(ctx)
	select {
	case <-srv.Ready():
	default:
		stopTracer()
	}
	return err
}
