package server

import (
	"context"
	"net"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/rainbow-me/myapp/common/logger"
)

var (
	ErrNoServers       = errors.New("no servers configured")
	ErrHookTimeout     = errors.New("shutdown hook timed out")
	ErrAlreadyServing  = errors.New("server is already serving")
	errMissingHandler  = errors.New("http handler is required")
	errMissingGRPCSpec = errors.New("grpc server or setup function is required")
)

// Server runs a set of HTTP and gRPC listeners under one lifecycle. Serve blocks until the
// context is cancelled or a listener fails, then shuts every listener down and runs the
// shutdown hooks in priority order.
type Server struct {
	httpConfigs     []HTTPConfig
	grpcConfigs     []GRPCConfig
	hooks           ShutdownHooks
	shutdownTimeout time.Duration
	log             *logger.Logger

	mu      sync.Mutex
	serving bool
	addrs   map[string]net.Addr
	ready   chan struct{}
}

// Option configures a Server.
type Option func(*Server) error

// WithHTTPServer adds an HTTP listener. The handler must already carry its routes and middlewares.
func WithHTTPServer(name, address string, handler http.Handler, opts ...HTTPConfigOption) Option {
	return func(s *Server) error {
		if handler == nil {
			return errors.Wrapf(errMissingHandler, "http server %q", name)
		}
		s.httpConfigs = append(s.httpConfigs, newHTTPConfig(name, address, handler, opts...))
		return nil
	}
}

// WithGRPCServer adds a gRPC listener. When grpcServer is nil a plain one is created and
// setupFunc must register the services on it.
func WithGRPCServer(name, address string, grpcServer *grpc.Server, setupFunc func(*grpc.Server)) Option {
	return func(s *Server) error {
		if grpcServer == nil && setupFunc == nil {
			return errors.Wrapf(errMissingGRPCSpec, "grpc server %q", name)
		}
		s.grpcConfigs = append(s.grpcConfigs, GRPCConfig{
			Name:       name,
			Address:    address,
			GRPCServer: grpcServer,
			SetupFunc:  setupFunc,
		})
		return nil
	}
}

// WithShutdownTimeout bounds the whole shutdown sequence, hooks included.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) error {
		if timeout <= 0 {
			return errors.Newf("shutdown timeout must be positive, got %s", timeout)
		}
		s.shutdownTimeout = timeout
		return nil
	}
}

// WithShutdownHook registers a cleanup function executed after the listeners stop.
func WithShutdownHook(hook ShutdownHook) Option {
	return func(s *Server) error {
		if hook.Hook == nil {
			return errors.Newf("shutdown hook %q has no function", hook.Name)
		}
		if hook.Timeout <= 0 {
			hook.Timeout = DefaultHookTimeout
		}
		s.hooks = append(s.hooks, hook)
		return nil
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(s *Server) error {
		s.log = log
		return nil
	}
}

// NewServer validates the options and returns a Server ready to Serve.
func NewServer(opts ...Option) (*Server, error) {
	s := &Server{
		shutdownTimeout: DefaultShutdownTimeout,
		log:             logger.NewLogger(nil),
		addrs:           make(map[string]net.Addr),
		ready:           make(chan struct{}),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if err := s.validate(); err != nil {
		return nil, err
	}

	for i := range s.grpcConfigs {
		cfg := &s.grpcConfigs[i]
		if cfg.GRPCServer == nil {
			cfg.GRPCServer = grpc.NewServer()
		}
		if cfg.SetupFunc != nil {
			cfg.SetupFunc(cfg.GRPCServer)
		}
	}
	sort.Stable(s.hooks)
	return s, nil
}

func (s *Server) validate() error {
	names := make(map[string]struct{})
	addresses := make(map[string]string)
	check := func(name, address string) error {
		if _, ok := names[name]; ok {
			return errors.Newf("duplicate server name %q", name)
		}
		names[name] = struct{}{}
		if isEphemeral(address) {
			return nil
		}
		if other, ok := addresses[address]; ok {
			return errors.Newf("servers %q and %q share address %q", other, name, address)
		}
		addresses[address] = name
		return nil
	}

	for _, cfg := range s.httpConfigs {
		if err := check(cfg.Name, cfg.Address); err != nil {
			return err
		}
	}
	for _, cfg := range s.grpcConfigs {
		if err := check(cfg.Name, cfg.Address); err != nil {
			return err
		}
	}
	return nil
}

// Ready is closed once every listener is bound.
func (s *Server) Ready() <-chan struct{} {
	return s.ready
}

// Addr returns the bound address of the named listener, available after Ready.
func (s *Server) Addr(name string) (net.Addr, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, ok := s.addrs[name]
	return addr, ok
}

// Serve binds every listener and blocks until ctx is cancelled or one of them fails.
// Listener errors are returned; a clean shutdown returns the hook errors, if any.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.serving {
		s.mu.Unlock()
		return ErrAlreadyServing
	}
	s.serving = true
	s.mu.Unlock()

	if len(s.httpConfigs)+len(s.grpcConfigs) == 0 {
		return ErrNoServers
	}

	httpListeners, grpcListeners, err := s.listen()
	if err != nil {
		return err
	}

	httpServers := make([]*http.Server, 0, len(s.httpConfigs))
	for _, cfg := range s.httpConfigs {
		httpServers = append(httpServers, &http.Server{
			Handler:           cfg.Handler,
			ReadTimeout:       cfg.ReadTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			ReadHeaderTimeout: cfg.HeaderTimeout,
			BaseContext:       func(net.Listener) context.Context { return logger.ContextWithLogger(context.Background(), s.log) },
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range httpServers {
		cfg, lis := s.httpConfigs[i], httpListeners[i]
		g.Go(func() error {
			s.log.Info("http server listening", logger.String("server", cfg.Name), logger.String("address", lis.Addr().String()))
			if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return errors.Wrapf(err, "http server %q", cfg.Name)
			}
			return nil
		})
	}
	for i, cfg := range s.grpcConfigs {
		lis := grpcListeners[i]
		g.Go(func() error {
			s.log.Info("grpc server listening", logger.String("server", cfg.Name), logger.String("address", lis.Addr().String()))
			if err := cfg.GRPCServer.Serve(lis); err != nil {
				return errors.Wrapf(err, "grpc server %q", cfg.Name)
			}
			return nil
		})
	}
	close(s.ready)

	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown(httpServers)
	})

	return g.Wait()
}

func (s *Server) listen() ([]net.Listener, []net.Listener, error) {
	var opened []net.Listener
	closeAll := func() {
		for _, l := range opened {
			_ = l.Close()
		}
	}

	open := func(name, address string) (net.Listener, error) {
		lis, err := net.Listen("tcp", address)
		if err != nil {
			closeAll()
			return nil, errors.Wrapf(err, "listen %q on %s", name, address)
		}
		opened = append(opened, lis)
		s.mu.Lock()
		s.addrs[name] = lis.Addr()
		s.mu.Unlock()
		return lis, nil
	}

	httpListeners := make([]net.Listener, 0, len(s.httpConfigs))
	for _, cfg := range s.httpConfigs {
		lis, err := open(cfg.Name, cfg.Address)
		if err != nil {
			return nil, nil, err
		}
		httpListeners = append(httpListeners, lis)
	}
	grpcListeners := make([]net.Listener, 0, len(s.grpcConfigs))
	for _, cfg := range s.grpcConfigs {
		lis, err := open(cfg.Name, cfg.Address)
		if err != nil {
			return nil, nil, err
		}
		grpcListeners = append(grpcListeners, lis)
	}
	return httpListeners, grpcListeners, nil
}

func (s *Server) shutdown(httpServers []*http.Server) error {
	s.log.Info("shutting down servers", logger.Duration("timeout", s.shutdownTimeout))
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	var errs error
	for i, srv := range httpServers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "shutdown http server %q", s.httpConfigs[i].Name))
		}
	}
	for _, cfg := range s.grpcConfigs {
		stopGRPC(ctx, cfg.GRPCServer)
	}

	if err := s.ExecuteShutdownHooks(ctx); err != nil {
		errs = errors.CombineErrors(errs, err)
	}
	return errs
}

// stopGRPC drains in-flight calls and forces the stop once ctx expires.
func stopGRPC(ctx context.Context, srv *grpc.Server) {
	done := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		srv.Stop()
		<-done
	}
}

// ExecuteShutdownHooks runs the registered hooks sequentially by priority. Each hook gets its
// own timeout; a failing hook does not prevent the next ones from running. Hooks still
// pending when ctx expires are skipped.
func (s *Server) ExecuteShutdownHooks(ctx context.Context) error {
	var errs error
	for _, hook := range s.hooks {
		if ctx.Err() != nil {
			errs = errors.CombineErrors(errs, errors.Wrapf(ctx.Err(), "shutdown hook %q skipped", hook.Name))
			continue
		}

		if err := runHook(ctx, hook); err != nil {
			s.log.Error("shutdown hook failed", logger.String("hook", hook.Name), logger.Error(err))
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "shutdown hook %q", hook.Name))
			continue
		}
		s.log.Debug("shutdown hook completed", logger.String("hook", hook.Name))
	}
	return errs
}

func runHook(ctx context.Context, hook ShutdownHook) error {
	hookCtx, cancel := context.WithTimeout(ctx, hook.Timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- hook.Hook(hookCtx)
	}()

	expired := func() error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrHookTimeout
	}

	select {
	case err := <-done:
		if err != nil && hookCtx.Err() != nil {
			return expired()
		}
		return err
	case <-hookCtx.Done():
		return expired()
	}
}
