package server_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/rainbow-me/myapp/common/test"
	"github.com/rainbow-me/myapp/server"
)

func TestNewServer(t *testing.T) {
	tests := []struct {
		name    string
		opts    []server.Option
		wantErr bool
	}{
		{
			name:    "No servers configured",
			opts:    []server.Option{},
			wantErr: false, // No error, but Serve will fail later
		},
		{
			name: "Valid HTTP server",
			opts: []server.Option{
				server.WithHTTPServer("test-http", ":0", http.NewServeMux()),
			},
		},
		{
			name: "Invalid HTTP server no handler",
			opts: []server.Option{
				server.WithHTTPServer("test-http", ":0", nil),
			},
			wantErr: true,
		},
		{
			name: "Valid gRPC server",
			opts: []server.Option{
				server.WithGRPCServer("test-grpc", ":0", nil, func(_ *grpc.Server) {}),
			},
		},
		{
			name: "Invalid gRPC server no setup",
			opts: []server.Option{
				server.WithGRPCServer("test-grpc", ":0", nil, nil),
			},
			wantErr: true,
		},
		{
			name: "Duplicate names",
			opts: []server.Option{
				server.WithHTTPServer("dup", ":0", http.NewServeMux()),
				server.WithGRPCServer("dup", ":0", nil, func(_ *grpc.Server) {}),
			},
			wantErr: true,
		},
		{
			name: "Duplicate addresses",
			opts: []server.Option{
				server.WithHTTPServer("http1", ":9999", http.NewServeMux()),
				server.WithHTTPServer("http2", ":9999", http.NewServeMux()),
			},
			wantErr: true,
		},
		{
			name: "Invalid shutdown timeout",
			opts: []server.Option{
				server.WithShutdownTimeout(0),
			},
			wantErr: true,
		},
		{
			name: "With shutdown hook",
			opts: []server.Option{
				server.WithShutdownHook(server.ShutdownHook{
					Name:     "test",
					Priority: 1,
					Timeout:  time.Second,
					Hook:     func(_ context.Context) error { return nil },
				}),
			},
		},
		{
			name: "Shutdown hook without function",
			opts: []server.Option{
				server.WithShutdownHook(server.ShutdownHook{Name: "empty"}),
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := server.NewServer(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestServeWithoutServers(t *testing.T) {
	srv, err := server.NewServer()
	require.NoError(t, err)
	require.ErrorIs(t, srv.Serve(context.Background()), server.ErrNoServers)
}

// startServer runs Serve in the background and waits for the listeners to be bound.
func startServer(t *testing.T, srv *server.Server) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Serve(ctx)
	}()

	select {
	case <-srv.Ready():
	case err := <-done:
		cancel()
		t.Fatalf("Serve() exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("server did not become ready")
	}
	return cancel, done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not exit after cancellation")
		return nil
	}
}

func TestServeHTTPAndShutdown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("pong"))
	})

	var hookCalled bool
	srv, err := server.NewServer(
		server.WithLogger(test.NewLogger(t)),
		server.WithHTTPServer("test-http", "127.0.0.1:0", mux),
		server.WithShutdownHook(server.ShutdownHook{
			Name: "flag",
			Hook: func(_ context.Context) error {
				hookCalled = true
				return nil
			},
		}),
	)
	require.NoError(t, err)

	cancel, done := startServer(t, srv)

	addr, ok := srv.Addr("test-http")
	require.True(t, ok)
	resp, err := http.Get("http://" + addr.String() + "/ping")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	require.NoError(t, waitDone(t, done))
	require.True(t, hookCalled)

	require.ErrorIs(t, srv.Serve(context.Background()), server.ErrAlreadyServing)
}

func TestServeGRPCHealth(t *testing.T) {
	healthServer := health.NewServer()
	srv, err := server.NewServer(
		server.WithGRPCServer("test-grpc", "127.0.0.1:0", nil, func(s *grpc.Server) {
			healthpb.RegisterHealthServer(s, healthServer)
		}),
	)
	require.NoError(t, err)

	cancel, done := startServer(t, srv)

	addr, ok := srv.Addr("test-grpc")
	require.True(t, ok)
	conn, err := grpc.NewClient(addr.String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	require.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())

	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestServeListenFailure(t *testing.T) {
	first, err := server.NewServer(server.WithHTTPServer("first", "127.0.0.1:0", http.NewServeMux()))
	require.NoError(t, err)
	cancel, done := startServer(t, first)
	defer func() {
		cancel()
		_ = waitDone(t, done)
	}()

	addr, _ := first.Addr("first")
	second, err := server.NewServer(server.WithHTTPServer("second", addr.String(), http.NewServeMux()))
	require.NoError(t, err)
	require.Error(t, second.Serve(context.Background()))
}

func TestExecuteShutdownHooks(t *testing.T) {
	tests := []struct {
		name      string
		hooks     []server.ShutdownHook
		ctxTime   time.Duration
		wantErr   error
		wantOrder []string
	}{
		{
			name: "Successful hooks in priority order",
			hooks: []server.ShutdownHook{
				{Name: "second", Priority: 2, Timeout: time.Second},
				{Name: "first", Priority: 1, Timeout: time.Second},
			},
			ctxTime:   5 * time.Second,
			wantOrder: []string{"first", "second"},
		},
		{
			name: "Hook error does not stop the others",
			hooks: []server.ShutdownHook{
				{Name: "failing", Priority: 1, Timeout: time.Second},
				{Name: "after", Priority: 2, Timeout: time.Second},
			},
			ctxTime:   5 * time.Second,
			wantErr:   errHook,
			wantOrder: []string{"failing", "after"},
		},
		{
			name: "Hook timeout",
			hooks: []server.ShutdownHook{
				{Name: "slow", Priority: 1, Timeout: 50 * time.Millisecond},
			},
			ctxTime:   5 * time.Second,
			wantErr:   server.ErrHookTimeout,
			wantOrder: []string{"slow"},
		},
		{
			name: "Overall context timeout",
			hooks: []server.ShutdownHook{
				{Name: "slow", Priority: 1, Timeout: time.Second},
			},
			ctxTime:   50 * time.Millisecond,
			wantErr:   context.DeadlineExceeded,
			wantOrder: []string{"slow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var (
				mu    sync.Mutex
				order []string
			)
			opts := []server.Option{server.WithHTTPServer("test-http", ":0", http.NewServeMux())}
			for _, hook := range tt.hooks {
				name := hook.Name
				hook.Hook = func(ctx context.Context) error {
					mu.Lock()
					order = append(order, name)
					mu.Unlock()
					switch name {
					case "failing":
						return errHook
					case "slow":
						<-ctx.Done()
						return ctx.Err()
					}
					return nil
				}
				opts = append(opts, server.WithShutdownHook(hook))
			}

			srv, err := server.NewServer(opts...)
			require.NoError(t, err)

			ctx, cancel := context.WithTimeout(context.Background(), tt.ctxTime)
			defer cancel()
			err = srv.ExecuteShutdownHooks(ctx)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			} else {
				require.NoError(t, err)
			}

			mu.Lock()
			defer mu.Unlock()
			require.Equal(t, tt.wantOrder, order)
		})
	}
}

var errHook = errors.New("hook error")
