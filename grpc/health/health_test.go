package health_test

import (
	"context"
	"net"
	"testing"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/mocktracer"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"github.com/rainbow-me/myapp/grpc/health"
)

func startHealthServer(t *testing.T, services ...string) (*health.Server, *bufconn.Listener) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	hs := health.NewServer(services...)
	hs.Register(srv)

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)
	return hs, lis
}

func newChecker(t *testing.T, lis *bufconn.Listener, opts ...health.Option) *health.Checker {
	t.Helper()
	opts = append(opts,
		health.WithTarget("passthrough:///bufnet"),
		health.WithDialOptions(
			grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
				return lis.DialContext(ctx)
			}),
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		),
	)
	checker, err := health.NewChecker(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = checker.Close() })
	return checker
}

func TestCheckServing(t *testing.T) {
	hs, lis := startHealthServer(t, "myapp")
	checker := newChecker(t, lis)
	ctx := context.Background()

	require.NoError(t, checker.CheckServing(ctx, ""))
	require.NoError(t, checker.CheckServing(ctx, "myapp"))

	hs.SetServing(false)
	require.ErrorIs(t, checker.CheckServing(ctx, ""), health.ErrNotServing)
	require.ErrorIs(t, checker.CheckServing(ctx, "myapp"), health.ErrNotServing)

	// unknown services are reported by the server as NotFound
	require.Error(t, checker.CheckServing(ctx, "unknown"))
}

func TestCheckIsTraced(t *testing.T) {
	mt := mocktracer.Start()
	defer mt.Stop()

	_, lis := startHealthServer(t)
	checker := newChecker(t, lis, health.WithTracing("myapp-healthcheck"))

	require.NoError(t, checker.CheckServing(context.Background(), ""))

	require.NotEmpty(t, mt.FinishedSpans())
}

func TestNewCheckerRequiresTarget(t *testing.T) {
	_, err := health.NewChecker(health.WithTarget(""))
	require.Error(t, err)
}
