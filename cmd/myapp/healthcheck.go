package main

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/rainbow-me/myapp/common/logger"
	"github.com/rainbow-me/myapp/grpc/health"
	"github.com/rainbow-me/myapp/probe"
)

func newHealthcheckCmd() *cobra.Command {
	var (
		url      string
		grpcAddr string
		service  string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "healthcheck",
		Short: "Probe a running instance, exits non-zero when unhealthy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if timeout <= 0 {
				return errors.Newf("--timeout must be positive, got %s", timeout)
			}
			_, log, err := initLogger()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			result, err := probe.New(url, log, probe.WithTimeout(timeout)).Health(ctx)
			if err != nil {
				return err
			}
			log.Debug("http probe succeeded",
				logger.String("request_id", result.RequestID),
				logger.Duration("latency", result.Latency),
			)

			if grpcAddr != "" {
				if err = checkGRPC(ctx, grpcAddr, service); err != nil {
					return err
				}
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Status)
			return nil
		},
	}

	cmd.Flags().StringVar(&url, "url", "http://localhost:8080", "Base URL of the web listener")
	cmd.Flags().StringVar(&grpcAddr, "grpc", "", "Also check the gRPC health service at this address")
	cmd.Flags().StringVar(&service, "service", "", "gRPC service name to check, empty checks the whole server")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "Overall probe timeout")
	return cmd
}

func checkGRPC(ctx context.Context, addr, service string) error {
	checker, err := health.NewChecker(health.WithTarget(addr))
	if err != nil {
		return err
	}
	defer func() { _ = checker.Close() }()
	return checker.CheckServing(ctx, service)
}
