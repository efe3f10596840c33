// Command myapp runs the Home web application and probes running instances.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rainbow-me/myapp/common/env"
	"github.com/rainbow-me/myapp/common/logger"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
		stop()
		os.Exit(1) //nolint:gocritic
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "myapp",
		Short:         "Home web application",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newHealthcheckCmd())
	return root
}

// initLogger builds the process logger for the ENVIRONMENT the binary runs in, local when unset.
func initLogger() (env.Environment, *logger.Logger, error) {
	environment := env.GetApplicationEnvSafe()
	log, err := logger.InitLogger(environment)
	if err != nil {
		return "", nil, err
	}
	zap.ReplaceGlobals(log.Logger)
	return environment, log, nil
}
