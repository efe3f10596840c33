package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/rainbow-me/myapp/app"
	"github.com/rainbow-me/myapp/common/logger"
)

func newServeCmd() *cobra.Command {
	var configDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web, admin and gRPC listeners until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			environment, log, err := initLogger()
			if err != nil {
				return err
			}

			cfg, err := app.LoadConfig(log, environment, configDir)
			if err != nil {
				log.Error("failed to load config", logger.Error(err))
				return err
			}
			if !environment.IsLocal() {
				gin.SetMode(gin.ReleaseMode)
			}
			if cfg.Service.Version == "" {
				cfg.Service.Version = version
			}

			return app.New(cfg, environment, log).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&configDir, "config-dir", "", "Directory holding <ENVIRONMENT>.yaml (default ./cmd/config)")
	return cmd
}
