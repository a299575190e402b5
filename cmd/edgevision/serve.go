package main

import (
	"edgevision/internal/models"
	"edgevision/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := opts.load()
			if err != nil {
				return err
			}
			if addr != "" {
				deps.cfg.Server.Addr = addr
			}

			gin.SetMode(gin.ReleaseMode)

			repo := models.NewImageRepository(deps.cfg.Store.MaxImages)
			srv := server.New(deps.cfg.Server, deps.pipeline, repo, deps.logger,
				server.WithStats(deps.pipeline.Timing(), deps.pipeline.Memory()))

			deps.logger.Info("Main", "starting edgevision", map[string]interface{}{
				"version":    AppVersion,
				"addr":       deps.cfg.Server.Addr,
				"gzip":       deps.cfg.Server.Gzip,
				"max_images": deps.cfg.Store.MaxImages,
			})
			return srv.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides config")
	return cmd
}
