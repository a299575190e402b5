package main

import (
	"edgevision/internal/worker"

	"github.com/spf13/cobra"
)

func newWorkerCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume processing requests from the message broker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			deps, err := opts.load()
			if err != nil {
				return err
			}
			return worker.New(deps.cfg.Worker, deps.pipeline, deps.logger).Run(cmd.Context())
		},
	}
}
