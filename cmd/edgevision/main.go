package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"edgevision/internal/config"
	"edgevision/internal/logger"
	"edgevision/internal/opencv/memory"
	"edgevision/internal/pipeline"

	"github.com/spf13/cobra"
)

const AppVersion = "1.0.0"

type rootOptions struct {
	configPath string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "edgevision",
		Short:         "Edge and gradient detection service",
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a TOML or YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newServeCommand(opts),
		newWorkerCommand(opts),
		newProcessCommand(opts),
		newHistogramCommand(opts),
	)
	return root
}

// runtimeDeps is what every subcommand builds from config.
type runtimeDeps struct {
	cfg      config.Config
	logger   *logger.ZerologAdapter
	pipeline *pipeline.Pipeline
}

func (o *rootOptions) load() (*runtimeDeps, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(os.Stderr, cfg.Log.Format, level)

	p := pipeline.New(
		pipeline.WithLogger(log),
		pipeline.WithMemoryTracker(memory.NewTracker(cfg.Server.MaxRasterBytes)),
	)

	return &runtimeDeps{cfg: cfg, logger: log, pipeline: p}, nil
}
