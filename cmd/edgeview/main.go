package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"edgevision/internal/config"
	"edgevision/internal/controllers"
	"edgevision/internal/logger"
	"edgevision/internal/opencv/memory"
	"edgevision/internal/pipeline"
	"edgevision/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"
)

const (
	AppName    = "Edge Vision"
	AppID      = "com.imageprocessing.edgeview"
	AppVersion = "1.0.0"
)

type Application struct {
	fyneApp    fyne.App
	window     fyne.Window
	logger     logger.Logger
	view       *views.MainView
	controller *controllers.MainController
	memory     *memory.Tracker
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var configPath string
	cmd := &cobra.Command{
		Use:           "edgeview",
		Short:         "Interactive edge detection viewer",
		Version:       AppVersion,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := NewApplication(configPath)
			if err != nil {
				return fmt.Errorf("application initialization failed: %w", err)
			}
			application.Run(cmd.Context())
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML or YAML config file")

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	appLogger := logger.New(cfg.Log.Format, level)

	mem := memory.NewTracker(cfg.Server.MaxRasterBytes)
	p := pipeline.New(pipeline.WithLogger(appLogger), pipeline.WithMemoryTracker(mem))
	session := controllers.NewSession(p)

	fyneApp := app.NewWithID(AppID)
	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})

	window := fyneApp.NewWindow(AppName)
	window.Resize(fyne.NewSize(1280, 760))
	window.CenterOnScreen()

	alg, params := session.Settings()
	view := views.NewMainView(window, alg, params)
	controller := controllers.NewMainController(session, view, appLogger)

	appLogger.Info("Main", "application initialized", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
	})

	return &Application{
		fyneApp:    fyneApp,
		window:     window,
		logger:     appLogger,
		view:       view,
		controller: controller,
		memory:     mem,
	}, nil
}

// Run blocks until the window closes or ctx is cancelled.
func (a *Application) Run(ctx context.Context) {
	a.window.SetCloseIntercept(func() {
		a.view.ShowConfirm("Exit", "Close Edge Vision?", func(confirmed bool) {
			if confirmed {
				a.window.Close()
			}
		})
	})
	a.window.SetOnClosed(a.shutdown)

	go func() {
		<-ctx.Done()
		a.logger.Info("Main", "signal received, closing", nil)
		fyne.Do(a.fyneApp.Quit)
	}()

	a.view.Show()
	a.fyneApp.Run()
}

func (a *Application) shutdown() {
	a.controller.Shutdown()

	stats := a.memory.GetStats()
	fields := map[string]interface{}{
		"rasters_allocated": stats.AllocCount,
		"rasters_active":    stats.ActiveMats,
	}
	if leaks := a.memory.Leaks(); len(leaks) > 0 {
		fields["leaked"] = leaks
		a.logger.Warning("Main", "rasters still open at exit", fields)
		return
	}
	a.logger.Info("Main", "shutdown complete", fields)
}
