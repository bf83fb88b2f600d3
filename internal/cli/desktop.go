package cli

import (
	"github.com/spf13/cobra"

	"fxmon/internal/bootstrap"
	"fxmon/internal/config"
	"fxmon/internal/infrastructure/desktop"
)

var desktopCmd = &cobra.Command{
	Use:   "desktop",
	Short: "Open the desktop chart window",
	RunE: func(*cobra.Command, []string) error {
		return runDesktop(config.Load())
	},
}

func runDesktop(cfg config.Config) error {
	monitor, cleanup, err := bootstrap.BuildMonitor(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	app, err := desktop.NewApp(monitor, cfg.Theme)
	if err != nil {
		return err
	}
	monitor.Renderer = app

	ctx, cancel := signalContext()
	defer cancel()

	done := make(chan struct{})
	go func() {
		monitor.Start(ctx)
		close(done)
	}()

	// The game loop owns the main goroutine; closing the window or a
	// signal both land here.
	err = app.Run(ctx)
	cancel()
	<-done
	return err
}
