package cli

import (
	"github.com/spf13/cobra"

	"fxmon/internal/bootstrap"
	"fxmon/internal/config"
	httpserver "fxmon/internal/infrastructure/http"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the browser dashboard",
	RunE: func(*cobra.Command, []string) error {
		return runWeb(config.Load())
	},
}

func runWeb(cfg config.Config) error {
	monitor, cleanup, err := bootstrap.BuildMonitor(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := httpserver.NewServer(monitor, ":"+cfg.Port, cfg.Theme)
	monitor.Renderer = srv

	ctx, cancel := signalContext()
	defer cancel()

	done := make(chan struct{})
	go func() {
		monitor.Start(ctx)
		close(done)
	}()

	err = srv.Run(ctx)
	cancel()
	<-done
	return err
}
