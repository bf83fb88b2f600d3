package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fxmon/internal/config"
)

// RootCmd runs the front end selected by MODE. The subcommands pin a
// front end regardless of the environment.
var RootCmd = &cobra.Command{
	Use:   "fxmon",
	Short: "CNY exchange rate monitor",
	Long: `fxmon watches EUR, USD, HKD, GBP and JPY against CNY. Chartable
quotes come from the Yahoo Finance chart API; the Bank of China and
China Merchants Bank boards supply the published sell rates.

MODE=desktop opens a native chart window, MODE=web serves a browser
dashboard, and "fxmon rates" prints the current board once and exits.
Configuration is environment only: PAIRS, DEFAULT_WINDOW, MODE, THEME,
PORT and the poll intervals.`,
	SilenceUsage: true,
	RunE: func(*cobra.Command, []string) error {
		cfg := config.Load()
		switch cfg.Mode {
		case "", "desktop":
			return runDesktop(cfg)
		case "web":
			return runWeb(cfg)
		default:
			return fmt.Errorf("unsupported MODE=%q", cfg.Mode)
		}
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(desktopCmd, webCmd, ratesCmd)
}

// signalContext is canceled by SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		cancel()
	}()
	return ctx, cancel
}
