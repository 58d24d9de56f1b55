package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"

	"conductor/internal/app"
	"conductor/internal/config"
	"conductor/pkg/logging"
)

var (
	serveConfigPath      string
	serveShutdownTimeout time.Duration
)

// serveCmd runs the coordinator with the services declared in the config
// file until interrupted.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the coordinator",
	Long: `Load the configuration, start every autoStart service in dependency
order and keep supervising until SIGINT or SIGTERM. Shutdown stops the
running services in reverse dependency order.

Examples:
  conductor serve
  conductor serve --config-path /etc/conductor/conductor.yaml`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config-path", "conductor.yaml", "Path to the configuration file")
	serveCmd.Flags().DurationVar(&serveShutdownTimeout, "shutdown-timeout", 30*time.Second, "How long to wait for services to stop on shutdown")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(serveConfigPath)
	if err != nil {
		return err
	}
	logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)

	a, err := app.New(cfg, serveConfigPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Under systemd this flips the unit to active; elsewhere it is a no-op.
	if _, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		logging.Debug("Serve", "sd_notify not available: %v", err)
	}

	runErr := a.Run(ctx)

	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	logging.Info("Serve", "Shutting down, stopping services")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), serveShutdownTimeout)
	defer cancel()
	if err := a.Shutdown(shutdownCtx); err != nil {
		logging.Error("Serve", err, "Shutdown did not complete cleanly")
		return err
	}

	if runErr != nil && runErr != context.Canceled {
		return runErr
	}
	return nil
}
