package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/timursak/alarm-clock/internal/config"
	"github.com/timursak/alarm-clock/internal/service/server"
	"github.com/timursak/alarm-clock/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// storeFile path where the alarm collection is persisted.
	storeFile string

	// rootCmd represents the base command for running the HTTP server.
	rootCmd = &cobra.Command{
		Use:   "alarm-clock-server [listen-address]",
		Short: "Run the alarm clock server and manage the alarm collection.",
		Long: `Starts the alarm clock server that persists alarms, schedules their
notifications and exposes the HTTP API for clients.

The server listens on the configured address (default :8080).
Listen address can be provided as argument to override config (e.g., :9090, 0.0.0.0:8080).
Alarms are persisted to a JSON file or a SQLite database and rescheduled on startup,
so deliveries survive restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StoreFile:     storeFile,
			}

			return server.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-clock-server CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().
		StringVarP(&storeFile, "store-file", "s", "", "path to persist the alarm collection (overrides config)")
}
