package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/focus-alarm/internal/config"
	"github.com/oshokin/focus-alarm/internal/logger"
	"github.com/oshokin/focus-alarm/internal/service/bridge"
	"github.com/oshokin/focus-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// preferencesPath overrides the host preferences location.
	preferencesPath string
	// logLevel overrides the configured log level.
	logLevel string
	// skipRestore disables restoring the saved countdown.
	skipRestore bool

	// rootCmd represents the base command for running the bridge daemon.
	rootCmd = &cobra.Command{
		Use:   "focus-bridge [listen-address]",
		Short: "Run the focus timer alarm bridge.",
		Long: `Starts the daemon that arms exact alarms for the focus timer application.

On start the countdown saved in the application's preferences is re-armed if it
is still running and its target lies in the future. The bridge then serves the
gRPC API used to schedule and cancel alarms, stop a ringing alarm, and read the
foreground application.

Listen address can be provided as argument to override config (e.g., 127.0.0.1:9090).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			defer logger.Sync()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return bridge.Run(ctx, &bridge.Options{
				ConfigPath:      configPath,
				ListenAddress:   listenAddress,
				PreferencesPath: preferencesPath,
				LogLevel:        logLevel,
				SkipRestore:     skipRestore,
			})
		},
	}
)

// Execute runs the focus-bridge CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&preferencesPath, "preferences", "p", "", "path to the application preferences")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&skipRestore, "no-restore", false, "do not restore the saved countdown at start")
}
