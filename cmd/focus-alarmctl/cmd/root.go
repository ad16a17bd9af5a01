package cmd

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/oshokin/focus-alarm/internal/config"
	"github.com/oshokin/focus-alarm/internal/domain/alarm"
	"github.com/oshokin/focus-alarm/internal/logger"
	"github.com/oshokin/focus-alarm/internal/service/ctl"
	"github.com/oshokin/focus-alarm/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serverAddress overrides the configured bridge address.
	serverAddress string
	// verbose enables debug logs.
	verbose bool

	// fireAt is the absolute alarm time in RFC 3339.
	fireAt string
	// fireIn is the alarm delay from now.
	fireIn time.Duration
	// sound is the optional alarm sound locator.
	sound string

	// rootCmd represents the base command of the control CLI.
	rootCmd = &cobra.Command{
		Use:   "focus-alarmctl",
		Short: "Control a running focus-bridge.",
		Long: `Sends single requests to the focus-bridge daemon.

The bridge address is read from the configuration file unless --server is set.`,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				logger.SetLogger(logger.New(zapcore.DebugLevel, logger.WithLevel(zapcore.DebugLevel)))
			}
		},
	}

	scheduleCmd = &cobra.Command{
		Use:   "schedule <id>",
		Short: "Arm an alarm, replacing any pending alarm with the same id.",
		Example: `  focus-alarmctl schedule 100 --in 25m
  focus-alarmctl schedule 101 --at 2030-01-01T10:00:00+01:00 --sound file:///home/me/bell.wav`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			at, err := ctl.FireTime(fireAt, fireIn, time.Now())
			if err != nil {
				return err
			}

			return run(ctl.Schedule(alarm.Request{ID: id, FireAt: at, SoundURI: sound}))
		},
	}

	cancelCmd = &cobra.Command{
		Use:   "cancel <id>",
		Short: "Disarm an alarm.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			return run(ctl.Cancel(id))
		},
	}

	stopCmd = &cobra.Command{
		Use:   "stop",
		Short: "Stop the ringing alarm.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return run(ctl.StopSound())
		},
	}

	currentAppCmd = &cobra.Command{
		Use:   "current-app",
		Short: "Print the most recently launched application.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return run(ctl.CurrentApp())
		},
	}

	permissionCmd = &cobra.Command{
		Use:   "permission",
		Short: "Print whether the bridge can read application usage.",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return run(ctl.Permission())
		},
	}
)

// Execute runs the focus-alarmctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// run performs action against the configured bridge.
func run(action ctl.Action) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	return ctl.Run(ctx, &ctl.Options{
		ConfigPath:    cfgPath,
		ServerAddress: serverAddress,
	}, action)
}

// parseID reads an alarm id argument.
func parseID(s string) (alarm.ID, error) {
	id, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}

	return alarm.ID(id), nil
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&serverAddress, "server", "s", "", "bridge address, overrides config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")

	scheduleCmd.Flags().StringVar(&fireAt, "at", "", "alarm time in RFC 3339")
	scheduleCmd.Flags().DurationVar(&fireIn, "in", 0, "alarm delay from now")
	scheduleCmd.Flags().StringVar(&sound, "sound", "", "alarm sound path or file:// URI")

	rootCmd.AddCommand(scheduleCmd, cancelCmd, stopCmd, currentAppCmd, permissionCmd)
}
