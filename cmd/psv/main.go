package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"psv/internal/config"
	"psv/internal/logging"
)

// version is set with -ldflags "-X main.version=..."
var version = "dev"

var (
	// Global flags
	verbose bool
	logDir  string

	// Resolved configuration, defaults + environment, before command flags
	cfg *config.Config

	// Logger
	logger = zap.NewNop()
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "psv",
	Short: "psv - push_swap simulator, input generator and benchmark harness",
	Long: `psv checks and measures push_swap programs.

It generates inputs with a controlled amount of disorder, runs a push_swap
executable on them, replays the printed instructions on a two-stack machine
and reports whether the result is sorted and how many instructions it took.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if logDir != "" {
			cfg.Logging.Dir = logDir
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}

		if cfg.Logging.Dir != "" {
			if err := logging.Initialize(logging.Config{Dir: cfg.Logging.Dir, Level: cfg.Logging.Level}); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logger = logging.Logger()
		} else if verbose {
			zc := zap.NewProductionConfig()
			zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			zc.OutputPaths = []string{"stderr"}
			var err error
			if logger, err = zc.Build(); err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			logging.Attach(logger)
		} else {
			logger = zap.NewNop()
		}

		logging.BootDebug("psv %s: workers=%d timeout=%s", version, cfg.Bench.Workers, cfg.Bench.TrialTimeout)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the psv version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "psv %s\n", version)
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "", "Write JSON logs to psv.log in this directory (or set PSV_LOG_DIR)")

	// Add commands to root
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(presetsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadedConfig returns the resolved config, loading it when a command runs
// without the root pre-run (tests call run functions directly).
func loadedConfig() *config.Config {
	if cfg == nil {
		cfg = config.Load()
	}
	return cfg
}
