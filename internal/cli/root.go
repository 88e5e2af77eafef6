// Package cli contains all commands of the trafficstats CLI
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/davidvella/traffic/internal/config"
	"github.com/davidvella/traffic/monitoring"
)

// BuildInfo is stamped at build time via ldflags.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

// app holds state shared by every command of one invocation.
type app struct {
	build   BuildInfo
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
}

// NewRootCommand builds the command tree. Running it without a subcommand
// analyses the given paths.
func NewRootCommand(build BuildInfo) *cobra.Command {
	a := &app{build: build, v: viper.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "trafficstats [paths...]",
		Short: "Summarise half-hour traffic-count logs",
		Long: `trafficstats reads traffic-count logs, one "timestamp count" row per
half-hour, and reports the total number of cars, per-day totals, the busiest
half-hours and the quietest run of contiguous half-hours.

Example usage:
  trafficstats                              # Analyse ./traffic_logs/traffic.logs
  trafficstats logs/                        # Analyse every file in logs/
  trafficstats --format json a.logs b.logs  # Merge two files, print JSON
  trafficstats merge a.logs b.logs          # Print the merged, ordered rows`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd)
		},
		RunE: a.runAnalyze,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is .trafficstats.yaml)")
	flags.String("log-level", "info", "log level: debug, info, warn, or error")
	flags.String("log-format", "console", "log format: console or json")
	flags.String("color", "auto", "color output: auto, always, or never")

	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("output.color", flags.Lookup("color"))

	addAnalyzeFlags(rootCmd)

	rootCmd.AddCommand(
		newAnalyzeCommand(a),
		newMergeCommand(a),
		newVersionCommand(a),
	)

	return rootCmd
}

// Execute runs the command tree against os.Args.
func Execute(ctx context.Context, build BuildInfo) error {
	return NewRootCommand(build).ExecuteContext(ctx)
}

// initConfig reads in config file and ENV variables if set.
func (a *app) initConfig(cmd *cobra.Command) error {
	for name, key := range analyzeFlags {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	logger, err := monitoring.NewLoggerTo(cmd.ErrOrStderr(), cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	a.logger = logger

	a.logger.Debug("configuration loaded",
		zap.Strings("paths", cfg.Input.Paths),
		zap.Int("top_n", cfg.Analysis.TopN),
		zap.Int("window_size", cfg.Analysis.WindowSize),
		zap.String("output_format", cfg.Output.Format),
	)

	return nil
}

// inputPaths returns the command-line paths, falling back to configuration.
func (a *app) inputPaths(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return a.cfg.Input.Paths
}
