package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/davidvella/traffic"
	"github.com/davidvella/traffic/analyzer"
	"github.com/davidvella/traffic/report"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [paths...]",
		Short: "Report traffic statistics (default command)",
		Long: `Load every given file (or every file in a given directory), merge them in
time order and report:
  - the total number of cars
  - the number of cars per day
  - the busiest half-hours
  - the contiguous run of half-hours with the fewest cars

Malformed rows and unreadable files are logged and skipped.`,
		Args: cobra.ArbitraryArgs,
		RunE: a.runAnalyze,
	}
	addAnalyzeFlags(cmd)
	return cmd
}

// analyzeFlags maps the analysis flags to their configuration keys.
var analyzeFlags = map[string]string{
	"top-n":  "analysis.top_n",
	"window": "analysis.window_size",
	"format": "output.format",
}

// addAnalyzeFlags registers the analysis flags on cmd. The root command and
// the analyze subcommand both carry them; initConfig binds whichever ran.
func addAnalyzeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.IntP("top-n", "n", analyzer.DefaultTopN, "number of busiest half-hours to report")
	flags.IntP("window", "w", analyzer.DefaultWindowSize, "number of contiguous half-hours in the quietest window")
	flags.StringP("format", "f", "text", "output format: text or json")
}

func (a *app) runAnalyze(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(a.cfg.Output.Format)
	if err != nil {
		return err
	}
	mode, err := report.ParseColorMode(a.cfg.Output.Color)
	if err != nil {
		return err
	}

	start := time.Now()

	paths := a.inputPaths(args)
	an := traffic.NewAnalyzer(
		traffic.WithLogger(a.logger),
		traffic.WithTopN(a.cfg.Analysis.TopN),
		traffic.WithWindowSize(a.cfg.Analysis.WindowSize),
	)
	an.AddPaths(cmd.Context(), paths...)
	summary := an.Summarize()

	p := report.NewPrinter(cmd.OutOrStdout(), report.Options{
		Format:     format,
		ColorMode:  mode,
		WindowSize: a.cfg.Analysis.WindowSize,
	})
	return p.Print(summary, time.Since(start))
}
