package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/davidvella/traffic/loader"
	"github.com/davidvella/traffic/recordio"
)

func newMergeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "merge [paths...]",
		Short: "Print the merged, time-ordered rows",
		Long: `Load every given file and write the rows that would be analysed, merged in
time order, one "timestamp count" row per line. Malformed rows are dropped.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := loader.Load(cmd.Context(), a.inputPaths(args), loader.WithLogger(a.logger))

			w := bufio.NewWriter(cmd.OutOrStdout())
			var written int
			for r := range d.All() {
				if _, err := recordio.Write(w, r); err != nil {
					return fmt.Errorf("writing record %d: %w", written, err)
				}
				written++
			}
			if err := w.Flush(); err != nil {
				return fmt.Errorf("flushing output: %w", err)
			}

			a.logger.Debug("merge complete", zap.Int("records", written))
			return nil
		},
	}
}
