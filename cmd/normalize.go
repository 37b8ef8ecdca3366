package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/strokepipe/core/normalize"
)

func newNormalizeCommand(c *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "normalize",
		Short: "Convert every raw record into normalized stroke JSON",
		Long: `Normalize reads each raw stroke record from the raw store and writes the
normalized JSON document for it into the normalized directory, replacing any
earlier output. Records that fail to parse are reported and skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			raw, closer, err := openRawStore(ctx, c)
			if err != nil {
				return err
			}
			defer closer.Close()

			dst, err := openNormalizedStore(c)
			if err != nil {
				return err
			}

			report, err := normalize.New(cmd.OutOrStdout(), c.logger).Run(ctx, raw, dst)
			if err != nil {
				return err
			}

			if failed := report.Failed(); len(failed) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "\n%d/%d records failed\n", len(failed), len(report.Results))
			}
			return nil
		},
	}
}
