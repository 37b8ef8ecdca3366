package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/strokepipe/config"
	"github.com/gaurav-prasanna/strokepipe/core"
	"github.com/gaurav-prasanna/strokepipe/core/acquire"
	"github.com/gaurav-prasanna/strokepipe/core/extract"
	"github.com/gaurav-prasanna/strokepipe/core/fetch"
	"github.com/gaurav-prasanna/strokepipe/core/store"
	"github.com/gaurav-prasanna/strokepipe/crawl"
)

func newAcquireCommand(c *commandContext) *cobra.Command {
	var rangeFlag string
	var rendererFlag string

	cmd := &cobra.Command{
		Use:   "acquire",
		Short: "Download raw stroke records for a range of characters",
		Long: `Acquire renders the dictionary page of every codepoint in the range, in
ascending order, and stores the stroke XML embedded in it. Characters that
already have a raw record are skipped, so an interrupted sweep can simply be
run again. Missing characters and extraction failures are appended to the
outcome log.

Examples:
  strokepipe acquire
  strokepipe acquire --range 4E00-4E0F
  strokepipe acquire --range U+9FA0..U+9FFF --renderer http`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := c.cfg.SweepRange()
			if rangeFlag != "" {
				r, err = crawl.ParseRange(rangeFlag)
			}
			if err != nil {
				return fmt.Errorf("invalid range: %w", err)
			}
			kind := c.cfg.Renderer.Kind
			if rendererFlag != "" {
				kind = rendererFlag
			}
			renderer, err := buildRenderer(c, kind)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			lock, err := store.AcquireLock(c.cfg.LockPath())
			if err != nil {
				return err
			}
			defer lock.Release()

			raw, closer, err := openRawStore(ctx, c)
			if err != nil {
				return err
			}
			defer closer.Close()

			runID := uuid.NewString()
			outcomes, err := acquire.OpenOutcomeLog(c.cfg.Paths.OutcomeLog, runID)
			if err != nil {
				return err
			}
			defer outcomes.Close()

			acq, err := acquire.New(acquire.Config{
				Renderer:      renderer,
				Extractor:     extract.New(c.cfg.Source.NotFoundSentinel),
				Store:         raw,
				Outcomes:      outcomes,
				Target:        c.cfg.Target(),
				ReadySelector: c.cfg.Source.ReadySelector,
				ReadyTimeout:  c.cfg.ReadyTimeout(),
				SettleDelay:   c.cfg.SettleDelay(),
				SnapshotDir:   c.cfg.Paths.SnapshotDir,
				Out:           cmd.OutOrStdout(),
				Logger:        c.logger,
			})
			if err != nil {
				return err
			}

			c.logger.Info("starting acquisition", "run", runID, "range", r.String(), "renderer", kind)
			report, runErr := acq.Run(ctx, r)

			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), summarizeAcquisition(report))
			if runErr != nil {
				if errors.Is(runErr, ctx.Err()) {
					return fmt.Errorf("interrupted after %d of %d characters: %w", len(report.Results), r.Len(), runErr)
				}
				return runErr
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&rangeFlag, "range", "r", "", "Codepoint range, e.g. 4E00-9FFF (default from config)")
	cmd.Flags().StringVar(&rendererFlag, "renderer", "", "Page renderer: browser or http (default from config)")

	return cmd
}

func buildRenderer(c *commandContext, kind string) (core.PageRenderer, error) {
	switch kind {
	case config.RendererBrowser:
		return fetch.NewBrowser(fetch.BrowserOptions{
			Headless:  c.cfg.Renderer.Headless,
			ExecPath:  c.cfg.Renderer.ExecPath,
			UserAgent: c.cfg.Source.UserAgent,
		}, c.logger), nil
	case config.RendererHTTP:
		return fetch.NewHTTP(c.cfg.Source.UserAgent, c.cfg.HTTPTimeout()), nil
	default:
		return nil, fmt.Errorf("unknown renderer %q (want %s or %s)", kind, config.RendererBrowser, config.RendererHTTP)
	}
}

func summarizeAcquisition(report acquire.Report) string {
	counts := report.Counts()
	labels := make([]string, 0, len(core.Outcomes)+1)
	for _, o := range core.Outcomes {
		labels = append(labels, o.String())
	}
	labels = append(labels, acquire.IOFailureLabel)

	rows := make([][]string, 0, len(labels)+1)
	for _, label := range labels {
		if label == acquire.IOFailureLabel && counts[label] == 0 {
			continue
		}
		rows = append(rows, []string{label, strconv.Itoa(counts[label])})
	}
	rows = append(rows, []string{"total", strconv.Itoa(len(report.Results))})
	return renderTable([]string{"Outcome", "Count"}, rows, 1)
}
