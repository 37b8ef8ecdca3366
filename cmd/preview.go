package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/strokepipe/core"
	"github.com/gaurav-prasanna/strokepipe/core/output"
	"github.com/gaurav-prasanna/strokepipe/core/render"
)

func newPreviewCommand(c *commandContext) *cobra.Command {
	var outputPath string
	var noTrack bool

	cmd := &cobra.Command{
		Use:   "preview <id>",
		Short: "Draw a normalized record as a one-page PDF",
		Long: `Preview renders the normalized strokes of one character to PDF: filled
outlines, plus the writing track and stroke numbers.

Examples:
  strokepipe preview U+4E00
  strokepipe preview 19968 --output yi.pdf --no-track`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseCharacterID(args[0])
			if err != nil {
				return fmt.Errorf("invalid character id %q: %w", args[0], err)
			}

			normalized, err := openNormalizedStore(c)
			if err != nil {
				return err
			}
			data, err := normalized.Read(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("%s has no normalized record (run normalize first): %w", id, err)
			}

			var strokes []core.Stroke
			if err := json.Unmarshal(data, &strokes); err != nil {
				return fmt.Errorf("decoding %s: %w", normalized.Path(id), err)
			}

			renderer := render.NewPDFRenderer()
			renderer.ShowTrack = !noTrack
			pdf, err := renderer.Render(id, strokes)
			if err != nil {
				return err
			}

			var target string
			if outputPath != "" {
				target, err = output.WriteFile(outputPath, pdf)
			} else {
				var w *output.Writer
				if w, err = output.New(c.cfg.Paths.PreviewDir); err == nil {
					target, err = w.WriteCharacter(id, pdf, renderer.Extension())
				}
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Written: %s (%d strokes)\n", target, len(strokes))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default <preview_dir>/<HEX>.pdf)")
	cmd.Flags().BoolVar(&noTrack, "no-track", false, "Draw outlines only")

	return cmd
}
