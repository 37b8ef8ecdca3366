// Package cmd implements the CLI commands for strokepipe using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/strokepipe/config"
)

const skipConfigLoad = "skipConfigLoad"

// commandContext carries state shared by every subcommand.
type commandContext struct {
	configPath string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	ctx := &commandContext{}

	rootCmd := &cobra.Command{
		Use:   "strokepipe",
		Short: "strokepipe — collect and normalize CJK stroke-order data",
		Long: `strokepipe sweeps a range of CJK codepoints, renders each character's page
on the MOE stroke-order dictionary, and stores the raw stroke XML embedded in it.
A separate pass converts the raw records into a normalized JSON stroke format.

Usage:
  strokepipe acquire [--range 4E00-9FFF]
  strokepipe normalize
  strokepipe preview U+4E00`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx.logger = newLogger(slog.LevelInfo, ctx.verbose)
			if cmd.Annotations[skipConfigLoad] == "true" {
				return nil
			}
			cfg, path, exists, err := config.Load(ctx.configPath)
			if err != nil {
				return err
			}
			level, _ := cfg.LogLevel()
			ctx.logger = newLogger(level, ctx.verbose)
			slog.SetDefault(ctx.logger)
			ctx.logger.Debug("configuration loaded", "path", path, "exists", exists)
			ctx.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&ctx.configPath, "config", "c", "", "Config file (default ./"+config.DefaultFileName+")")
	rootCmd.PersistentFlags().BoolVarP(&ctx.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(newAcquireCommand(ctx))
	rootCmd.AddCommand(newNormalizeCommand(ctx))
	rootCmd.AddCommand(newPreviewCommand(ctx))
	rootCmd.AddCommand(newConfigCommand())

	return rootCmd
}

func newLogger(level slog.Level, verbose bool) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

// Execute runs the root command.
func Execute() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
