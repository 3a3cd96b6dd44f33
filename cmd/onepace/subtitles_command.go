package main

import (
	"github.com/spf13/cobra"
)

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subtitles <reference> <folder>",
		Short: "Download a remote subtitle folder into <folder>",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup("subtitles")
			if err != nil {
				return err
			}
			target, err := targetFolder(cfg, args[1])
			if err != nil {
				return err
			}
			fetcher, err := newSubtitleFetcher(cfg, logger)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := ctx.colorize(out)

			printProgress(out, statusInfo, colorize, "Fetching subtitles from %s", args[0])
			result, err := fetcher.Fetch(cmd.Context(), args[0], target)
			if err != nil {
				return err
			}
			if result.Count == 0 {
				printProgress(out, statusWarn, colorize, "No %s files arrived in %s", cfg.Subtitles.Extension, result.Dir)
				return nil
			}
			printProgress(out, statusOK, colorize, "%d subtitles in %s", result.Count, result.Dir)
			return nil
		},
	}
}
