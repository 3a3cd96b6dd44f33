package main

import (
	"github.com/spf13/cobra"

	"onepace/internal/magnet"
)

func newDownloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "download <url> <folder>",
		Short: "Start torrent downloads for every magnet link on a page",
		Long: "Scrapes the page for magnet links and launches one detached torrent client per link,\n" +
			"writing into <folder>. Downloads keep running after the command returns; use\n" +
			"`onepace wait` to block until they finish and `onepace jobs` to list them.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup("download")
			if err != nil {
				return err
			}
			target, err := targetFolder(cfg, args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := ctx.colorize(out)

			printProgress(out, statusInfo, colorize, "Searching %s for magnet links", args[0])
			result := newScraper(cfg, logger).Scrape(cmd.Context(), args[0])
			if len(result.Links) == 0 {
				return noMagnetsError(args[0], result)
			}
			printProgress(out, statusOK, colorize, "Found %d magnet links", len(result.Links))

			registry, err := ctx.openRegistry(cfg)
			if err != nil {
				return err
			}
			defer registry.Close()

			dispatcher, err := newDispatcher(cfg, logger, registry)
			if err != nil {
				return err
			}
			dispatched, err := dispatcher.Dispatch(cmd.Context(), result.Links, target)
			for _, handle := range dispatched.Handles {
				printProgress(out, statusOK, colorize, "Launched %s (pid %d)", magnet.Label(handle.Job.Magnet), handle.Job.PID)
			}
			if err != nil {
				return err
			}

			kind := statusOK
			if dispatched.Failed > 0 {
				kind = statusWarn
			}
			printProgress(out, kind, colorize, "%d of %d downloads launched into %s",
				dispatched.Launched, len(result.Links), target)
			return nil
		},
	}
}
