package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"onepace/internal/dispatch"
	"onepace/internal/logging"
	"onepace/internal/pipeline"
	"onepace/internal/preflight"
	"onepace/internal/services"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run <url> <reference> <folder>",
		Short: "Download an arc, fetch its subtitles, and match them in one pass",
		Long: "Runs every step against <folder>: start the torrent downloads found at <url>\n" +
			"and fetch the subtitle folder <reference> side by side, wait for the downloads,\n" +
			"match subtitles to videos, then verify. Steps whose output is already present\n" +
			"are skipped, so an interrupted run can simply be repeated.",
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.setup("pipeline")
			if err != nil {
				return err
			}
			target, err := targetFolder(cfg, args[2])
			if err != nil {
				return err
			}
			if failed := preflight.Failed(preflight.RunAll(cfg)); len(failed) > 0 {
				return preflightError(failed)
			}

			registry, err := ctx.openRegistry(cfg)
			if err != nil {
				return err
			}
			defer registry.Close()

			if _, err := registry.Reconcile(cmd.Context(), target, dispatch.JobRunning); err != nil {
				logger.Warn("job registry reconcile failed", logging.Error(err))
			}

			out := cmd.OutOrStdout()
			colorize := ctx.colorize(out)

			dispatcher, err := newDispatcher(cfg, logger, registry)
			if err != nil {
				return err
			}
			subtitles, err := newSubtitleFetcher(cfg, logger)
			if err != nil {
				return err
			}
			p, err := pipeline.New(cfg, pipeline.Deps{
				Scraper:    newScraper(cfg, logger),
				Dispatcher: dispatcher,
				Subtitles:  subtitles,
				Waiter:     interruptibleWaiter{poller: newPoller(cfg, logger, waitProgressPrinter(out, colorize))},
				Matcher:    newMatcher(cfg, logger, false),
				Logger:     logger,
				Jobs:       registry,
			})
			if err != nil {
				return err
			}

			printProgress(out, statusInfo, colorize, "Working on %s", target)
			summary, runErr := p.Run(cmd.Context(), pipeline.Request{
				IndexURL:    args[0],
				SubtitleRef: args[1],
				Target:      target,
			})
			printRunSummary(out, summary, colorize)
			if runErr != nil {
				return runErr
			}
			if !summary.OK() {
				return services.Wrap(services.ErrValidation, "pipeline", "run", "run finished without a passing verification", nil)
			}
			return nil
		},
	}
}

func preflightError(failed []preflight.Result) error {
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return services.Wrap(services.ErrConfiguration, "pipeline", "preflight",
		strings.Join(parts, "; ")+" (run `onepace check` for details)", nil)
}

func printRunSummary(out io.Writer, summary pipeline.Summary, colorize bool) {
	if len(summary.Steps) == 0 {
		return
	}
	fmt.Fprintln(out)
	printSection(out, "Summary", colorize)
	rows := make([][]string, 0, len(summary.Steps))
	for _, step := range summary.Steps {
		rows = append(rows, []string{
			string(step.Step),
			string(step.Status),
			step.Detail,
			formatDuration(step.Duration),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"Step", "Status", "Detail", "Time"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight}))

	if summary.Verify != nil {
		for _, video := range summary.Verify.MissingVideos() {
			printProgress(out, statusError, colorize, "Missing subtitle for %s", video)
		}
	}
	if summary.OK() {
		printProgress(out, statusOK, colorize, "Every video in %s has its subtitle", summary.Target)
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
